// Package handlers provides HTTP handlers for sentiment, news and Reddit lookups.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/modules/sentiment"
	"github.com/aristath/portfolio-tracker/internal/utils"
)

// SentimentService is the subset of sentiment.Service the handlers need
type SentimentService interface {
	Sentiment(ctx context.Context, query string) domain.Sentiment
	News(ctx context.Context, query string, limit int) []domain.NewsItem
	RedditPosts(ctx context.Context, query string, limit int) []domain.RedditPost
}

// Handler handles sentiment HTTP requests
type Handler struct {
	service SentimentService
	log     zerolog.Logger
}

// NewHandler creates a new sentiment handler
func NewHandler(service SentimentService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "sentiment").Logger(),
	}
}

// HandleGetSentiment returns the aggregate score for a person or topic
func (h *Handler) HandleGetSentiment(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	h.writeJSON(w, http.StatusOK, h.service.Sentiment(r.Context(), query))
}

// HandleGetNews returns recent articles mentioning the query
func (h *Handler) HandleGetNews(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, sentiment.DefaultNewsLimit)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.News(r.Context(), chi.URLParam(r, "query"), limit))
}

// HandleGetReddit returns Reddit posts mentioning the query
func (h *Handler) HandleGetReddit(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, sentiment.DefaultRedditLimit)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.RedditPosts(r.Context(), chi.URLParam(r, "query"), limit))
}

func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	limit, err := utils.ParseLimit(r.URL.Query().Get("limit"), def)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return 0, false
	}
	return limit, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
