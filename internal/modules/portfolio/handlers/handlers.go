// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
)

// PortfolioService is the subset of portfolio.Service the handlers need
type PortfolioService interface {
	Create(ctx context.Context, req portfolio.CreateRequest) (*domain.Portfolio, error)
	Get(ctx context.Context, id int64) (*domain.Portfolio, error)
	List(ctx context.Context) ([]*domain.Portfolio, error)
	Update(ctx context.Context, id int64, req portfolio.UpdateRequest) (*domain.Portfolio, error)
	UpdateWidgetLayout(ctx context.Context, id int64, updates []portfolio.LayoutUpdate) error
	Delete(ctx context.Context, id int64) error
}

// Handler handles portfolio HTTP requests
type Handler struct {
	service PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleList returns every portfolio
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolios)
}

// HandleGet returns one portfolio
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// HandleCreate creates a portfolio and lays out its widgets
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req portfolio.CreateRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

// HandleUpdate replaces descriptive fields and people
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req portfolio.UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// HandleUpdateWidgets stores client-chosen widget coordinates
func (h *Handler) HandleUpdateWidgets(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var updates []portfolio.LayoutUpdate
	if !h.decode(w, r, &updates) {
		return
	}

	if err := h.service.UpdateWidgetLayout(r.Context(), id, updates); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Widget layouts updated"})
}

// HandleDelete removes a portfolio with its people and widgets
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Portfolio deleted successfully"})
}

// Helper methods

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid portfolio id %q", raw))
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
	case errors.As(err, &vErr):
		h.writeError(w, http.StatusBadRequest, vErr.Error())
	default:
		h.log.Error().Err(err).Msg("Portfolio request failed")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
