// Package handlers provides HTTP handlers for trade disclosures and price history.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/modules/trades"
	"github.com/aristath/portfolio-tracker/internal/utils"
)

// TradesService is the subset of trades.Service the handlers need
type TradesService interface {
	ByPolitician(ctx context.Context, name string, limit int) []domain.Trade
	Recent(ctx context.Context, limit int) []domain.Trade
	Holdings(ctx context.Context, name string) []domain.Holding
	Sectors(ctx context.Context, name string) []domain.SectorSlice
	StockPrices(ctx context.Context, symbol, period string) []domain.PriceBar
}

// Handler handles trades HTTP requests
type Handler struct {
	service TradesService
	log     zerolog.Logger
}

// NewHandler creates a new trades handler
func NewHandler(service TradesService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "trades").Logger(),
	}
}

// HandleGetRecent returns the most recently disclosed trades
func (h *Handler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, trades.DefaultRecentLimit)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Recent(r.Context(), limit))
}

// HandleGetPolitician returns one politician's trades
func (h *Handler) HandleGetPolitician(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r, trades.DefaultPoliticianLimit)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.ByPolitician(r.Context(), chi.URLParam(r, "name"), limit))
}

// HandleGetHoldings returns estimated holdings
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Holdings(r.Context(), chi.URLParam(r, "name")))
}

// HandleGetSectors returns the sector breakdown of estimated holdings
func (h *Handler) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Sectors(r.Context(), chi.URLParam(r, "name")))
}

// HandleGetStock returns daily price bars
func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	period := r.URL.Query().Get("period")
	h.writeJSON(w, http.StatusOK, h.service.StockPrices(r.Context(), symbol, period))
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
