package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trades routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/recent", h.HandleGetRecent)
		r.Get("/politician/{name}", h.HandleGetPolitician)
		r.Get("/holdings/{name}", h.HandleGetHoldings)
		r.Get("/sectors/{name}", h.HandleGetSectors)
		r.Get("/stock/{symbol}", h.HandleGetStock)
	})
}
