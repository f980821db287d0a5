package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/overview", h.HandleOverview)
		r.Get("/stocks", h.HandleStocks)
		r.Get("/quotes/{symbol}", h.HandleQuote)
		r.Get("/indices/{code}", h.HandleIndex)
		r.Get("/technical/{symbol}", h.HandleTechnical)
	})
}
