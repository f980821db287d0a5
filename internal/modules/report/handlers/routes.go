package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Post("/portfolios/{id}", h.HandleGenerate)
	})
}
