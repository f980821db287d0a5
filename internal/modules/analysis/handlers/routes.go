package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers projection and archive routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/projection", h.HandleProject)
		r.Get("/projection/latest", h.HandleLatestProjection)

		r.Get("/{symbol}/{type}", h.HandleLatestArchive)
		r.Post("/{symbol}/{type}", h.HandleArchive)
	})
}
