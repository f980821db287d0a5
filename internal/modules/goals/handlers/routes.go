package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all goal routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/report", h.HandleReport)
		r.Get("/adjustments", h.HandleAdjustments)

		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", h.HandleDelete)
			r.Put("/progress", h.HandleUpdateProgress)
			r.Get("/monthly-saving", h.HandleMonthlySaving)
		})
	})
}
