package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers advisor routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/advisor", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", h.HandleChat)
			r.Get("/ws", h.HandleChatSocket)
			r.Get("/{session}", h.HandleTranscript)
			r.Delete("/{session}", h.HandleClear)
		})
		r.Post("/portfolios/{id}/commentary", h.HandleRiskCommentary)
	})
}
