package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers user, portfolio and transaction routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.HandleCreateUser)
		r.Get("/recent", h.HandleGetRecentUser)
		r.Get("/{id}", h.HandleGetUser)
	})

	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleListPortfolios)
		r.Post("/", h.HandleCreatePortfolio)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetPortfolio)
			r.Put("/", h.HandleUpdatePortfolio)
			r.Delete("/", h.HandleDeletePortfolio)

			r.Get("/holdings", h.HandleListHoldings)
			r.Post("/holdings", h.HandleAddHolding)
			r.Delete("/holdings/{hid}", h.HandleDeleteHolding)
			r.Get("/holdings.csv", h.HandleExportHoldings)

			r.Post("/refresh-prices", h.HandleRefreshPrices)
			r.Get("/metrics", h.HandleGetMetrics)
		})
	})

	r.Get("/transactions", h.HandleListTransactions)
	r.Post("/transactions", h.HandleAddTransaction)
	r.Get("/transactions.csv", h.HandleExportTransactions)
}
