// Package handlers provides HTTP handlers for strategy recommendations.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/strategy"
	"github.com/aristath/finsight/internal/session"
)

// PortfolioStrategist recommends a strategy for a stored portfolio
type PortfolioStrategist interface {
	Strategy(userID, portfolioID int64) (*domain.InvestmentStrategy, error)
}

// Handler handles strategy HTTP requests
type Handler struct {
	portfolios PortfolioStrategist
	labels     domain.Labels
	log        zerolog.Logger
}

// NewHandler creates a new strategy handler
func NewHandler(portfolios PortfolioStrategist, labels domain.Labels, log zerolog.Logger) *Handler {
	return &Handler{
		portfolios: portfolios,
		labels:     labels,
		log:        log.With().Str("handler", "strategy").Logger(),
	}
}

// HandleGetPortfolioStrategy handles GET /api/strategy/portfolios/{id}
func (h *Handler) HandleGetPortfolioStrategy(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	recommendation, err := h.portfolios.Strategy(s.UserID, id)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Int64("portfolio_id", id).Msg("Failed to recommend strategy")
		h.writeError(w, http.StatusInternalServerError, "Failed to recommend strategy")
		return
	}

	h.writeData(w, strategy.Describe(*recommendation, h.labels))
}

// HandleRecommend handles GET /api/strategy?score=
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		h.writeError(w, http.StatusBadRequest, "score must be a number")
		return
	}

	h.writeData(w, strategy.Describe(strategy.Recommend(score, time.Now()), h.labels))
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
