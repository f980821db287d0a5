// Package handlers provides HTTP handlers for risk assessment.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/risk"
	"github.com/aristath/finsight/internal/session"
)

// PortfolioAssessor assesses a stored portfolio
type PortfolioAssessor interface {
	Assess(userID, portfolioID int64) (*domain.RiskAssessment, error)
	Portfolio(userID, portfolioID int64) (*domain.Portfolio, error)
}

// Handler handles risk HTTP requests
type Handler struct {
	portfolios PortfolioAssessor
	labels     domain.Labels
	log        zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(portfolios PortfolioAssessor, labels domain.Labels, log zerolog.Logger) *Handler {
	return &Handler{
		portfolios: portfolios,
		labels:     labels,
		log:        log.With().Str("handler", "risk").Logger(),
	}
}

// AssessRequest is the body of POST /api/risk/assess
type AssessRequest struct {
	Holdings  []HoldingInput `json:"holdings"`
	Tolerance string         `json:"risk_tolerance"`
}

// HoldingInput is an unsaved holding submitted for an ad-hoc assessment
type HoldingInput struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Quantity     int64   `json:"quantity"`
	CostPrice    float64 `json:"cost_price"`
	CurrentPrice float64 `json:"current_price"`
}

// AssessResponse adds the portfolio-level scores to a rendered assessment
type AssessResponse struct {
	risk.AssessmentView
	WeightedScore   float64 `json:"weighted_risk_score"`
	VolatilityScore float64 `json:"volatility_score"`
}

// HandleGetPortfolioRisk handles GET /api/risk/portfolios/{id}
func (h *Handler) HandleGetPortfolioRisk(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	p, err := h.portfolios.Portfolio(s.UserID, id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	assessment, err := h.portfolios.Assess(s.UserID, id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeData(w, AssessResponse{
		AssessmentView:  risk.Describe(*assessment, h.labels),
		WeightedScore:   risk.WeightedScore(p.Holdings),
		VolatilityScore: risk.VolatilityScore(p.Holdings, p.RiskTolerance),
	})
}

// HandleAssess handles POST /api/risk/assess. Holdings in the body are
// assessed without being stored; invalid holdings yield a degraded outcome.
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tolerance := domain.ToleranceBalanced
	if req.Tolerance != "" {
		parsed, err := domain.ParseRiskTolerance(req.Tolerance)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tolerance = parsed
	}

	holdings := make([]domain.Holding, 0, len(req.Holdings))
	for _, in := range req.Holdings {
		name := in.Name
		if name == "" {
			name = in.Symbol
		}
		holdings = append(holdings, domain.Holding{
			Symbol:       in.Symbol,
			Name:         name,
			Category:     domain.ParseCategory(in.Category),
			Quantity:     in.Quantity,
			CostPrice:    in.CostPrice,
			CurrentPrice: in.CurrentPrice,
		})
	}

	assessment := risk.Assess(holdings, time.Now())
	if assessment.Outcome == domain.OutcomeDegraded {
		h.log.Warn().Str("reason", assessment.Factors[0].Reason).Msg("Ad-hoc assessment degraded")
	}

	h.writeData(w, AssessResponse{
		AssessmentView:  risk.Describe(assessment, h.labels),
		WeightedScore:   risk.WeightedScore(holdings),
		VolatilityScore: risk.VolatilityScore(holdings, tolerance),
	})
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, portfolio.ErrPortfolioNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Failed to assess portfolio")
	h.writeError(w, http.StatusInternalServerError, "Failed to assess portfolio")
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
