// Package handlers provides HTTP handlers for investment projections and archived analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/analysis"
	"github.com/aristath/finsight/internal/session"
)

// Handler handles analysis HTTP requests
type Handler struct {
	service *analysis.Service
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// ProjectionRequest is the body of POST /api/analysis/projection
type ProjectionRequest struct {
	InitialCapital    float64 `json:"initial_capital"`
	Months            int     `json:"investment_period"`
	ExpectedReturn    float64 `json:"expected_return"`
	MonthlyInvestment float64 `json:"monthly_investment"`
	RiskTolerance     string  `json:"risk_tolerance"`
}

// HandleProject handles POST /api/analysis/projection
func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	var req ProjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tolerance, err := domain.ParseRiskTolerance(req.RiskTolerance)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.Project(s.UserID, analysis.ProjectionInput{
		InitialCapital:    req.InitialCapital,
		Months:            req.Months,
		ExpectedReturn:    req.ExpectedReturn,
		MonthlyInvestment: req.MonthlyInvestment,
		RiskTolerance:     tolerance,
	})
	if err != nil {
		h.handleServiceError(w, err, "Failed to project investment plan")
		return
	}

	h.writeData(w, http.StatusCreated, plan)
}

// HandleLatestProjection handles GET /api/analysis/projection/latest
func (h *Handler) HandleLatestProjection(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	p, err := h.service.LatestProjection(s.UserID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to load projection")
		return
	}

	h.writeData(w, http.StatusOK, p)
}

// HandleArchive handles POST /api/analysis/{symbol}/{type}
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		h.writeError(w, http.StatusBadRequest, "Body must be a JSON object")
		return
	}

	rec, err := h.service.Archive(s.UserID, symbolParam(r), chi.URLParam(r, "type"), body)
	if err != nil {
		h.handleServiceError(w, err, "Failed to archive analysis")
		return
	}

	h.writeData(w, http.StatusCreated, rec)
}

// HandleLatestArchive handles GET /api/analysis/{symbol}/{type}
func (h *Handler) HandleLatestArchive(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	rec, err := h.service.LatestArchive(s.UserID, symbolParam(r), chi.URLParam(r, "type"))
	if err != nil {
		h.handleServiceError(w, err, "Failed to load analysis")
		return
	}

	h.writeData(w, http.StatusOK, rec)
}

func symbolParam(r *http.Request) string {
	return strings.ToUpper(chi.URLParam(r, "symbol"))
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, analysis.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg(msg)
		h.writeError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
