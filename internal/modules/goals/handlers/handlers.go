// Package handlers provides HTTP handlers for savings goals.
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
	"github.com/aristath/finsight/internal/modules/goals"
	"github.com/aristath/finsight/internal/session"
)

// Handler handles goal HTTP requests
type Handler struct {
	service *goals.Service
	labels  domain.Labels
	log     zerolog.Logger
}

// NewHandler creates a new goals handler
func NewHandler(service *goals.Service, labels domain.Labels, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		labels:  labels,
		log:     log.With().Str("handler", "goals").Logger(),
	}
}

// CreateGoalRequest is the body of POST /api/goals
type CreateGoalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Deadline      string  `json:"deadline"`
	RiskTolerance string  `json:"risk_tolerance"`
}

// UpdateProgressRequest is the body of PUT /api/goals/{id}/progress
type UpdateProgressRequest struct {
	CurrentAmount float64 `json:"current_amount"`
}

type adjustmentView struct {
	Kind    domain.AdjustmentKind `json:"kind"`
	Goal    string                `json:"goal,omitempty"`
	Message string                `json:"message"`
}

// HandleList handles GET /api/goals
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	progress, err := h.service.List(s.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list goals")
		h.writeError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}

	h.writeData(w, http.StatusOK, progress)
}

// HandleCreate handles POST /api/goals
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deadline, err := time.ParseInLocation(goals.DeadlineLayout, req.Deadline, time.Local)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "deadline must be YYYY-MM-DD")
		return
	}

	tolerance, err := domain.ParseRiskTolerance(req.RiskTolerance)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.service.Create(s, domain.Goal{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
		RiskTolerance: tolerance,
	})
	if err != nil {
		h.handleServiceError(w, err, "Failed to create goal")
		return
	}

	h.writeData(w, http.StatusCreated, goal)
}

// HandleUpdateProgress handles PUT /api/goals/{id}/progress
func (h *Handler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}
	id, ok := h.goalID(w, r)
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	progress, err := h.service.UpdateProgress(s.UserID, id, req.CurrentAmount)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update goal progress")
		return
	}

	h.writeData(w, http.StatusOK, progress)
}

// HandleDelete handles DELETE /api/goals/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}
	id, ok := h.goalID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(s.UserID, id); err != nil {
		h.handleServiceError(w, err, "Failed to delete goal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMonthlySaving handles GET /api/goals/{id}/monthly-saving
func (h *Handler) HandleMonthlySaving(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}
	id, ok := h.goalID(w, r)
	if !ok {
		return
	}

	saving, err := h.service.MonthlySaving(s.UserID, id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to compute monthly saving")
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"goal_id":        id,
		"monthly_saving": saving,
	})
}

// HandleReport handles GET /api/goals/report
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	report, err := h.service.Report(s.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build goal report")
		h.writeError(w, http.StatusInternalServerError, "Failed to build goal report")
		return
	}

	h.writeData(w, http.StatusOK, report)
}

// HandleAdjustments handles GET /api/goals/adjustments
func (h *Handler) HandleAdjustments(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	adjustments, err := h.service.Adjustments(s.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to suggest goal adjustments")
		h.writeError(w, http.StatusInternalServerError, "Failed to suggest goal adjustments")
		return
	}

	views := make([]adjustmentView, 0, len(adjustments))
	for _, a := range adjustments {
		views = append(views, adjustmentView{Kind: a.Kind, Goal: a.Goal, Message: h.labels.Adjustment(a)})
	}

	h.writeData(w, http.StatusOK, views)
}

func (h *Handler) goalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid goal id")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, goals.ErrGoalNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, goals.ErrInvalidGoal):
		h.writeError(w, http.StatusBadRequest, err.Error())
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
