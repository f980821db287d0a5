// Package handlers provides HTTP handlers for company fundamentals.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/modules/fundamentals"
)

// Handler handles fundamentals HTTP requests
type Handler struct {
	service *fundamentals.Service
	log     zerolog.Logger
}

// NewHandler creates a new fundamentals handler
func NewHandler(service *fundamentals.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "fundamentals").Logger(),
	}
}

// CommentaryRequest selects the reporting period to discuss
type CommentaryRequest struct {
	Period string `json:"period"`
}

// HandleGetIndicators handles GET /api/fundamentals/{symbol}?period=
func (h *Handler) HandleGetIndicators(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Indicators(r.Context(), chi.URLParam(r, "symbol"), r.URL.Query().Get("period"))
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch financial indicators")
		return
	}
	h.writeData(w, report)
}

// HandleCompany handles GET /api/fundamentals/{symbol}/company
func (h *Handler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Company(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch company profile")
		return
	}
	h.writeData(w, info)
}

// HandleCommentary handles POST /api/fundamentals/{symbol}/commentary
func (h *Handler) HandleCommentary(w http.ResponseWriter, r *http.Request) {
	var req CommentaryRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Period == "" {
		req.Period = r.URL.Query().Get("period")
	}

	symbol := chi.URLParam(r, "symbol")
	commentary, err := h.service.Commentary(r.Context(), symbol, req.Period)
	if err != nil {
		h.handleServiceError(w, err, "Failed to generate commentary")
		return
	}

	h.writeData(w, map[string]string{
		"symbol":     symbol,
		"commentary": commentary,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, fundamentals.ErrInvalidSymbol), errors.Is(err, fundamentals.ErrInvalidPeriod):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fundamentals.ErrNoData):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fundamentals.ErrUnavailable):
		h.log.Warn().Err(err).Msg(message)
		h.writeError(w, http.StatusBadGateway, message)
	default:
		h.log.Error().Err(err).Msg(message)
		h.writeError(w, http.StatusInternalServerError, message)
	}
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
