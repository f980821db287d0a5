// Package handlers provides HTTP and WebSocket handlers for the chat advisor.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/modules/advisor"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/session"
)

// Handler handles advisor requests
type Handler struct {
	service        *advisor.Service
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new advisor handler. originPatterns lists the extra
// origins allowed to open the chat socket.
func NewHandler(service *advisor.Service, originPatterns []string, log zerolog.Logger) *Handler {
	return &Handler{
		service:        service,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "advisor").Logger(),
	}
}

// ChatRequest is the body of POST /api/advisor/chat
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// HandleChat handles POST /api/advisor/chat
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.service.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.handleServiceError(w, err, "Failed to answer chat message")
		return
	}

	h.writeData(w, http.StatusOK, reply)
}

// HandleTranscript handles GET /api/advisor/chat/{session}
func (h *Handler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.Transcript(chi.URLParam(r, "session"))
	if err != nil {
		h.handleServiceError(w, err, "Failed to load transcript")
		return
	}
	h.writeData(w, http.StatusOK, messages)
}

// HandleClear handles DELETE /api/advisor/chat/{session}
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(chi.URLParam(r, "session")); err != nil {
		h.handleServiceError(w, err, "Failed to clear chat session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRiskCommentary handles POST /api/advisor/portfolios/{id}/commentary
func (h *Handler) HandleRiskCommentary(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	commentary, err := h.service.ExplainRisk(r.Context(), s.UserID, id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to explain portfolio risk")
		return
	}

	h.writeData(w, http.StatusOK, commentary)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, advisor.ErrEmptyMessage):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, advisor.ErrSessionNotFound), errors.Is(err, portfolio.ErrPortfolioNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, advisor.ErrUnavailable):
		h.log.Warn().Err(err).Msg(msg)
		h.writeError(w, http.StatusBadGateway, msg)
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
