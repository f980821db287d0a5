// Package handlers provides the report download endpoint.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/report"
	"github.com/aristath/finsight/internal/session"
)

// Handler handles report requests
type Handler struct {
	service *report.Service
	log     zerolog.Logger
}

// NewHandler creates a new report handler
func NewHandler(service *report.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "report").Logger(),
	}
}

// HandleGenerate handles POST /api/reports/portfolios/{id}?format=markdown|html|json.
// markdown and html are sent as attachments.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "markdown", "md", "html", "json":
	default:
		h.writeError(w, http.StatusBadRequest, "format must be markdown, html or json")
		return
	}

	rep, err := h.service.Generate(r.Context(), s.UserID, id)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) || errors.Is(err, portfolio.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Int64("portfolio_id", id).Msg("Failed to generate report")
		h.writeError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	filename := "investment_report_" + rep.GeneratedAt.Format("20060102")

	switch format {
	case "json":
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": rep,
			"metadata": map[string]interface{}{
				"timestamp": time.Now().Format(time.RFC3339),
			},
		})
	case "html":
		html, err := report.HTML(rep.Markdown, h.service.Title())
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to render report html")
			h.writeError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		h.writeAttachment(w, "text/html; charset=utf-8", filename+".html", html)
	default:
		h.writeAttachment(w, "text/markdown; charset=utf-8", filename+".md", rep.Markdown)
	}
}

func (h *Handler) writeAttachment(w http.ResponseWriter, contentType, filename, body string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.log.Error().Err(err).Msg("Failed to write report")
	}
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
