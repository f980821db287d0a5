// Package handlers provides HTTP handlers for market data.
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
	"github.com/aristath/finsight/internal/modules/market"
)

// Handler handles market HTTP requests
type Handler struct {
	service *market.Service
	labels  domain.Labels
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(service *market.Service, labels domain.Labels, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		labels:  labels,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleOverview handles GET /api/market/overview
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, market.DescribeOverview(h.service.Overview(r.Context()), h.labels))
}

// HandleStocks handles GET /api/market/stocks?q=&exchange=&limit=
func (h *Handler) HandleStocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	stocks, err := h.service.Stocks(r.Context(), query.Get("q"), query.Get("exchange"), limit)
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch stock list")
		return
	}
	h.writeData(w, stocks)
}

// HandleQuote handles GET /api/market/quotes/{symbol}
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Quote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch quote")
		return
	}
	h.writeData(w, q)
}

// HandleIndex handles GET /api/market/indices/{code}
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Index(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch index")
		return
	}
	h.writeData(w, q)
}

// HandleTechnical handles GET /api/market/technical/{symbol}.
// With ?commentary=true the LLM interpretation is attached when available.
func (h *Handler) HandleTechnical(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	analysis, err := h.service.Technical(r.Context(), symbol)
	if err != nil {
		h.handleServiceError(w, err, "Failed to analyze price history")
		return
	}

	view := market.DescribeTechnical(*analysis, h.labels)
	if want, _ := strconv.ParseBool(r.URL.Query().Get("commentary")); want {
		commentary, err := h.service.TechnicalCommentary(r.Context(), analysis)
		if err != nil {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("Technical commentary unavailable")
		}
		view.Commentary = commentary
	}

	h.writeData(w, view)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, market.ErrInvalidSymbol), errors.Is(err, market.ErrInvalidExchange):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, market.ErrInsufficientHistory):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, market.ErrUnavailable):
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
