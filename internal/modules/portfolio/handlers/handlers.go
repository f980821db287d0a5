// Package handlers provides HTTP handlers for users, portfolios, holdings
// and transactions.
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

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/session"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Name       string `json:"name"`
	Experience string `json:"experience"`
}

// CreatePortfolioRequest is the body of POST /api/portfolios
type CreatePortfolioRequest struct {
	Name           string  `json:"name"`
	RiskTolerance  string  `json:"risk_tolerance"`
	InitialCapital float64 `json:"initial_capital"`
	InvestmentGoal string  `json:"investment_goal"`
}

// UpdatePortfolioRequest is the body of PUT /api/portfolios/{id}
type UpdatePortfolioRequest struct {
	Name           *string  `json:"name"`
	RiskTolerance  *string  `json:"risk_tolerance"`
	InitialCapital *float64 `json:"initial_capital"`
	InvestmentGoal *string  `json:"investment_goal"`
	Active         *bool    `json:"active"`
}

// AddHoldingRequest is the body of POST /api/portfolios/{id}/holdings
type AddHoldingRequest struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Quantity     int64   `json:"quantity"`
	CostPrice    float64 `json:"cost_price"`
	CurrentPrice float64 `json:"current_price"`
	PurchaseDate string  `json:"purchase_date"`
}

// AddTransactionRequest is the body of POST /api/transactions
type AddTransactionRequest struct {
	HoldingID int64   `json:"holding_id"`
	Type      string  `json:"type"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
}

// HandleCreateUser handles POST /api/users
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(req.Name, req.Experience)
	if err != nil {
		h.handleServiceError(w, err, "Failed to create user")
		return
	}
	h.writeData(w, http.StatusCreated, user)
}

// HandleGetUser handles GET /api/users/{id}
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.User(id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to get user")
		return
	}
	h.writeData(w, http.StatusOK, user)
}

// HandleGetRecentUser handles GET /api/users/recent
func (h *Handler) HandleGetRecentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.RecentUser()
	if err != nil {
		h.handleServiceError(w, err, "Failed to get recent user")
		return
	}
	h.writeData(w, http.StatusOK, user)
}

// HandleListPortfolios handles GET /api/portfolios
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	portfolios, err := h.service.Portfolios(s.UserID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to list portfolios")
		return
	}
	h.writeData(w, http.StatusOK, portfolios)
}

// HandleCreatePortfolio handles POST /api/portfolios
func (h *Handler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	var req CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tolerance, err := domain.ParseRiskTolerance(req.RiskTolerance)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.service.CreatePortfolio(s.UserID, domain.Portfolio{
		Name:           req.Name,
		RiskTolerance:  tolerance,
		InitialCapital: req.InitialCapital,
		InvestmentGoal: req.InvestmentGoal,
	})
	if err != nil {
		h.handleServiceError(w, err, "Failed to create portfolio")
		return
	}
	h.writeData(w, http.StatusCreated, p)
}

// HandleGetPortfolio handles GET /api/portfolios/{id}
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Portfolio(s.UserID, id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to get portfolio")
		return
	}
	h.writeData(w, http.StatusOK, p)
}

// HandleUpdatePortfolio handles PUT /api/portfolios/{id}
func (h *Handler) HandleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	var req UpdatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := portfolio.PortfolioUpdate{
		Name:           req.Name,
		InitialCapital: req.InitialCapital,
		InvestmentGoal: req.InvestmentGoal,
		Active:         req.Active,
	}
	if req.RiskTolerance != nil {
		tolerance, err := domain.ParseRiskTolerance(*req.RiskTolerance)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.RiskTolerance = &tolerance
	}

	p, err := h.service.UpdatePortfolio(s.UserID, id, update)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update portfolio")
		return
	}
	h.writeData(w, http.StatusOK, p)
}

// HandleDeletePortfolio handles DELETE /api/portfolios/{id}
func (h *Handler) HandleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePortfolio(s.UserID, id); err != nil {
		h.handleServiceError(w, err, "Failed to delete portfolio")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListHoldings handles GET /api/portfolios/{id}/holdings
func (h *Handler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	holdings, err := h.service.Holdings(s.UserID, id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to list holdings")
		return
	}
	h.writeData(w, http.StatusOK, holdings)
}

// HandleAddHolding handles POST /api/portfolios/{id}/holdings
func (h *Handler) HandleAddHolding(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	var req AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	holding := domain.Holding{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Category:     domain.ParseCategory(req.Category),
		Quantity:     req.Quantity,
		CostPrice:    req.CostPrice,
		CurrentPrice: req.CurrentPrice,
	}
	if req.PurchaseDate != "" {
		date, err := time.ParseInLocation("2006-01-02", req.PurchaseDate, time.Local)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "purchase_date must be YYYY-MM-DD")
			return
		}
		holding.PurchaseDate = date
	}

	created, err := h.service.AddHolding(s.UserID, id, holding)
	if err != nil {
		h.handleServiceError(w, err, "Failed to add holding")
		return
	}
	h.writeData(w, http.StatusCreated, created)
}

// HandleDeleteHolding handles DELETE /api/portfolios/{id}/holdings/{hid}
func (h *Handler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}
	holdingID, ok := h.pathID(w, r, "hid")
	if !ok {
		return
	}

	if err := h.service.RemoveHolding(s.UserID, id, holdingID); err != nil {
		h.handleServiceError(w, err, "Failed to delete holding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefreshPrices handles POST /api/portfolios/{id}/refresh-prices
func (h *Handler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	result, err := h.service.RefreshPrices(r.Context(), s.UserID, id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to refresh prices")
		return
	}
	h.writeData(w, http.StatusOK, result)
}

// HandleGetMetrics handles GET /api/portfolios/{id}/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	metrics, err := h.service.Metrics(s.UserID, id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to compute metrics")
		return
	}
	h.writeData(w, http.StatusOK, metrics)
}

// HandleExportHoldings handles GET /api/portfolios/{id}/holdings.csv
func (h *Handler) HandleExportHoldings(w http.ResponseWriter, r *http.Request) {
	s, id, ok := h.sessionAndID(w, r)
	if !ok {
		return
	}

	out, err := h.service.ExportHoldingsCSV(s.UserID, id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to export holdings")
		return
	}
	h.writeCSV(w, portfolio.ExportFilename("holdings", id, time.Now()), out)
}

// HandleListTransactions handles GET /api/transactions?holding_id=
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	var holdingID int64
	if raw := r.URL.Query().Get("holding_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid holding_id")
			return
		}
		holdingID = parsed
	}

	transactions, err := h.service.Transactions(s.UserID, holdingID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to list transactions")
		return
	}
	h.writeData(w, http.StatusOK, transactions)
}

// HandleAddTransaction handles POST /api/transactions
func (h *Handler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	var req AddTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.service.AddTransaction(s.UserID, domain.Transaction{
		HoldingID: req.HoldingID,
		Type:      domain.TransactionType(req.Type),
		Quantity:  req.Quantity,
		Price:     req.Price,
		Amount:    req.Amount,
	})
	if err != nil {
		h.handleServiceError(w, err, "Failed to add transaction")
		return
	}
	h.writeData(w, http.StatusCreated, tx)
}

// HandleExportTransactions handles GET /api/transactions.csv
func (h *Handler) HandleExportTransactions(w http.ResponseWriter, r *http.Request) {
	s, ok := session.Require(w, r)
	if !ok {
		return
	}

	out, err := h.service.ExportTransactionsCSV(s.UserID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to export transactions")
		return
	}
	h.writeCSV(w, portfolio.ExportFilename("transactions", 0, time.Now()), out)
}

func (h *Handler) sessionAndID(w http.ResponseWriter, r *http.Request) (domain.Session, int64, bool) {
	s, ok := session.Require(w, r)
	if !ok {
		return s, 0, false
	}
	id, ok := h.pathID(w, r, "id")
	return s, id, ok
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", param))
		return 0, false
	}
	return id, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, portfolio.ErrUserNotFound),
		errors.Is(err, portfolio.ErrPortfolioNotFound),
		errors.Is(err, portfolio.ErrHoldingNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, portfolio.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg(msg)
		h.writeError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV response")
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

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
