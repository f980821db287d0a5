package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/risk"
	"github.com/aristath/finsight/internal/session"
)

type stubPortfolios struct {
	portfolio *domain.Portfolio
}

func (s stubPortfolios) Portfolio(userID, id int64) (*domain.Portfolio, error) {
	if s.portfolio == nil || s.portfolio.ID != id || s.portfolio.UserID != userID {
		return nil, portfolio.ErrPortfolioNotFound
	}
	return s.portfolio, nil
}

func (s stubPortfolios) Assess(userID, id int64) (*domain.RiskAssessment, error) {
	p, err := s.Portfolio(userID, id)
	if err != nil {
		return nil, err
	}
	a := risk.Assess(p.Holdings, time.Now())
	return &a, nil
}

func newRouter(p *domain.Portfolio) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), domain.Session{UserID: 1})))
		})
	})
	NewHandler(stubPortfolios{portfolio: p}, domain.NewLabels("en"), zerolog.Nop()).RegisterRoutes(r)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) AssessResponse {
	t.Helper()
	var body struct {
		Data AssessResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestGetPortfolioRisk(t *testing.T) {
	p := &domain.Portfolio{
		ID:            3,
		UserID:        1,
		RiskTolerance: domain.ToleranceAggressive,
		Holdings: []domain.Holding{
			{Name: "A", Category: domain.CategoryStock, Quantity: 100, CostPrice: 10, CurrentPrice: 20},
		},
	}
	router := newRouter(p)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk/portfolios/3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, domain.OutcomeAssessed, resp.Outcome)
	assert.InDelta(t, 0.6, resp.Score, 1e-9)
	assert.Equal(t, domain.RiskHigh, resp.Level)
	assert.Equal(t, "High", resp.LevelLabel)
	assert.InDelta(t, 0.8, resp.WeightedScore, 1e-9)
	assert.InDelta(t, 1.5, resp.VolatilityScore, 1e-9)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk/portfolios/4", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk/portfolios/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssess_AdHoc(t *testing.T) {
	router := newRouter(nil)

	body, err := json.Marshal(AssessRequest{
		Tolerance: "保守",
		Holdings: []HoldingInput{
			{Symbol: "600000", Category: "股票", Quantity: 100, CostPrice: 10, CurrentPrice: 7},
			{Symbol: "511010", Category: "债券", Quantity: 100, CostPrice: 10, CurrentPrice: 10},
			{Symbol: "CASH", Category: "现金", Quantity: 1000, CostPrice: 1, CurrentPrice: 1},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/risk/assess", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	require.Len(t, resp.Factors, 1)
	assert.Equal(t, domain.FactorLoss, resp.Factors[0].Kind)
	assert.Equal(t, "600000 dropped significantly", resp.Factors[0].Message)
	assert.Equal(t, domain.RiskLow, resp.Level)
}

func TestAssess_Degraded(t *testing.T) {
	router := newRouter(nil)

	body := `{"holdings":[{"symbol":"X","category":"stock","quantity":-5,"cost_price":1,"current_price":1}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/risk/assess", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, domain.OutcomeDegraded, resp.Outcome)
	assert.Equal(t, domain.RiskUnknown, resp.Level)
	assert.Equal(t, "Please check the portfolio data", resp.Suggestions[0].Message)
}
