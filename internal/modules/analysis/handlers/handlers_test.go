package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/analysis"
	"github.com/aristath/finsight/internal/session"
	testingutil "github.com/aristath/finsight/internal/testing"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db, cleanup := testingutil.NewTestDB(t)
	t.Cleanup(cleanup)

	userID := testingutil.InsertUser(t, db.Conn(), "Zhao")
	service := analysis.NewService(
		analysis.NewProfitRepository(db.Conn(), zerolog.Nop()),
		analysis.NewArchiveRepository(db.Conn(), zerolog.Nop()),
		domain.NewLabels("zh"),
		zerolog.Nop(),
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), domain.Session{UserID: userID})))
		})
	})
	NewHandler(service, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestProjectionEndpoints(t *testing.T) {
	router := setupRouter(t)

	rec, _ := do(t, router, http.MethodGet, "/analysis/projection/latest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env := do(t, router, http.MethodPost, "/analysis/projection", ProjectionRequest{
		InitialCapital:    10000,
		Months:            12,
		ExpectedReturn:    10,
		MonthlyInvestment: 1000,
		RiskTolerance:     "保守",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var plan analysis.Plan
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Len(t, plan.Curve, 13)
	assert.Contains(t, plan.Advice, "建议选择低风险投资品种")

	rec, env = do(t, router, http.MethodGet, "/analysis/projection/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var latest domain.ProfitAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &latest))
	assert.Equal(t, plan.ID, latest.ID)
	assert.Equal(t, domain.ToleranceConservative, latest.RiskTolerance)
}

func TestProjectionRejectsBadInput(t *testing.T) {
	router := setupRouter(t)

	rec, _ := do(t, router, http.MethodPost, "/analysis/projection", ProjectionRequest{InitialCapital: 100, Months: 0, RiskTolerance: "balanced"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/analysis/projection", ProjectionRequest{InitialCapital: 100, Months: 3, RiskTolerance: "reckless"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchiveEndpoints(t *testing.T) {
	router := setupRouter(t)

	rec, env := do(t, router, http.MethodPost, "/analysis/600519/technical", map[string]interface{}{"trend": "bullish"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved domain.InvestmentAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.NotEmpty(t, saved.UUID)

	rec, env = do(t, router, http.MethodGet, "/analysis/600519/technical", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var latest domain.InvestmentAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &latest))
	assert.Equal(t, saved.UUID, latest.UUID)
	assert.Equal(t, "bullish", latest.Data["trend"])

	rec, _ = do(t, router, http.MethodGet, "/analysis/600519/fundamentals", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/analysis/600519/palmistry", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
