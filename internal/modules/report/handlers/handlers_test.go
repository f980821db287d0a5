package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/market"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/report"
	"github.com/aristath/finsight/internal/session"
	testingutil "github.com/aristath/finsight/internal/testing"
)

type offlineMarket struct{}

func (offlineMarket) Overview(context.Context) market.Overview {
	return market.Overview{
		Shanghai:  market.NotAvailable,
		Shenzhen:  market.NotAvailable,
		ChiNext:   market.NotAvailable,
		Sentiment: domain.SentimentUnavailable,
	}
}

func setupRouter(t *testing.T) (http.Handler, int64) {
	t.Helper()
	db, cleanup := testingutil.NewTestDB(t)
	t.Cleanup(cleanup)
	conn := db.Conn()

	portfolios := portfolio.NewPortfolioService(
		portfolio.NewUserRepository(conn, zerolog.Nop()),
		portfolio.NewPortfolioRepository(conn, zerolog.Nop()),
		portfolio.NewHoldingRepository(conn, zerolog.Nop()),
		portfolio.NewTransactionRepository(conn, zerolog.Nop()),
		nil,
		zerolog.Nop(),
	)
	user, err := portfolios.CreateUser("Zhou", "")
	require.NoError(t, err)
	p, err := portfolios.CreatePortfolio(user.ID, domain.Portfolio{Name: "solo", RiskTolerance: domain.ToleranceConservative})
	require.NoError(t, err)

	service := report.NewService(portfolios, offlineMarket{}, testingutil.NewMockLLMClient("**fine**"), domain.NewLabels("en"), "USD", zerolog.Nop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), domain.Session{UserID: user.ID})))
		})
	})
	NewHandler(service, zerolog.Nop()).RegisterRoutes(r)
	return r, p.ID
}

func post(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestGenerateMarkdown(t *testing.T) {
	router, id := setupRouter(t)

	rec := post(router, "/reports/portfolios/"+itoa(id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".md")
	assert.Contains(t, rec.Body.String(), "# Investment Report")
	assert.Contains(t, rec.Body.String(), "No holdings")
}

func TestGenerateHTML(t *testing.T) {
	router, id := setupRouter(t)

	rec := post(router, "/reports/portfolios/"+itoa(id)+"?format=html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>Investment Report</h1>")
	assert.Contains(t, rec.Body.String(), "<strong>fine</strong>")
}

func TestGenerateErrors(t *testing.T) {
	router, id := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, post(router, "/reports/portfolios/abc").Code)
	assert.Equal(t, http.StatusBadRequest, post(router, "/reports/portfolios/"+itoa(id)+"?format=pdf").Code)
	assert.Equal(t, http.StatusNotFound, post(router, "/reports/portfolios/999").Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
