package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/market"
	"github.com/aristath/finsight/internal/modules/portfolio"
	testingutil "github.com/aristath/finsight/internal/testing"
)

type staticMarket struct{}

func (staticMarket) Overview(context.Context) market.Overview {
	return market.Overview{
		Shanghai:  "3000.00 (1.20%)",
		Shenzhen:  market.NotAvailable,
		ChiNext:   "2000.00 (-0.40%)",
		Sentiment: domain.SentimentNeutral,
	}
}

func setupPortfolio(t *testing.T) (*portfolio.PortfolioService, int64, int64) {
	t.Helper()
	db, cleanup := testingutil.NewTestDB(t)
	t.Cleanup(cleanup)
	conn := db.Conn()

	s := portfolio.NewPortfolioService(
		portfolio.NewUserRepository(conn, zerolog.Nop()),
		portfolio.NewPortfolioRepository(conn, zerolog.Nop()),
		portfolio.NewHoldingRepository(conn, zerolog.Nop()),
		portfolio.NewTransactionRepository(conn, zerolog.Nop()),
		nil,
		zerolog.Nop(),
	)

	user, err := s.CreateUser("Sun", "3 years")
	require.NoError(t, err)
	p, err := s.CreatePortfolio(user.ID, domain.Portfolio{Name: "core", RiskTolerance: domain.ToleranceBalanced, InvestmentGoal: "house", InitialCapital: 5000})
	require.NoError(t, err)
	_, err = s.AddHolding(user.ID, p.ID, domain.Holding{Symbol: "600519", Name: "Moutai", Category: domain.CategoryStock, Quantity: 10, CostPrice: 100, CurrentPrice: 120})
	require.NoError(t, err)
	_, err = s.AddHolding(user.ID, p.ID, domain.Holding{Symbol: "CASH", Name: "Cash", Category: domain.CategoryCash, Quantity: 1, CostPrice: 800, CurrentPrice: 800})
	require.NoError(t, err)
	return s, user.ID, p.ID
}

func TestGenerate_WithAnalysis(t *testing.T) {
	portfolios, userID, portfolioID := setupPortfolio(t)
	llm := testingutil.NewMockLLMClient("Stay the course.")
	s := NewService(portfolios, staticMarket{}, llm, domain.NewLabels("en"), "USD", zerolog.Nop())
	s.SetClock(func() time.Time { return time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC) })

	r, err := s.Generate(context.Background(), userID, portfolioID)
	require.NoError(t, err)
	assert.True(t, r.Analysed)

	md := r.Markdown
	assert.Contains(t, md, "# Investment Report")
	assert.Contains(t, md, "2025-05-04 10:00:00")
	assert.Contains(t, md, "- Name：Sun")
	assert.Contains(t, md, "### Portfolio：core")
	assert.Contains(t, md, "- Market value：$2,000.00")
	assert.Contains(t, md, "- Profit：$200.00")
	assert.Contains(t, md, "- Moutai (600519)")
	assert.Contains(t, md, "  - Profit rate：20.00%")
	assert.Contains(t, md, "- Shanghai Composite：3000.00 (1.20%)")
	assert.Contains(t, md, "- Shenzhen Component：N/A")
	assert.Contains(t, md, "## 6. Analysis\n\nStay the course.")

	prompt := llm.LastPrompt()
	assert.Contains(t, prompt, "Moutai (600519) - 市值：¥1200.00 - 盈亏率：20.00%")
	assert.Contains(t, prompt, "上证指数：3000.00 (1.20%)")
}

func TestGenerate_FallsBackWhenLLMFails(t *testing.T) {
	portfolios, userID, portfolioID := setupPortfolio(t)
	llm := testingutil.NewMockLLMClient("")
	llm.SetError(errors.New("quota"))
	s := NewService(portfolios, staticMarket{}, llm, domain.NewLabels("zh"), "CNY", zerolog.Nop())

	r, err := s.Generate(context.Background(), userID, portfolioID)
	require.NoError(t, err)
	assert.False(t, r.Analysed)
	assert.Contains(t, r.Markdown, "## 六、投资建议")
	assert.Contains(t, r.Markdown, "暂时无法生成智能分析")
	assert.NotContains(t, r.Markdown, "智能投资分析")
}

func TestGenerate_UnknownPortfolio(t *testing.T) {
	portfolios, userID, _ := setupPortfolio(t)
	s := NewService(portfolios, staticMarket{}, nil, domain.NewLabels("en"), "USD", zerolog.Nop())

	_, err := s.Generate(context.Background(), userID, 999)
	assert.ErrorIs(t, err, portfolio.ErrPortfolioNotFound)
}

func TestHTML(t *testing.T) {
	html, err := HTML("# Title\n\n- one\n- two\n\n| a | b |\n|---|---|\n| 1 | 2 |\n", "Report")
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Report</title>")
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<li>one</li>")
	assert.Contains(t, html, "<table>")
}
