// Package report renders a portfolio into a markdown investment report,
// optionally converted to HTML.
package report

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/market"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/risk"
	"github.com/aristath/finsight/internal/modules/strategy"
)

// Portfolios is the part of the portfolio service a report reads
type Portfolios interface {
	User(id int64) (*domain.User, error)
	Portfolio(userID, portfolioID int64) (*domain.Portfolio, error)
	Metrics(userID, portfolioID int64) (*portfolio.MetricsView, error)
	Assess(userID, portfolioID int64) (*domain.RiskAssessment, error)
	Strategy(userID, portfolioID int64) (*domain.InvestmentStrategy, error)
}

// MarketOverview supplies the market environment section
type MarketOverview interface {
	Overview(ctx context.Context) market.Overview
}

// Report is a rendered investment report
type Report struct {
	PortfolioID int64     `json:"portfolio_id"`
	Markdown    string    `json:"markdown"`
	Analysed    bool      `json:"analysed"` // false when the LLM section fell back
	GeneratedAt time.Time `json:"generated_at"`
}

// Service builds reports
type Service struct {
	portfolios Portfolios
	market     MarketOverview
	llm        domain.LLMClient
	labels     domain.Labels
	currency   string
	now        func() time.Time
	log        zerolog.Logger
}

// NewService creates a new report service. llm may be nil, in which case the
// analysis section always falls back.
func NewService(portfolios Portfolios, market MarketOverview, llm domain.LLMClient, labels domain.Labels, currency string, log zerolog.Logger) *Service {
	return &Service{
		portfolios: portfolios,
		market:     market,
		llm:        llm,
		labels:     labels,
		currency:   currency,
		now:        time.Now,
		log:        log.With().Str("service", "report").Logger(),
	}
}

// SetClock replaces the time source (tests)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// inputs is everything a report is rendered from
type inputs struct {
	user       *domain.User
	portfolio  *domain.Portfolio
	metrics    *portfolio.MetricsView
	assessment risk.AssessmentView
	strategy   strategy.View
	market     market.OverviewView
}

// Generate renders the report for one of the user's portfolios
func (s *Service) Generate(ctx context.Context, userID, portfolioID int64) (*Report, error) {
	in, err := s.collect(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var b strings.Builder
	s.writeHeader(&b, in, now)
	s.writePortfolio(&b, in)
	s.writeRisk(&b, in)
	s.writeStrategy(&b, in)
	s.writeMarket(&b, in)

	analysis, ok := s.analyse(ctx, in)
	if ok {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", s.t("analysis"), analysis)
	} else {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", s.t("fallback_title"), s.t("fallback"))
	}

	return &Report{
		PortfolioID: portfolioID,
		Markdown:    b.String(),
		Analysed:    ok,
		GeneratedAt: now,
	}, nil
}

func (s *Service) collect(ctx context.Context, userID, portfolioID int64) (*inputs, error) {
	user, err := s.portfolios.User(userID)
	if err != nil {
		return nil, err
	}
	p, err := s.portfolios.Portfolio(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	metrics, err := s.portfolios.Metrics(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.portfolios.Assess(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	recommendation, err := s.portfolios.Strategy(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	return &inputs{
		user:       user,
		portfolio:  p,
		metrics:    metrics,
		assessment: risk.Describe(*assessment, s.labels),
		strategy:   strategy.Describe(*recommendation, s.labels),
		market:     market.DescribeOverview(s.market.Overview(ctx), s.labels),
	}, nil
}

func (s *Service) t(key string) string {
	return phraseFor(s.labels, key)
}

func (s *Service) money(v float64) string {
	return FormatMoney(v, s.currency)
}

func (s *Service) writeHeader(b *strings.Builder, in *inputs, now time.Time) {
	fmt.Fprintf(b, "# %s\n\n", s.t("title"))
	fmt.Fprintf(b, "**%s：** %s\n\n", s.t("generated"), now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "## %s\n\n", s.t("user"))
	fmt.Fprintf(b, "- %s：%s\n", s.t("name"), orNA(in.user.Name))
	fmt.Fprintf(b, "- %s：%s\n", s.t("experience"), orNA(in.user.Experience))
}

func (s *Service) writePortfolio(b *strings.Builder, in *inputs) {
	p, m := in.portfolio, in.metrics

	fmt.Fprintf(b, "\n## %s\n\n", s.t("portfolio"))
	fmt.Fprintf(b, "### %s：%s\n\n", s.t("portfolio_name"), p.Name)
	fmt.Fprintf(b, "- %s：%s\n", s.t("tolerance"), s.labels.Tolerance(p.RiskTolerance))
	fmt.Fprintf(b, "- %s：%s\n", s.t("goal"), orNA(p.InvestmentGoal))
	fmt.Fprintf(b, "- %s：%s\n", s.t("value"), s.money(m.TotalValue))
	fmt.Fprintf(b, "- %s：%s\n", s.t("cost"), s.money(m.TotalCost))
	fmt.Fprintf(b, "- %s：%s\n", s.t("profit"), s.money(m.TotalValue-m.TotalCost))
	fmt.Fprintf(b, "- %s：%s\n", s.t("return"), FormatPercent(m.TotalReturn))

	if len(m.Allocation) > 0 {
		fmt.Fprintf(b, "\n#### %s\n\n", s.t("allocation"))
		for _, c := range sortedCategories(m.Allocation) {
			fmt.Fprintf(b, "- %s：%s\n", s.labels.Category(c), FormatPercent(m.Allocation[c]))
		}
	}

	fmt.Fprintf(b, "\n#### %s\n\n", s.t("holdings"))
	if len(p.Holdings) == 0 {
		fmt.Fprintf(b, "%s\n", s.t("no_holdings"))
		return
	}
	for _, h := range p.Holdings {
		fmt.Fprintf(b, "- %s (%s)\n", orNA(h.Name), h.Symbol)
		fmt.Fprintf(b, "  - %s：%d\n", s.t("quantity"), h.Quantity)
		fmt.Fprintf(b, "  - %s：%s\n", s.t("cost_price"), s.money(h.CostPrice))
		fmt.Fprintf(b, "  - %s：%s\n", s.t("current_price"), s.money(h.CurrentPrice))
		fmt.Fprintf(b, "  - %s：%s\n", s.t("market_value"), s.money(h.MarketValue()))
		fmt.Fprintf(b, "  - %s：%s\n", s.t("holding_profit"), s.money(h.MarketValue()-h.CostValue()))
		fmt.Fprintf(b, "  - %s：%s\n", s.t("profit_rate"), FormatPercent(profitRate(h)))
	}
}

func (s *Service) writeRisk(b *strings.Builder, in *inputs) {
	a := in.assessment

	fmt.Fprintf(b, "\n## %s\n\n", s.t("risk"))
	fmt.Fprintf(b, "- %s：%.2f\n", s.t("risk_score"), a.Score)
	fmt.Fprintf(b, "- %s：%s\n", s.t("risk_level"), a.LevelLabel)
	if len(a.Factors) > 0 {
		fmt.Fprintf(b, "\n**%s**\n\n", s.t("factors"))
		for _, f := range a.Factors {
			fmt.Fprintf(b, "- %s\n", f.Message)
		}
	}
	if len(a.Suggestions) > 0 {
		fmt.Fprintf(b, "\n**%s**\n\n", s.t("suggestions"))
		for _, sg := range a.Suggestions {
			fmt.Fprintf(b, "- %s\n", sg.Message)
		}
	}
}

func (s *Service) writeStrategy(b *strings.Builder, in *inputs) {
	v := in.strategy

	fmt.Fprintf(b, "\n## %s\n\n", s.t("strategy"))
	fmt.Fprintf(b, "- %s：%s\n", s.t("strategy_type"), v.Name)
	fmt.Fprintf(b, "- %s：%s\n", s.t("suitability"), FormatPercent(v.Suitability))
	fmt.Fprintf(b, "- %s：%s\n", s.t("expected"), FormatPercent(v.ExpectedReturn))
	fmt.Fprintf(b, "- %s：%s\n", s.t("risk_level"), v.RiskLabel)
	for _, a := range v.Advice {
		fmt.Fprintf(b, "  - %s\n", a)
	}
}

func (s *Service) writeMarket(b *strings.Builder, in *inputs) {
	m := in.market

	fmt.Fprintf(b, "\n## %s\n\n", s.t("market"))
	fmt.Fprintf(b, "- %s：%s\n", s.t("sh_index"), m.Shanghai)
	fmt.Fprintf(b, "- %s：%s\n", s.t("sz_index"), m.Shenzhen)
	fmt.Fprintf(b, "- %s：%s\n", s.t("cyb_index"), m.ChiNext)
	fmt.Fprintf(b, "- %s：%s\n", s.t("sentiment"), m.SentimentLabel)
}

// analyse asks the LLM for the closing section. ok is false when there is
// no LLM or the call failed.
func (s *Service) analyse(ctx context.Context, in *inputs) (string, bool) {
	if s.llm == nil {
		return "", false
	}
	answer, err := s.llm.Complete(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: Prompt(in.user, in.portfolio, in.metrics, in.market)}})
	if err != nil {
		s.log.Warn().Err(err).Int64("portfolio_id", in.portfolio.ID).Msg("Report analysis failed, using fallback text")
		return "", false
	}
	return answer, true
}

// Prompt renders the report analysis prompt
func Prompt(u *domain.User, p *domain.Portfolio, m *portfolio.MetricsView, ov market.OverviewView) string {
	var b strings.Builder
	b.WriteString("请基于以下投资数据进行分析：\n\n")
	fmt.Fprintf(&b, "用户信息：\n- 姓名：%s\n- 投资经验：%s\n\n", orNA(u.Name), orNA(u.Experience))
	fmt.Fprintf(&b, "投资组合概况：\n- 总市值：¥%.2f\n- 总收益：¥%.2f\n- 总收益率：%.2f%%\n\n",
		m.TotalValue, m.TotalValue-m.TotalCost, m.TotalReturn*100)

	b.WriteString("资产配置：\n")
	for _, h := range p.Holdings {
		fmt.Fprintf(&b, "- %s (%s) - 市值：¥%.2f - 盈亏率：%.2f%%\n", orNA(h.Name), h.Symbol, h.MarketValue(), profitRate(h)*100)
	}

	fmt.Fprintf(&b, "\n市场环境：\n- 上证指数：%s\n- 深证成指：%s\n- 创业板指：%s\n- 市场情绪：%s\n",
		ov.Shanghai, ov.Shenzhen, ov.ChiNext, ov.SentimentLabel)

	b.WriteString(`
请从以下几个方面进行分析：
1. 投资组合表现评估
2. 资产配置合理性分析
3. 风险控制建议
4. 市场环境对投资组合的影响
5. 具体的投资建议和调整方案

注意：请用专业、客观的语气进行分析，并提供具体的建议。
`)
	return b.String()
}

// HTML converts report markdown into an HTML document
func HTML(markdown, title string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to render report html: %w", err)
	}

	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		title, body.String()), nil
}

// Title returns the localised report title
func (s *Service) Title() string {
	return s.t("title")
}

func profitRate(h domain.Holding) float64 {
	if h.CostPrice == 0 {
		return 0
	}
	return (h.CurrentPrice - h.CostPrice) / h.CostPrice
}

func sortedCategories(m map[domain.Category]float64) []domain.Category {
	out := make([]domain.Category, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return market.NotAvailable
	}
	return s
}
