// Package fundamentals turns the provider's financial indicator table into
// grouped, display-ready figures and LLM commentary prompts, and looks up
// company profiles.
package fundamentals

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// Errors returned by the service
var (
	ErrInvalidSymbol = errors.New("symbol must be a six-digit A-share code, optionally suffixed .SH or .SZ")
	ErrInvalidPeriod = errors.New("period must be a quarter-end date in YYYYMMDD form")
	ErrNoData        = errors.New("no financial data for symbol and period")
	ErrUnavailable   = errors.New("fundamentals provider unavailable")
)

var symbolPattern = regexp.MustCompile(`^[0-9]{6}(\.(SH|SZ))?$`)

// Figure is one rendered indicator value
type Figure struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
}

// Group is a titled list of figures
type Group struct {
	Name    string   `json:"name"`
	Figures []Figure `json:"figures"`
}

// Report is the grouped indicator table for one symbol and period
type Report struct {
	Symbol         string    `json:"symbol"`
	Period         string    `json:"period"`
	AnnouncedOn    string    `json:"announced_on,omitempty"`
	Groups         []Group   `json:"groups"`
	MissingColumns []string  `json:"missing_columns,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Service answers fundamentals queries
type Service struct {
	provider domain.FundamentalsProvider
	llm      domain.LLMClient
	labels   domain.Labels
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a fundamentals service
func NewService(provider domain.FundamentalsProvider, llm domain.LLMClient, labels domain.Labels, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		llm:      llm,
		labels:   labels,
		log:      log.With().Str("service", "fundamentals").Logger(),
		now:      time.Now,
	}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// DefaultPeriod picks the most recent report expected to be published by now:
// the prior annual report through April, Q1 in May, the interim report in
// June to August and Q3 from September on.
func DefaultPeriod(now time.Time) string {
	year := now.Year()
	switch m := now.Month(); {
	case m <= time.April:
		return fmt.Sprintf("%d1231", year-1)
	case m == time.May:
		return fmt.Sprintf("%d0331", year)
	case m <= time.August:
		return fmt.Sprintf("%d0630", year)
	default:
		return fmt.Sprintf("%d0930", year)
	}
}

// ValidatePeriod checks the YYYYMMDD quarter-end form
func ValidatePeriod(period string) error {
	t, err := time.Parse("20060102", period)
	if err == nil {
		switch t.Format("0102") {
		case "0331", "0630", "0930", "1231":
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}

// Indicators fetches and groups the indicator table. An empty period selects DefaultPeriod.
func (s *Service) Indicators(ctx context.Context, symbol, period string) (*Report, error) {
	table, period, err := s.fetch(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	return s.report(table, period), nil
}

// Commentary asks the LLM for an analysis of the indicator table
func (s *Service) Commentary(ctx context.Context, symbol, period string) (string, error) {
	if s.llm == nil {
		return "", ErrUnavailable
	}
	table, period, err := s.fetch(ctx, symbol, period)
	if err != nil {
		return "", err
	}

	reply, err := s.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: Prompt(symbol, period, table.Latest())},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reply, nil
}

// Company returns the listing and company profile of symbol
func (s *Service) Company(ctx context.Context, symbol string) (*domain.CompanyInfo, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	if s.provider == nil {
		return nil, ErrUnavailable
	}

	info, err := s.provider.CompanyInfo(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch company profile")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return info, nil
}

func (s *Service) fetch(ctx context.Context, symbol, period string) (*domain.FinancialIndicators, string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(symbol) {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	if period == "" {
		period = DefaultPeriod(s.now())
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, "", err
	}
	if s.provider == nil {
		return nil, "", ErrUnavailable
	}

	table, err := s.provider.FinancialIndicators(ctx, symbol, period)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Str("period", period).Msg("Failed to fetch financial indicators")
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if table.Latest() == nil {
		return nil, "", ErrNoData
	}
	return table, period, nil
}

func (s *Service) report(table *domain.FinancialIndicators, period string) *Report {
	row := table.Latest()
	r := &Report{
		Symbol:         table.Symbol,
		Period:         period,
		AnnouncedOn:    row.AnnDate,
		Groups:         make([]Group, 0, len(groups)),
		MissingColumns: table.MissingColumns,
		FetchedAt:      s.now().UTC(),
	}

	en := s.labels.Locale() == domain.LocaleEN
	for _, g := range groups {
		out := Group{Name: g.ZH, Figures: make([]Figure, 0, len(g.Indicators))}
		if en {
			out.Name = g.EN
		}
		for _, ind := range g.Indicators {
			f := Figure{Code: ind.Code, Name: ind.ZH, Value: row.Values[ind.Code]}
			if en {
				f.Name = ind.EN
			}
			f.Display = display(ind.Code, f.Value, ind.Percent, en)
			out.Figures = append(out.Figures, f)
		}
		r.Groups = append(r.Groups, out)
	}
	return r
}

// display formats a value in the unit the company reported it in
func display(code string, v *float64, percent, en bool) string {
	switch {
	case v == nil && en:
		return "N/A"
	case v == nil:
		return "暂无数据"
	}

	value := *v
	if rescaled(code) {
		value *= 100
	}
	if percent {
		return fmt.Sprintf("%.2f%%", value)
	}
	return fmt.Sprintf("%.2f", value)
}

// promptFields are the figures quoted in the commentary prompt
var promptFields = []struct {
	code, name string
	percent    bool
}{
	{"eps", "基本每股收益", false},
	{"dt_eps", "稀释每股收益", false},
	{"bps", "每股净资产", false},
	{"roe", "净资产收益率", true},
	{"roa", "总资产报酬率", true},
	{"grossprofit_margin", "销售毛利率", true},
	{"netprofit_margin", "销售净利率", true},
	{"debt_to_assets", "资产负债率", true},
	{"current_ratio", "流动比率", false},
	{"quick_ratio", "速动比率", false},
	{"inv_turn", "存货周转率", false},
	{"ar_turn", "应收账款周转率", false},
	{"assets_turn", "总资产周转率", false},
	{"ocf_to_or", "经营活动现金流/营业收入", true},
}

// Prompt renders an indicator row as a financial analysis request
func Prompt(symbol, period string, row *domain.IndicatorRow) string {
	var sb strings.Builder
	sb.WriteString("请基于以下财务数据进行分析：\n\n")
	fmt.Fprintf(&sb, "股票代码：%s\n", symbol)
	if len(period) == 8 {
		fmt.Fprintf(&sb, "报告期：%s年%s月%s日\n\n", period[:4], period[4:6], period[6:])
	}

	sb.WriteString("主要财务指标：\n")
	for _, f := range promptFields {
		var v *float64
		if row != nil {
			v = row.Values[f.code]
		}
		value := "N/A"
		if v != nil {
			value = display(f.code, v, f.percent, false)
		}
		fmt.Fprintf(&sb, "- %s：%s\n", f.name, value)
	}

	sb.WriteString(`
请从以下几个方面进行分析：
1. 盈利能力分析
2. 偿债能力分析
3. 运营能力分析
4. 成长性分析
5. 现金流分析
6. 投资建议

注意：请用专业、客观的语气进行分析，并提供具体的建议。`)
	return sb.String()
}
