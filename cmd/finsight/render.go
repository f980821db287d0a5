package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/analysis"
	"github.com/aristath/finsight/internal/modules/goals"
	"github.com/aristath/finsight/internal/modules/market"
	"github.com/aristath/finsight/internal/modules/report"
	"github.com/aristath/finsight/internal/modules/risk"
	"github.com/aristath/finsight/internal/modules/strategy"
)

func assessmentMarkdown(portfolio string, v risk.AssessmentView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Risk: %s\n\n", portfolio)
	fmt.Fprintf(&b, "**Level:** %s  \n**Score:** %.2f\n\n", v.LevelLabel, v.Score)

	if len(v.Factors) > 0 {
		b.WriteString("## Factors\n\n")
		for _, f := range v.Factors {
			fmt.Fprintf(&b, "- %s\n", f.Message)
		}
		b.WriteString("\n")
	}

	if len(v.Suggestions) > 0 {
		b.WriteString("## Suggestions\n\n")
		for _, s := range v.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func strategyMarkdown(v strategy.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", v.Name)
	fmt.Fprintf(&b, "| Risk | Expected return | Suitability |\n|---|---|---|\n| %s | %s | %.2f |\n\n",
		v.RiskLabel, report.FormatPercent(v.ExpectedReturn), v.Suitability)

	for _, advice := range v.Advice {
		fmt.Fprintf(&b, "- %s\n", advice)
	}

	return b.String()
}

func goalsMarkdown(r goals.Report, adjustments []domain.GoalAdjustment, labels domain.Labels, currency string) string {
	var b strings.Builder

	b.WriteString("# Goals\n\n")
	if r.TotalGoals == 0 {
		b.WriteString("No goals yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d goals, %s of %s saved (%s)\n\n",
		r.TotalGoals,
		report.FormatMoney(r.TotalCurrent, currency),
		report.FormatMoney(r.TotalTarget, currency),
		report.FormatPercent(r.TotalProgress))

	b.WriteString("| Goal | Progress | Remaining | Days left | Monthly saving | Risk |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, g := range r.Goals {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
			g.Name,
			report.FormatPercent(g.Progress),
			report.FormatMoney(g.RemainingAmount, currency),
			g.DaysRemaining,
			report.FormatMoney(g.MonthlySaving, currency),
			labels.Tolerance(g.RiskTolerance))
	}
	b.WriteString("\n")

	if len(r.RiskDistribution) > 0 {
		tolerances := make([]domain.RiskTolerance, 0, len(r.RiskDistribution))
		for t := range r.RiskDistribution {
			tolerances = append(tolerances, t)
		}
		sort.Slice(tolerances, func(i, j int) bool { return tolerances[i] < tolerances[j] })

		b.WriteString("## Risk distribution\n\n")
		for _, t := range tolerances {
			fmt.Fprintf(&b, "- %s: %s\n", labels.Tolerance(t), report.FormatPercent(r.RiskDistribution[t]))
		}
		b.WriteString("\n")
	}

	if len(adjustments) > 0 {
		b.WriteString("## Adjustments\n\n")
		for _, adj := range adjustments {
			fmt.Fprintf(&b, "- %s\n", labels.Adjustment(adj))
		}
	}

	return b.String()
}

func stocksMarkdown(stocks []domain.StockBasic) string {
	if len(stocks) == 0 {
		return "No matching stocks.\n"
	}

	var b strings.Builder
	b.WriteString("| Code | Name | Industry | Market | Listed |\n|---|---|---|---|---|\n")
	for _, s := range stocks {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", s.TSCode, s.Name, s.Industry, s.Market, s.ListDate)
	}
	return b.String()
}

func overviewMarkdown(v market.OverviewView) string {
	var b strings.Builder

	b.WriteString("# Market overview\n\n")
	fmt.Fprintf(&b, "**Sentiment:** %s\n\n", v.SentimentLabel)

	b.WriteString("| Index | Level |\n|---|---|\n")
	fmt.Fprintf(&b, "| SSE Composite | %s |\n", v.Shanghai)
	fmt.Fprintf(&b, "| SZSE Component | %s |\n", v.Shenzhen)
	fmt.Fprintf(&b, "| ChiNext | %s |\n\n", v.ChiNext)

	if len(v.Indices) > 0 {
		b.WriteString("| Name | Current | Change |\n|---|---|---|\n")
		for _, q := range v.Indices {
			fmt.Fprintf(&b, "| %s | %.2f | %+.2f%% |\n", q.Name, q.Current, q.ChangePercent)
		}
		b.WriteString("\n")
	}

	if !v.AsOf.IsZero() {
		fmt.Fprintf(&b, "_As of %s_\n", v.AsOf.Format("2006-01-02 15:04"))
	}

	return b.String()
}

// projectionMarkdown lists the curve yearly plus the final month
func projectionMarkdown(p analysis.Plan, currency string) string {
	var b strings.Builder

	b.WriteString("# Investment projection\n\n")
	b.WriteString("| Total invested | Future value | Profit | Annualised |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %.2f%% |\n\n",
		report.FormatMoney(p.TotalInvestment, currency),
		report.FormatMoney(p.FutureValue, currency),
		report.FormatMoney(p.ExpectedProfit, currency),
		p.AnnualizedReturn)

	b.WriteString("| Month | Value |\n|---|---|\n")
	for i, point := range p.Curve {
		if point.Month%12 != 0 && i != len(p.Curve)-1 {
			continue
		}
		fmt.Fprintf(&b, "| %d | %s |\n", point.Month, report.FormatMoney(point.Value, currency))
	}
	b.WriteString("\n")

	for _, advice := range p.Advice {
		fmt.Fprintf(&b, "- %s\n", advice)
	}

	return b.String()
}
