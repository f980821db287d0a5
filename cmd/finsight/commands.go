package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/analysis"
	"github.com/aristath/finsight/internal/modules/market"
	"github.com/aristath/finsight/internal/modules/risk"
	"github.com/aristath/finsight/internal/modules/strategy"
)

func newAssessCmd(a *app) *cobra.Command {
	var portfolioID int64

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess the risk of a portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.wire(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			userID, err := a.user(c)
			if err != nil {
				return err
			}

			p, err := c.PortfolioService.Portfolio(userID, portfolioID)
			if err != nil {
				return err
			}
			assessment, err := c.PortfolioService.Assess(userID, portfolioID)
			if err != nil {
				return err
			}

			return a.render(assessmentMarkdown(p.Name, risk.Describe(*assessment, a.labels())))
		},
	}

	cmd.Flags().Int64Var(&portfolioID, "portfolio", 0, "portfolio id")
	_ = cmd.MarkFlagRequired("portfolio")
	return cmd
}

func newStrategyCmd(a *app) *cobra.Command {
	var score float64

	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Recommend a strategy for a risk score",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := strategy.Describe(strategy.Recommend(score, time.Now()), a.labels())
			return a.render(strategyMarkdown(view))
		},
	}

	cmd.Flags().Float64Var(&score, "score", 0, "risk score in [0, 1]")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}

func newGoalsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Savings goals",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Progress of every goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.wire(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			userID, err := a.user(c)
			if err != nil {
				return err
			}

			report, err := c.GoalService.Report(userID)
			if err != nil {
				return err
			}
			adjustments, err := c.GoalService.Adjustments(userID)
			if err != nil {
				return err
			}

			return a.render(goalsMarkdown(*report, adjustments, a.labels(), a.currency()))
		},
	})

	return cmd
}

func newMarketCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "A-share market data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "overview",
		Short: "Main indices and sentiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.wire(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			o := c.MarketService.Overview(cmd.Context())
			return a.render(overviewMarkdown(market.DescribeOverview(o, a.labels())))
		},
	})

	var (
		exchange string
		limit    int
	)
	stocks := &cobra.Command{
		Use:   "stocks [query]",
		Short: "Search listed stocks by code, name or industry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.wire(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			list, err := c.MarketService.Stocks(cmd.Context(), query, exchange, limit)
			if err != nil {
				return err
			}
			return a.render(stocksMarkdown(list))
		},
	}
	stocks.Flags().StringVar(&exchange, "exchange", "", "SSE or SZSE (default both)")
	stocks.Flags().IntVar(&limit, "limit", market.DefaultStockLimit, "maximum rows")
	cmd.AddCommand(stocks)

	return cmd
}

func newProjectCmd(a *app) *cobra.Command {
	var (
		in        analysis.ProjectionInput
		tolerance string
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the growth of regular investing",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseRiskTolerance(tolerance)
			if err != nil {
				return err
			}
			in.RiskTolerance = t

			if !save {
				p, err := analysis.Project(in)
				if err != nil {
					return err
				}
				return a.render(projectionMarkdown(analysis.Plan{Projection: p, Advice: a.labels().ProjectionAdvice(t)}, a.currency()))
			}

			c, err := a.wire(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			userID, err := a.user(c)
			if err != nil {
				return err
			}
			plan, err := c.AnalysisService.Project(userID, in)
			if err != nil {
				return err
			}
			return a.render(projectionMarkdown(*plan, a.currency()))
		},
	}

	cmd.Flags().Float64Var(&in.InitialCapital, "initial", 0, "initial capital")
	cmd.Flags().IntVar(&in.Months, "months", 12, "investment period in months")
	cmd.Flags().Float64Var(&in.ExpectedReturn, "rate", 8, "expected annual return in percent")
	cmd.Flags().Float64Var(&in.MonthlyInvestment, "monthly", 0, "monthly contribution")
	cmd.Flags().StringVar(&tolerance, "tolerance", "balanced", "conservative, balanced or aggressive")
	cmd.Flags().BoolVar(&save, "save", false, "store the projection for the current user")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var portfolioID int64

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the investment report of a portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.wire(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			userID, err := a.user(c)
			if err != nil {
				return err
			}

			rep, err := c.ReportService.Generate(cmd.Context(), userID, portfolioID)
			if err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}
			return a.render(rep.Markdown)
		},
	}

	cmd.Flags().Int64Var(&portfolioID, "portfolio", 0, "portfolio id")
	_ = cmd.MarkFlagRequired("portfolio")
	return cmd
}
