// Package di provides dependency injection type definitions.
//
// Container holds every long-lived dependency of finsight and is the single
// source of truth handed to the HTTP server and the CLI.
package di

import (
	"github.com/aristath/finsight/internal/clientdata"
	"github.com/aristath/finsight/internal/clients/sina"
	"github.com/aristath/finsight/internal/clients/tushare"
	"github.com/aristath/finsight/internal/database"
	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/internal/modules/advisor"
	"github.com/aristath/finsight/internal/modules/analysis"
	"github.com/aristath/finsight/internal/modules/fundamentals"
	"github.com/aristath/finsight/internal/modules/goals"
	"github.com/aristath/finsight/internal/modules/market"
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/modules/report"
	"github.com/aristath/finsight/internal/reliability"
	"github.com/aristath/finsight/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Storage
	DB             *database.DB
	ClientDataRepo *clientdata.Repository

	// Repositories
	UserRepo        *portfolio.UserRepository
	PortfolioRepo   *portfolio.PortfolioRepository
	HoldingRepo     *portfolio.HoldingRepository
	TransactionRepo *portfolio.TransactionRepository
	GoalRepo        *goals.Repository
	ProfitRepo      *analysis.ProfitRepository
	ArchiveRepo     *analysis.ArchiveRepository

	// External clients
	QuoteClient        *sina.Client
	FundamentalsClient *tushare.Client
	LLMClient          domain.LLMClient

	Labels domain.Labels

	// Services
	PortfolioService    *portfolio.PortfolioService
	GoalService         *goals.Service
	MarketService       *market.Service
	FundamentalsService *fundamentals.Service
	AnalysisService     *analysis.Service
	ChatStore           *advisor.Store
	AdvisorService      *advisor.Service
	ReportService       *report.Service
	BackupService       *reliability.BackupService

	Scheduler *scheduler.Scheduler
}

// Close releases the database connection
func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
