package di

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/clients/deepseek"
	"github.com/aristath/finsight/internal/clients/gemini"
	"github.com/aristath/finsight/internal/clients/sina"
	"github.com/aristath/finsight/internal/clients/tushare"
	"github.com/aristath/finsight/internal/config"
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

// InitializeServices creates external clients and every domain service
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Labels = domain.NewLabels(cfg.Locale)

	container.QuoteClient = sina.NewClient(
		cfg.Market.SinaAPIURL,
		cfg.Market.SinaReferer,
		cfg.HTTPTimeout,
		container.ClientDataRepo,
		log,
	)
	container.FundamentalsClient = tushare.NewClient(
		cfg.Fundamentals.TushareAPIURL,
		cfg.Fundamentals.TushareToken,
		cfg.HTTPTimeout,
		container.ClientDataRepo,
		log,
	)
	container.LLMClient = newLLMClient(ctx, cfg, log)

	container.PortfolioService = portfolio.NewPortfolioService(
		container.UserRepo,
		container.PortfolioRepo,
		container.HoldingRepo,
		container.TransactionRepo,
		container.QuoteClient,
		log,
	)

	container.GoalService = goals.NewService(container.GoalRepo, log)

	container.MarketService = market.NewService(
		container.QuoteClient,
		container.FundamentalsClient,
		container.LLMClient,
		log,
	)

	container.FundamentalsService = fundamentals.NewService(
		container.FundamentalsClient,
		container.LLMClient,
		container.Labels,
		log,
	)

	container.AnalysisService = analysis.NewService(
		container.ProfitRepo,
		container.ArchiveRepo,
		container.Labels,
		log,
	)

	container.ChatStore = advisor.NewStore()
	container.AdvisorService = advisor.NewService(
		container.ChatStore,
		container.LLMClient,
		container.PortfolioService,
		container.Labels,
		log,
	)

	container.ReportService = report.NewService(
		container.PortfolioService,
		container.MarketService,
		container.LLMClient,
		container.Labels,
		cfg.Currency,
		log,
	)

	backupService, err := newBackupService(ctx, container, cfg, log)
	if err != nil {
		return err
	}
	container.BackupService = backupService

	container.Scheduler = scheduler.New(log)

	log.Info().
		Str("llm_provider", cfg.LLM.Provider).
		Str("locale", string(container.Labels.Locale())).
		Bool("backups", backupService.Enabled()).
		Msg("Services initialized")

	return nil
}

// newLLMClient picks the configured provider. A Gemini provider without a key
// falls back to DeepSeek, whose client reports the missing key per call.
func newLLMClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) domain.LLMClient {
	if cfg.LLM.Provider == config.ProviderGemini {
		client, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey, log, gemini.WithModel(cfg.LLM.GeminiModel))
		if err == nil {
			return client
		}
		log.Warn().Err(err).Msg("Gemini client unavailable, falling back to DeepSeek")
	}

	return deepseek.NewClient(
		cfg.LLM.DeepSeekAPIURL,
		cfg.LLM.DeepSeekAPIKey,
		cfg.LLM.DeepSeekModel,
		cfg.HTTPTimeout,
		log,
	)
}

// newBackupService returns a disabled service when no bucket is configured
func newBackupService(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) (*reliability.BackupService, error) {
	var store reliability.ObjectStore
	if cfg.Backup.Enabled() {
		client, err := reliability.NewS3Client(ctx, cfg.Backup, log)
		if err != nil {
			return nil, err
		}
		store = client
	}

	return reliability.NewBackupService(store, container.DB, cfg.Backup.Prefix, cfg.DataDir, log), nil
}
