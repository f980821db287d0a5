package scheduler

import (
	"context"
	"time"

	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// PriceRefresher refreshes current prices across all active portfolios
type PriceRefresher interface {
	RefreshAll(ctx context.Context) ([]portfolio.RefreshResult, error)
}

// PriceRefreshJob pulls fresh quotes for every active portfolio
type PriceRefreshJob struct {
	refresher PriceRefresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewPriceRefreshJob creates a price refresh job. timeout bounds one full run.
func NewPriceRefreshJob(refresher PriceRefresher, timeout time.Duration, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		refresher: refresher,
		timeout:   timeout,
		log:       log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name returns the job name
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run refreshes all active portfolios
func (j *PriceRefreshJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	results, err := j.refresher.RefreshAll(ctx)
	if err != nil {
		return err
	}

	updated, failed := 0, 0
	for _, r := range results {
		updated += r.Updated
		failed += len(r.Failed)
	}

	j.log.Info().
		Int("portfolios", len(results)).
		Int("updated", updated).
		Int("failed", failed).
		Msg("Price refresh completed")

	return nil
}
