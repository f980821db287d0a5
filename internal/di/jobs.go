package di

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/clientdata"
	"github.com/aristath/finsight/internal/config"
	"github.com/aristath/finsight/internal/modules/advisor"
	"github.com/aristath/finsight/internal/reliability"
	"github.com/aristath/finsight/internal/scheduler"
)

// Housekeeping schedules. These always run; feature jobs stay off unless
// their schedule is configured.
const (
	walCheckpointSchedule = "0 0 * * * *"
	cleanupSchedule       = "0 30 4 * * *"
	chatPruneSchedule     = "0 */30 * * * *"

	priceRefreshTimeout = 5 * time.Minute
	backupTimeout       = 15 * time.Minute
)

// RegisterJobs registers background jobs on the container scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	sched := container.Scheduler

	housekeeping := []struct {
		schedule string
		job      scheduler.Job
	}{
		{walCheckpointSchedule, scheduler.NewWALCheckpointJob(container.DB.Conn(), log)},
		{cleanupSchedule, clientdata.NewCleanupJob(container.ClientDataRepo, log)},
		{chatPruneSchedule, advisor.NewPruneJob(container.ChatStore, advisor.DefaultMaxIdle, log)},
	}
	for _, h := range housekeeping {
		if err := sched.AddJob(h.schedule, h.job); err != nil {
			return fmt.Errorf("failed to register %s job: %w", h.job.Name(), err)
		}
	}

	if err := sched.AddOptional(cfg.PriceRefreshSchedule,
		scheduler.NewPriceRefreshJob(container.PortfolioService, priceRefreshTimeout, log)); err != nil {
		return fmt.Errorf("failed to register price refresh job: %w", err)
	}

	if err := sched.AddOptional(cfg.MaintenanceSchedule,
		reliability.NewMaintenanceJob(container.DB, cfg.DataDir, log)); err != nil {
		return fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if container.BackupService.Enabled() {
		if err := sched.AddOptional(cfg.Backup.Schedule,
			reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, backupTimeout, log)); err != nil {
			return fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	log.Info().Strs("jobs", sched.Jobs()).Msg("Background jobs registered")

	return nil
}
