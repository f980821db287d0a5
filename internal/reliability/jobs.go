package reliability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// BackupJob uploads a backup and rotates old ones
type BackupJob struct {
	service       *BackupService
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates a scheduled backup job
func NewBackupJob(service *BackupService, retentionDays int, timeout time.Duration, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		timeout:       timeout,
		log:           log.With().Str("job", "database_backup").Logger(),
	}
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	if _, err := j.service.CreateAndUpload(ctx); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	// a failed rotation leaves extra archives behind, nothing worse
	if _, err := j.service.Rotate(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "database_backup"
}

// HealthChecker runs a database integrity check
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	SizeBytes(ctx context.Context) (int64, error)
}

// Disk space thresholds in free gigabytes
const (
	criticalFreeGB = 0.5
	lowFreeGB      = 5.0
)

// ErrDiskCritical is returned when free space drops below criticalFreeGB
var ErrDiskCritical = errors.New("insufficient disk space")

// MaintenanceJob checks database integrity and free disk space
type MaintenanceJob struct {
	db      HealthChecker
	dataDir string
	usage   func(path string) (*disk.UsageStat, error)
	log     zerolog.Logger
}

// NewMaintenanceJob creates the daily maintenance job
func NewMaintenanceJob(db HealthChecker, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:      db,
		dataDir: dataDir,
		usage:   disk.Usage,
		log:     log.With().Str("job", "maintenance").Logger(),
	}
}

// Run executes the maintenance checks
func (j *MaintenanceJob) Run() error {
	ctx := context.Background()
	start := time.Now()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("Database integrity check failed")
		return err
	}

	if size, err := j.db.SizeBytes(ctx); err == nil {
		j.log.Info().Float64("size_mb", float64(size)/1024/1024).Msg("Database size")
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().Dur("duration_ms", time.Since(start)).Msg("Maintenance completed")
	return nil
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

func (j *MaintenanceJob) checkDiskSpace() error {
	stat, err := j.usage(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	freeGB := float64(stat.Free) / 1e9
	j.log.Debug().Float64("available_gb", freeGB).Float64("used_percent", stat.UsedPercent).Msg("Disk space check")

	switch {
	case freeGB < criticalFreeGB:
		j.log.Error().Float64("available_gb", freeGB).Msg("Critically low disk space")
		return fmt.Errorf("%w: only %.2f GB free", ErrDiskCritical, freeGB)
	case freeGB < lowFreeGB:
		j.log.Warn().Float64("available_gb", freeGB).Msg("Disk space running low")
	}
	return nil
}
