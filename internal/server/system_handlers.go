package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/finsight/internal/reliability"
)

// SystemDB is the database surface used by the system endpoints
type SystemDB interface {
	HealthCheck(ctx context.Context) error
	SizeBytes(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) error
}

// Backups creates and lists database backups
type Backups interface {
	Enabled() bool
	CreateAndUpload(ctx context.Context) (*reliability.BackupInfo, error)
	List(ctx context.Context) ([]reliability.BackupInfo, error)
}

// JobLister reports registered background jobs
type JobLister interface {
	Jobs() []string
}

// SystemHandlers serves status and maintenance endpoints
type SystemHandlers struct {
	db        SystemDB
	backups   Backups
	jobs      JobLister
	startedAt time.Time
	stats     func() (float64, float64)
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(db SystemDB, backups Backups, jobs JobLister, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		db:        db,
		backups:   backups,
		jobs:      jobs,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
	h.stats = h.getSystemStats
	return h
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status         string   `json:"status"` // "healthy" or "degraded"
	UptimeSeconds  int64    `json:"uptime_seconds"`
	CPUPercent     float64  `json:"cpu_percent"`
	RAMPercent     float64  `json:"ram_percent"`
	DatabaseSizeMB float64  `json:"database_size_mb"`
	Goroutines     int      `json:"goroutines"`
	Jobs           []string `json:"jobs"`
	BackupsEnabled bool     `json:"backups_enabled"`
	CheckedAt      string   `json:"checked_at"`
}

// HandleSystemStatus returns process, host and database health
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	response := SystemStatusResponse{
		Status:         "healthy",
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		Goroutines:     runtime.NumGoroutine(),
		Jobs:           h.jobs.Jobs(),
		BackupsEnabled: h.backups.Enabled(),
		CheckedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	response.CPUPercent, response.RAMPercent = h.stats()

	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Database health check failed")
		response.Status = "degraded"
	}

	size, err := h.db.SizeBytes(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read database size")
	}
	response.DatabaseSizeMB = float64(size) / 1024 / 1024

	writeJSON(w, http.StatusOK, response)
}

// HandleListBackups lists uploaded backups, newest first
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backups.List(r.Context())
	if err != nil {
		h.backupError(w, err, "Failed to list backups")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"backups": backups})
}

// HandleTriggerBackup uploads a backup immediately
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	info, err := h.backups.CreateAndUpload(r.Context())
	if err != nil {
		h.backupError(w, err, "Backup failed")
		return
	}

	h.log.Info().Str("key", info.Key).Msg("Manual backup completed")
	writeJSON(w, http.StatusCreated, info)
}

func (h *SystemHandlers) backupError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, reliability.ErrBackupDisabled) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.log.Error().Err(err).Msg(message)
	writeError(w, http.StatusInternalServerError, message)
}

// HandleClearData wipes every user table. Requires ?confirm=true.
func (h *SystemHandlers) HandleClearData(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "pass confirm=true to delete all data")
		return
	}

	if err := h.db.ClearAll(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear data")
		writeError(w, http.StatusInternalServerError, "Failed to clear data")
		return
	}

	h.log.Warn().Msg("All user data cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms keeps the status call responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
