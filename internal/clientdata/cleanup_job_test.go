package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	job := NewCleanupJob(repo, zerolog.Nop())

	require.NoError(t, repo.Store(TableQuotes, "sh600519", map[string]float64{"price": 1}, -time.Hour))
	require.NoError(t, repo.Store(TableQuotes, "sz000001", map[string]float64{"price": 2}, time.Hour))
	require.NoError(t, repo.Store(TableIndicators, "600519.SH", map[string]float64{"roe": 0.3}, -time.Minute))

	require.NoError(t, job.Run())

	var count int
	require.NoError(t, db.QueryRow("SELECT (SELECT COUNT(*) FROM cache_quotes) + (SELECT COUNT(*) FROM cache_indicators)").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCleanupJobRunEmpty(t *testing.T) {
	db := setupTestDB(t)
	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	assert.NoError(t, job.Run())
}
