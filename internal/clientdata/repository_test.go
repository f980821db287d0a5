package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	testingutil "github.com/aristath/finsight/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, cleanup := testingutil.NewTestDB(t)
	t.Cleanup(cleanup)
	return db.Conn()
}

func TestStore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	data := map[string]interface{}{
		"name":  "贵州茅台",
		"price": 1600.5,
	}

	err := repo.Store(TableQuotes, "sh600519", data, TTLQuote)
	require.NoError(t, err)

	var storedData string
	var expiresAt int64
	err = db.QueryRow("SELECT data, expires_at FROM cache_quotes WHERE cache_key = ?", "sh600519").Scan(&storedData, &expiresAt)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(storedData), &parsed))
	assert.Equal(t, "贵州茅台", parsed["name"])

	expectedExpires := time.Now().Add(TTLQuote).Unix()
	assert.InDelta(t, expectedExpires, expiresAt, 5)
}

func TestStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableIndicators, "600519.SH", map[string]string{"version": "1"}, time.Hour))
	require.NoError(t, repo.Store(TableIndicators, "600519.SH", map[string]string{"version": "2"}, time.Hour))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cache_indicators WHERE cache_key = ?", "600519.SH").Scan(&count))
	assert.Equal(t, 1, count)

	result, err := repo.GetIfFresh(TableIndicators, "600519.SH")
	require.NoError(t, err)
	require.NotNil(t, result)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(result, &parsed))
	assert.Equal(t, "2", parsed["version"])
}

func TestGetIfFresh_Expired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, err := db.Exec(
		"INSERT INTO cache_indices (cache_key, data, expires_at) VALUES (?, ?, ?)",
		"sh000001", `{"status":"expired"}`, time.Now().Add(-time.Hour).Unix(),
	)
	require.NoError(t, err)

	result, err := repo.GetIfFresh(TableIndices, "sh000001")
	require.NoError(t, err)
	assert.Nil(t, result)

	// Stale data stays readable as a fallback
	result, err = repo.Get(TableIndices, "sh000001")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.JSONEq(t, `{"status":"expired"}`, string(result))
}

func TestGet_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	result, err := repo.Get(TableQuotes, "missing")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("users; DROP TABLE users", "k", "v", time.Hour)
	assert.Error(t, err)

	_, err = repo.Get("nope", "k")
	assert.Error(t, err)

	_, err = repo.DeleteExpired("nope")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableDailyBars, "600519.SH:20240701", []int{1, 2}, time.Hour))
	require.NoError(t, repo.Delete(TableDailyBars, "600519.SH:20240701"))

	result, err := repo.Get(TableDailyBars, "600519.SH:20240701")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	repo.now = func() time.Time { return time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC) }

	type quote struct {
		Price float64 `json:"price"`
	}
	require.NoError(t, repo.Store(TableQuotes, "sz000001", quote{Price: 10.5}, time.Minute))

	var q quote
	assert.True(t, repo.Lookup(TableQuotes, "sz000001", true, &q))
	assert.Equal(t, 10.5, q.Price)

	// Two minutes later the entry is only reachable as stale data
	repo.now = func() time.Time { return time.Date(2024, 7, 1, 9, 32, 0, 0, time.UTC) }
	assert.False(t, repo.Lookup(TableQuotes, "sz000001", true, &q))
	assert.True(t, repo.Lookup(TableQuotes, "sz000001", false, &q))
	assert.False(t, repo.Lookup(TableQuotes, "sz999999", false, &q))
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	for _, table := range AllTables {
		_, err := db.Exec("INSERT INTO "+table+" (cache_key, data, expires_at) VALUES ('old', '{}', ?)", time.Now().Add(-time.Hour).Unix())
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO "+table+" (cache_key, data, expires_at) VALUES ('new', '{}', ?)", time.Now().Add(time.Hour).Unix())
		require.NoError(t, err)
	}

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	for _, table := range AllTables {
		assert.Equal(t, int64(1), results[table], table)
	}
}
