package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Upload(_ context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Key: k, SizeBytes: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failOn {
		return errors.New("denied")
	}
	delete(m.objects, key)
	return nil
}

type fileSnapshotter struct {
	content []byte
	err     error
}

func (f fileSnapshotter) Snapshot(_ context.Context, dest string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, f.content, 0644)
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	files := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = body
	}
	return files
}

func TestCreateAndUpload(t *testing.T) {
	store := newMemoryStore()
	s := NewBackupService(store, fileSnapshotter{content: []byte("sqlite bytes")}, "finsight/", t.TempDir(), zerolog.Nop())
	s.now = func() time.Time { return time.Date(2025, 4, 2, 3, 4, 5, 0, time.UTC) }

	info, err := s.CreateAndUpload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "finsight/finsight-backup-2025-04-02-030405.tar.gz", info.Key)

	files := readArchive(t, store.objects[info.Key])
	assert.Equal(t, []byte("sqlite bytes"), files[databaseFilename])

	var meta BackupMetadata
	require.NoError(t, json.Unmarshal(files[metadataFilename], &meta))
	assert.Equal(t, int64(len("sqlite bytes")), meta.SizeBytes)
	assert.True(t, strings.HasPrefix(meta.Checksum, "sha256:"))
	assert.Equal(t, formatVersion, meta.Version)
}

func TestCreateAndUpload_CleansStaging(t *testing.T) {
	dataDir := t.TempDir()
	s := NewBackupService(newMemoryStore(), fileSnapshotter{err: errors.New("locked")}, "", dataDir, zerolog.Nop())

	_, err := s.CreateAndUpload(context.Background())
	require.Error(t, err)

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDisabled(t *testing.T) {
	s := NewBackupService(nil, fileSnapshotter{}, "", t.TempDir(), zerolog.Nop())
	assert.False(t, s.Enabled())

	_, err := s.CreateAndUpload(context.Background())
	assert.ErrorIs(t, err, ErrBackupDisabled)
	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, ErrBackupDisabled)
}

func seed(store *memoryStore, prefix string, stamps ...time.Time) {
	for _, ts := range stamps {
		store.objects[prefix+archivePrefix+ts.Format(archiveTimestamp)+archiveSuffix] = []byte("x")
	}
}

func TestListAndRotate(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	seed(store, "p/",
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -40),
		now.AddDate(0, 0, -50),
		now.AddDate(0, 0, -60),
		now.AddDate(0, 0, -70),
	)
	store.objects["p/"+archivePrefix+"garbage"+archiveSuffix] = []byte("x")

	s := NewBackupService(store, fileSnapshotter{}, "p/", t.TempDir(), zerolog.Nop())
	s.now = func() time.Time { return now }

	backups, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 5)
	assert.True(t, backups[0].Timestamp.Equal(now.AddDate(0, 0, -1)))
	assert.Equal(t, int64(24), backups[0].AgeHours)

	deleted, err := s.Rotate(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	backups, err = s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, backups, 3)
}

func TestRotate_KeepsMinimumAndZeroRetention(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	seed(store, "", now.AddDate(-1, 0, 0), now.AddDate(-1, 0, -1), now.AddDate(-1, 0, -2), now.AddDate(-1, 0, -3))

	s := NewBackupService(store, fileSnapshotter{}, "", t.TempDir(), zerolog.Nop())
	s.now = func() time.Time { return now }

	deleted, err := s.Rotate(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = s.Rotate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Len(t, store.objects, 3)
}

func TestBackupJob(t *testing.T) {
	store := newMemoryStore()
	s := NewBackupService(store, fileSnapshotter{content: []byte("db")}, "", t.TempDir(), zerolog.Nop())
	job := NewBackupJob(s, 30, time.Minute, zerolog.Nop())

	assert.Equal(t, "database_backup", job.Name())
	require.NoError(t, job.Run())
	assert.Len(t, store.objects, 1)

	failing := NewBackupJob(NewBackupService(nil, fileSnapshotter{}, "", t.TempDir(), zerolog.Nop()), 30, 0, zerolog.Nop())
	assert.ErrorIs(t, failing.Run(), ErrBackupDisabled)
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) HealthCheck(context.Context) error        { return f.err }
func (f fakeHealth) SizeBytes(context.Context) (int64, error) { return 4096, nil }

func TestMaintenanceJob(t *testing.T) {
	job := NewMaintenanceJob(fakeHealth{}, filepath.Clean(t.TempDir()), zerolog.Nop())
	job.usage = func(string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Free: 20e9, UsedPercent: 40}, nil
	}
	assert.Equal(t, "maintenance", job.Name())
	require.NoError(t, job.Run())

	job.usage = func(string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Free: 1e8, UsedPercent: 99}, nil
	}
	assert.ErrorIs(t, job.Run(), ErrDiskCritical)

	broken := NewMaintenanceJob(fakeHealth{err: errors.New("corrupt")}, t.TempDir(), zerolog.Nop())
	assert.Error(t, broken.Run())
}
