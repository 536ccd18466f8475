package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jamesruggles/secuscan/internal/database"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []model.ScanResult {
	return []model.ScanResult{
		{
			ID:        "1700000000000",
			TargetURL: "example.com",
			Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Status:    model.StatusCompleted,
			ToolsUsed: []model.ToolType{model.ToolNmap},
			OpenPorts: []model.OpenPort{{Port: 443, Service: "https", State: model.PortOpen}},
			Vulnerabilities: []model.Vulnerability{
				{ID: "vuln-1-0", Name: "TLS 1.0", Severity: model.SeverityMedium},
			},
		},
		{ID: "1700000000001", TargetURL: "example.org", Status: model.StatusRunning},
	}
}

func TestStoreRoundTripBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db, err := database.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	backends := map[string]KV{
		"memory": NewMemoryKV(),
		"redis":  NewRedisKV(client),
		"sqlite": db,
	}

	for name, kv := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := NewStore(kv, "")

			empty, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, store.Save(ctx, sampleHistory()))
			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleHistory(), got)
		})
	}
}

func TestLoadCorruptValueYieldsEmptyHistory(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, DefaultKey, `[{"id": "1", "status":`))

	scans, err := NewStore(kv, DefaultKey).Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, scans)
	assert.Empty(t, scans)
}

func TestLoadNullValue(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, DefaultKey, `null`))

	scans, err := NewStore(kv, DefaultKey).Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, scans)
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("disk gone") }

func TestBackendErrorsPropagate(t *testing.T) {
	store := NewStore(failingKV{}, DefaultKey)
	_, err := store.Load(context.Background())
	assert.ErrorContains(t, err, "load history")
	assert.ErrorContains(t, store.Save(context.Background(), nil), "save history")
}

func TestDialRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DialRedis(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
