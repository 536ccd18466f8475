package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jamesruggles/secuscan/internal/model"
)

// DefaultKey is the key the dashboard has always stored its history under.
const DefaultKey = "secuscan_history"

// KV is a single-value-per-key backend.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store reads and writes the full scan history as one JSON array under a
// single key. Writes are whole-value replacements with no merge: two
// processes sharing a backend are last-write-wins.
type Store struct {
	kv  KV
	key string
}

func NewStore(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Load returns the persisted history. A value that fails to parse is
// logged and treated as an empty history. Backend errors are returned.
func (s *Store) Load(ctx context.Context) ([]model.ScanResult, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok || raw == "" {
		return []model.ScanResult{}, nil
	}

	var scans []model.ScanResult
	if err := json.Unmarshal([]byte(raw), &scans); err != nil {
		slog.Error("failed to parse history, starting empty", "key", s.key, "error", err)
		return []model.ScanResult{}, nil
	}
	if scans == nil {
		scans = []model.ScanResult{}
	}
	return scans, nil
}

// Save serializes and writes the whole history.
func (s *Store) Save(ctx context.Context, scans []model.ScanResult) error {
	if scans == nil {
		scans = []model.ScanResult{}
	}
	data, err := json.Marshal(scans)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
