package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Get returns the value stored under key. ok is false when the key has
// never been written.
func (db *DB) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the whole value stored under key.
func (db *DB) Set(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// GetEntry returns the row for key with its last write time, or nil.
func (db *DB) GetEntry(ctx context.Context, key string) (*Entry, error) {
	e := &Entry{}
	err := db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM kv_store WHERE key = ?`, key,
	).Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", key, err)
	}
	return e, nil
}
