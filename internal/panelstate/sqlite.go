package panelstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore keeps panel state in the ui_preferences table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the raw value for key, or "" when it is unset.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM ui_preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// Set upserts the raw value for key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	ts := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ui_preferences(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, ts)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, targetID string) (State, bool, error) {
	value, err := s.Get(ctx, Key(targetID))
	if err != nil {
		return Expanded, false, fmt.Errorf("load panel state for %s: %w", targetID, err)
	}
	state, ok := Decode(value)
	return state, ok, nil
}

func (s *SQLiteStore) Save(ctx context.Context, targetID string, state State) error {
	if err := s.Set(ctx, Key(targetID), state.Encode()); err != nil {
		return fmt.Errorf("save panel state for %s: %w", targetID, err)
	}
	return nil
}
