package userstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"pantry-chef/internal/logging"
)

const (
	selectStateSQL = `SELECT data FROM user_state WHERE id = 1`
	upsertStateSQL = `INSERT INTO user_state (id, data, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
)

// SQLiteStore keeps the state as one JSON row in the user_state table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over a migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Read(ctx context.Context) (State, error) {
	var data string
	err := s.db.QueryRowContext(ctx, selectStateSQL).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return s.reset(ctx)
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to query user state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		logging.Warn().Err(err).Msg("User state row is corrupt, resetting to defaults")
		return s.reset(ctx)
	}
	return state.Normalized(), nil
}

func (s *SQLiteStore) Write(ctx context.Context, state State) error {
	data, err := json.Marshal(state.Normalized())
	if err != nil {
		return fmt.Errorf("failed to marshal user state: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertStateSQL, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save user state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) reset(ctx context.Context) (State, error) {
	state := Default()
	if err := s.Write(ctx, state); err != nil {
		return State{}, err
	}
	return state, nil
}
