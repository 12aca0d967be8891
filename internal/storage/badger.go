package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"pantry-chef/internal/logging"
	"pantry-chef/internal/userstate"
)

var stateKey = []byte("userstate")

// BadgerStore keeps the user state under a single key in an embedded Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a Badger database in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", dir, err)
	}
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db
// unless it calls Close on the store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Read(ctx context.Context) (userstate.State, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return s.reset(ctx)
	}
	if err != nil {
		return userstate.State{}, fmt.Errorf("failed to read user state: %w", err)
	}

	var state userstate.State
	if err := json.Unmarshal(data, &state); err != nil {
		logging.Warn().Err(err).Msg("User state entry is corrupt, resetting to defaults")
		return s.reset(ctx)
	}
	return state.Normalized(), nil
}

func (s *BadgerStore) Write(_ context.Context, state userstate.State) error {
	data, err := json.Marshal(state.Normalized())
	if err != nil {
		return fmt.Errorf("failed to marshal user state: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save user state: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) reset(ctx context.Context) (userstate.State, error) {
	state := userstate.Default()
	if err := s.Write(ctx, state); err != nil {
		return userstate.State{}, err
	}
	return state, nil
}
