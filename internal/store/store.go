// Package store persists a raffle session and small settings in SQLite.
//
// One database file lives in the state directory. Sessions are saved whole:
// every save replaces entries, the eligible set and the winners in a single
// transaction, so a failed command never leaves half-written state.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/raffle/internal/logging"
)

// FileName is the database file name inside the state directory.
const FileName = "raffle.db"

// Store is an open session database.
type Store struct {
	path   string
	sql    *sql.DB
	logger logging.Logger
}

// Open creates dir if needed and opens (or initializes) its database.
// A nil logger discards diagnostics.
func Open(ctx context.Context, dir string, logger logging.Logger) (*Store, error) {
	if ctx == nil {
		return nil, errors.New("open store: context is nil")
	}

	if dir == "" {
		return nil, errors.New("open store: directory is empty")
	}

	if logger == nil {
		logger = logging.Discard()
	}

	stateDir := filepath.Clean(dir)

	err := os.MkdirAll(stateDir, 0o750)
	if err != nil {
		return nil, fmt.Errorf("open store: create state directory: %w", err)
	}

	path := filepath.Join(stateDir, FileName)

	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = migrate(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("open store: %w", err)
	}

	logger.WithField("path", path).Debug("opened store")

	return &Store{path: path, sql: db, logger: logger}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the SQLite handle opened by Open.
func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}

	err := s.sql.Close()
	if err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}

	return nil
}
