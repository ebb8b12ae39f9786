package database

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"trackmerge/internal/logging"
	"trackmerge/internal/services"
)

// ErrLocked reports that another process holds the database lock.
var ErrLocked = errors.New("database is locked by another process")

// Store binds a database file to an advisory lock file next to it.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open acquires the lock for the database at path. The lock file is
// "<path>.lock"; the database itself need not exist yet.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "database", "open", "database path is empty", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "database", "open", "resolve path", err)
	}
	lock := flock.New(abs + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "database", "lock", "acquire lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrPersistence, "database", "lock", abs, ErrLocked)
	}
	return &Store{
		path:   abs,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "database"),
	}, nil
}

// Path returns the absolute database path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the current database contents.
func (s *Store) Load() (*Table, error) {
	table, err := Load(s.path)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "database", "load", s.path, err)
	}
	s.logger.Debug("loaded database",
		logging.String("path", s.path),
		logging.Int("rows", table.Len()),
		logging.Int("columns", table.Schema.Len()))
	return table, nil
}

// Commit persists result.Table when the merge accepted at least one row and
// marks the result as written. A merge without additions leaves the file
// untouched.
func (s *Store) Commit(result *MergeResult) error {
	if result == nil || len(result.Added) == 0 {
		s.logger.Info("no new rows; database left unchanged",
			logging.String(logging.FieldDecisionType, "database_write"),
			logging.String("decision_result", "skipped"),
			logging.String("path", s.path))
		return nil
	}
	if err := result.Table.Save(s.path); err != nil {
		return services.Wrap(services.ErrPersistence, "database", "save", s.path, err)
	}
	result.Written = true
	s.logger.Info("database saved",
		logging.String("path", s.path),
		logging.Int("rows", result.Table.Len()),
		logging.Int("added", len(result.Added)))
	return nil
}

// Close releases the lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release database lock: %w", err)
	}
	return nil
}
