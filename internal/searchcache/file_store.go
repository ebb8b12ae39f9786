package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"trackmerge/internal/catalog"
	"trackmerge/internal/fileutil"
	"trackmerge/internal/logging"
)

// Entry is one cached search.
type Entry struct {
	Key      string           `json:"key"`
	Records  []catalog.Record `json:"records"`
	CachedAt time.Time        `json:"cached_at"`
}

// FileStore keeps entries in memory and mirrors them to a JSON file.
type FileStore struct {
	path    string
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads the cache at path. A missing or unreadable file starts
// an empty cache; the file is created on the first Put. An empty path makes
// every operation a no-op.
func NewFileStore(path string, ttl time.Duration, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "searchcache")

	s := &FileStore{
		path:    path,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
	if path == "" {
		return s
	}
	if err := s.load(); err != nil {
		logging.WarnWithContext(logger, "failed to load search cache", "searchcache_load_failed",
			logging.Error(err),
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "delete the cache file if it is corrupt"),
			logging.String(logging.FieldImpact, "cache will start empty"))
	}
	return s
}

// Get returns the records cached under key when present and not expired.
func (s *FileStore) Get(_ context.Context, key string) ([]catalog.Record, bool, error) {
	if s.path == "" {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || expired(entry.CachedAt, s.ttl, s.now()) {
		return nil, false, nil
	}
	return entry.Records, true, nil
}

// Put stores records under key and persists the cache.
func (s *FileStore) Put(_ context.Context, key string, records []catalog.Record) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{Key: key, Records: records, CachedAt: s.now()}
	if err := s.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet pruned.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op; every Put is already persisted.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	now := s.now()
	for _, entry := range entries {
		if entry.Key == "" || expired(entry.CachedAt, s.ttl, now) {
			continue
		}
		s.entries[entry.Key] = entry
	}
	s.logger.Debug("loaded search cache",
		logging.Int("entry_count", len(s.entries)),
		logging.String("path", s.path))
	return nil
}

// save writes live entries sorted by key so the file diffs cleanly.
func (s *FileStore) save() error {
	now := s.now()
	entries := make([]Entry, 0, len(s.entries))
	for key, entry := range s.entries {
		if expired(entry.CachedAt, s.ttl, now) {
			delete(s.entries, key)
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	return fileutil.WriteAtomic(s.path, data, 0o644)
}
