package searchcache

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"trackmerge/internal/catalog"
	"trackmerge/internal/logging"
)

// Searcher serves searches from a Store and falls through to the wrapped
// searcher on a miss. Errors from the wrapped searcher are returned and
// never cached.
type Searcher struct {
	next   catalog.Searcher
	store  Store
	logger *slog.Logger
}

var _ catalog.Searcher = (*Searcher)(nil)

// Wrap returns next unchanged when store is nil.
func Wrap(next catalog.Searcher, store Store, logger *slog.Logger) catalog.Searcher {
	if store == nil {
		return next
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Searcher{
		next:   next,
		store:  store,
		logger: logging.NewComponentLogger(logger, "searchcache"),
	}
}

// Key derives the cache key for a search.
func Key(query string, limit int) string {
	return strconv.Itoa(limit) + "|" + strings.ToLower(strings.TrimSpace(query))
}

// SearchTracks implements catalog.Searcher.
func (s *Searcher) SearchTracks(ctx context.Context, query string, limit int) ([]catalog.Record, error) {
	key := Key(query, limit)
	records, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(s.logger, "search cache read failed", "searchcache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the cache backend"),
			logging.String(logging.FieldImpact, "search sent to Spotify"))
	}
	if ok {
		s.logger.Debug("search cache hit", logging.String("query", query), logging.Int("results", len(records)))
		return records, nil
	}

	records, err = s.next.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, key, records); err != nil {
		logging.WarnWithContext(s.logger, "search cache write failed", "searchcache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the cache backend"),
			logging.String(logging.FieldImpact, "result will be fetched again next run"))
	}
	return records, nil
}
