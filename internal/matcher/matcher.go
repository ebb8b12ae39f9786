// Package matcher resolves scraped rows to catalog records using a fixed
// precedence of lookups, from the free playlist index to increasingly loose
// remote searches.
package matcher

import (
	"context"
	"log/slog"
	"strings"

	"trackmerge/internal/catalog"
	"trackmerge/internal/database"
	"trackmerge/internal/logging"
	"trackmerge/internal/playlistindex"
	"trackmerge/internal/textutil"
)

const (
	defaultQualifiedLimit = 10
	defaultLooseLimit     = 5
)

// Matcher runs the tiered lookup for one row at a time. It is not safe for
// concurrent use; rows are matched sequentially.
type Matcher struct {
	searcher       catalog.Searcher
	qualifiedLimit int
	looseLimit     int
	logger         *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used for per-row decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLimits sets the result limits for the qualified and loose searches.
func WithLimits(qualified, loose int) Option {
	return func(m *Matcher) {
		if qualified > 0 {
			m.qualifiedLimit = qualified
		}
		if loose > 0 {
			m.looseLimit = loose
		}
	}
}

// New builds a matcher over searcher. A nil searcher limits matching to the
// playlist index. Pacing belongs to the searcher (see catalog.Pace) so cached
// lookups are not delayed.
func New(searcher catalog.Searcher, opts ...Option) *Matcher {
	m := &Matcher{
		searcher:       searcher,
		qualifiedLimit: defaultQualifiedLimit,
		looseLimit:     defaultLooseLimit,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "matcher")
	return m
}

// Match resolves artist and title to at most one catalog record. The playlist
// index is consulted first (exact key, then title with artist containment);
// remote searches run only when it yields nothing. Search failures are logged
// and treated as empty results.
func (m *Matcher) Match(ctx context.Context, artist, title string, idx *playlistindex.Index) (*catalog.Record, Confidence) {
	if rec, reason, ok := m.matchPlaylist(artist, title, idx); ok {
		m.logDecision(ctx, ConfidencePlaylist, reason, artist, title, &rec)
		return &rec, ConfidencePlaylist
	}
	if m.searcher == nil {
		m.logDecision(ctx, ConfidenceNotFound, "no searcher configured", artist, title, nil)
		return nil, ConfidenceNotFound
	}

	results := m.search(ctx, catalog.QualifiedQuery(artist, title), m.qualifiedLimit)
	if len(results) > 0 {
		want := strings.ToLower(artist)
		for i := range results {
			if hasArtist(results[i], want) {
				m.logDecision(ctx, ConfidenceHigh, "qualified search artist match", artist, title, &results[i])
				return &results[i], ConfidenceHigh
			}
		}
		m.logDecision(ctx, ConfidenceMedium, "qualified search first result", artist, title, &results[0])
		return &results[0], ConfidenceMedium
	}

	results = m.search(ctx, catalog.LooseQuery(artist, title), m.looseLimit)
	if len(results) > 0 {
		m.logDecision(ctx, ConfidenceLow, "loose search first result", artist, title, &results[0])
		return &results[0], ConfidenceLow
	}

	m.logDecision(ctx, ConfidenceNotFound, "no candidates", artist, title, nil)
	return nil, ConfidenceNotFound
}

// Enrich matches row and returns the row overlaid with the catalog columns
// and Match_Confidence. Unmatched rows receive empty catalog columns.
func (m *Matcher) Enrich(ctx context.Context, row *database.Row, idx *playlistindex.Index) (*database.Row, Confidence) {
	rec, conf := m.Match(ctx, row.Artist(), row.Title(), idx)
	fields := catalog.EmptyFields()
	if rec != nil {
		fields = rec.Fields()
	}
	enrichment := database.NewRow()
	for _, f := range fields {
		enrichment.Set(f.Column, f.Value)
	}
	enrichment.Set(database.ColumnMatchConfidence, conf.String())
	return row.Overlay(enrichment), conf
}

func (m *Matcher) matchPlaylist(artist, title string, idx *playlistindex.Index) (catalog.Record, string, bool) {
	if idx.Len() == 0 {
		return catalog.Record{}, "", false
	}
	if candidates := idx.LookupExact(title, artist); len(candidates) > 0 {
		return candidates[0], "playlist exact key", true
	}
	primary := textutil.MatchKey(textutil.PrimaryArtist(artist))
	if primary == "" {
		return catalog.Record{}, "", false
	}
	for _, rec := range idx.LookupLoose(title) {
		if strings.Contains(textutil.MatchKey(rec.ArtistsDisplay()), primary) {
			return rec, "playlist title with artist containment", true
		}
	}
	return catalog.Record{}, "", false
}

func (m *Matcher) search(ctx context.Context, query string, limit int) []catalog.Record {
	results, err := m.searcher.SearchTracks(ctx, query, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "catalog search failed", "search_failed",
			logging.String("query", query),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and Spotify credentials"),
			logging.String(logging.FieldImpact, "row treated as having no search results"))
		return nil
	}
	return results
}

func hasArtist(rec catalog.Record, lowered string) bool {
	for _, name := range rec.Artists {
		if strings.ToLower(name) == lowered {
			return true
		}
	}
	return false
}

func (m *Matcher) logDecision(ctx context.Context, conf Confidence, reason, artist, title string, rec *catalog.Record) {
	attrs := logging.DecisionAttrs("match_tier", conf.String(), reason)
	attrs = append(attrs,
		logging.String("artist", artist),
		logging.String("title", title))
	if rec != nil {
		attrs = append(attrs,
			logging.String("track_id", rec.ID),
			logging.String("track_name", rec.Name),
			logging.Strings("track_artists", rec.Artists))
	}
	logging.WithContext(ctx, m.logger).Debug("match decision", logging.Args(attrs...)...)
}
