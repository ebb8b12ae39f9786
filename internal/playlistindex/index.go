// Package playlistindex answers "is this scraped row already in the known
// playlist?" without a network round trip per row.
package playlistindex

import (
	"context"
	"log/slog"
	"strings"

	"trackmerge/internal/catalog"
	"trackmerge/internal/logging"
	"trackmerge/internal/textutil"
)

const keySeparator = "||"

// Index maps normalized (title, primary artist) keys to catalog records.
// A key may hold several records; lookups return them in playlist order.
type Index struct {
	records []catalog.Record
	titles  []string
	byKey   map[string][]int
}

// Build indexes records under MatchKey(name) + "||" + MatchKey(first artist).
func Build(records []catalog.Record) *Index {
	idx := &Index{
		records: make([]catalog.Record, len(records)),
		titles:  make([]string, len(records)),
		byKey:   make(map[string][]int, len(records)),
	}
	copy(idx.records, records)
	for i, rec := range idx.records {
		title := textutil.MatchKey(rec.Name)
		idx.titles[i] = title
		key := compositeKey(title, textutil.MatchKey(rec.PrimaryArtist()))
		idx.byKey[key] = append(idx.byKey[key], i)
	}
	return idx
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// LookupExact returns the records whose key equals the key of title and the
// primary artist of artist. Unknown keys yield nil.
func (idx *Index) LookupExact(title, artist string) []catalog.Record {
	if idx.Len() == 0 {
		return nil
	}
	key := compositeKey(textutil.MatchKey(title), textutil.MatchKey(textutil.PrimaryArtist(artist)))
	return idx.collect(idx.byKey[key])
}

// LookupLoose returns every record whose normalized title matches title,
// regardless of artist, in playlist order.
func (idx *Index) LookupLoose(title string) []catalog.Record {
	if idx.Len() == 0 {
		return nil
	}
	want := textutil.MatchKey(title)
	var out []catalog.Record
	for i, t := range idx.titles {
		if t == want {
			out = append(out, idx.records[i])
		}
	}
	return out
}

func (idx *Index) collect(positions []int) []catalog.Record {
	if len(positions) == 0 {
		return nil
	}
	out := make([]catalog.Record, 0, len(positions))
	for _, i := range positions {
		out = append(out, idx.records[i])
	}
	return out
}

func compositeKey(title, artist string) string {
	return title + keySeparator + artist
}

// FromPlaylist resolves ref to a playlist ID, fetches its tracks, and builds
// an index. Unparseable references, listing failures, and empty playlists
// are logged and yield a nil index so matching falls back to search.
func FromPlaylist(ctx context.Context, source catalog.PlaylistSource, ref string, pageSize int, logger *slog.Logger) *Index {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "playlistindex")

	ref = strings.TrimSpace(ref)
	if ref == "" || source == nil {
		return nil
	}
	id, ok := catalog.ExtractPlaylistID(ref)
	if !ok {
		logging.WarnWithContext(logger, "could not parse playlist reference", "playlist_ref_unparsed",
			logging.String("playlist_ref", ref),
			logging.String(logging.FieldErrorHint, "pass a spotify:playlist:<id> URI or an open.spotify.com/playlist/<id> URL"),
			logging.String(logging.FieldImpact, "every row will be matched by search"))
		return nil
	}

	logger.Info("fetching playlist tracks", logging.String("playlist_id", id))
	records, err := source.PlaylistTracks(ctx, id, pageSize)
	if err != nil {
		logging.WarnWithContext(logger, "playlist fetch failed", "playlist_fetch_failed",
			logging.String("playlist_id", id),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the playlist is public and the credentials are valid"),
			logging.String(logging.FieldImpact, "every row will be matched by search"))
		return nil
	}
	if len(records) == 0 {
		logger.Info("playlist has no tracks", logging.String("playlist_id", id))
		return nil
	}
	logger.Info("playlist indexed",
		logging.String("playlist_id", id),
		logging.Int("tracks", len(records)))
	return Build(records)
}
