package searchcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trackmerge/internal/catalog"
	"trackmerge/internal/config"
	"trackmerge/internal/fileutil"
	"trackmerge/internal/testsupport"
)

type countingSearcher struct {
	calls   int
	err     error
	records []catalog.Record
}

func (c *countingSearcher) SearchTracks(context.Context, string, int) ([]catalog.Record, error) {
	c.calls++
	return c.records, c.err
}

func TestSearcherCachesResults(t *testing.T) {
	next := &countingSearcher{records: []catalog.Record{{ID: "a"}}}
	store := NewFileStore(filepath.Join(t.TempDir(), "c.json"), time.Hour, nil)
	s := Wrap(next, store, nil)

	for i := 0; i < 3; i++ {
		got, err := s.SearchTracks(context.Background(), "Artist Song", 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "a" {
			t.Fatalf("unexpected records %#v", got)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls)
	}

	if _, err := s.SearchTracks(context.Background(), "artist song ", 10); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Fatalf("different limit should miss, got %d calls", next.calls)
	}
}

func TestCacheHitsSkipPacing(t *testing.T) {
	next := &countingSearcher{records: []catalog.Record{{ID: "a"}}}
	store := NewFileStore(filepath.Join(t.TempDir(), "c.json"), time.Hour, nil)
	s := Wrap(catalog.Pace(next, time.Hour), store, nil)

	if _, err := s.SearchTracks(context.Background(), "q", 5); err != nil {
		t.Fatalf("first search: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 3; i++ {
		if _, err := s.SearchTracks(ctx, "q", 5); err != nil {
			t.Fatalf("cached search waited on the limiter: %v", err)
		}
	}
	if _, err := s.SearchTracks(ctx, "other", 5); err == nil {
		t.Fatal("expected uncached search to wait past the deadline")
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls)
	}
}

func TestSearcherDoesNotCacheErrors(t *testing.T) {
	next := &countingSearcher{err: errors.New("boom")}
	store := NewFileStore(filepath.Join(t.TempDir(), "c.json"), time.Hour, nil)
	s := Wrap(next, store, nil)

	for i := 0; i < 2; i++ {
		if _, err := s.SearchTracks(context.Background(), "q", 5); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("errors must not be cached, got %d calls", next.calls)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestSearcherBypassesBrokenRedis(t *testing.T) {
	next := &countingSearcher{records: []catalog.Record{{ID: "a"}}}
	store := NewRedisStore("127.0.0.1:1", time.Minute)
	defer store.Close()
	s := Wrap(next, store, nil)

	got, err := s.SearchTracks(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("cache failure should not surface, got %v", err)
	}
	if len(got) != 1 || next.calls != 1 {
		t.Fatalf("expected upstream result, got %#v after %d calls", got, next.calls)
	}
}

func TestWrapNilStoreReturnsNext(t *testing.T) {
	next := &countingSearcher{}
	if got := Wrap(next, nil, nil); got != catalog.Searcher(next) {
		t.Fatal("expected the wrapped searcher to be returned unchanged")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := config.Default()
	store, err := Open(&cfg, nil)
	if err != nil || store != nil {
		t.Fatalf("expected no store for backend none, got %v %v", store, err)
	}

	cfg.Cache.Backend = "file"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "c.json")
	store, err = Open(&cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Fatalf("expected FileStore, got %T", store)
	}

	cfg.Cache.Backend = "redis"
	store, err = Open(&cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*RedisStore); !ok {
		t.Fatalf("expected RedisStore, got %T", store)
	}
	_ = store.Close()

	cfg.Cache.Backend = "memcached"
	if _, err := Open(&cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenFileBackendPersistsUnderConfiguredPath(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheBackend("file"))
	store, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	s := Wrap(&countingSearcher{records: []catalog.Record{{ID: "a"}}}, store, nil)
	if _, err := s.SearchTracks(context.Background(), "q", 5); err != nil {
		t.Fatalf("search: %v", err)
	}
	want := filepath.Join(testsupport.BaseDir(cfg), "cache", "search_cache.json")
	if cfg.Cache.Path != want || !fileutil.FileExists(want) {
		t.Fatalf("expected cache file at %s (configured %s)", want, cfg.Cache.Path)
	}
}

func TestRedisKeyIsStable(t *testing.T) {
	a := redisKey(Key("Query", 5))
	b := redisKey(Key(" query", 5))
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if len(a) != len(redisKeyPrefix)+32 {
		t.Fatalf("unexpected key length %d", len(a))
	}
}
