package searchcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trackmerge/internal/catalog"
)

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "search.json")
	ctx := context.Background()

	store := NewFileStore(path, time.Hour, nil)
	records := []catalog.Record{{ID: "id1", Name: "Song", Artists: []string{"A"}}}
	if err := store.Put(ctx, "10|a song", records); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	reloaded := NewFileStore(path, time.Hour, nil)
	got, ok, err := reloaded.Get(ctx, "10|a song")
	if err != nil || !ok {
		t.Fatalf("expected hit after reload, ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != "id1" || got[0].Artists[0] != "A" {
		t.Fatalf("unexpected records %#v", got)
	}
}

func TestFileStoreExpiresEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.json")
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	store := NewFileStore(path, time.Hour, nil)
	store.now = func() time.Time { return clock }
	if err := store.Put(ctx, "k", []catalog.Record{{ID: "x"}}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("expected fresh entry to hit")
	}
	clock = clock.Add(2 * time.Hour)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path, 0, nil)
	if store.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", store.Len())
	}
	if err := store.Put(context.Background(), "k", nil); err != nil {
		t.Fatalf("Put should overwrite corrupt file: %v", err)
	}
}

func TestFileStoreEmptyPathIsNoop(t *testing.T) {
	store := NewFileStore("", time.Hour, nil)
	if err := store.Put(context.Background(), "k", []catalog.Record{{ID: "x"}}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(context.Background(), "k"); ok {
		t.Fatal("expected no-op cache to miss")
	}
}
