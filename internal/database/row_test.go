package database

import (
	"reflect"
	"testing"
)

func TestRowOverlayRightWins(t *testing.T) {
	raw := RowFrom("Title", "Song", "Artist", "A", "Spotify_Track_ID", "stale")
	enrich := RowFrom("Spotify_Track_ID", "id1", "Match_Confidence", "high")

	out := raw.Overlay(enrich)

	if got, want := out.Keys(), []string{"Title", "Artist", "Spotify_Track_ID", "Match_Confidence"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if out.Value("Spotify_Track_ID") != "id1" {
		t.Fatalf("expected right side to win, got %q", out.Value("Spotify_Track_ID"))
	}
	if raw.Value("Spotify_Track_ID") != "stale" || raw.Len() != 3 {
		t.Fatal("overlay must not modify its receiver")
	}
}

func TestRowSetKeepsPosition(t *testing.T) {
	row := RowFrom("a", "1", "b", "2")
	row.Set("a", "3")
	if got := row.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected key order %v", got)
	}
	if row.Value("a") != "3" {
		t.Fatalf("expected updated value, got %q", row.Value("a"))
	}
}

func TestRowArtistTitleFallbacks(t *testing.T) {
	row := RowFrom("Artists", "Band", "Track", "Tune")
	if row.Artist() != "Band" || row.Title() != "Tune" {
		t.Fatalf("unexpected artist/title %q/%q", row.Artist(), row.Title())
	}
	row = RowFrom("Artist", "", "Artists", "Fallback", "Title", "", "Name", "N")
	if row.Artist() != "Fallback" {
		t.Fatalf("empty Artist cell should fall through, got %q", row.Artist())
	}
	if row.Title() != "N" {
		t.Fatalf("expected Name fallback, got %q", row.Title())
	}
}

func TestSchemaExtend(t *testing.T) {
	s := NewSchema("a", "b", "a")
	if s.Len() != 2 {
		t.Fatalf("expected repeats dropped, got %v", s.Columns())
	}
	if added := s.Extend("c", "b", "d"); added != 2 {
		t.Fatalf("expected 2 columns added, got %d", added)
	}
	if got := s.Columns(); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected columns %v", got)
	}
	if !s.Has("d") || s.Has("z") {
		t.Fatal("Has returned wrong answer")
	}
}
