package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"trackmerge/internal/config"
)

func TestLoadDefaultConfigUsesEnvCredentialsAndExpandsPaths(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantHistory := filepath.Join(tempHome, ".local", "share", "trackmerge", "history.db")
	if cfg.Paths.HistoryDB != wantHistory {
		t.Fatalf("unexpected history db: got %q want %q", cfg.Paths.HistoryDB, wantHistory)
	}
	if !filepath.IsAbs(cfg.Paths.Database) || filepath.Base(cfg.Paths.Database) != "spotify_master_database.csv" {
		t.Fatalf("unexpected database path: %q", cfg.Paths.Database)
	}
	if cfg.Spotify.ClientID != "env-id" || cfg.Spotify.ClientSecret != "env-secret" {
		t.Fatalf("expected credentials from env, got %q/%q", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		t.Fatalf("ValidateCredentials returned error: %v", err)
	}
	if cfg.SearchDelay() != 100*time.Millisecond {
		t.Fatalf("unexpected search delay: %v", cfg.SearchDelay())
	}
	if cfg.Matching.QualifiedLimit != 10 || cfg.Matching.LooseLimit != 5 {
		t.Fatalf("unexpected limits: %+v", cfg.Matching)
	}
	if cfg.Matching.PlaylistPageSize != 100 {
		t.Fatalf("unexpected page size: %d", cfg.Matching.PlaylistPageSize)
	}
	if cfg.Cache.Backend != "none" {
		t.Fatalf("expected cache disabled by default, got %q", cfg.Cache.Backend)
	}
	if cfg.Server.Bind != ":8000" {
		t.Fatalf("unexpected server bind: %q", cfg.Server.Bind)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"database": "~/music/master.csv",
		},
		"spotify": map[string]any{
			"client_id":     "file-id",
			"client_secret": "file-secret",
			"market":        "us",
		},
		"matching": map[string]any{
			"search_delay_ms":   250,
			"dedupe_unresolved": true,
		},
		"logging": map[string]any{
			"format": "JSON",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Paths.Database != filepath.Join(tempHome, "music", "master.csv") {
		t.Fatalf("unexpected database path: %q", cfg.Paths.Database)
	}
	if cfg.Spotify.ClientID != "file-id" {
		t.Fatalf("expected file client id, got %q", cfg.Spotify.ClientID)
	}
	if cfg.Spotify.Market != "US" {
		t.Fatalf("expected market to be upper-cased, got %q", cfg.Spotify.Market)
	}
	if cfg.SearchDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected delay: %v", cfg.SearchDelay())
	}
	if !cfg.Matching.DedupeUnresolved {
		t.Fatal("expected dedupe_unresolved to be true")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	os.Unsetenv("SPOTIFY_CLIENT_ID")
	os.Unsetenv("SPOTIFY_CLIENT_SECRET")

	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SPOTIFY_CLIENT_ID=dot-id\nSPOTIFY_CLIENT_SECRET=\"dot-secret\"\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Spotify.ClientID != "dot-id" || cfg.Spotify.ClientSecret != "dot-secret" {
		t.Fatalf("expected credentials from .env, got %q/%q", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
}

func TestValidateCredentialsMissing(t *testing.T) {
	cfg := config.Default()
	err := cfg.ValidateCredentials()
	if err == nil {
		t.Fatal("expected missing credential error")
	}
	if !strings.Contains(err.Error(), "SPOTIFY_CLIENT_ID") {
		t.Fatalf("expected env var hint, got %v", err)
	}

	cfg.Spotify.ClientID = "id"
	err = cfg.ValidateCredentials()
	if err == nil || !strings.Contains(err.Error(), "client_secret") {
		t.Fatalf("expected client secret error, got %v", err)
	}
}

func TestValidateRejectsUnknownCacheBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown cache backend")
	}
}

func TestValidateRejectsOversizedPlaylistPage(t *testing.T) {
	cfg := config.Default()
	cfg.Matching.PlaylistPageSize = 500
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for oversized page size")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Server.IndexFile != "music_analyzer.html" {
		t.Fatalf("unexpected index file: %q", cfg.Server.IndexFile)
	}
}
