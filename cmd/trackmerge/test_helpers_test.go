package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"trackmerge/internal/config"
	"trackmerge/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	spotify    *httptest.Server
}

const stubTrackJSON = `{"id":"%s","name":"%s","uri":"spotify:track:%s","popularity":50,"preview_url":null,
"external_urls":{"spotify":"https://open.spotify.com/track/%s"},
"artists":[{"name":"%s"}],"album":{"name":"Album","release_date":"2020-01-01"}}`

// newSpotifyStub serves a playlist holding "Song A" by Band and answers the
// qualified search for "Song B" by Other; every other search is empty.
func newSpotifyStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/playlists/PL1/tracks", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[{"track":`+stubTrackJSON+`}],"next":null}`, "t1", "Song A", "t1", "t1", "Band")
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") == `artist:"Other" track:"Song B"` {
			fmt.Fprintf(w, `{"tracks":{"items":[`+stubTrackJSON+`]}}`, "t2", "Song B", "t2", "t2", "Other")
			return
		}
		_, _ = w.Write([]byte(`{"tracks":{"items":[]}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	spotify := newSpotifyStub(t)
	cfg := testsupport.NewConfig(t, testsupport.WithSpotifyEndpoint(spotify.URL))

	configPath := filepath.Join(homeDir, ".config", "trackmerge", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		spotify:    spotify,
	}
}

func (e *cliTestEnv) writePage(t *testing.T) string {
	t.Helper()
	testsupport.WriteFile(t, e.cfg.Paths.InputHTML, testsupport.RankingPage(
		"https://open.spotify.com/playlist/PL1",
		[]string{"#", "Title", "Artist"},
		[]string{"1", "Song A", "Band"},
		[]string{"2", "Song B", "Other"},
		[]string{"3", "Mystery", "Nobody"},
	))
	return e.cfg.Paths.InputHTML
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args, configPath)
}

func runCLIContext(t *testing.T, ctx context.Context, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
