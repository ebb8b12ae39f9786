package preflight

import (
	"context"
	"net/http"
	"path/filepath"

	"trackmerge/internal/catalog"
	"trackmerge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed reports whether the result should block processing.
func (r Result) Failed() bool {
	return !r.Passed && !r.Optional
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Database directory", filepath.Dir(cfg.Paths.Database)),
		CheckDirectoryAccess("History directory", filepath.Dir(cfg.Paths.HistoryDB)),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	input := CheckFileReadable("Input page", cfg.Paths.InputHTML)
	input.Optional = true
	results = append(results, input)

	if cfg.Cache.Backend == "redis" {
		results = append(results, CheckRedis(ctx, cfg.Cache.RedisAddr))
	}

	results = append(results, CheckSpotifyFromConfig(ctx, cfg))
	return results
}

// CheckSpotifyFromConfig builds a catalog client from cfg and verifies it can
// obtain an access token.
func CheckSpotifyFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Spotify"
	if err := cfg.ValidateCredentials(); err != nil {
		return Result{Name: name, Detail: "credentials missing"}
	}
	client, err := catalog.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		catalog.WithBaseURL(cfg.Spotify.APIBaseURL),
		catalog.WithTokenURL(cfg.Spotify.TokenURL),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.SpotifyTimeout()}),
	)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return CheckSpotify(ctx, client)
}
