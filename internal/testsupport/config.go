package testsupport

import (
	"path/filepath"
	"testing"

	"trackmerge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Spotify.ClientID = "test"
	cfgVal.Spotify.ClientSecret = "test"
	cfgVal.Paths.Database = filepath.Join(base, "data", "database.csv")
	cfgVal.Paths.InputHTML = filepath.Join(base, "input", "page.htm")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "data", "history.db")
	cfgVal.Paths.StaticDir = filepath.Join(base, "static")
	cfgVal.Cache.Path = filepath.Join(base, "cache", "search_cache.json")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Matching.SearchDelayMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSpotifyEndpoint points the catalog client at a test server.
func WithSpotifyEndpoint(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Spotify.APIBaseURL = baseURL + "/v1"
		b.cfg.Spotify.TokenURL = baseURL + "/token"
	}
}

// WithCacheBackend selects the search cache backend.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
