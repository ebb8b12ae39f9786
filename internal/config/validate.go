package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Catalog credentials are
// checked separately by ValidateCredentials so offline commands still work
// without them.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials reports whether catalog API credentials are present.
func (c *Config) ValidateCredentials() error {
	if c.Spotify.ClientID != "" && c.Spotify.ClientSecret != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/trackmerge/config.toml"
	}
	if c.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.client_id is required. Set %s in the environment or .env, or edit %s (create with 'trackmerge config init')", spotifyClientIDEnv, defaultPath)
	}
	return fmt.Errorf("spotify.client_secret is required. Set %s in the environment or .env, or edit %s", spotifyClientSecretEnv, defaultPath)
}

func (c *Config) validateMatching() error {
	if c.Matching.SearchDelayMS < 0 {
		return errors.New("matching.search_delay_ms must be zero or positive")
	}
	if c.Matching.QualifiedLimit > maxSpotifySearchLimit || c.Matching.LooseLimit > maxSpotifySearchLimit {
		return fmt.Errorf("matching search limits must not exceed %d", maxSpotifySearchLimit)
	}
	if c.Matching.PlaylistPageSize > maxSpotifyPlaylistPage {
		return fmt.Errorf("matching.playlist_page_size must not exceed %d", maxSpotifyPlaylistPage)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "none", "file", "redis":
		return nil
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (use none, file, or redis)", c.Cache.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
