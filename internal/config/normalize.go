package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSpotify(); err != nil {
		return err
	}
	c.normalizeMatching()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = defaultDatabasePath
	}
	if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if strings.TrimSpace(c.Paths.InputHTML) == "" {
		c.Paths.InputHTML = defaultInputHTML
	}
	if c.Paths.InputHTML, err = expandPath(c.Paths.InputHTML); err != nil {
		return fmt.Errorf("paths.input_html: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.StaticDir) == "" {
		c.Paths.StaticDir = defaultStaticDir
	}
	if c.Paths.StaticDir, err = expandPath(c.Paths.StaticDir); err != nil {
		return fmt.Errorf("paths.static_dir: %w", err)
	}
	return nil
}

// loadDotEnv reads KEY=value pairs from a .env file in the working directory.
// Variables already present in the environment win.
func loadDotEnv() error {
	if err := godotenv.Load(defaultDotEnvPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", defaultDotEnvPath, err)
	}
	return nil
}

func (c *Config) normalizeSpotify() error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Spotify.ClientID) == "" {
		if value, ok := os.LookupEnv(spotifyClientIDEnv); ok {
			c.Spotify.ClientID = value
		}
	}
	if strings.TrimSpace(c.Spotify.ClientSecret) == "" {
		if value, ok := os.LookupEnv(spotifyClientSecretEnv); ok {
			c.Spotify.ClientSecret = value
		}
	}
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	c.Spotify.Market = strings.ToUpper(strings.TrimSpace(c.Spotify.Market))

	c.Spotify.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Spotify.APIBaseURL), "/")
	if c.Spotify.APIBaseURL == "" {
		c.Spotify.APIBaseURL = defaultSpotifyAPIBaseURL
	}
	c.Spotify.TokenURL = strings.TrimSpace(c.Spotify.TokenURL)
	if c.Spotify.TokenURL == "" {
		c.Spotify.TokenURL = defaultSpotifyTokenURL
	}
	if c.Spotify.RequestTimeout <= 0 {
		c.Spotify.RequestTimeout = defaultSpotifyTimeout
	}
	return nil
}

func (c *Config) normalizeMatching() {
	if c.Matching.QualifiedLimit <= 0 {
		c.Matching.QualifiedLimit = defaultQualifiedLimit
	}
	if c.Matching.LooseLimit <= 0 {
		c.Matching.LooseLimit = defaultLooseLimit
	}
	if c.Matching.PlaylistPageSize <= 0 {
		c.Matching.PlaylistPageSize = defaultPlaylistPageSize
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	c.Cache.RedisAddr = strings.TrimSpace(c.Cache.RedisAddr)
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = defaultCacheRedisAddr
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = defaultCacheTTLHours
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.IndexFile = strings.TrimSpace(c.Server.IndexFile)
	if c.Server.IndexFile == "" {
		c.Server.IndexFile = defaultServerIndexFile
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
