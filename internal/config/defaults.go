package config

const (
	defaultDatabasePath      = "spotify_master_database.csv"
	defaultInputHTML         = "Sort Your Music.htm"
	defaultLogDir            = "~/.local/share/trackmerge/logs"
	defaultHistoryDB         = "~/.local/share/trackmerge/history.db"
	defaultStaticDir         = "."
	defaultSpotifyAPIBaseURL = "https://api.spotify.com/v1"
	defaultSpotifyTokenURL   = "https://accounts.spotify.com/api/token"
	defaultSpotifyTimeout    = 15
	defaultSearchDelayMS     = 100
	defaultQualifiedLimit    = 10
	defaultLooseLimit        = 5
	defaultPlaylistPageSize  = 100
	defaultCacheBackend      = "none"
	defaultCachePath         = "~/.cache/trackmerge/search_cache.json"
	defaultCacheRedisAddr    = "127.0.0.1:6379"
	defaultCacheTTLHours     = 24 * 7
	defaultServerBind        = ":8000"
	defaultServerIndexFile   = "music_analyzer.html"
	defaultNtfyTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	maxSpotifyPlaylistPage   = 100
	maxSpotifySearchLimit    = 50
	spotifyClientIDEnv       = "SPOTIFY_CLIENT_ID"
	spotifyClientSecretEnv   = "SPOTIFY_CLIENT_SECRET"
	defaultDotEnvPath        = ".env"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Database:  defaultDatabasePath,
			InputHTML: defaultInputHTML,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
			StaticDir: defaultStaticDir,
		},
		Spotify: Spotify{
			APIBaseURL:     defaultSpotifyAPIBaseURL,
			TokenURL:       defaultSpotifyTokenURL,
			RequestTimeout: defaultSpotifyTimeout,
		},
		Matching: Matching{
			SearchDelayMS:    defaultSearchDelayMS,
			QualifiedLimit:   defaultQualifiedLimit,
			LooseLimit:       defaultLooseLimit,
			PlaylistPageSize: defaultPlaylistPageSize,
		},
		Cache: Cache{
			Backend:   defaultCacheBackend,
			Path:      defaultCachePath,
			RedisAddr: defaultCacheRedisAddr,
			TTLHours:  defaultCacheTTLHours,
		},
		Server: Server{
			Bind:      defaultServerBind,
			IndexFile: defaultServerIndexFile,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
