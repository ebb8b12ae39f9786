// Package config loads, normalizes, and validates trackmerge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET, including values stored in a
// local .env file. The Config type centralizes every knob the CLI and the
// presentation server need so paths and credentials are discovered in one pass.
package config
