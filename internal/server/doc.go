// Package server is the presentation server for the browser analyzer.
//
// It exposes the database as JSON with numeric columns coerced and a derived
// Release_Year, hands the analyzer its Spotify OAuth settings, bounces the
// OAuth callback back to the page, and serves the static analyzer files.
// Request counts and latencies are exported on /metrics.
package server
