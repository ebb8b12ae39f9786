// Package catalog provides the catalog record model and the minimal Spotify
// Web API client used to enrich scraped tracks.
//
// The client authenticates with the client-credentials flow, caches the
// access token until shortly before expiry, and exposes track search plus
// exhaustive playlist listing restricted to the fields a Record needs. A
// single retry is made after HTTP 429 (honouring Retry-After) or 401 (fresh
// token). Searcher and PlaylistSource let callers and tests substitute stubs.
package catalog
