// Package database owns the cumulative track database: a flat CSV table whose
// column set only ever grows.
//
// Schema is the ordered column list and the rule for extending it. Row is an
// insertion-ordered string mapping with an Overlay operation where the right
// side wins on key collisions. Merge folds a batch of enriched rows into a
// loaded Table, deduplicating on Spotify_Track_ID and backfilling new columns
// with empty strings. Store guards the file with an advisory lock and rewrites
// it atomically, so a failed write never leaves a partial database behind.
package database
