// Package textutil canonicalizes free-text artist and title strings scraped
// from ranking pages so they can be compared with catalog metadata.
//
// Two strengths are provided:
//   - MatchKey: aggressive normalization used for playlist index keys and
//     loose artist containment checks.
//   - SearchClean: gentler cleanup used to build field-qualified catalog
//     search queries.
//
// Both are pure functions; empty input yields an empty string.
package textutil
