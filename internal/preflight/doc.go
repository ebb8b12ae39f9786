// Package preflight provides readiness checks for the filesystem paths and
// external services trackmerge depends on.
//
// The CLI "trackmerge status" command runs RunAll and renders each Result.
// Checks for optional features are gated by config: the Redis check only runs
// when the cache backend is redis, and a missing default input page is
// reported as optional rather than failed.
package preflight
