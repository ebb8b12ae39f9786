// Package searchcache remembers catalog search results between runs.
//
// Re-processing the same ranking page issues the same queries; a Store keeps
// their results for a configurable TTL so reruns avoid most remote calls.
// FileStore persists to a JSON file, RedisStore to a shared Redis instance.
// Searcher wraps any catalog.Searcher and bypasses the cache whenever the
// store misbehaves.
package searchcache
