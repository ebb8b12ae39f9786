// Package main hosts the trackmerge CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging, the Spotify client,
// the optional search cache, and run history into the workflow runner and
// the presentation server. Subcommands stay thin: matching, merging, and
// reporting live in the internal packages and are only rendered here.
package main
