// Package services defines shared utilities consumed by the processing
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source documents, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run statuses (rejected vs failed).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across commands.
package services
