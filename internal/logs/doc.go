// Package logs tails the trackmerge log file for the CLI "logs" command.
//
// It reads with bounded memory, supports a negative offset for "last N
// lines", filters lines by substring (typically a run ID), and polls for new
// lines in follow mode until the caller's context is cancelled.
package logs
