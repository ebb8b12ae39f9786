// Package notifications delivers run summaries via ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never need to check whether notifications are enabled. Delivery
// failures are returned to the caller; the workflow logs them and carries on.
package notifications
