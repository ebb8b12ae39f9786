package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput           = errors.New("input error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service error")
	ErrPersistence     = errors.New("persistence error")
	ErrTransient       = errors.New("transient failure")
)

// Run statuses recorded in run history.
const (
	RunCompleted = "completed"
	RunRejected  = "rejected"
	RunFailed    = "failed"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// RunStatus maps a run error to the status persisted in run history. Errors
// caused by bad input or configuration are rejected rather than failed so they
// can be told apart from persistence and service problems.
func RunStatus(err error) string {
	switch {
	case err == nil:
		return RunCompleted
	case errors.Is(err, ErrInput), errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return RunRejected
	default:
		return RunFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
