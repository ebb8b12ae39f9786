package services_test

import (
	"errors"
	"strings"
	"testing"

	"trackmerge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrPersistence, "merge", "save", "rename failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"merge", "save", "rename failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestRunStatusMapping(t *testing.T) {
	inputErr := services.Wrap(services.ErrInput, "extract", "open", "missing html", nil)
	if status := services.RunStatus(inputErr); status != services.RunRejected {
		t.Fatalf("expected rejected for input error, got %s", status)
	}

	persistErr := services.Wrap(services.ErrPersistence, "merge", "save", "disk full", errors.New("io"))
	if status := services.RunStatus(persistErr); status != services.RunFailed {
		t.Fatalf("expected failed for persistence error, got %s", status)
	}

	if status := services.RunStatus(nil); status != services.RunCompleted {
		t.Fatalf("expected completed for nil error, got %s", status)
	}
}
