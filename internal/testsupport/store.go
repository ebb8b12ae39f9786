package testsupport

import (
	"context"
	"testing"

	"trackmerge/internal/config"
	"trackmerge/internal/runstore"
)

// MustOpenRunStore opens the run history store for tests and registers cleanup.
func MustOpenRunStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(context.Background(), cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
