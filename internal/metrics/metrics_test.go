package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func exposition(t *testing.T, m *Metrics) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackmerge.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestObserveCounters(t *testing.T) {
	m := New()
	m.ObserveMatch("high")
	m.ObserveMatch("high")
	m.ObserveMatch("not_found")
	m.ObserveMerge(3, 2, 1, 0)
	m.ObserveRun("completed", 2*time.Second, 120, time.Unix(1700000000, 0))
	m.ObserveRequest("GET", "/api/music-data", 200, 10*time.Millisecond)

	out := exposition(t, m)
	for _, want := range []string{
		`trackmerge_matches_total{confidence="high"} 2`,
		`trackmerge_matches_total{confidence="not_found"} 1`,
		`trackmerge_merge_rows_total{outcome="duplicate"} 2`,
		`trackmerge_merge_rows_total{outcome="new"} 3`,
		`trackmerge_runs_total{status="completed"} 1`,
		`trackmerge_database_rows 120`,
		`trackmerge_last_run_timestamp_seconds 1.7e+09`,
		`trackmerge_http_requests_total{method="GET",route="/api/music-data",status="200"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in exposition:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveMatch("high")
	m.ObserveMerge(1, 1, 1, 1)
	m.ObserveRun("failed", time.Second, 0, time.Now())
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	path := filepath.Join(t.TempDir(), "x.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("nil metrics should not write a file")
	}
}
