package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trackmerge/internal/metrics"
)

const sampleCSV = "Title,Artist,BPM,Energy,Spotify_Popularity,Length,Spotify_Release_Date\n" +
	"One,A,120,80.5,,3:45,2019-05-01\n" +
	"Two,B,fast,,55,200,\n" +
	"Three,C,90,10,1,2,unknown\n"

func newTestServer(t *testing.T, withDB bool) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.csv")
	if withDB {
		if err := os.WriteFile(dbPath, []byte(sampleCSV), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "music_analyzer.html"), []byte("<html>analyzer</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := New(Options{
		Bind:         "127.0.0.1:0",
		DatabasePath: dbPath,
		StaticDir:    dir,
		IndexFile:    "music_analyzer.html",
		ClientID:     "client-123",
		Metrics:      metrics.New(),
	})
	return srv, dir
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMusicDataCoercesColumns(t *testing.T) {
	srv, _ := newTestServer(t, true)
	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/music-data", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}

	var songs []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &songs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(songs))
	}

	first := songs[0]
	if first["BPM"] != 120.0 || first["Energy"] != 80.5 {
		t.Fatalf("numeric columns not coerced: %#v", first)
	}
	if first["Spotify_Popularity"] != "" {
		t.Fatalf("empty numeric cell should stay a string, got %#v", first["Spotify_Popularity"])
	}
	if first["Length"] != 0.0 {
		t.Fatalf("unparseable Length should be 0, got %#v", first["Length"])
	}
	if first["Release_Year"] != 2019.0 {
		t.Fatalf("Release_Year = %#v, want 2019", first["Release_Year"])
	}

	second := songs[1]
	if second["BPM"] != 0.0 || second["Spotify_Popularity"] != 55.0 {
		t.Fatalf("unexpected second row %#v", second)
	}
	if second["Release_Year"] != 2020.0 || songs[2]["Release_Year"] != 2020.0 {
		t.Fatal("missing or invalid release date should default to 2020")
	}
	if first["Title"] != "One" {
		t.Fatalf("string columns should pass through, got %#v", first["Title"])
	}
}

func TestMusicDataKeepsColumnOrder(t *testing.T) {
	srv, _ := newTestServer(t, true)
	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/music-data", nil))
	body := rec.Body.String()
	title := strings.Index(body, `"Title"`)
	artist := strings.Index(body, `"Artist"`)
	year := strings.Index(body, `"Release_Year"`)
	if !(title < artist && artist < year) {
		t.Fatalf("columns out of order in %s", body[:200])
	}
}

func TestMusicDataMissingDatabase(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/music-data", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CSV database not found") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestSpotifyConfigRedirect(t *testing.T) {
	srv, _ := newTestServer(t, false)
	cases := []struct {
		host    string
		referer string
		want    string
	}{
		{host: "localhost:8000", want: "http://127.0.0.1:8000/"},
		{host: "127.0.0.1:8000", referer: "https://x", want: "http://127.0.0.1:8000/"},
		{host: "music.example.com", referer: "https://music.example.com/", want: "https://music.example.com/"},
		{host: "192.168.1.5:9000", want: "http://192.168.1.5:9000/"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/spotify-config", nil)
		req.Host = tc.host
		if tc.referer != "" {
			req.Header.Set("Referer", tc.referer)
		}
		rec := do(t, srv.Handler(), req)
		var cfg spotifyConfig
		if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if cfg.ClientID != "client-123" || cfg.RedirectURI != tc.want {
			t.Fatalf("host %s: got %+v, want redirect %s", tc.host, cfg, tc.want)
		}
	}
}

func TestSpotifyCallback(t *testing.T) {
	srv, _ := newTestServer(t, false)
	cases := map[string]string{
		"/spotify-callback?code=abc123":            "/?code=abc123",
		"/spotify-callback?error=access_denied":    "/?error=access_denied",
		"/spotify-callback?code=x&error=cancelled": "/?error=cancelled",
		"/spotify-callback":                        "/?error=no_code",
	}
	for target, want := range cases {
		rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusFound {
			t.Fatalf("%s: status %d", target, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != want {
			t.Fatalf("%s: Location = %q, want %q", target, got, want)
		}
	}
}

func TestIndexAndStaticFiles(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "analyzer") {
		t.Fatalf("index: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
		t.Fatalf("static: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing static file: %d", rec.Code)
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	srv, _ := newTestServer(t, false)
	do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/spotify-callback", nil))
	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `trackmerge_http_requests_total{method="GET",route="/spotify-callback",status="302"} 1`) {
		t.Fatalf("request not counted:\n%s", rec.Body.String())
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, true)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/api/music-data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
