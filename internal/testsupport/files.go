package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// RankingPage renders a saved ranking page with the given playlist link,
// header cells, and body rows. An empty playlistHref omits the link.
func RankingPage(playlistHref string, headers []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	if playlistHref != "" {
		b.WriteString(`<a id="playlist-title" href="` + playlistHref + `">Playlist</a>` + "\n")
	}
	b.WriteString(`<table id="song-table"><thead><tr>`)
	for _, h := range headers {
		b.WriteString("<th>" + h + "</th>")
	}
	b.WriteString("</tr></thead><tbody>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + cell + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody></table></body></html>\n")
	return b.String()
}
