package catalog

import (
	"regexp"
	"strings"
)

var playlistIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`spotify:playlist:([A-Za-z0-9]+)`),
	regexp.MustCompile(`open\.spotify\.com/playlist/([A-Za-z0-9]+)`),
	regexp.MustCompile(`playlist/([A-Za-z0-9]+)\?`),
	regexp.MustCompile(`([A-Za-z0-9]{22,})$`),
}

// ExtractPlaylistID pulls the playlist identifier out of a URI
// (spotify:playlist:<id>), a web URL (https://open.spotify.com/playlist/<id>),
// any ".../playlist/<id>?..." link, or a bare trailing ID of 22 or more
// alphanumeric characters. Patterns are tried in that order.
func ExtractPlaylistID(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	for _, pattern := range playlistIDPatterns {
		if m := pattern.FindStringSubmatch(ref); m != nil {
			return m[1], true
		}
	}
	return "", false
}
