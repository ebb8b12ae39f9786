package catalog

import (
	"fmt"
	"strings"

	"trackmerge/internal/textutil"
)

// QualifiedQuery builds the field-qualified search used for high and medium
// confidence matches.
func QualifiedQuery(artist, title string) string {
	return fmt.Sprintf(`artist:"%s" track:"%s"`, textutil.SearchClean(artist), textutil.SearchClean(title))
}

// LooseQuery builds the unqualified fallback search from the raw strings.
func LooseQuery(artist, title string) string {
	return strings.TrimSpace(artist + " " + title)
}
