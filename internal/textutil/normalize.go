package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// trailingParenPattern matches a parenthetical that ends the string, e.g. " (Remastered 2011)".
	trailingParenPattern = regexp.MustCompile(`\s*\(.*\)$`)
	// trailingFeatPattern matches a dash-introduced featured-artist clause through end of string.
	trailingFeatPattern = regexp.MustCompile(`(?i)\s*-\s*(feat|ft|featuring).*$`)
	// matchPunctPattern matches every rune that is not a word character or whitespace.
	matchPunctPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s]`)
	// searchPunctPattern is matchPunctPattern but keeps hyphens and apostrophes.
	searchPunctPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\-']`)
)

// MatchKey canonicalizes an artist or title for index keys and loose
// comparisons. The result is lower-cased, free of punctuation, trailing
// parentheticals, and trailing "- feat." clauses, with whitespace collapsed.
// MatchKey(MatchKey(s)) == MatchKey(s) for every s.
func MatchKey(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = cases.Lower(language.Und).String(text)
	text = stripQualifiers(text)
	text = matchPunctPattern.ReplaceAllString(text, " ")
	return collapseSpace(text)
}

// SearchClean prepares an artist or title for a field-qualified catalog
// query. Case is preserved; hyphens and apostrophes survive punctuation
// removal so names like "Guns N' Roses" and "Jay-Z" stay searchable.
func SearchClean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = stripQualifiers(text)
	text = searchPunctPattern.ReplaceAllString(text, " ")
	text = collapseSpace(text)
	text = trailingFeatPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// PrimaryArtist returns the first name of a comma-separated artist list.
func PrimaryArtist(artists string) string {
	first, _, _ := strings.Cut(artists, ",")
	return strings.TrimSpace(first)
}

// stripQualifiers removes trailing parentheticals and featured-artist clauses
// until neither pattern applies, so "Song (Live) - feat. X" loses both.
func stripQualifiers(text string) string {
	for {
		next := trailingParenPattern.ReplaceAllString(text, "")
		next = trailingFeatPattern.ReplaceAllString(next, "")
		if next == text {
			return text
		}
		text = next
	}
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
