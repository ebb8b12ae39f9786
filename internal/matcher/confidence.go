package matcher

// Confidence tags how a row was resolved.
type Confidence string

const (
	ConfidencePlaylist Confidence = "playlist"
	ConfidenceHigh     Confidence = "high"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceLow      Confidence = "low"
	ConfidenceNotFound Confidence = "not_found"
)

// Confidences lists every tier from most to least trusted.
var Confidences = []Confidence{
	ConfidencePlaylist,
	ConfidenceHigh,
	ConfidenceMedium,
	ConfidenceLow,
	ConfidenceNotFound,
}

// Rank orders tiers so that a higher rank means more trust. Unknown values
// rank below not_found.
func (c Confidence) Rank() int {
	switch c {
	case ConfidencePlaylist:
		return 4
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	case ConfidenceNotFound:
		return 0
	default:
		return -1
	}
}

// Found reports whether the tier carries a catalog record.
func (c Confidence) Found() bool {
	return c.Rank() > 0
}

func (c Confidence) String() string {
	return string(c)
}
