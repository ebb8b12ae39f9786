package catalog

import (
	"strconv"
	"strings"
)

// Enrichment column names written to the database for every matched row.
const (
	ColumnTrackID     = "Spotify_Track_ID"
	ColumnURI         = "Spotify_URI"
	ColumnTrackName   = "Spotify_Track_Name"
	ColumnArtists     = "Spotify_Artists"
	ColumnAlbum       = "Spotify_Album"
	ColumnReleaseDate = "Spotify_Release_Date"
	ColumnPopularity  = "Spotify_Popularity"
	ColumnPreviewURL  = "Preview_URL"
	ColumnURL         = "Spotify_URL"
)

// Columns lists the enrichment columns in the order they are written.
var Columns = []string{
	ColumnTrackID,
	ColumnURI,
	ColumnTrackName,
	ColumnArtists,
	ColumnAlbum,
	ColumnReleaseDate,
	ColumnPopularity,
	ColumnPreviewURL,
	ColumnURL,
}

// Record is the authoritative metadata for one catalog track. Two records
// with the same ID denote the same track.
type Record struct {
	ID          string   `json:"id"`
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"release_date"`
	Popularity  int      `json:"popularity"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	ExternalURL string   `json:"external_url"`
}

// Field is one enrichment column and its value.
type Field struct {
	Column string
	Value  string
}

// ArtistsDisplay joins artist names the way they are stored in the database.
func (r Record) ArtistsDisplay() string {
	return strings.Join(r.Artists, ", ")
}

// PrimaryArtist returns the first credited artist, or "" when none are listed.
func (r Record) PrimaryArtist() string {
	if len(r.Artists) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Artists[0])
}

// Fields renders the record as enrichment columns in Columns order.
func (r Record) Fields() []Field {
	return []Field{
		{Column: ColumnTrackID, Value: r.ID},
		{Column: ColumnURI, Value: r.URI},
		{Column: ColumnTrackName, Value: r.Name},
		{Column: ColumnArtists, Value: r.ArtistsDisplay()},
		{Column: ColumnAlbum, Value: r.Album},
		{Column: ColumnReleaseDate, Value: r.ReleaseDate},
		{Column: ColumnPopularity, Value: strconv.Itoa(r.Popularity)},
		{Column: ColumnPreviewURL, Value: r.PreviewURL},
		{Column: ColumnURL, Value: r.ExternalURL},
	}
}

// EmptyFields returns every enrichment column with an empty value, used for
// rows that could not be matched.
func EmptyFields() []Field {
	fields := make([]Field, len(Columns))
	for i, col := range Columns {
		fields[i] = Field{Column: col}
	}
	return fields
}
