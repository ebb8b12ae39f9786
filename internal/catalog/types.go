package catalog

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type apiArtist struct {
	Name string `json:"name"`
}

type apiAlbum struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type apiTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	URI          string            `json:"uri"`
	Popularity   int               `json:"popularity"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	Artists      []apiArtist       `json:"artists"`
	Album        apiAlbum          `json:"album"`
}

type searchResponse struct {
	Tracks struct {
		Items []*apiTrack `json:"items"`
	} `json:"tracks"`
}

type playlistItem struct {
	Track *apiTrack `json:"track"`
}

type playlistPage struct {
	Items []playlistItem `json:"items"`
	Next  *string        `json:"next"`
}

func (t *apiTrack) record() Record {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	rec := Record{
		ID:          t.ID,
		URI:         t.URI,
		Name:        t.Name,
		Artists:     artists,
		Album:       t.Album.Name,
		ReleaseDate: t.Album.ReleaseDate,
		Popularity:  t.Popularity,
		ExternalURL: t.ExternalURLs["spotify"],
	}
	if t.PreviewURL != nil {
		rec.PreviewURL = *t.PreviewURL
	}
	return rec
}
