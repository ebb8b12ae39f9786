package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"trackmerge/internal/catalog"
	"trackmerge/internal/database"
	"trackmerge/internal/logging"
)

const (
	releaseYearColumn  = "Release_Year"
	defaultReleaseYear = 2020
	loopbackRedirect   = "http://127.0.0.1:8000/"
)

// numericColumns are served as numbers when non-empty.
var numericColumns = map[string]struct{}{
	"BPM":                    {},
	"Energy":                 {},
	"Dance":                  {},
	"Loud":                   {},
	"Valence":                {},
	"Acoustic":               {},
	catalog.ColumnPopularity: {},
	"Length":                 {},
}

func (s *Server) handleMusicData(w http.ResponseWriter, r *http.Request) {
	table, err := loadExisting(s.opts.DatabasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, "CSV database not found")
			return
		}
		logging.ErrorWithContext(s.logger, "failed to load music data", "music_data_load_failed",
			logging.Error(err),
			logging.String("path", s.opts.DatabasePath),
			logging.String(logging.FieldErrorHint, "check the database file is readable CSV"))
		s.writeError(w, http.StatusInternalServerError, "error loading music data: "+err.Error())
		return
	}

	songs := make([]orderedObject, 0, table.Len())
	for _, row := range table.Rows {
		songs = append(songs, presentRow(row))
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	s.writeJSON(w, http.StatusOK, songs)
	s.logger.Info("served music data", logging.Int("songs", len(songs)))
}

// loadExisting reads the database, reporting fs.ErrNotExist for a missing
// file rather than an empty table.
func loadExisting(path string) (*database.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return database.Read(f)
}

// presentRow converts a stored row to its JSON shape: numeric columns become
// numbers (0 when unparseable) and Release_Year is derived from the release
// date's leading year.
func presentRow(row *database.Row) orderedObject {
	obj := newOrderedObject(row.Len() + 1)
	for _, key := range row.Keys() {
		value := row.Value(key)
		if _, numeric := numericColumns[key]; numeric && value != "" {
			obj.set(key, parseNumber(value))
			continue
		}
		obj.set(key, value)
	}
	obj.set(releaseYearColumn, releaseYear(row.Value(catalog.ColumnReleaseDate)))
	return obj
}

func parseNumber(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func releaseYear(date string) int {
	if date == "" {
		return defaultReleaseYear
	}
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return defaultReleaseYear
	}
	return year
}

type spotifyConfig struct {
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
}

func (s *Server) handleSpotifyConfig(w http.ResponseWriter, r *http.Request) {
	redirect := redirectURI(r.Host, r.Referer())
	if s.opts.ClientID == "" {
		logging.WarnWithContext(s.logger, "no Spotify client id configured", "spotify_client_id_missing",
			logging.String(logging.FieldErrorHint, "set SPOTIFY_CLIENT_ID in the environment or .env"),
			logging.String(logging.FieldImpact, "the analyzer cannot create playlists"))
	}
	s.logger.Debug("providing redirect uri", logging.String("redirect_uri", redirect))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	s.writeJSON(w, http.StatusOK, spotifyConfig{ClientID: s.opts.ClientID, RedirectURI: redirect})
}

// redirectURI pins the local development hosts to the loopback address
// registered with Spotify and otherwise echoes the request host.
func redirectURI(host, referer string) string {
	if host == "" {
		host = "localhost:8000"
	}
	if host == "localhost:8000" || host == "127.0.0.1:8000" {
		return loopbackRedirect
	}
	scheme := "http"
	if strings.Contains(referer, "https") {
		scheme = "https"
	}
	return scheme + "://" + host + "/"
}

func (s *Server) handleSpotifyCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	target := "/?error=no_code"
	switch code, authErr := query.Get("code"), query.Get("error"); {
	case authErr != "":
		s.logger.Info("spotify authorization failed", logging.String("error", authErr))
		target = "/?error=" + url.QueryEscape(authErr)
	case code != "":
		s.logger.Info("received spotify authorization code")
		target = "/?code=" + url.QueryEscape(code)
	default:
		s.logger.Info("spotify callback without code or error")
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
