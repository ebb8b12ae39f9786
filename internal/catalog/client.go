package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"trackmerge/internal/logging"
)

// PlaylistFields restricts playlist listings to the attributes a Record needs.
const PlaylistFields = "items.track(id,name,artists,album(name,release_date),popularity,preview_url,uri,external_urls),next"

const (
	defaultAPIBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL    = "https://accounts.spotify.com/api/token"
	defaultPageSize    = 100
	maxRetryAfter      = 30 * time.Second
	tokenExpirySlack   = 60 * time.Second
	maxRequestAttempts = 2
)

// Searcher performs free-text track searches against the catalog.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]Record, error)
}

// PlaylistSource lists every track of a playlist.
type PlaylistSource interface {
	PlaylistTracks(ctx context.Context, playlistID string, pageSize int) ([]Record, error)
}

// Client talks to the Spotify Web API using the client-credentials flow.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	market       string
	httpClient   *http.Client
	logger       *slog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

var (
	_ Searcher       = (*Client)(nil)
	_ PlaylistSource = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points API calls at a different host (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		if tokenURL = strings.TrimSpace(tokenURL); tokenURL != "" {
			c.tokenURL = tokenURL
		}
	}
}

// WithMarket restricts search results to an ISO 3166-1 market.
func WithMarket(market string) Option {
	return func(c *Client) {
		c.market = strings.ToUpper(strings.TrimSpace(market))
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a catalog client.
func New(clientID, clientSecret string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify client id and secret required")
	}
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultAPIBaseURL,
		tokenURL:     defaultTokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "spotify")
	return client, nil
}

// SearchTracks runs a track search and returns up to limit records in
// catalog relevance order.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if c.market != "" {
		params.Set("market", c.market)
	}

	var payload searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}
	records := make([]Record, 0, len(payload.Tracks.Items))
	for _, item := range payload.Tracks.Items {
		if item == nil {
			continue
		}
		records = append(records, item.record())
	}
	return records, nil
}

// PlaylistTracks pages through a playlist until the API reports no next
// page. Entries without a track (removed or unavailable items) are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, pageSize int) ([]Record, error) {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return nil, errors.New("playlist id must not be empty")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var records []Record
	offset := 0
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("fields", PlaylistFields)
		endpoint := c.baseURL + "/playlists/" + url.PathEscape(playlistID) + "/tracks?" + params.Encode()

		var payload playlistPage
		if err := c.getJSON(ctx, endpoint, &payload); err != nil {
			return nil, fmt.Errorf("spotify playlist page %d: %w", page, err)
		}
		for _, item := range payload.Items {
			if item.Track == nil {
				continue
			}
			records = append(records, item.Track.record())
		}
		if payload.Next == nil || strings.TrimSpace(*payload.Next) == "" {
			break
		}
		offset += pageSize
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	for attempt := 1; ; attempt++ {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return fmt.Errorf("execute request (latency=%v): %w", latency, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			c.logger.Debug("spotify request completed",
				logging.String("endpoint", req.URL.Path),
				logging.Duration("latency", latency))
			return nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt < maxRequestAttempts:
			wait := retryAfter(resp.Header.Get("Retry-After"))
			drainAndClose(resp.Body)
			c.logger.Info("spotify rate limited; retrying",
				logging.String(logging.FieldEventType, "spotify_rate_limited"),
				logging.Duration("retry_after", wait))
			if err := sleepContext(ctx, wait); err != nil {
				return err
			}
		case resp.StatusCode == http.StatusUnauthorized && attempt < maxRequestAttempts:
			drainAndClose(resp.Body)
			c.invalidateToken()
		default:
			drainAndClose(resp.Body)
			return fmt.Errorf("spotify returned %d (latency=%v)", resp.StatusCode, latency)
		}
	}
}

// HealthCheck requests a fresh access token, which verifies both the
// credentials and the token endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.invalidateToken()
	_, err := c.token(ctx)
	return err
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request access token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("token endpoint returned empty access token")
	}
	lifetime := time.Duration(payload.ExpiresIn) * time.Second
	c.accessToken = payload.AccessToken
	c.expiresAt = c.now().Add(lifetime - tokenExpirySlack)
	return c.accessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.expiresAt = time.Time{}
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return time.Second
	}
	wait := time.Duration(seconds) * time.Second
	if wait > maxRetryAfter {
		return maxRetryAfter
	}
	return wait
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
