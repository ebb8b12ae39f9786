package catalog

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// PacedSearcher spaces calls to the wrapped searcher at least one interval
// apart. The first call goes through immediately.
type PacedSearcher struct {
	next    Searcher
	limiter *rate.Limiter
}

var _ Searcher = (*PacedSearcher)(nil)

// Pace wraps next so remote searches respect interval. A non-positive
// interval returns next unchanged.
func Pace(next Searcher, interval time.Duration) Searcher {
	if interval <= 0 || next == nil {
		return next
	}
	return &PacedSearcher{next: next, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// SearchTracks waits for the next slot, then delegates.
func (p *PacedSearcher) SearchTracks(ctx context.Context, query string, limit int) ([]Record, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.next.SearchTracks(ctx, query, limit)
}
