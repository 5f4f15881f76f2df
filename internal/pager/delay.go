package pager

import (
	"context"
	"time"

	"MiniShelf/internal/catalog"
)

// DefaultDelay keeps the loading indicator visible long enough to notice.
const DefaultDelay = 500 * time.Millisecond

type delayed struct {
	Source
	d time.Duration
}

// Delayed holds every fetch for d before it returns. d <= 0 returns src as is.
func Delayed(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return delayed{Source: src, d: d}
}

func (s delayed) Fetch(ctx context.Context, start, end int) ([]catalog.EnrichedProduct, error) {
	t := time.NewTimer(s.d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
	}
	return s.Source.Fetch(ctx, start, end)
}
