package service

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between calls to Wait. The first call
// returns immediately.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewPacer returns a Pacer that spaces calls at least interval apart.
// A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		limiter:  rate.NewLimiter(limit, 1),
		interval: interval,
	}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

func (p *Pacer) Interval() time.Duration { return p.interval }
