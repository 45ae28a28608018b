package drivers

import (
	"context"
	"log"
	"time"
)

// staleSweep is the part of the service the sweeper needs.
type staleSweep interface {
	SweepStale(ctx context.Context, olderThan time.Time) (int, error)
}

// Sweeper periodically marks stale drivers offline.
type Sweeper struct {
	svc        staleSweep
	interval   time.Duration
	staleAfter time.Duration
}

// NewSweeper creates a presence sweeper.
func NewSweeper(svc staleSweep, interval, staleAfter time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, staleAfter: staleAfter}
}

// Start runs the sweep loop in a background goroutine until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.svc.SweepStale(ctx, time.Now().Add(-s.staleAfter))
				if err != nil {
					log.Printf("[drivers] presence sweep: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("[drivers] %d driver(s) marked offline", n)
				}
			}
		}
	}()
}
