package worker

import (
	"context"
	"log/slog"
	"time"
)

// ExpiryStore deletes entries whose TTL has passed.
type ExpiryStore interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// Pruner deletes expired storage entries on an interval. Redis and the
// in-process store expire entries natively; only SQL-backed storage needs
// this sweep.
type Pruner struct {
	store    ExpiryStore
	interval time.Duration
}

// NewPruner creates a new Pruner worker.
func NewPruner(store ExpiryStore, interval time.Duration) *Pruner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Pruner{store: store, interval: interval}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	n, err := p.store.PruneExpired(ctx)
	if err != nil {
		slog.Error("Failed to prune expired entries", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("Pruned expired entries", "count", n)
	}
}
