package handler

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/connectivity"
)

// Guard runs fn and routes a panic or returned error through the handler
// pipeline instead of letting it escape.
func (h *Handler) Guard(ctx context.Context, ectx *domain.ErrorContext, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			h.Handle(ctx, fmt.Errorf("uncaught panic: %v", p), ectx, DefaultOptions)
		}
	}()
	if err := fn(); err != nil {
		h.Handle(ctx, err, ectx, DefaultOptions)
	}
}

// Go runs fn on its own goroutine under Guard.
func (h *Handler) Go(ctx context.Context, ectx *domain.ErrorContext, fn func() error) {
	go h.Guard(ctx, ectx, fn)
}

// WatchConnectivity surfaces a notification whenever connectivity is lost.
// Recovery is skipped: the network-retry strategy would just block until
// reconnect, which the queue already handles.
func (h *Handler) WatchConnectivity(ctx context.Context, monitor *connectivity.Monitor) {
	events := monitor.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-events:
			if state == connectivity.StateOffline {
				h.Handle(ctx,
					domain.E(domain.KindNetwork, "network connection lost"),
					domain.NewErrorContext("", "connectivity-change"),
					Options{Log: true, Notify: true})
			}
		}
	}
}

// WatchMemory periodically checks heap usage against limit and pushes a
// synthetic resource-pressure error through the full pipeline when usage
// crosses 90%. A zero limit disables the watcher.
func (h *Handler) WatchMemory(ctx context.Context, limit uint64, interval time.Duration) {
	if limit == 0 {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)
			if float64(stats.HeapAlloc) > 0.9*float64(limit) {
				h.Handle(ctx,
					domain.E(domain.KindResource, "high memory usage"),
					domain.NewErrorContext("", "memory-check"),
					DefaultOptions)
			}
		}
	}
}
