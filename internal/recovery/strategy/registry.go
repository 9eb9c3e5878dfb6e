// Package strategy routes errors through prioritized recovery handlers.
package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/metrics"
)

// Strategy is a named, conditionally-applicable remediation routine.
// Lower priority runs first.
type Strategy struct {
	Name     string
	Priority int
	Matches  func(err error) bool
	Recover  func(ctx context.Context, err error, ectx *domain.ErrorContext) (bool, error)
}

// Config holds registry settings.
type Config struct {
	// HandlerTimeout bounds each Recover invocation; a timed-out handler
	// counts as a failed attempt.
	HandlerTimeout time.Duration
}

// Registry holds strategies sorted ascending by priority. Insertion order is
// preserved for equal priorities.
type Registry struct {
	cfg Config

	mu         sync.RWMutex
	strategies []Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	return &Registry{cfg: cfg}
}

// Register adds a strategy, keeping priority order.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, s)
	sort.SliceStable(r.strategies, func(i, j int) bool {
		return r.strategies[i].Priority < r.strategies[j].Priority
	})
}

// Attempt tries each matching strategy in priority order until one succeeds.
// A handler that returns false or errors falls through to the next match.
func (r *Registry) Attempt(ctx context.Context, err error, ectx *domain.ErrorContext) bool {
	r.mu.RLock()
	strategies := make([]Strategy, len(r.strategies))
	copy(strategies, r.strategies)
	r.mu.RUnlock()

	slog.Info("Attempting error recovery",
		"error", err, "kind", domain.KindOf(err), "page", ectx.Page)

	for _, s := range strategies {
		if !s.Matches(err) {
			continue
		}

		ok, herr := r.invoke(ctx, s, err, ectx)
		if herr != nil {
			slog.Warn("Recovery strategy errored", "strategy", s.Name, "error", herr)
			metrics.RecoveryAttempts.WithLabelValues(s.Name, "error").Inc()
			continue
		}
		if ok {
			slog.Info("Recovery succeeded", "strategy", s.Name)
			metrics.RecoveryAttempts.WithLabelValues(s.Name, "success").Inc()
			return true
		}
		slog.Debug("Recovery strategy declined", "strategy", s.Name)
		metrics.RecoveryAttempts.WithLabelValues(s.Name, "declined").Inc()
	}

	slog.Warn("No recovery strategy succeeded", "error", err)
	return false
}

type recoverResult struct {
	ok  bool
	err error
}

// invoke runs a handler with a timeout and panic guard. A hanging handler
// fails the attempt instead of blocking recovery indefinitely.
func (r *Registry) invoke(ctx context.Context, s Strategy, err error, ectx *domain.ErrorContext) (bool, error) {
	hctx, cancel := context.WithTimeout(ctx, r.cfg.HandlerTimeout)
	defer cancel()

	done := make(chan recoverResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- recoverResult{err: fmt.Errorf("recovery handler panicked: %v", p)}
			}
		}()
		ok, rerr := s.Recover(hctx, err, ectx)
		done <- recoverResult{ok: ok, err: rerr}
	}()

	select {
	case <-hctx.Done():
		return false, fmt.Errorf("recovery handler %s timed out: %w", s.Name, hctx.Err())
	case res := <-done:
		return res.ok, res.err
	}
}
