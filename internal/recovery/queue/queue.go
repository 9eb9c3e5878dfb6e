// Package queue provides a durable FIFO of deferred side-effecting actions,
// drained when connectivity returns.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/connectivity"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/metrics"
)

// Executor runs a queued action's side effect.
type Executor func(ctx context.Context, payload json.RawMessage) error

// Connectivity is the slice of the connectivity monitor the queue needs.
type Connectivity interface {
	Online() bool
	Subscribe() <-chan connectivity.State
}

// Config holds queue settings.
type Config struct {
	MaxRetries int // default per-action retry budget
}

// Queue holds pending actions in memory, persisting the full list after
// every mutation. Processing is single-flight: overlapping triggers (manual
// flush racing an online event) cannot double-process an action.
type Queue struct {
	cfg   Config
	store *storage.Adapter
	conn  Connectivity

	mu        sync.Mutex
	actions   []*domain.QueuedAction
	executors map[string]Executor

	processing atomic.Bool
	now        func() time.Time
}

// New creates a queue. Call Load before Start to pick up persisted actions.
func New(cfg Config, store *storage.Adapter, conn Connectivity) *Queue {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Queue{
		cfg:       cfg,
		store:     store,
		conn:      conn,
		executors: make(map[string]Executor),
		now:       time.Now,
	}
}

// RegisterExecutor routes actions of the given type to fn.
func (q *Queue) RegisterExecutor(actionType string, fn Executor) {
	q.mu.Lock()
	q.executors[actionType] = fn
	q.mu.Unlock()
}

// Load reads the persisted queue. Malformed data starts empty.
func (q *Queue) Load(ctx context.Context) error {
	var actions []*domain.QueuedAction
	ok, err := q.store.GetJSON(ctx, storage.QueueKey, &actions)
	if err != nil {
		return err
	}

	q.mu.Lock()
	if ok {
		q.actions = actions
	}
	depth := len(q.actions)
	q.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))
	if depth > 0 {
		slog.Info("Loaded persisted action queue", "count", depth)
	}
	return nil
}

// Enqueue appends an action and persists the queue. When online, processing
// is triggered immediately in the background. A maxRetries of 0 uses the
// configured default.
func (q *Queue) Enqueue(ctx context.Context, actionType string, payload any, maxRetries int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", actionType, err)
	}
	if maxRetries <= 0 {
		maxRetries = q.cfg.MaxRetries
	}

	action := &domain.QueuedAction{
		ID:         uuid.New().String(),
		Type:       actionType,
		Payload:    data,
		Timestamp:  q.now().UnixMilli(),
		MaxRetries: maxRetries,
	}

	q.mu.Lock()
	q.actions = append(q.actions, action)
	q.mu.Unlock()

	if err := q.persist(ctx); err != nil {
		return err
	}
	slog.Debug("Queued action", "type", actionType, "id", action.ID)

	if q.conn.Online() {
		go func() {
			if err := q.Process(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("Background queue processing failed", "error", err)
			}
		}()
	}
	return nil
}

// Len returns the number of pending actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Process drains the queue once. No-op when offline, empty, or already
// processing. Each action is executed in original order; failures are
// re-queued at the back with an incremented retry count until the budget is
// exhausted, at which point the action is dropped with a warning.
func (q *Queue) Process(ctx context.Context) error {
	if !q.conn.Online() {
		return nil
	}
	if !q.processing.CompareAndSwap(false, true) {
		return nil
	}
	defer q.processing.Store(false)

	q.mu.Lock()
	batch := q.actions
	q.actions = nil
	q.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	slog.Info("Processing action queue", "count", len(batch))

	for _, action := range batch {
		q.mu.Lock()
		exec, ok := q.executors[action.Type]
		q.mu.Unlock()

		if !ok {
			slog.Warn("Dropping action with unknown type", "type", action.Type, "id", action.ID)
			metrics.QueuedActions.WithLabelValues(action.Type, "unknown_type").Inc()
			continue
		}

		if err := exec(ctx, action.Payload); err != nil {
			if action.RetryCount < action.MaxRetries {
				action.RetryCount++
				q.mu.Lock()
				q.actions = append(q.actions, action)
				q.mu.Unlock()
				metrics.QueuedActions.WithLabelValues(action.Type, "retry").Inc()
				slog.Debug("Action failed, re-queued",
					"type", action.Type, "id", action.ID, "retry", action.RetryCount)
			} else {
				// Dropping after the retry budget is accepted policy
				slog.Warn("Dropping action after exhausting retries",
					"type", action.Type, "id", action.ID, "attempts", action.RetryCount+1, "error", err)
				metrics.QueuedActions.WithLabelValues(action.Type, "dropped").Inc()
			}
			continue
		}

		metrics.QueuedActions.WithLabelValues(action.Type, "success").Inc()
	}

	return q.persist(ctx)
}

func (q *Queue) persist(ctx context.Context) error {
	q.mu.Lock()
	actions := q.actions
	depth := len(actions)
	q.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))
	if err := q.store.SetJSON(ctx, storage.QueueKey, actions); err != nil {
		return fmt.Errorf("failed to persist action queue: %w", err)
	}
	return nil
}

// Start drains the queue on every offline-to-online transition until ctx is
// cancelled.
func (q *Queue) Start(ctx context.Context) {
	events := q.conn.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-events:
			if state == connectivity.StateOnline {
				if err := q.Process(ctx); err != nil {
					slog.Warn("Queue processing after reconnect failed", "error", err)
				}
			}
		}
	}
}
