// Package handler is the orchestration layer: every error funnels through
// Handle, which logs, attempts recovery, and surfaces a notification when
// recovery fails. Handle never propagates an error to its caller, so global
// listeners cannot crash on error-handling errors.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/strategy"
)

// Options select which stages of the pipeline run.
type Options struct {
	Log     bool
	Recover bool
	Notify  bool
}

// DefaultOptions runs the full pipeline.
var DefaultOptions = Options{Log: true, Recover: true, Notify: true}

// Handler wires classification, recovery, and notification together.
type Handler struct {
	registry *strategy.Registry
	notifier *Notifier
	onError  func(error)
}

// New creates a handler. registry and notifier may be nil to disable those
// stages regardless of Options.
func New(registry *strategy.Registry, notifier *Notifier) *Handler {
	return &Handler{registry: registry, notifier: notifier}
}

// Notifier exposes the notification surface for UI layers.
func (h *Handler) Notifier() *Notifier {
	return h.notifier
}

// OnError installs a sink invoked for every handled error, panic-guarded by
// Handle's recover. Used to feed health reporting.
func (h *Handler) OnError(fn func(error)) {
	h.onError = fn
}

// Handle runs the pipeline for one error. It always returns: internal
// failures are logged, never propagated.
func (h *Handler) Handle(ctx context.Context, err error, ectx *domain.ErrorContext, opts Options) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Error handler panicked", "panic", p)
		}
	}()

	if err == nil {
		return
	}
	if ectx == nil {
		ectx = domain.NewErrorContext("")
	}

	if h.onError != nil {
		h.onError(err)
	}

	severity := domain.SeverityOf(err)
	if opts.Log {
		h.log(err, ectx, severity)
	}

	recovered := false
	if opts.Recover && h.registry != nil {
		recovered = h.registry.Attempt(ctx, err, ectx)
	}

	if !recovered && opts.Notify && h.notifier != nil {
		h.notify(err, severity)
	}
}

func (h *Handler) log(err error, ectx *domain.ErrorContext, severity domain.Severity) {
	attrs := []any{
		"error", err,
		"kind", domain.KindOf(err),
		"severity", severity,
		"page", ectx.Page,
		"client", ectx.ClientInfo,
		"correlation_id", ectx.CorrelationID,
	}
	if len(ectx.Actions) > 0 {
		attrs = append(attrs, "actions", ectx.Actions)
	}

	switch severity {
	case domain.SeverityCritical, domain.SeverityHigh:
		slog.Error("Handled error", attrs...)
	case domain.SeverityLow:
		slog.Debug("Handled error", attrs...)
	default:
		slog.Warn("Handled error", attrs...)
	}
}

func (h *Handler) notify(err error, severity domain.Severity) {
	msg := MessageFor(err)
	notif := &domain.Notification{
		ID:        uuid.New().String(),
		Title:     msg.Title,
		Body:      msg.Body,
		Severity:  severity,
		Timestamp: time.Now(),
	}
	for _, label := range msg.Actions {
		notif.Actions = append(notif.Actions, domain.NotificationAction{Label: label})
	}
	h.notifier.Publish(notif)
}
