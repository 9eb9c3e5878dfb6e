package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/domain"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/metrics"
)

const (
	lowSeverityDismissAfter = 10 * time.Second
	dismissedRetention      = 5 * time.Minute
	pruneInterval           = time.Minute
)

// Notifier fans user-facing notifications out to subscribers and keeps the
// process-local notification list pruned.
type Notifier struct {
	mu            sync.Mutex
	notifications []*domain.Notification
	subs          []func(domain.Notification)
	now           func() time.Time

	// Overridable in tests
	dismissAfter time.Duration
}

// NewNotifier creates a notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		now:          time.Now,
		dismissAfter: lowSeverityDismissAfter,
	}
}

// Subscribe registers a listener for every published notification.
func (n *Notifier) Subscribe(fn func(domain.Notification)) {
	n.mu.Lock()
	n.subs = append(n.subs, fn)
	n.mu.Unlock()
}

// Publish records the notification and notifies subscribers. Low-severity
// notifications dismiss themselves after a short delay.
func (n *Notifier) Publish(notif *domain.Notification) {
	n.mu.Lock()
	n.notifications = append(n.notifications, notif)
	subs := make([]func(domain.Notification), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	metrics.Notifications.WithLabelValues(string(notif.Severity)).Inc()

	for _, fn := range subs {
		notifySubscriber(fn, *notif)
	}

	if notif.Severity == domain.SeverityLow {
		id := notif.ID
		time.AfterFunc(n.dismissAfter, func() { n.Dismiss(id) })
	}
}

func notifySubscriber(fn func(domain.Notification), notif domain.Notification) {
	defer func() {
		if p := recover(); p != nil {
			slog.Warn("Notification subscriber panicked", "panic", p)
		}
	}()
	fn(notif)
}

// Dismiss marks a notification as dismissed. Unknown IDs are ignored.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, notif := range n.notifications {
		if notif.ID == id && !notif.Dismissed {
			notif.Dismissed = true
			notif.DismissedAt = n.now()
		}
	}
}

// Active returns the non-dismissed notifications, oldest first.
func (n *Notifier) Active() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Notification, 0, len(n.notifications))
	for _, notif := range n.notifications {
		if !notif.Dismissed {
			out = append(out, *notif)
		}
	}
	return out
}

// InvokeAction runs a suggested action, guarding against a failing handler
// so it cannot crash the notification surface.
func (n *Notifier) InvokeAction(action domain.NotificationAction) {
	if action.Run == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			slog.Warn("Notification action panicked", "label", action.Label, "panic", p)
		}
	}()
	if err := action.Run(); err != nil {
		slog.Warn("Notification action failed", "label", action.Label, "error", err)
	}
}

// prune drops dismissed notifications older than the retention window.
func (n *Notifier) prune() {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := n.now().Add(-dismissedRetention)
	kept := n.notifications[:0]
	for _, notif := range n.notifications {
		if notif.Dismissed && notif.DismissedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, notif)
	}
	n.notifications = kept
}

// Start runs the prune loop until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.prune()
		}
	}
}
