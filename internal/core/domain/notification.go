package domain

import "time"

// NotificationAction is a user-invokable remedy attached to a notification.
// Run may be nil when the UI layer wires behavior itself.
type NotificationAction struct {
	Label string
	Run   func() error
}

// Notification is a process-local, user-facing error surface. Never
// persisted.
type Notification struct {
	ID          string
	Title       string
	Body        string
	Severity    Severity
	Timestamp   time.Time
	Dismissed   bool
	DismissedAt time.Time
	Actions     []NotificationAction
}
