package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttempts tracks backoff retries across all operations
	RetryAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resilience_retry_attempts_total",
			Help: "Total number of retry attempts",
		},
	)

	// RecoveryAttempts tracks strategy invocations by outcome
	RecoveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_recovery_attempts_total",
			Help: "Total number of recovery strategy invocations",
		},
		[]string{"strategy", "outcome"},
	)

	// QueueDepth tracks the number of pending offline actions
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resilience_queue_depth",
			Help: "Number of actions waiting in the offline queue",
		},
	)

	// QueuedActions tracks processed actions by type and outcome
	QueuedActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_queued_actions_total",
			Help: "Total number of queued action executions",
		},
		[]string{"type", "outcome"},
	)

	// SessionSaves tracks session snapshot writes
	SessionSaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resilience_session_saves_total",
			Help: "Total number of session snapshots saved",
		},
	)

	// SessionRestores tracks restore attempts by outcome
	SessionRestores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_session_restores_total",
			Help: "Total number of session restore attempts",
		},
		[]string{"outcome"},
	)

	// Notifications tracks user-facing notifications by severity
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_notifications_total",
			Help: "Total number of user-facing notifications published",
		},
		[]string{"severity"},
	)
)
