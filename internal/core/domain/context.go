package domain

import (
	"runtime"

	"github.com/google/uuid"
)

// sessionID correlates all log entries from a single process run.
var sessionID = uuid.NewString()

// SessionID returns the per-process correlation identifier.
func SessionID() string {
	return sessionID
}

// ErrorContext describes what the user was doing when an error occurred.
// Immutable once constructed; created fresh at each call site and never
// persisted.
type ErrorContext struct {
	Page          string
	ClientInfo    string
	Actions       []string
	State         map[string]any
	CorrelationID string
}

// NewErrorContext builds a context for the given page and action trail.
func NewErrorContext(page string, actions ...string) *ErrorContext {
	return &ErrorContext{
		Page:          page,
		ClientInfo:    runtime.GOOS + "/" + runtime.Version(),
		Actions:       actions,
		CorrelationID: sessionID,
	}
}

// WithState attaches a free-form state map, returning a copy.
func (c *ErrorContext) WithState(state map[string]any) *ErrorContext {
	clone := *c
	clone.State = state
	return &clone
}
