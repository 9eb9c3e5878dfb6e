package domain

import "encoding/json"

// QueuedAction is a deferred side-effecting operation persisted for replay
// once connectivity is restored.
type QueuedAction struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  int64           `json:"timestamp"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
}

// Exhausted reports whether the action has used up all of its retries.
func (a *QueuedAction) Exhausted() bool {
	return a.RetryCount >= a.MaxRetries
}
