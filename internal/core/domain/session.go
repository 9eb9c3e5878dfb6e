package domain

import (
	"encoding/json"
	"time"
)

// SessionData is a serializable capture of in-progress user interaction
// state. Timestamps are epoch milliseconds across the persistence boundary.
type SessionData struct {
	UserID              string                       `json:"user_id,omitempty"`
	CurrentPage         string                       `json:"current_page"`
	FormData            map[string]map[string]string `json:"form_data"`
	ScrollPosition      int                          `json:"scroll_position"`
	Timestamp           int64                        `json:"timestamp"`
	TutorialProgress    json.RawMessage              `json:"tutorial_progress,omitempty"`
	ConversationContext json.RawMessage              `json:"conversation_context,omitempty"`
}

// Age returns how long ago the snapshot was taken.
func (s *SessionData) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.Timestamp))
}
