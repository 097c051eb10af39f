package domain

import "time"

type SessionEventType string

const (
	EventSessionCreated  SessionEventType = "session_created"
	EventSessionRejected SessionEventType = "session_rejected"
	EventSessionEnded    SessionEventType = "session_ended"
)

// SessionEvent is broadcast to dashboard clients over the events socket.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	SessionID SessionID        `json:"session_id,omitempty"`
	UserID    UserID           `json:"user_id"`
	Source    SourceType       `json:"source,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	At        time.Time        `json:"at"`
}
