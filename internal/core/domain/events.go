package domain

import "time"

// SessionStartedEvent is published when a session enters the ACTIVE state.
type SessionStartedEvent struct {
	EventID   string
	SessionID string
	UserID    string
	RoleID    string
	IPAddress *string
	StartedAt time.Time
}

// SessionEndedEvent is published on the terminal session transition.
type SessionEndedEvent struct {
	EventID   string
	SessionID string
	UserID    string
	Reason    string
	EndedAt   time.Time
}

// ViolationRecordedEvent mirrors a persisted violation for downstream consumers.
type ViolationRecordedEvent struct {
	EventID     string
	ViolationID string
	UserID      string
	SessionID   *string
	Type        ViolationType
	Details     string
	OccurredAt  time.Time
}

// PolicyUpdatedEvent announces an administrative policy change.
type PolicyUpdatedEvent struct {
	EventID   string
	PolicyID  string
	RoleID    string
	UpdatedBy string
	UpdatedAt time.Time
	Changes   map[string]any
}
