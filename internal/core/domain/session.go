package domain

import "time"

// Session represents a network access session from authentication to
// disconnect. Lifecycle is one-way: active until ended, immutable afterwards.
type Session struct {
	ID            string
	UserID        string
	RoleID        string
	TokenHash     *string
	IPAddress     *string
	MACAddress    *string
	StartedAt     time.Time
	EndedAt       *time.Time
	ExpiresAt     time.Time
	IsActive      bool
	EndReason     *string
	DataUsedBytes int64
}

// Ended reports whether the session has reached its terminal state.
func (s Session) Ended() bool {
	return !s.IsActive && s.EndedAt != nil
}

// ElapsedMinutes returns whole minutes since the session started. For ended
// sessions the value is frozen at (endedAt - startedAt).
func (s Session) ElapsedMinutes(now time.Time) int {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	elapsed := end.Sub(s.StartedAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed.Minutes())
}

// SessionFilter narrows administrative session listings.
type SessionFilter struct {
	Active   *bool
	RoleName string
	Limit    int
}

// Session end reasons recorded on the terminal transition.
const (
	SessionEndReasonLogout     = "logout"
	SessionEndReasonDisconnect = "disconnect"
	SessionEndReasonExpired    = "policy_expired"
	SessionEndReasonSuperseded = "superseded"
)
