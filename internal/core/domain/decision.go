package domain

// Decision is the transient verdict of one access evaluation. It is never
// persisted; callers act on it (throttle, disconnect, redirect) and drop it.
type Decision struct {
	Allowed   bool
	Reason    string
	Violation ViolationType
	Category  string
	Snapshot  *PolicySnapshot
}

// PolicySnapshot carries the live policy state attached to an allow decision
// so the enforcement point can shape traffic without a second lookup.
type PolicySnapshot struct {
	RoleName          string
	Unrestricted      bool
	BandwidthDownMbps float64
	BandwidthUpMbps   float64
	Quota             *QuotaState
	SessionLimit      *SessionLimitState
}

// QuotaState reflects daily quota consumption at evaluation time.
type QuotaState struct {
	UsedBytes      int64
	QuotaBytes     int64
	RemainingBytes int64
}

// SessionLimitState reflects session time limit consumption at evaluation time.
type SessionLimitState struct {
	LimitMinutes     int
	ElapsedMinutes   int
	RemainingMinutes int
}

// Deny builds a terminal denial carrying the violation classification.
func Deny(violation ViolationType, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Violation: violation}
}
