package domain

import "time"

// ViolationType classifies the policy rule a denied attempt broke.
type ViolationType string

const (
	ViolationTimeRestriction  ViolationType = "TIME_RESTRICTION"
	ViolationQuotaExceeded    ViolationType = "QUOTA_EXCEEDED"
	ViolationSessionTimeLimit ViolationType = "SESSION_TIME_LIMIT"
	ViolationCategoryBlocked  ViolationType = "CATEGORY_BLOCKED"
)

// Violation is an append-only record of a denied access attempt. Written once,
// never mutated.
type Violation struct {
	ID        string
	UserID    string
	SessionID *string
	Type      ViolationType
	Details   string
	CreatedAt time.Time
}
