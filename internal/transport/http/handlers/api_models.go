package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
	Role     string  `json:"role"`
}

func newUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.RoleName,
	}
}

// UserView is the administrative projection of an account, including the
// fields the self-service summary hides.
type UserView struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  *string    `json:"full_name,omitempty"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func newUserView(user *domain.User) UserView {
	return UserView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.RoleName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

// LoginRequest defines the payload for the password login endpoint.
type LoginRequest struct {
	Identifier string  `json:"identifier" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	MACAddress *string `json:"mac_address"`
}

// SessionView is the API representation of a session.
type SessionView struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	IPAddress     *string    `json:"ip_address,omitempty"`
	MACAddress    *string    `json:"mac_address,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	IsActive      bool       `json:"is_active"`
	EndReason     *string    `json:"end_reason,omitempty"`
	DataUsedBytes int64      `json:"data_used_bytes"`
}

func newSessionView(session *domain.Session) SessionView {
	return SessionView{
		ID:            session.ID,
		UserID:        session.UserID,
		IPAddress:     session.IPAddress,
		MACAddress:    session.MACAddress,
		StartedAt:     session.StartedAt,
		EndedAt:       session.EndedAt,
		ExpiresAt:     session.ExpiresAt,
		IsActive:      session.IsActive,
		EndReason:     session.EndReason,
		DataUsedBytes: session.DataUsedBytes,
	}
}

// LoginResponse describes a successful portal login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserSummary  `json:"user"`
	Session     SessionView  `json:"session"`
	Policy      *PolicyState `json:"policy,omitempty"`
}

// GuestOTPRequest asks for a one-time code for the supplied email.
type GuestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// GuestOTPResponse acknowledges a code request.
type GuestOTPResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
	// DevCode is ONLY exposed in development mode. In production the code is
	// delivered out of band.
	DevCode *string `json:"dev_code,omitempty"`
}

// GuestVerifyRequest carries a code verification attempt.
type GuestVerifyRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Code       string  `json:"code" binding:"required"`
	MACAddress *string `json:"mac_address"`
}

// CurrentSessionResponse bundles the caller's active session with a live
// decision and today's usage.
type CurrentSessionResponse struct {
	Session  SessionView      `json:"session"`
	Decision DecisionResponse `json:"decision"`
	Usage    *UsageView       `json:"usage,omitempty"`
}

// RoleView is the API representation of a role.
type RoleView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func newRoleView(role domain.Role) RoleView {
	return RoleView{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
	}
}

// EvaluateRequest identifies one access attempt to check against policy.
type EvaluateRequest struct {
	UserID    string  `json:"user_id"`
	SessionID *string `json:"session_id"`
	Resource  *string `json:"resource"`
}

// QuotaStateView mirrors daily quota consumption at evaluation time.
type QuotaStateView struct {
	UsedBytes      int64 `json:"used_bytes"`
	QuotaBytes     int64 `json:"quota_bytes"`
	RemainingBytes int64 `json:"remaining_bytes"`
}

// SessionLimitStateView mirrors session time consumption at evaluation time.
type SessionLimitStateView struct {
	LimitMinutes     int `json:"limit_minutes"`
	ElapsedMinutes   int `json:"elapsed_minutes"`
	RemainingMinutes int `json:"remaining_minutes"`
}

// PolicyState carries the live limits attached to an allow decision.
type PolicyState struct {
	Role              string                 `json:"role"`
	Unrestricted      bool                   `json:"unrestricted,omitempty"`
	BandwidthDownMbps float64                `json:"bandwidth_down_mbps"`
	BandwidthUpMbps   float64                `json:"bandwidth_up_mbps"`
	Quota             *QuotaStateView        `json:"quota,omitempty"`
	SessionLimit      *SessionLimitStateView `json:"session_limit,omitempty"`
}

func newPolicyState(snapshot *domain.PolicySnapshot) *PolicyState {
	if snapshot == nil {
		return nil
	}
	state := &PolicyState{
		Role:              snapshot.RoleName,
		Unrestricted:      snapshot.Unrestricted,
		BandwidthDownMbps: snapshot.BandwidthDownMbps,
		BandwidthUpMbps:   snapshot.BandwidthUpMbps,
	}
	if snapshot.Quota != nil {
		state.Quota = &QuotaStateView{
			UsedBytes:      snapshot.Quota.UsedBytes,
			QuotaBytes:     snapshot.Quota.QuotaBytes,
			RemainingBytes: snapshot.Quota.RemainingBytes,
		}
	}
	if snapshot.SessionLimit != nil {
		state.SessionLimit = &SessionLimitStateView{
			LimitMinutes:     snapshot.SessionLimit.LimitMinutes,
			ElapsedMinutes:   snapshot.SessionLimit.ElapsedMinutes,
			RemainingMinutes: snapshot.SessionLimit.RemainingMinutes,
		}
	}
	return state
}

// DecisionResponse is the verdict of one access evaluation.
type DecisionResponse struct {
	Allowed   bool         `json:"allowed"`
	Reason    string       `json:"reason"`
	Violation string       `json:"violation,omitempty"`
	Category  string       `json:"category,omitempty"`
	Policy    *PolicyState `json:"policy,omitempty"`
}

func newDecisionResponse(decision *domain.Decision) DecisionResponse {
	return DecisionResponse{
		Allowed:   decision.Allowed,
		Reason:    decision.Reason,
		Violation: string(decision.Violation),
		Category:  decision.Category,
		Policy:    newPolicyState(decision.Snapshot),
	}
}

// PolicyView is the API representation of a role policy.
type PolicyView struct {
	ID                      string   `json:"id"`
	RoleID                  string   `json:"role_id"`
	RoleName                string   `json:"role_name"`
	BandwidthDownMbps       float64  `json:"bandwidth_down_mbps"`
	BandwidthUpMbps         float64  `json:"bandwidth_up_mbps"`
	DailyQuotaBytes         *int64   `json:"daily_quota_bytes,omitempty"`
	SessionTimeLimitMinutes *int     `json:"session_time_limit_minutes,omitempty"`
	AllowedHoursStart       *string  `json:"allowed_hours_start,omitempty"`
	AllowedHoursEnd         *string  `json:"allowed_hours_end,omitempty"`
	Access24x7              bool     `json:"access_24x7"`
	BlockedCategories       []string `json:"blocked_categories"`
}

func newPolicyView(policy *domain.Policy) PolicyView {
	view := PolicyView{
		ID:                      policy.ID,
		RoleID:                  policy.RoleID,
		RoleName:                policy.RoleName,
		BandwidthDownMbps:       policy.BandwidthDownMbps,
		BandwidthUpMbps:         policy.BandwidthUpMbps,
		DailyQuotaBytes:         policy.DailyQuotaBytes,
		SessionTimeLimitMinutes: policy.SessionTimeLimitMinutes,
		Access24x7:              policy.Access24x7,
		BlockedCategories:       policy.BlockedCategories,
	}
	if view.BlockedCategories == nil {
		view.BlockedCategories = []string{}
	}
	if policy.AllowedHoursStart != nil {
		start := policy.AllowedHoursStart.String()
		view.AllowedHoursStart = &start
	}
	if policy.AllowedHoursEnd != nil {
		end := policy.AllowedHoursEnd.String()
		view.AllowedHoursEnd = &end
	}
	return view
}

// UsageReportRequest is one metering report from the enforcement point.
type UsageReportRequest struct {
	UserID      string  `json:"user_id" binding:"required"`
	SessionID   *string `json:"session_id"`
	Date        string  `json:"date"`
	DataBytes   int64   `json:"data_bytes"`
	TimeMinutes int64   `json:"time_minutes"`
}

// UsageView is the API representation of a daily usage record.
type UsageView struct {
	UserID          string `json:"user_id"`
	Date            string `json:"date"`
	DataUsedBytes   int64  `json:"data_used_bytes"`
	TimeUsedMinutes int64  `json:"time_used_minutes"`
	SessionCount    int    `json:"session_count"`
}

func newUsageView(record *domain.UsageRecord) UsageView {
	return UsageView{
		UserID:          record.UserID,
		Date:            record.Date,
		DataUsedBytes:   record.DataUsedBytes,
		TimeUsedMinutes: record.TimeUsedMinutes,
		SessionCount:    record.SessionCount,
	}
}

// ViolationView is the API representation of a recorded violation.
type ViolationView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID *string   `json:"session_id,omitempty"`
	Type      string    `json:"type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func newViolationView(violation domain.Violation) ViolationView {
	return ViolationView{
		ID:        violation.ID,
		UserID:    violation.UserID,
		SessionID: violation.SessionID,
		Type:      string(violation.Type),
		Details:   violation.Details,
		CreatedAt: violation.CreatedAt,
	}
}

// HealthResponse reports liveness state.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
