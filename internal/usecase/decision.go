package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

// ErrInvalidEvaluation is returned when an evaluation request is malformed.
var ErrInvalidEvaluation = errors.New("invalid evaluation request")

const (
	reasonNotFound        = "user or policy not found"
	reasonSessionNotFound = "session not found"

	outcomeAllowed  = "allowed"
	outcomeDenied   = "denied"
	outcomeNotFound = "not_found"
)

// EvaluateInput identifies one access attempt.
type EvaluateInput struct {
	UserID    string
	SessionID *string
	Resource  *string
}

// checkContext accumulates state across the ordered checks of one evaluation.
type checkContext struct {
	input        EvaluateInput
	policy       *domain.Policy
	session      *domain.Session
	now          time.Time
	quota        *domain.QuotaState
	sessionLimit *domain.SessionLimitState
}

// accessCheck is one link of the evaluation chain. A nil decision passes
// control to the next check; a non-nil decision is the terminal denial.
type accessCheck interface {
	name() string
	evaluate(ctx context.Context, cc *checkContext) (*domain.Decision, error)
}

// DecisionService evaluates access attempts against the principal's role
// policy. Checks run in a fixed order and short-circuit on the first denial;
// every rule denial leaves exactly one violation record behind.
type DecisionService struct {
	users            port.UserRepository
	policies         port.PolicyRepository
	usage            *UsageService
	sessions         port.SessionRepository
	violations       *ViolationService
	unrestrictedRole string
	logger           *zap.Logger
	metrics          *DecisionMetrics
	now              func() time.Time
	location         *time.Location
	checks           []accessCheck
}

// NewDecisionService constructs a DecisionService. categories may be nil, in
// which case the built-in table applies.
func NewDecisionService(
	users port.UserRepository,
	policies port.PolicyRepository,
	usage *UsageService,
	sessions port.SessionRepository,
	violations *ViolationService,
	categories domain.CategoryTable,
	unrestrictedRole string,
	logger *zap.Logger,
) *DecisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if categories == nil {
		categories = domain.DefaultCategoryTable()
	}
	if unrestrictedRole == "" {
		unrestrictedRole = domain.RoleAdmin
	}
	service := &DecisionService{
		users:            users,
		policies:         policies,
		usage:            usage,
		sessions:         sessions,
		violations:       violations,
		unrestrictedRole: unrestrictedRole,
		logger:           logger,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	service.location = time.Local
	service.checks = []accessCheck{
		allowedHoursCheck{},
		dailyQuotaCheck{usage: usage},
		sessionLimitCheck{},
		categoryCheck{table: categories},
	}
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *DecisionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithLocation sets the time zone allowed-hours windows are evaluated in.
// Policies express their windows in the site's wall-clock time, so the engine
// converts the instant of the attempt before comparing. Defaults to the
// server's local zone.
func (s *DecisionService) WithLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

// WithMetrics attaches Prometheus collectors to the engine.
func (s *DecisionService) WithMetrics(metrics *DecisionMetrics) {
	s.metrics = metrics
}

// Evaluate runs the check chain for one access attempt. A missing user,
// inactive account, or missing policy yields a plain denial without a
// violation record; storage faults on required reads surface as errors, never
// as denials.
func (s *DecisionService) Evaluate(ctx context.Context, input EvaluateInput) (*domain.Decision, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidEvaluation)
	}

	principal, err := s.users.ResolvePrincipal(ctx, input.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.notFoundDecision(reasonNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate: resolve principal: %w", err)
	}
	if !principal.IsActive {
		return s.notFoundDecision(reasonNotFound), nil
	}

	policy, err := s.policies.GetByRole(ctx, principal.RoleID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.notFoundDecision(reasonNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate: load policy: %w", err)
	}

	if principal.RoleName == s.unrestrictedRole {
		s.metrics.observeDecision(outcomeAllowed, "exemption")
		return &domain.Decision{
			Allowed: true,
			Reason:  "unrestricted role",
			Snapshot: &domain.PolicySnapshot{
				RoleName:          principal.RoleName,
				Unrestricted:      true,
				BandwidthDownMbps: policy.BandwidthDownMbps,
				BandwidthUpMbps:   policy.BandwidthUpMbps,
			},
		}, nil
	}

	cc := &checkContext{input: input, policy: policy, now: s.now().In(s.location)}

	if input.SessionID != nil {
		session, err := s.sessions.GetByID(ctx, *input.SessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return s.notFoundDecision(reasonSessionNotFound), nil
		}
		if err != nil {
			return nil, fmt.Errorf("evaluate: load session: %w", err)
		}
		cc.session = session
	}

	for _, check := range s.checks {
		decision, err := check.evaluate(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("evaluate: %s: %w", check.name(), err)
		}
		if decision != nil {
			s.metrics.observeDecision(outcomeDenied, check.name())
			s.recordViolation(ctx, input, decision)
			return decision, nil
		}
	}

	s.metrics.observeDecision(outcomeAllowed, "")
	return &domain.Decision{
		Allowed: true,
		Reason:  "within policy",
		Snapshot: &domain.PolicySnapshot{
			RoleName:          principal.RoleName,
			BandwidthDownMbps: policy.BandwidthDownMbps,
			BandwidthUpMbps:   policy.BandwidthUpMbps,
			Quota:             cc.quota,
			SessionLimit:      cc.sessionLimit,
		},
	}, nil
}

func (s *DecisionService) notFoundDecision(reason string) *domain.Decision {
	s.metrics.observeDecision(outcomeNotFound, "")
	return &domain.Decision{Allowed: false, Reason: reason}
}

// recordViolation persists the single violation backing a rule denial. A
// failed write is logged and counted; the decision already stands.
func (s *DecisionService) recordViolation(ctx context.Context, input EvaluateInput, decision *domain.Decision) {
	if s.violations == nil {
		return
	}
	if err := s.violations.Record(ctx, input.UserID, input.SessionID, decision.Violation, decision.Reason); err != nil {
		s.metrics.observeViolationWrite("error")
		s.logger.Error("violation write failed",
			zap.String("user_id", input.UserID),
			zap.String("violation_type", string(decision.Violation)),
			zap.Error(err))
		return
	}
	s.metrics.observeViolationWrite("ok")
}

// allowedHoursCheck denies outside the policy's allowed-hours window.
type allowedHoursCheck struct{}

func (allowedHoursCheck) name() string { return "time_of_day" }

func (allowedHoursCheck) evaluate(_ context.Context, cc *checkContext) (*domain.Decision, error) {
	if cc.policy.WithinAllowedHours(cc.now) {
		return nil, nil
	}
	decision := domain.Deny(domain.ViolationTimeRestriction,
		fmt.Sprintf("Access denied. Allowed hours: %s - %s",
			cc.policy.AllowedHoursStart, cc.policy.AllowedHoursEnd))
	return &decision, nil
}

// dailyQuotaCheck denies once the day's data usage reaches the quota.
type dailyQuotaCheck struct {
	usage *UsageService
}

func (dailyQuotaCheck) name() string { return "daily_quota" }

func (c dailyQuotaCheck) evaluate(ctx context.Context, cc *checkContext) (*domain.Decision, error) {
	if cc.policy.DailyQuotaBytes == nil || c.usage == nil {
		return nil, nil
	}
	quota := *cc.policy.DailyQuotaBytes

	record, err := c.usage.GetUsage(ctx, cc.input.UserID, domain.UsageDate(cc.now))
	if err != nil {
		return nil, err
	}

	used := record.DataUsedBytes
	if used >= quota {
		decision := domain.Deny(domain.ViolationQuotaExceeded,
			fmt.Sprintf("Daily quota of %d bytes exceeded (used %d)", quota, used))
		return &decision, nil
	}

	cc.quota = &domain.QuotaState{
		UsedBytes:      used,
		QuotaBytes:     quota,
		RemainingBytes: quota - used,
	}
	return nil, nil
}

// sessionLimitCheck denies once the referenced session's elapsed time reaches
// the policy limit. Evaluations without a session reference skip it.
type sessionLimitCheck struct{}

func (sessionLimitCheck) name() string { return "session_limit" }

func (sessionLimitCheck) evaluate(_ context.Context, cc *checkContext) (*domain.Decision, error) {
	if cc.policy.SessionTimeLimitMinutes == nil || cc.session == nil {
		return nil, nil
	}
	limit := *cc.policy.SessionTimeLimitMinutes

	elapsed := cc.session.ElapsedMinutes(cc.now)
	if elapsed >= limit {
		decision := domain.Deny(domain.ViolationSessionTimeLimit,
			fmt.Sprintf("Session time limit of %d minutes exceeded (elapsed %d)", limit, elapsed))
		return &decision, nil
	}

	cc.sessionLimit = &domain.SessionLimitState{
		LimitMinutes:     limit,
		ElapsedMinutes:   elapsed,
		RemainingMinutes: limit - elapsed,
	}
	return nil, nil
}

// categoryCheck denies when the requested resource matches a blocked category.
// Evaluations without a resource skip it.
type categoryCheck struct {
	table domain.CategoryTable
}

func (categoryCheck) name() string { return "category" }

func (c categoryCheck) evaluate(_ context.Context, cc *checkContext) (*domain.Decision, error) {
	if cc.input.Resource == nil || len(cc.policy.BlockedCategories) == 0 {
		return nil, nil
	}

	tag, matched := c.table.Match(*cc.input.Resource, cc.policy.BlockedCategories)
	if !matched {
		return nil, nil
	}

	decision := domain.Deny(domain.ViolationCategoryBlocked,
		fmt.Sprintf("Access to %s content is blocked for your role", tag))
	decision.Category = tag
	return &decision, nil
}
