package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

var (
	// ErrPolicyNotFound is returned when the referenced policy does not exist.
	ErrPolicyNotFound = errors.New("policy not found")
	// ErrInvalidPolicy is returned when a policy update fails validation.
	ErrInvalidPolicy = errors.New("invalid policy update")
)

// PolicyService handles the administrative policy surface. Writes are
// validated so a policy can never end up with a half-configured hour window
// or negative limits.
type PolicyService struct {
	policies   port.PolicyRepository
	roles      port.RoleRepository
	categories domain.CategoryTable
	events     port.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewPolicyService constructs a PolicyService.
func NewPolicyService(policies port.PolicyRepository, categories domain.CategoryTable, events port.EventPublisher, logger *zap.Logger) *PolicyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if categories == nil {
		categories = domain.DefaultCategoryTable()
	}
	service := &PolicyService{
		policies:   policies,
		categories: categories,
		events:     events,
		logger:     logger,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *PolicyService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithRoles attaches a role repository so the service can list assignable roles.
func (s *PolicyService) WithRoles(roles port.RoleRepository) *PolicyService {
	s.roles = roles
	return s
}

// Roles returns the roles policies can be bound to.
func (s *PolicyService) Roles(ctx context.Context) ([]domain.Role, error) {
	if s.roles == nil {
		return nil, fmt.Errorf("role repository not configured")
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// List returns every role policy.
func (s *PolicyService) List(ctx context.Context) ([]domain.Policy, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return policies, nil
}

// GetByRole returns the policy bound to a role.
func (s *PolicyService) GetByRole(ctx context.Context, roleID string) (*domain.Policy, error) {
	policy, err := s.policies.GetByRole(ctx, roleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return policy, nil
}

// Update applies a partial mutation to a policy and announces the change.
func (s *PolicyService) Update(ctx context.Context, policyID string, update domain.PolicyUpdate, updatedBy string) (*domain.Policy, error) {
	current, err := s.policies.GetByID(ctx, policyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update policy: load: %w", err)
	}

	if err := s.validate(current, update); err != nil {
		return nil, err
	}

	updated, err := s.policies.Update(ctx, policyID, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update policy: %w", err)
	}

	if s.events != nil {
		event := domain.PolicyUpdatedEvent{
			EventID:   uuid.NewString(),
			PolicyID:  updated.ID,
			RoleID:    updated.RoleID,
			UpdatedBy: updatedBy,
			UpdatedAt: s.now(),
			Changes:   describeChanges(update),
		}
		if err := s.events.PublishPolicyUpdated(ctx, event); err != nil {
			s.logger.Warn("publish policy updated failed", zap.String("policy_id", updated.ID), zap.Error(err))
		}
	}

	return updated, nil
}

// validate checks the state the update would produce, not just the update
// itself, so clearing one hour bound of an existing window is rejected too.
func (s *PolicyService) validate(current *domain.Policy, update domain.PolicyUpdate) error {
	if update.BandwidthDownMbps != nil && *update.BandwidthDownMbps < 0 {
		return fmt.Errorf("%w: download bandwidth must be non-negative", ErrInvalidPolicy)
	}
	if update.BandwidthUpMbps != nil && *update.BandwidthUpMbps < 0 {
		return fmt.Errorf("%w: upload bandwidth must be non-negative", ErrInvalidPolicy)
	}
	if update.DailyQuotaBytes != nil && *update.DailyQuotaBytes != nil && **update.DailyQuotaBytes < 0 {
		return fmt.Errorf("%w: daily quota must be non-negative", ErrInvalidPolicy)
	}
	if update.SessionTimeLimitMinutes != nil && *update.SessionTimeLimitMinutes != nil && **update.SessionTimeLimitMinutes < 0 {
		return fmt.Errorf("%w: session time limit must be non-negative", ErrInvalidPolicy)
	}

	start := current.AllowedHoursStart
	if update.AllowedHoursStart != nil {
		start = *update.AllowedHoursStart
	}
	end := current.AllowedHoursEnd
	if update.AllowedHoursEnd != nil {
		end = *update.AllowedHoursEnd
	}
	if (start == nil) != (end == nil) {
		return fmt.Errorf("%w: allowed hours require both bounds or neither", ErrInvalidPolicy)
	}
	if start != nil && end != nil && *start > *end {
		return fmt.Errorf("%w: allowed hours start must not be after end", ErrInvalidPolicy)
	}

	if update.BlockedCategories != nil {
		for _, tag := range *update.BlockedCategories {
			if _, ok := s.categories.Keywords(tag); !ok {
				return fmt.Errorf("%w: unknown category %q", ErrInvalidPolicy, tag)
			}
		}
	}

	return nil
}

func describeChanges(update domain.PolicyUpdate) map[string]any {
	changes := make(map[string]any)
	if update.BandwidthDownMbps != nil {
		changes["bandwidth_down_mbps"] = *update.BandwidthDownMbps
	}
	if update.BandwidthUpMbps != nil {
		changes["bandwidth_up_mbps"] = *update.BandwidthUpMbps
	}
	if update.DailyQuotaBytes != nil {
		changes["daily_quota_bytes"] = derefOrNil(*update.DailyQuotaBytes)
	}
	if update.SessionTimeLimitMinutes != nil {
		changes["session_time_limit_minutes"] = derefOrNil(*update.SessionTimeLimitMinutes)
	}
	if update.AllowedHoursStart != nil {
		changes["allowed_hours_start"] = clockTimeOrNil(*update.AllowedHoursStart)
	}
	if update.AllowedHoursEnd != nil {
		changes["allowed_hours_end"] = clockTimeOrNil(*update.AllowedHoursEnd)
	}
	if update.Access24x7 != nil {
		changes["access_24x7"] = *update.Access24x7
	}
	if update.BlockedCategories != nil {
		changes["blocked_categories"] = *update.BlockedCategories
	}
	return changes
}

func derefOrNil[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}

func clockTimeOrNil(value *domain.ClockTime) any {
	if value == nil {
		return nil
	}
	return value.String()
}
