package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
)

// repeatOffenderThreshold is the per-day violation count past which the
// recorder flags a user for operator attention.
const repeatOffenderThreshold = 10

// ViolationService appends denied-attempt records and mirrors them to the
// event bus. Persistence failures here must never influence a Decision; the
// engine captures the returned error at its boundary.
type ViolationService struct {
	violations port.ViolationRepository
	events     port.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewViolationService constructs a ViolationService.
func NewViolationService(violations port.ViolationRepository, events port.EventPublisher, logger *zap.Logger) *ViolationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	service := &ViolationService{
		violations: violations,
		events:     events,
		logger:     logger,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *ViolationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Record appends exactly one violation. The write is synchronous; the bus
// publish is best effort.
func (s *ViolationService) Record(ctx context.Context, userID string, sessionID *string, violationType domain.ViolationType, details string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if s.violations == nil {
		return fmt.Errorf("violation repository not configured")
	}

	violation := domain.Violation{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Type:      violationType,
		Details:   details,
		CreatedAt: s.now(),
	}

	if err := s.violations.Create(ctx, violation); err != nil {
		return fmt.Errorf("record violation: %w", err)
	}

	if count, err := s.violations.CountByUser(ctx, userID, domain.UsageDate(violation.CreatedAt)); err != nil {
		s.logger.Warn("count violations failed", zap.String("user_id", userID), zap.Error(err))
	} else if count >= repeatOffenderThreshold {
		s.logger.Warn("repeat offender",
			zap.String("user_id", userID),
			zap.Int("violations_today", count))
	}

	if s.events != nil {
		event := domain.ViolationRecordedEvent{
			EventID:     uuid.NewString(),
			ViolationID: violation.ID,
			UserID:      violation.UserID,
			SessionID:   violation.SessionID,
			Type:        violation.Type,
			Details:     violation.Details,
			OccurredAt:  violation.CreatedAt,
		}
		if err := s.events.PublishViolationRecorded(ctx, event); err != nil {
			s.logger.Warn("publish violation event failed", zap.String("violation_id", violation.ID), zap.Error(err))
		}
	}

	return nil
}

// List returns violations matching the filter for reporting.
func (s *ViolationService) List(ctx context.Context, filter port.ViolationFilter) ([]domain.Violation, error) {
	if s.violations == nil {
		return nil, fmt.Errorf("violation repository not configured")
	}

	violations, err := s.violations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}

	return violations, nil
}
