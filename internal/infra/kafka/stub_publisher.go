package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
)

// StubPublisher logs events instead of publishing them. Used when no Kafka
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a logging-only event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (s *StubPublisher) PublishSessionStarted(_ context.Context, event domain.SessionStartedEvent) error {
	s.logger.Debug("stub publish", zap.String("event", EventSessionStarted), zap.String("session_id", event.SessionID))
	return nil
}

func (s *StubPublisher) PublishSessionEnded(_ context.Context, event domain.SessionEndedEvent) error {
	s.logger.Debug("stub publish", zap.String("event", EventSessionEnded), zap.String("session_id", event.SessionID))
	return nil
}

func (s *StubPublisher) PublishViolationRecorded(_ context.Context, event domain.ViolationRecordedEvent) error {
	s.logger.Debug("stub publish", zap.String("event", EventViolationRecorded), zap.String("violation_id", event.ViolationID))
	return nil
}

func (s *StubPublisher) PublishPolicyUpdated(_ context.Context, event domain.PolicyUpdatedEvent) error {
	s.logger.Debug("stub publish", zap.String("event", EventPolicyUpdated), zap.String("policy_id", event.PolicyID))
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
