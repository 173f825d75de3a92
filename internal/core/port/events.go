package port

import (
	"context"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishSessionStarted(ctx context.Context, event domain.SessionStartedEvent) error
	PublishSessionEnded(ctx context.Context, event domain.SessionEndedEvent) error
	PublishViolationRecorded(ctx context.Context, event domain.ViolationRecordedEvent) error
	PublishPolicyUpdated(ctx context.Context, event domain.PolicyUpdatedEvent) error
}
