package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/infra/config"
)

const schemaVersion = "1.0"

// Event types published to the bus.
const (
	EventSessionStarted    = "session.started"
	EventSessionEnded      = "session.ended"
	EventViolationRecorded = "violation.recorded"
	EventPolicyUpdated     = "policy.updated"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishSessionStarted emits a session.started event.
func (p *EventPublisher) PublishSessionStarted(ctx context.Context, event domain.SessionStartedEvent) error {
	return p.publish(ctx, event.EventID, EventSessionStarted, event.UserID, event.StartedAt, event)
}

// PublishSessionEnded emits a session.ended event.
func (p *EventPublisher) PublishSessionEnded(ctx context.Context, event domain.SessionEndedEvent) error {
	return p.publish(ctx, event.EventID, EventSessionEnded, event.UserID, event.EndedAt, event)
}

// PublishViolationRecorded emits a violation.recorded event.
func (p *EventPublisher) PublishViolationRecorded(ctx context.Context, event domain.ViolationRecordedEvent) error {
	return p.publish(ctx, event.EventID, EventViolationRecorded, event.UserID, event.OccurredAt, event)
}

// PublishPolicyUpdated emits a policy.updated event.
func (p *EventPublisher) PublishPolicyUpdated(ctx context.Context, event domain.PolicyUpdatedEvent) error {
	return p.publish(ctx, event.EventID, EventPolicyUpdated, "", event.UpdatedAt, event)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
