package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

// ErrSessionNotFound is returned when the referenced session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// StartSessionInput carries the connection attributes for a new session. ID
// may be pre-assigned when the caller needs it before the session exists,
// such as binding it into an access token.
type StartSessionInput struct {
	ID         string
	UserID     string
	RoleID     string
	TokenHash  string
	IPAddress  string
	MACAddress *string
}

// SessionService manages the session lifecycle. A user holds at most one
// active session: starting a new one supersedes whatever was active.
type SessionService struct {
	sessions   port.SessionRepository
	usage      *UsageService
	events     port.EventPublisher
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewSessionService constructs a SessionService. usage and events may be nil.
func NewSessionService(sessions port.SessionRepository, usage *UsageService, events port.EventPublisher, sessionTTL time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	service := &SessionService{
		sessions:   sessions,
		usage:      usage,
		events:     events,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *SessionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Start opens a session for the user, ending any currently active session
// with the superseded reason first.
func (s *SessionService) Start(ctx context.Context, input StartSessionInput) (*domain.Session, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.RoleID) == "" {
		return nil, fmt.Errorf("start session: user id and role id are required")
	}

	now := s.now()

	current, err := s.sessions.GetActiveByUser(ctx, input.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("start session: lookup active: %w", err)
	}
	if current != nil {
		if _, err := s.endSession(ctx, current.ID, domain.SessionEndReasonSuperseded, now); err != nil {
			return nil, fmt.Errorf("start session: supersede %s: %w", current.ID, err)
		}
	}

	sessionID := input.ID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session := domain.Session{
		ID:         sessionID,
		UserID:     input.UserID,
		RoleID:     input.RoleID,
		MACAddress: input.MACAddress,
		StartedAt:  now,
		ExpiresAt:  now.Add(s.sessionTTL),
		IsActive:   true,
	}
	if input.TokenHash != "" {
		hash := input.TokenHash
		session.TokenHash = &hash
	}
	if input.IPAddress != "" {
		ip := input.IPAddress
		session.IPAddress = &ip
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	if s.usage != nil {
		if err := s.usage.RecordSessionStart(ctx, input.UserID, now); err != nil {
			s.logger.Warn("session count increment failed", zap.String("user_id", input.UserID), zap.Error(err))
		}
	}

	if s.events != nil {
		event := domain.SessionStartedEvent{
			EventID:   uuid.NewString(),
			SessionID: session.ID,
			UserID:    session.UserID,
			RoleID:    session.RoleID,
			StartedAt: session.StartedAt,
		}
		event.IPAddress = session.IPAddress
		if err := s.events.PublishSessionStarted(ctx, event); err != nil {
			s.logger.Warn("publish session started failed", zap.String("session_id", session.ID), zap.Error(err))
		}
	}

	return &session, nil
}

// End closes a session. Calling End on an already-ended session succeeds and
// returns the session with its original end time; only the call that performs
// the transition publishes an event.
func (s *SessionService) End(ctx context.Context, sessionID, reason string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("end session: session id is required")
	}
	if reason == "" {
		reason = domain.SessionEndReasonLogout
	}
	return s.endSession(ctx, sessionID, reason, s.now())
}

func (s *SessionService) endSession(ctx context.Context, sessionID, reason string, endedAt time.Time) (*domain.Session, error) {
	transitioned, err := s.sessions.End(ctx, sessionID, endedAt, reason)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("end session: reload: %w", err)
	}

	if transitioned && s.events != nil {
		event := domain.SessionEndedEvent{
			EventID:   uuid.NewString(),
			SessionID: session.ID,
			UserID:    session.UserID,
			Reason:    reason,
			EndedAt:   endedAt,
		}
		if err := s.events.PublishSessionEnded(ctx, event); err != nil {
			s.logger.Warn("publish session ended failed", zap.String("session_id", session.ID), zap.Error(err))
		}
	}

	return session, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ElapsedMinutes reports whole minutes the session has run. Ended sessions
// report their frozen duration.
func (s *SessionService) ElapsedMinutes(ctx context.Context, sessionID string) (int, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return session.ElapsedMinutes(s.now()), nil
}

// ExpireOverdue ends every active session that has outlived its expiry
// instant. The periodic sweep calls this so abandoned sessions do not linger
// as active forever.
func (s *SessionService) ExpireOverdue(ctx context.Context) (int, error) {
	ended, err := s.sessions.EndExpired(ctx, s.now(), domain.SessionEndReasonExpired)
	if err != nil {
		return 0, fmt.Errorf("expire sessions: %w", err)
	}
	if ended > 0 {
		s.logger.Info("expired sessions closed", zap.Int("count", ended))
	}
	return ended, nil
}

// GetActive returns the user's active session, or ErrSessionNotFound.
func (s *SessionService) GetActive(ctx context.Context, userID string) (*domain.Session, error) {
	session, err := s.sessions.GetActiveByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// ListByUser returns a user's recent sessions, newest first.
func (s *SessionService) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// List returns sessions matching the filter for the admin view.
func (s *SessionService) List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	sessions, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
