package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

// ErrUserNotFound is returned when the referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserService handles administrative user operations. Blocking an account
// takes effect immediately: the active flag flips and any live session is
// disconnected, so the next evaluation denies without waiting for the
// session to lapse.
type UserService struct {
	users    port.UserRepository
	sessions *SessionService
	logger   *zap.Logger
}

// NewUserService constructs a UserService. sessions may be nil, in which case
// blocking leaves live sessions to be denied on their next evaluation.
func NewUserService(users port.UserRepository, sessions *SessionService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, sessions: sessions, logger: logger}
}

// Get returns one user by identifier.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Block deactivates the account and disconnects its live session, if any.
// Blocking an already blocked account is a no-op.
func (s *UserService) Block(ctx context.Context, userID string) error {
	if err := s.setActive(ctx, userID, false); err != nil {
		return err
	}

	if s.sessions == nil {
		return nil
	}
	session, err := s.sessions.GetActive(ctx, userID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("active session lookup failed while blocking",
			zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if _, err := s.sessions.End(ctx, session.ID, domain.SessionEndReasonDisconnect); err != nil {
		s.logger.Warn("failed to disconnect session of blocked user",
			zap.String("user_id", userID),
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
	return nil
}

// Unblock reactivates the account. Unblocking an active account is a no-op.
func (s *UserService) Unblock(ctx context.Context, userID string) error {
	return s.setActive(ctx, userID, true)
}

func (s *UserService) setActive(ctx context.Context, userID string, active bool) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserNotFound
	}

	changed, err := s.users.SetActive(ctx, userID, active)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if changed {
		s.logger.Info("user active flag changed",
			zap.String("user_id", userID), zap.Bool("active", active))
		return nil
	}

	// No transition: either the account was already in the requested state
	// or it does not exist. Tell them apart for the caller.
	if _, err := s.users.GetByID(ctx, userID); errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	} else if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	return nil
}
