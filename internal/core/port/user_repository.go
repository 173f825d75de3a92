package port

import (
	"context"
	"time"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

// UserRepository exposes persistence behavior for users and principal resolution.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	ResolvePrincipal(ctx context.Context, userID string) (*domain.Principal, error)
	RecordLogin(ctx context.Context, userID string, at time.Time) error
	// SetActive flips the account's active flag. The boolean reports whether
	// the flag actually changed; false with a nil error means the account was
	// already in the requested state.
	SetActive(ctx context.Context, userID string, active bool) (bool, error)
}

// RoleRepository handles role lookups.
type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
}
