package port

import (
	"context"
	"time"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

// SessionRepository deals with session storage.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Session, error)
	// End performs the terminal transition as a compare-and-set on the active
	// flag. The boolean reports whether this call performed the transition;
	// false with a nil error means the session was already ended.
	End(ctx context.Context, sessionID string, endedAt time.Time, reason string) (bool, error)
	// EndExpired closes every active session whose expiry instant lies at or
	// before the cutoff, returning how many sessions it transitioned.
	EndExpired(ctx context.Context, cutoff time.Time, reason string) (int, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Session, error)
	List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error)
	AddDataUsed(ctx context.Context, sessionID string, bytes int64) error
}
