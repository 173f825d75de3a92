package port

import (
	"context"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

// ViolationFilter narrows violation listings for reporting.
type ViolationFilter struct {
	UserID string
	Type   domain.ViolationType
	Limit  int
}

// ViolationRepository is the append-only store of denied attempts.
type ViolationRepository interface {
	Create(ctx context.Context, violation domain.Violation) error
	List(ctx context.Context, filter ViolationFilter) ([]domain.Violation, error)
	CountByUser(ctx context.Context, userID string, date string) (int, error)
}
