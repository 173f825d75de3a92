package port

import (
	"context"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
)

// PolicyRepository is the read-mostly store of role-bound policies.
type PolicyRepository interface {
	List(ctx context.Context) ([]domain.Policy, error)
	GetByID(ctx context.Context, policyID string) (*domain.Policy, error)
	GetByRole(ctx context.Context, roleID string) (*domain.Policy, error)
	Update(ctx context.Context, policyID string, update domain.PolicyUpdate) (*domain.Policy, error)
}
