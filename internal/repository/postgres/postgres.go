package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgExecutor abstracts the pgx surface the repositories use, so tests can
// substitute a pgxmock pool.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users      *UserRepository
	Roles      *RoleRepository
	Policies   *PolicyRepository
	Sessions   *SessionRepository
	Usage      *UsageRepository
	Violations *ViolationRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(pool),
		Roles:      NewRoleRepository(pool),
		Policies:   NewPolicyRepository(pool),
		Sessions:   NewSessionRepository(pool),
		Usage:      NewUsageRepository(pool),
		Violations: NewViolationRepository(pool),
	}
}
