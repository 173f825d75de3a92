package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

// SessionRepository implements port.SessionRepository for PostgreSQL.
type SessionRepository struct {
	db      pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db pgExecutor) *SessionRepository {
	return &SessionRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var sessionColumns = []string{
	"id",
	"user_id",
	"role_id",
	"token_hash",
	"ip_address",
	"mac_address",
	"started_at",
	"ended_at",
	"expires_at",
	"is_active",
	"end_reason",
	"data_used_bytes",
}

// Create inserts a session record.
func (r *SessionRepository) Create(ctx context.Context, session domain.Session) error {
	sql, args, err := r.builder.Insert("wifi.sessions").
		Columns(sessionColumns...).
		Values(
			session.ID,
			session.UserID,
			session.RoleID,
			session.TokenHash,
			session.IPAddress,
			session.MACAddress,
			session.StartedAt,
			session.EndedAt,
			session.ExpiresAt,
			session.IsActive,
			session.EndReason,
			session.DataUsedBytes,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetByID returns a session by identifier.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	sql, args, err := r.builder.
		Select(sessionColumns...).
		From("wifi.sessions").
		Where(squirrel.Eq{"id": sessionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	session, err := scanSession(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return session, nil
}

// GetActiveByUser returns the most recently started active session for a user.
func (r *SessionRepository) GetActiveByUser(ctx context.Context, userID string) (*domain.Session, error) {
	sql, args, err := r.builder.
		Select(sessionColumns...).
		From("wifi.sessions").
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		OrderBy("started_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select active session sql: %w", err)
	}

	session, err := scanSession(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return session, nil
}

// End performs the terminal transition as a compare-and-set on is_active.
// Returns false with a nil error when the session exists but is already ended,
// keeping concurrent disconnects idempotent.
func (r *SessionRepository) End(ctx context.Context, sessionID string, endedAt time.Time, reason string) (bool, error) {
	sql, args, err := r.builder.Update("wifi.sessions").
		Set("is_active", false).
		Set("ended_at", endedAt).
		Set("end_reason", reason).
		Where(squirrel.Eq{"id": sessionID, "is_active": true}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build end session sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("end session: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// No transition happened; distinguish already-ended from missing.
	if _, err := r.GetByID(ctx, sessionID); err != nil {
		return false, err
	}
	return false, nil
}

// EndExpired closes every active session whose expiry instant lies at or
// before the cutoff in a single statement.
func (r *SessionRepository) EndExpired(ctx context.Context, cutoff time.Time, reason string) (int, error) {
	sql, args, err := r.builder.Update("wifi.sessions").
		Set("is_active", false).
		Set("ended_at", cutoff).
		Set("end_reason", reason).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.LtOrEq{"expires_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build end expired sessions sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("end expired sessions: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// ListByUser returns the user's sessions, most recent first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	builder := r.builder.
		Select(sessionColumns...).
		From("wifi.sessions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("started_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions sql: %w", err)
	}

	return r.querySessions(ctx, sql, args)
}

// List returns sessions matching an administrative filter.
func (r *SessionRepository) List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	builder := r.builder.
		Select(
			"s.id",
			"s.user_id",
			"s.role_id",
			"s.token_hash",
			"s.ip_address",
			"s.mac_address",
			"s.started_at",
			"s.ended_at",
			"s.expires_at",
			"s.is_active",
			"s.end_reason",
			"s.data_used_bytes",
		).
		From("wifi.sessions s").
		Join("wifi.roles r ON r.id = s.role_id").
		OrderBy("s.started_at DESC")

	if filter.Active != nil {
		builder = builder.Where(squirrel.Eq{"s.is_active": *filter.Active})
	}
	if filter.RoleName != "" {
		builder = builder.Where(squirrel.Eq{"r.name": filter.RoleName})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	builder = builder.Limit(uint64(limit))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter sessions sql: %w", err)
	}

	return r.querySessions(ctx, sql, args)
}

// AddDataUsed folds metered bytes into the session row atomically.
func (r *SessionRepository) AddDataUsed(ctx context.Context, sessionID string, bytes int64) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE wifi.sessions SET data_used_bytes = data_used_bytes + $1 WHERE id = $2",
		bytes, sessionID,
	)
	if err != nil {
		return fmt.Errorf("add session data used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) querySessions(ctx context.Context, sql string, args []any) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var session domain.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RoleID,
		&session.TokenHash,
		&session.IPAddress,
		&session.MACAddress,
		&session.StartedAt,
		&session.EndedAt,
		&session.ExpiresAt,
		&session.IsActive,
		&session.EndReason,
		&session.DataUsedBytes,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &session, nil
}

var _ port.SessionRepository = (*SessionRepository)(nil)
