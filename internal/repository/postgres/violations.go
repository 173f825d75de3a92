package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
)

// ViolationRepository implements port.ViolationRepository for PostgreSQL.
// Rows are insert-only; no update path exists.
type ViolationRepository struct {
	db      pgExecutor
	builder squirrel.StatementBuilderType
}

// NewViolationRepository constructs a ViolationRepository.
func NewViolationRepository(db pgExecutor) *ViolationRepository {
	return &ViolationRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends a violation record.
func (r *ViolationRepository) Create(ctx context.Context, violation domain.Violation) error {
	sql, args, err := r.builder.Insert("wifi.policy_violations").
		Columns("id", "user_id", "session_id", "violation_type", "details", "created_at").
		Values(
			violation.ID,
			violation.UserID,
			violation.SessionID,
			string(violation.Type),
			violation.Details,
			violation.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert violation sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert violation: %w", err)
	}

	return nil
}

// List returns violations matching the filter, most recent first.
func (r *ViolationRepository) List(ctx context.Context, filter port.ViolationFilter) ([]domain.Violation, error) {
	builder := r.builder.
		Select("id", "user_id", "session_id", "violation_type", "details", "created_at").
		From("wifi.policy_violations").
		OrderBy("created_at DESC")

	if filter.UserID != "" {
		builder = builder.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Type != "" {
		builder = builder.Where(squirrel.Eq{"violation_type": string(filter.Type)})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	builder = builder.Limit(uint64(limit))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list violations sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	var violations []domain.Violation
	for rows.Next() {
		var (
			violation     domain.Violation
			violationType string
		)
		if err := rows.Scan(
			&violation.ID,
			&violation.UserID,
			&violation.SessionID,
			&violationType,
			&violation.Details,
			&violation.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		violation.Type = domain.ViolationType(violationType)
		violations = append(violations, violation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}

	return violations, nil
}

// CountByUser returns how many violations the user accumulated on the given day.
func (r *ViolationRepository) CountByUser(ctx context.Context, userID string, date string) (int, error) {
	sql, args, err := r.builder.
		Select("COUNT(*)").
		From("wifi.policy_violations").
		Where(squirrel.Eq{"user_id": userID}).
		Where("created_at::date = ?", date).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count violations sql: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count violations: %w", err)
	}

	return count, nil
}

var _ port.ViolationRepository = (*ViolationRepository)(nil)
