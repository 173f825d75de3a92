package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/repository"
)

// UsageRepository implements port.UsageRepository for PostgreSQL.
type UsageRepository struct {
	db      pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUsageRepository constructs a UsageRepository.
func NewUsageRepository(db pgExecutor) *UsageRepository {
	return &UsageRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const addUsageSQL = `
INSERT INTO wifi.usage_tracking (user_id, date, data_used_bytes, time_used_minutes, session_count, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (user_id, date) DO UPDATE SET
	data_used_bytes   = usage_tracking.data_used_bytes + EXCLUDED.data_used_bytes,
	time_used_minutes = usage_tracking.time_used_minutes + EXCLUDED.time_used_minutes,
	session_count     = usage_tracking.session_count + EXCLUDED.session_count,
	updated_at        = NOW()`

// Add folds an increment into the (user, day) record. The upsert resolves the
// read-modify-write inside a single statement, so concurrent increments for
// the same key serialize on the row and never lose updates.
func (r *UsageRepository) Add(ctx context.Context, userID, date string, inc port.UsageIncrement) error {
	if _, err := r.db.Exec(ctx, addUsageSQL, userID, date, inc.DataBytes, inc.TimeMinutes, inc.Sessions); err != nil {
		return fmt.Errorf("upsert usage: %w", err)
	}
	return nil
}

// Get returns the accumulated record for the (user, day) key.
func (r *UsageRepository) Get(ctx context.Context, userID, date string) (*domain.UsageRecord, error) {
	sql, args, err := r.builder.
		Select("user_id", "date", "data_used_bytes", "time_used_minutes", "session_count", "updated_at").
		From("wifi.usage_tracking").
		Where(squirrel.Eq{"user_id": userID, "date": date}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select usage sql: %w", err)
	}

	var record domain.UsageRecord
	row := r.db.QueryRow(ctx, sql, args...)
	if err := row.Scan(
		&record.UserID,
		&record.Date,
		&record.DataUsedBytes,
		&record.TimeUsedMinutes,
		&record.SessionCount,
		&record.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan usage: %w", err)
	}

	return &record, nil
}

// ListByUser returns the most recent daily records for a user.
func (r *UsageRepository) ListByUser(ctx context.Context, userID string, days int) ([]domain.UsageRecord, error) {
	if days <= 0 {
		days = 7
	}

	sql, args, err := r.builder.
		Select("user_id", "date", "data_used_bytes", "time_used_minutes", "session_count", "updated_at").
		From("wifi.usage_tracking").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC").
		Limit(uint64(days)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list usage sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var records []domain.UsageRecord
	for rows.Next() {
		var record domain.UsageRecord
		if err := rows.Scan(
			&record.UserID,
			&record.Date,
			&record.DataUsedBytes,
			&record.TimeUsedMinutes,
			&record.SessionCount,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}

	return records, nil
}

var _ port.UsageRepository = (*UsageRepository)(nil)
