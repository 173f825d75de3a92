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

// PolicyRepository implements port.PolicyRepository for PostgreSQL.
// Allowed-hours bounds are stored as "HH:MM:SS" text and parsed on read.
type PolicyRepository struct {
	db      pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPolicyRepository constructs a PolicyRepository.
func NewPolicyRepository(db pgExecutor) *PolicyRepository {
	return &PolicyRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var policyColumns = []string{
	"p.id",
	"p.role_id",
	"r.name AS role_name",
	"p.bandwidth_down_mbps",
	"p.bandwidth_up_mbps",
	"p.daily_quota_bytes",
	"p.session_time_limit_minutes",
	"p.allowed_hours_start",
	"p.allowed_hours_end",
	"p.access_24x7",
	"p.blocked_categories",
	"p.updated_at",
}

// List returns all policies joined with their role names.
func (r *PolicyRepository) List(ctx context.Context) ([]domain.Policy, error) {
	sql, args, err := r.builder.
		Select(policyColumns...).
		From("wifi.policies p").
		Join("wifi.roles r ON r.id = p.role_id").
		OrderBy("r.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list policies sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var policies []domain.Policy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *policy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}

	return policies, nil
}

// GetByID returns a policy by identifier.
func (r *PolicyRepository) GetByID(ctx context.Context, policyID string) (*domain.Policy, error) {
	return r.getOne(ctx, squirrel.Eq{"p.id": policyID})
}

// GetByRole returns the policy bound to the supplied role.
func (r *PolicyRepository) GetByRole(ctx context.Context, roleID string) (*domain.Policy, error) {
	return r.getOne(ctx, squirrel.Eq{"p.role_id": roleID})
}

// Update applies a partial policy mutation and returns the updated row.
func (r *PolicyRepository) Update(ctx context.Context, policyID string, update domain.PolicyUpdate) (*domain.Policy, error) {
	builder := r.builder.Update("wifi.policies").Where(squirrel.Eq{"id": policyID})

	changed := false
	if update.BandwidthDownMbps != nil {
		builder = builder.Set("bandwidth_down_mbps", *update.BandwidthDownMbps)
		changed = true
	}
	if update.BandwidthUpMbps != nil {
		builder = builder.Set("bandwidth_up_mbps", *update.BandwidthUpMbps)
		changed = true
	}
	if update.DailyQuotaBytes != nil {
		builder = builder.Set("daily_quota_bytes", *update.DailyQuotaBytes)
		changed = true
	}
	if update.SessionTimeLimitMinutes != nil {
		builder = builder.Set("session_time_limit_minutes", *update.SessionTimeLimitMinutes)
		changed = true
	}
	if update.AllowedHoursStart != nil {
		builder = builder.Set("allowed_hours_start", clockTimeText(*update.AllowedHoursStart))
		changed = true
	}
	if update.AllowedHoursEnd != nil {
		builder = builder.Set("allowed_hours_end", clockTimeText(*update.AllowedHoursEnd))
		changed = true
	}
	if update.Access24x7 != nil {
		builder = builder.Set("access_24x7", *update.Access24x7)
		changed = true
	}
	if update.BlockedCategories != nil {
		builder = builder.Set("blocked_categories", *update.BlockedCategories)
		changed = true
	}

	if !changed {
		return r.GetByID(ctx, policyID)
	}

	builder = builder.Set("updated_at", time.Now().UTC())

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update policy sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("update policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}

	return r.GetByID(ctx, policyID)
}

func (r *PolicyRepository) getOne(ctx context.Context, pred any) (*domain.Policy, error) {
	sql, args, err := r.builder.
		Select(policyColumns...).
		From("wifi.policies p").
		Join("wifi.roles r ON r.id = p.role_id").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select policy sql: %w", err)
	}

	row := r.db.QueryRow(ctx, sql, args...)
	policy, err := scanPolicy(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return policy, nil
}

func scanPolicy(row pgx.Row) (*domain.Policy, error) {
	var (
		policy     domain.Policy
		hoursStart *string
		hoursEnd   *string
	)

	if err := row.Scan(
		&policy.ID,
		&policy.RoleID,
		&policy.RoleName,
		&policy.BandwidthDownMbps,
		&policy.BandwidthUpMbps,
		&policy.DailyQuotaBytes,
		&policy.SessionTimeLimitMinutes,
		&hoursStart,
		&hoursEnd,
		&policy.Access24x7,
		&policy.BlockedCategories,
		&policy.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan policy: %w", err)
	}

	var err error
	if policy.AllowedHoursStart, err = parseClockTimeColumn(hoursStart); err != nil {
		return nil, err
	}
	if policy.AllowedHoursEnd, err = parseClockTimeColumn(hoursEnd); err != nil {
		return nil, err
	}

	return &policy, nil
}

func parseClockTimeColumn(value *string) (*domain.ClockTime, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := domain.ParseClockTime(*value)
	if err != nil {
		return nil, fmt.Errorf("parse allowed hours column: %w", err)
	}
	return &parsed, nil
}

func clockTimeText(value *domain.ClockTime) *string {
	if value == nil {
		return nil
	}
	text := value.String()
	return &text
}

var _ port.PolicyRepository = (*PolicyRepository)(nil)
