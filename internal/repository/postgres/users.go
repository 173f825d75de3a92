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

// UserRepository implements port.UserRepository for PostgreSQL.
type UserRepository struct {
	db      pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db pgExecutor) *UserRepository {
	return &UserRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"u.id",
	"u.username",
	"u.email",
	"u.full_name",
	"u.password_hash",
	"u.role_id",
	"r.name AS role_name",
	"u.is_active",
	"u.created_at",
	"u.last_login",
}

// Create inserts a user record.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	sql, args, err := r.builder.Insert("wifi.users").
		Columns("id", "username", "email", "full_name", "password_hash", "role_id", "is_active", "created_at").
		Values(user.ID, user.Username, user.Email, user.FullName, user.PasswordHash, user.RoleID, user.IsActive, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID returns a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByIdentifier resolves a user by username or email.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Or{
		squirrel.Eq{"u.username": identifier},
		squirrel.Eq{"u.email": identifier},
	})
}

// List returns users matching the filter, newest first.
func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	query := r.builder.
		Select(userColumns...).
		From("wifi.users u").
		Join("wifi.roles r ON r.id = u.role_id").
		OrderBy("u.created_at DESC")

	if filter.RoleName != "" {
		query = query.Where(squirrel.Eq{"r.name": filter.RoleName})
	}
	if filter.Active != nil {
		query = query.Where(squirrel.Eq{"u.is_active": *filter.Active})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FullName,
			&user.PasswordHash,
			&user.RoleID,
			&user.RoleName,
			&user.IsActive,
			&user.CreatedAt,
			&user.LastLogin,
		); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

// SetActive flips the account's active flag as a compare-and-set, so a
// repeated block or unblock reports no transition instead of an error.
func (r *UserRepository) SetActive(ctx context.Context, userID string, active bool) (bool, error) {
	sql, args, err := r.builder.Update("wifi.users").
		Set("is_active", active).
		Where(squirrel.Eq{"id": userID}).
		Where(squirrel.Eq{"is_active": !active}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build set active sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("set active: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ResolvePrincipal loads the role binding and active flag for a user.
func (r *UserRepository) ResolvePrincipal(ctx context.Context, userID string) (*domain.Principal, error) {
	sql, args, err := r.builder.
		Select("u.id", "u.role_id", "r.name", "u.is_active").
		From("wifi.users u").
		Join("wifi.roles r ON r.id = u.role_id").
		Where(squirrel.Eq{"u.id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build resolve principal sql: %w", err)
	}

	var principal domain.Principal
	row := r.db.QueryRow(ctx, sql, args...)
	if err := row.Scan(&principal.UserID, &principal.RoleID, &principal.RoleName, &principal.IsActive); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan principal: %w", err)
	}

	return &principal, nil
}

// RecordLogin stamps the last successful login instant.
func (r *UserRepository) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	sql, args, err := r.builder.Update("wifi.users").
		Set("last_login", at).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record login sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, pred any) (*domain.User, error) {
	sql, args, err := r.builder.
		Select(userColumns...).
		From("wifi.users u").
		Join("wifi.roles r ON r.id = u.role_id").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	var user domain.User
	row := r.db.QueryRow(ctx, sql, args...)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.RoleID,
		&user.RoleName,
		&user.IsActive,
		&user.CreatedAt,
		&user.LastLogin,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
