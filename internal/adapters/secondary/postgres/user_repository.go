package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

const (
	userColumns = `id, full_name, email, role, is_active, created_at, updated_at`

	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// UserRepository stores user profiles. Profiles always live in postgres,
// whichever store holds assets and tickets.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &role, &u.IsActive, &u.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.UpdatedAt = fromTimestamptz(updatedAt)
	return &u, nil
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation, checkViolation:
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

// Create is idempotent on id: a concurrent first login for the same user
// returns the row that won. A duplicate email is a conflict.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING `+userColumns,
		user.ID, user.FullName, user.Email, string(user.Role), user.IsActive, user.CreatedAt,
		toTimestamptz(user.UpdatedAt),
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", mapWriteError(err))
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List returns every profile ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY full_name, email`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	if err != nil {
		return fmt.Errorf("failed to set role: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
