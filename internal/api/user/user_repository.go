package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vesmirov/fundhub/internal/api"
	"github.com/vesmirov/fundhub/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// ListUsers retrieves all users ordered by creation time.
	ListUsers(ctx context.Context) ([]types.User, error)

	// CreateUser inserts a validated user and returns the stored row with its
	// assigned id. Uniqueness races on email/username/telegram id surface as
	// *types.ValidationError.
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)

	// GetUser retrieves a user by id. Returns types.ErrNotFound when absent.
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// UpdateUser persists the mutable fields of a user row.
	// Returns types.ErrNotFound if the user doesn't exist.
	UpdateUser(ctx context.Context, user *types.User) error

	// DeleteUser removes a user. The profile and everything it owns cascade.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// uniqueConstraints maps Postgres constraint names onto client-facing fields.
var uniqueConstraints = map[string]string{
	"users_username_key":    "username",
	"users_email_key":       "email",
	"users_telegram_id_key": "telegram_id",
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool api.PGPool
}

func NewPostgresUserRepo(pgpool api.PGPool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, username, email, password_hash, telegram_id, first_name, last_name, role, is_staff, is_superuser, created_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TelegramID,
		&u.FirstName, &u.LastName, &u.Role, &u.IsStaff, &u.IsSuperuser,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := r.pgpool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list users: query failed: %w", err)
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		var u types.User
		err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TelegramID,
			&u.FirstName, &u.LastName, &u.Role, &u.IsStaff, &u.IsSuperuser,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list users: scan failed: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: rows error: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
	row := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, telegram_id, first_name, last_name, role, is_staff)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+userColumns,
		user.Username, user.Email, user.PasswordHash, user.TelegramID,
		user.FirstName, user.LastName, user.Role, user.IsStaff,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, api.MapConstraintError(err, uniqueConstraints)
	}
	return created, nil
}

func (r *PostgresUserRepo) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	row := r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", userID)
	return scanUser(row)
}

func (r *PostgresUserRepo) UpdateUser(ctx context.Context, user *types.User) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users
         SET username = $1, email = $2, password_hash = $3, telegram_id = $4,
             first_name = $5, last_name = $6, role = $7, is_staff = $8
         WHERE id = $9`,
		user.Username, user.Email, user.PasswordHash, user.TelegramID,
		user.FirstName, user.LastName, user.Role, user.IsStaff, user.ID,
	)
	if err != nil {
		return api.MapConstraintError(fmt.Errorf("update user: db update failed: %w", err), uniqueConstraints)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("delete user: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
