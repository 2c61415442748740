package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vesmirov/fundhub/internal/api"
	"github.com/vesmirov/fundhub/internal/types"
)

var _ ProfileRepo = (*PostgresProfileRepo)(nil)

// ProfileRepo defines the contract for profile persistence. All lookups are
// keyed by the owning user, never by client-supplied profile ids.
type ProfileRepo interface {
	// GetProfileByUserID returns the user's profile or types.ErrNotFound.
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*types.Profile, error)

	// CreateProfile inserts a profile for the user. A second profile for the
	// same user violates the unique constraint and surfaces as a validation
	// error.
	CreateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error)

	// UpdateProfile applies the mutable configuration to the user's profile.
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error)
}

var uniqueConstraints = map[string]string{
	"profiles_user_id_key": "user",
}

type PostgresProfileRepo struct {
	logger *slog.Logger
	pgpool api.PGPool
}

func NewPostgresProfileRepo(pgpool api.PGPool, logger *slog.Logger) *PostgresProfileRepo {
	return &PostgresProfileRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const profileColumns = `id, user_id, balance, currency_id, budget, budget_period, created_at, updated_at`

func scanProfile(row pgx.Row) (*types.Profile, error) {
	var p types.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Balance, &p.CurrencyID, &p.Budget,
		&p.BudgetPeriod, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfileRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	row := r.pgpool.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID)
	return scanProfile(row)
}

func (r *PostgresProfileRepo) CreateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	balance := decimal.Zero
	if params.Balance != nil {
		balance = *params.Balance
	}

	row := r.pgpool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, balance, currency_id, budget, budget_period)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING `+profileColumns,
		userID, balance, params.CurrencyID, params.Budget, params.BudgetPeriod,
	)

	created, err := scanProfile(row)
	if err != nil {
		if name, ok := api.ForeignKeyConstraint(err); ok {
			// The owner row can vanish between authentication and the
			// insert; that is a missing user, not a bad currency.
			if name == "profiles_user_id_fkey" {
				return nil, types.ErrNotFound
			}
			ve := types.NewValidationError()
			ve.Add("currency_id", "unknown currency")
			return nil, ve
		}
		return nil, api.MapConstraintError(err, uniqueConstraints)
	}
	return created, nil
}

func (r *PostgresProfileRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	row := r.pgpool.QueryRow(ctx,
		`UPDATE profiles
         SET balance = COALESCE($1, balance),
             currency_id = COALESCE($2, currency_id),
             budget = COALESCE($3, budget),
             budget_period = COALESCE($4, budget_period),
             updated_at = now()
         WHERE user_id = $5
         RETURNING `+profileColumns,
		params.Balance, params.CurrencyID, params.Budget, params.BudgetPeriod, userID,
	)

	updated, err := scanProfile(row)
	if err != nil {
		if api.IsForeignKeyViolation(err) {
			ve := types.NewValidationError()
			ve.Add("currency_id", "unknown currency")
			return nil, ve
		}
		return nil, err
	}
	return updated, nil
}
