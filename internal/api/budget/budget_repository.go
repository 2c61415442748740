package budget

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

var _ BudgetRepo = (*PostgresBudgetRepo)(nil)

// BudgetRepo defines the contract for budget persistence. Fund budgets are
// keyed by (fund_id, period) and user budgets by (profile_id, period), so a
// second upsert for the same period replaces the existing row. All queries
// are scoped to the calling user's profile in SQL.
type BudgetRepo interface {
	GetFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod) (*types.FundBudget, error)

	// UpsertFundBudget creates or replaces the fund budget for one period.
	// Returns types.ErrNotFound if the fund does not belong to the user.
	UpsertFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.FundBudget, error)

	GetUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod) (*types.UserBudget, error)

	// UpsertUserBudget creates or replaces the profile budget for one period.
	// Returns types.ErrNotFound if the user has no profile yet.
	UpsertUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.UserBudget, error)
}

type PostgresBudgetRepo struct {
	logger *slog.Logger
	pgpool api.PGPool
}

func NewPostgresBudgetRepo(pgpool api.PGPool, logger *slog.Logger) *PostgresBudgetRepo {
	return &PostgresBudgetRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func scanFundBudget(row pgx.Row) (*types.FundBudget, error) {
	var b types.FundBudget
	err := row.Scan(&b.ID, &b.FundID, &b.Period, &b.Amount, &b.EndDate, &b.AutoRenew, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan fund budget: %w", err)
	}
	return &b, nil
}

func scanUserBudget(row pgx.Row) (*types.UserBudget, error) {
	var b types.UserBudget
	err := row.Scan(&b.ID, &b.ProfileID, &b.Period, &b.Amount, &b.EndDate, &b.AutoRenew, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan user budget: %w", err)
	}
	return &b, nil
}

func (r *PostgresBudgetRepo) GetFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod) (*types.FundBudget, error) {
	row := r.pgpool.QueryRow(ctx,
		`SELECT b.id, b.fund_id, b.period, b.amount, b.end_date, b.auto_renew, b.created_at
         FROM fund_budgets b
         JOIN funds f ON b.fund_id = f.id
         JOIN profiles p ON f.profile_id = p.id
         WHERE b.fund_id = $1 AND b.period = $2 AND p.user_id = $3`,
		fundID, period, userID)
	return scanFundBudget(row)
}

func (r *PostgresBudgetRepo) UpsertFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.FundBudget, error) {
	row := r.pgpool.QueryRow(ctx,
		`INSERT INTO fund_budgets (fund_id, period, amount, end_date, auto_renew)
         SELECT f.id, $3, $4, $5, $6
         FROM funds f
         JOIN profiles p ON f.profile_id = p.id
         WHERE f.id = $1 AND p.user_id = $2
         ON CONFLICT (fund_id, period) DO UPDATE
         SET amount = EXCLUDED.amount,
             end_date = EXCLUDED.end_date,
             auto_renew = EXCLUDED.auto_renew
         RETURNING id, fund_id, period, amount, end_date, auto_renew, created_at`,
		fundID, userID, period, params.Amount, params.EndDate, params.AutoRenew,
	)
	return scanFundBudget(row)
}

func (r *PostgresBudgetRepo) GetUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod) (*types.UserBudget, error) {
	row := r.pgpool.QueryRow(ctx,
		`SELECT b.id, b.profile_id, b.period, b.amount, b.end_date, b.auto_renew, b.created_at
         FROM user_budgets b
         JOIN profiles p ON b.profile_id = p.id
         WHERE b.period = $1 AND p.user_id = $2`,
		period, userID)
	return scanUserBudget(row)
}

func (r *PostgresBudgetRepo) UpsertUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.UserBudget, error) {
	row := r.pgpool.QueryRow(ctx,
		`INSERT INTO user_budgets (profile_id, period, amount, end_date, auto_renew)
         SELECT p.id, $2, $3, $4, $5
         FROM profiles p
         WHERE p.user_id = $1
         ON CONFLICT (profile_id, period) DO UPDATE
         SET amount = EXCLUDED.amount,
             end_date = EXCLUDED.end_date,
             auto_renew = EXCLUDED.auto_renew
         RETURNING id, profile_id, period, amount, end_date, auto_renew, created_at`,
		userID, period, params.Amount, params.EndDate, params.AutoRenew,
	)
	return scanUserBudget(row)
}
