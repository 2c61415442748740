package fund

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

var _ FundRepo = (*PostgresFundRepo)(nil)

// FundRepo defines the contract for fund persistence. Every query is scoped
// to the calling user's profile in SQL, so a fund owned by someone else is
// indistinguishable from a missing one.
type FundRepo interface {
	ListFunds(ctx context.Context, userID uuid.UUID) ([]types.Fund, error)

	// CreateFund inserts a fund under the user's profile. Returns
	// types.ErrNotFound if the user has no profile yet.
	CreateFund(ctx context.Context, userID uuid.UUID, params types.CreateFundParams) (*types.Fund, error)

	GetFund(ctx context.Context, userID, fundID uuid.UUID) (*types.Fund, error)
	UpdateFund(ctx context.Context, userID, fundID uuid.UUID, params types.UpdateFundParams) (*types.Fund, error)

	// DeleteFund removes a fund; its transactions and budgets cascade.
	DeleteFund(ctx context.Context, userID, fundID uuid.UUID) error
}

type PostgresFundRepo struct {
	logger *slog.Logger
	pgpool api.PGPool
}

func NewPostgresFundRepo(pgpool api.PGPool, logger *slog.Logger) *PostgresFundRepo {
	return &PostgresFundRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const fundColumns = `f.id, f.profile_id, f.name, f.description, f.balance, f.goal, f.budget, f.created_at, f.updated_at`

func scanFund(row pgx.Row) (*types.Fund, error) {
	var f types.Fund
	err := row.Scan(
		&f.ID, &f.ProfileID, &f.Name, &f.Description, &f.Balance,
		&f.Goal, &f.Budget, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan fund: %w", err)
	}
	return &f, nil
}

func (r *PostgresFundRepo) ListFunds(ctx context.Context, userID uuid.UUID) ([]types.Fund, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+fundColumns+`
         FROM funds f
         JOIN profiles p ON f.profile_id = p.id
         WHERE p.user_id = $1
         ORDER BY f.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list funds: query failed: %w", err)
	}
	defer rows.Close()

	funds := make([]types.Fund, 0)
	for rows.Next() {
		var f types.Fund
		err := rows.Scan(
			&f.ID, &f.ProfileID, &f.Name, &f.Description, &f.Balance,
			&f.Goal, &f.Budget, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list funds: scan failed: %w", err)
		}
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list funds: rows error: %w", err)
	}
	return funds, nil
}

func (r *PostgresFundRepo) CreateFund(ctx context.Context, userID uuid.UUID, params types.CreateFundParams) (*types.Fund, error) {
	balance := decimal.Zero
	if params.Balance != nil {
		balance = *params.Balance
	}
	budget := decimal.Zero
	if params.Budget != nil {
		budget = *params.Budget
	}

	row := r.pgpool.QueryRow(ctx,
		`INSERT INTO funds (profile_id, name, description, balance, goal, budget)
         SELECT p.id, $2, $3, $4, $5, $6
         FROM profiles p
         WHERE p.user_id = $1
         RETURNING id, profile_id, name, description, balance, goal, budget, created_at, updated_at`,
		userID, params.Name, params.Description, balance, params.Goal, budget,
	)
	return scanFund(row)
}

func (r *PostgresFundRepo) GetFund(ctx context.Context, userID, fundID uuid.UUID) (*types.Fund, error) {
	row := r.pgpool.QueryRow(ctx,
		`SELECT `+fundColumns+`
         FROM funds f
         JOIN profiles p ON f.profile_id = p.id
         WHERE f.id = $1 AND p.user_id = $2`, fundID, userID)
	return scanFund(row)
}

func (r *PostgresFundRepo) UpdateFund(ctx context.Context, userID, fundID uuid.UUID, params types.UpdateFundParams) (*types.Fund, error) {
	row := r.pgpool.QueryRow(ctx,
		`UPDATE funds f
         SET name = COALESCE($3, f.name),
             description = COALESCE($4, f.description),
             goal = COALESCE($5, f.goal),
             budget = COALESCE($6, f.budget),
             updated_at = now()
         FROM profiles p
         WHERE f.id = $1 AND f.profile_id = p.id AND p.user_id = $2
         RETURNING f.id, f.profile_id, f.name, f.description, f.balance, f.goal, f.budget, f.created_at, f.updated_at`,
		fundID, userID, params.Name, params.Description, params.Goal, params.Budget,
	)
	return scanFund(row)
}

func (r *PostgresFundRepo) DeleteFund(ctx context.Context, userID, fundID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM funds f
         USING profiles p
         WHERE f.id = $1 AND f.profile_id = p.id AND p.user_id = $2`,
		fundID, userID)
	if err != nil {
		return fmt.Errorf("delete fund: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
