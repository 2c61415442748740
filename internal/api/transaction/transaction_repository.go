package transaction

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

var _ TransactionRepo = (*PostgresTransactionRepo)(nil)

// TransactionRepo defines the contract for transaction persistence. Queries
// are scoped to the calling user's profile in SQL.
type TransactionRepo interface {
	ListTransactions(ctx context.Context, userID, fundID uuid.UUID) ([]types.Transaction, error)

	// CreateTransaction records a movement against a fund the user owns.
	// Returns types.ErrNotFound if the fund doesn't exist or isn't theirs.
	CreateTransaction(ctx context.Context, userID, fundID uuid.UUID, params types.CreateTransactionParams) (*types.Transaction, error)

	GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*types.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error
}

type PostgresTransactionRepo struct {
	logger *slog.Logger
	pgpool api.PGPool
}

func NewPostgresTransactionRepo(pgpool api.PGPool, logger *slog.Logger) *PostgresTransactionRepo {
	return &PostgresTransactionRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func scanTransaction(row pgx.Row) (*types.Transaction, error) {
	var t types.Transaction
	err := row.Scan(&t.ID, &t.Type, &t.Amount, &t.Comment, &t.FundID, &t.ProfileID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &t, nil
}

func (r *PostgresTransactionRepo) ListTransactions(ctx context.Context, userID, fundID uuid.UUID) ([]types.Transaction, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT t.id, t.type, t.amount, t.comment, t.fund_id, t.profile_id, t.created_at
         FROM transactions t
         JOIN profiles p ON t.profile_id = p.id
         WHERE t.fund_id = $1 AND p.user_id = $2
         ORDER BY t.created_at DESC`, fundID, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: query failed: %w", err)
	}
	defer rows.Close()

	transactions := make([]types.Transaction, 0)
	for rows.Next() {
		var t types.Transaction
		err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Comment, &t.FundID, &t.ProfileID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("list transactions: scan failed: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: rows error: %w", err)
	}
	return transactions, nil
}

func (r *PostgresTransactionRepo) CreateTransaction(ctx context.Context, userID, fundID uuid.UUID, params types.CreateTransactionParams) (*types.Transaction, error) {
	row := r.pgpool.QueryRow(ctx,
		`INSERT INTO transactions (type, amount, comment, fund_id, profile_id)
         SELECT $3, $4, $5, f.id, f.profile_id
         FROM funds f
         JOIN profiles p ON f.profile_id = p.id
         WHERE f.id = $1 AND p.user_id = $2
         RETURNING id, type, amount, comment, fund_id, profile_id, created_at`,
		fundID, userID, params.Type, params.Amount, params.Comment,
	)
	return scanTransaction(row)
}

func (r *PostgresTransactionRepo) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*types.Transaction, error) {
	row := r.pgpool.QueryRow(ctx,
		`SELECT t.id, t.type, t.amount, t.comment, t.fund_id, t.profile_id, t.created_at
         FROM transactions t
         JOIN profiles p ON t.profile_id = p.id
         WHERE t.id = $1 AND p.user_id = $2`, transactionID, userID)
	return scanTransaction(row)
}

func (r *PostgresTransactionRepo) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM transactions t
         USING profiles p
         WHERE t.id = $1 AND t.profile_id = p.id AND p.user_id = $2`,
		transactionID, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
