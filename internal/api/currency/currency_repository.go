package currency

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

var _ CurrencyRepo = (*PostgresCurrencyRepo)(nil)

// CurrencyRepo defines the contract for currency catalog persistence.
type CurrencyRepo interface {
	ListCurrencies(ctx context.Context) ([]types.Currency, error)
	CreateCurrency(ctx context.Context, c *types.Currency) (*types.Currency, error)
	GetCurrency(ctx context.Context, currencyID uuid.UUID) (*types.Currency, error)
	UpdateCurrency(ctx context.Context, c *types.Currency) error

	// DeleteCurrency removes a currency. Deletion is RESTRICTed while any
	// profile or fund references the currency; that surfaces as a validation
	// error, never a cascade.
	DeleteCurrency(ctx context.Context, currencyID uuid.UUID) error
}

var uniqueConstraints = map[string]string{
	"currencies_name_key":     "name",
	"currencies_iso_code_key": "iso_code",
}

type PostgresCurrencyRepo struct {
	logger *slog.Logger
	pgpool api.PGPool
}

func NewPostgresCurrencyRepo(pgpool api.PGPool, logger *slog.Logger) *PostgresCurrencyRepo {
	return &PostgresCurrencyRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresCurrencyRepo) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	rows, err := r.pgpool.Query(ctx,
		"SELECT id, name, iso_code FROM currencies ORDER BY iso_code")
	if err != nil {
		return nil, fmt.Errorf("list currencies: query failed: %w", err)
	}
	defer rows.Close()

	currencies := make([]types.Currency, 0)
	for rows.Next() {
		var c types.Currency
		if err := rows.Scan(&c.ID, &c.Name, &c.ISOCode); err != nil {
			return nil, fmt.Errorf("list currencies: scan failed: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list currencies: rows error: %w", err)
	}
	return currencies, nil
}

func (r *PostgresCurrencyRepo) CreateCurrency(ctx context.Context, c *types.Currency) (*types.Currency, error) {
	var created types.Currency
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO currencies (name, iso_code)
         VALUES ($1, $2)
         RETURNING id, name, iso_code`,
		c.Name, c.ISOCode,
	).Scan(&created.ID, &created.Name, &created.ISOCode)
	if err != nil {
		return nil, api.MapConstraintError(err, uniqueConstraints)
	}
	return &created, nil
}

func (r *PostgresCurrencyRepo) GetCurrency(ctx context.Context, currencyID uuid.UUID) (*types.Currency, error) {
	var c types.Currency
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, name, iso_code FROM currencies WHERE id = $1", currencyID,
	).Scan(&c.ID, &c.Name, &c.ISOCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("get currency: query failed: %w", err)
	}
	return &c, nil
}

func (r *PostgresCurrencyRepo) UpdateCurrency(ctx context.Context, c *types.Currency) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE currencies SET name = $1, iso_code = $2 WHERE id = $3",
		c.Name, c.ISOCode, c.ID,
	)
	if err != nil {
		return api.MapConstraintError(err, uniqueConstraints)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresCurrencyRepo) DeleteCurrency(ctx context.Context, currencyID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM currencies WHERE id = $1", currencyID)
	if err != nil {
		if api.IsForeignKeyViolation(err) {
			ve := types.NewValidationError()
			ve.Add("currency", "in use by profiles or funds")
			return ve
		}
		return fmt.Errorf("delete currency: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
