package currency

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vesmirov/fundhub/internal/types"
)

var _ CurrencyService = (*CurrencyServiceImpl)(nil)

// CurrencyService defines the business logic contract for the currency catalog.
type CurrencyService interface {
	ListCurrencies(ctx context.Context) ([]types.Currency, error)
	CreateCurrency(ctx context.Context, params types.CreateCurrencyParams) (*types.Currency, error)
	GetCurrency(ctx context.Context, currencyID uuid.UUID) (*types.Currency, error)
	UpdateCurrency(ctx context.Context, currencyID uuid.UUID, params types.CreateCurrencyParams) (*types.Currency, error)
	DeleteCurrency(ctx context.Context, currencyID uuid.UUID) error
}

type CurrencyServiceImpl struct {
	logger *slog.Logger
	repo   CurrencyRepo
}

func NewCurrencyService(repo CurrencyRepo, logger *slog.Logger) *CurrencyServiceImpl {
	return &CurrencyServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *CurrencyServiceImpl) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	currencies, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing currencies: %w", err)
	}
	return currencies, nil
}

func (s *CurrencyServiceImpl) CreateCurrency(ctx context.Context, params types.CreateCurrencyParams) (*types.Currency, error) {
	l := s.logger.With(slog.String("method", "CreateCurrency"))

	candidate := types.Currency{
		Name:    params.Name,
		ISOCode: strings.ToUpper(params.ISOCode),
	}
	if ve := candidate.Validate(); ve != nil {
		l.WarnContext(ctx, "Currency validation failed", slog.Any("fields", ve.Fields))
		return nil, ve
	}

	created, err := s.repo.CreateCurrency(ctx, &candidate)
	if err != nil {
		l.WarnContext(ctx, "Failed to create currency", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "Currency created", slog.String("iso_code", created.ISOCode))
	return created, nil
}

func (s *CurrencyServiceImpl) GetCurrency(ctx context.Context, currencyID uuid.UUID) (*types.Currency, error) {
	c, err := s.repo.GetCurrency(ctx, currencyID)
	if err != nil {
		return nil, fmt.Errorf("error fetching currency: %w", err)
	}
	return c, nil
}

func (s *CurrencyServiceImpl) UpdateCurrency(ctx context.Context, currencyID uuid.UUID, params types.CreateCurrencyParams) (*types.Currency, error) {
	l := s.logger.With(slog.String("method", "UpdateCurrency"), slog.String("currencyID", currencyID.String()))

	candidate := types.Currency{
		ID:      currencyID,
		Name:    params.Name,
		ISOCode: strings.ToUpper(params.ISOCode),
	}
	if ve := candidate.Validate(); ve != nil {
		return nil, ve
	}

	if err := s.repo.UpdateCurrency(ctx, &candidate); err != nil {
		l.WarnContext(ctx, "Failed to update currency", slog.Any("error", err))
		return nil, err
	}

	return &candidate, nil
}

func (s *CurrencyServiceImpl) DeleteCurrency(ctx context.Context, currencyID uuid.UUID) error {
	ctx, span := otel.Tracer("CurrencyService").Start(ctx, "DeleteCurrency", trace.WithAttributes(
		attribute.String("currency.id", currencyID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteCurrency"), slog.String("currencyID", currencyID.String()))

	if err := s.repo.DeleteCurrency(ctx, currencyID); err != nil {
		l.WarnContext(ctx, "Failed to delete currency", slog.Any("error", err))
		span.RecordError(err)
		return err
	}

	l.InfoContext(ctx, "Currency deleted")
	return nil
}
