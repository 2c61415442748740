package fund

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vesmirov/fundhub/internal/types"
)

var _ FundService = (*FundServiceImpl)(nil)

// FundService defines the business logic contract for fund operations.
type FundService interface {
	ListFunds(ctx context.Context, userID uuid.UUID) ([]types.Fund, error)
	CreateFund(ctx context.Context, userID uuid.UUID, params types.CreateFundParams) (*types.Fund, error)
	GetFund(ctx context.Context, userID, fundID uuid.UUID) (*types.Fund, error)
	UpdateFund(ctx context.Context, userID, fundID uuid.UUID, params types.UpdateFundParams) (*types.Fund, error)
	DeleteFund(ctx context.Context, userID, fundID uuid.UUID) error
}

type FundServiceImpl struct {
	logger *slog.Logger
	repo   FundRepo
}

func NewFundService(repo FundRepo, logger *slog.Logger) *FundServiceImpl {
	return &FundServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *FundServiceImpl) ListFunds(ctx context.Context, userID uuid.UUID) ([]types.Fund, error) {
	funds, err := s.repo.ListFunds(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing funds: %w", err)
	}
	return funds, nil
}

func (s *FundServiceImpl) CreateFund(ctx context.Context, userID uuid.UUID, params types.CreateFundParams) (*types.Fund, error) {
	ctx, span := otel.Tracer("FundService").Start(ctx, "CreateFund", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateFund"), slog.String("userID", userID.String()))

	ve := types.NewValidationError()
	if params.Name == "" {
		ve.Add("name", "must not be empty")
	}
	if params.Goal != nil && params.Goal.LessThanOrEqual(decimal.Zero) {
		ve.Add("goal", "must be positive")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	created, err := s.repo.CreateFund(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create fund", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	l.InfoContext(ctx, "Fund created", slog.String("fundID", created.ID.String()))
	span.SetStatus(codes.Ok, "fund created")
	return created, nil
}

func (s *FundServiceImpl) GetFund(ctx context.Context, userID, fundID uuid.UUID) (*types.Fund, error) {
	f, err := s.repo.GetFund(ctx, userID, fundID)
	if err != nil {
		return nil, fmt.Errorf("error fetching fund: %w", err)
	}
	return f, nil
}

func (s *FundServiceImpl) UpdateFund(ctx context.Context, userID, fundID uuid.UUID, params types.UpdateFundParams) (*types.Fund, error) {
	l := s.logger.With(slog.String("method", "UpdateFund"), slog.String("fundID", fundID.String()))

	if params.Name != nil && *params.Name == "" {
		ve := types.NewValidationError()
		ve.Add("name", "must not be empty")
		return nil, ve
	}

	updated, err := s.repo.UpdateFund(ctx, userID, fundID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update fund", slog.Any("error", err))
		return nil, err
	}

	return updated, nil
}

func (s *FundServiceImpl) DeleteFund(ctx context.Context, userID, fundID uuid.UUID) error {
	ctx, span := otel.Tracer("FundService").Start(ctx, "DeleteFund", trace.WithAttributes(
		attribute.String("fund.id", fundID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteFund"), slog.String("fundID", fundID.String()))

	if err := s.repo.DeleteFund(ctx, userID, fundID); err != nil {
		l.WarnContext(ctx, "Failed to delete fund", slog.Any("error", err))
		span.RecordError(err)
		return err
	}

	l.InfoContext(ctx, "Fund deleted")
	return nil
}
