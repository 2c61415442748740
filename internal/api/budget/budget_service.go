package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vesmirov/fundhub/internal/types"
)

var _ BudgetService = (*BudgetServiceImpl)(nil)

// BudgetService defines the business logic contract for fund and profile
// budgets.
type BudgetService interface {
	GetFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod) (*types.FundBudget, error)
	UpsertFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.FundBudget, error)
	GetUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod) (*types.UserBudget, error)
	UpsertUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.UserBudget, error)
}

type BudgetServiceImpl struct {
	logger *slog.Logger
	repo   BudgetRepo
}

func NewBudgetService(repo BudgetRepo, logger *slog.Logger) *BudgetServiceImpl {
	return &BudgetServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func validatePeriod(period types.BudgetPeriod) *types.ValidationError {
	if !period.Valid() {
		ve := types.NewValidationError()
		ve.Add("period", "must be one of DAILY, WEEKLY, MONTHLY, ANNUALLY")
		return ve
	}
	return nil
}

func (s *BudgetServiceImpl) GetFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod) (*types.FundBudget, error) {
	if ve := validatePeriod(period); ve != nil {
		return nil, ve
	}
	b, err := s.repo.GetFundBudget(ctx, userID, fundID, period)
	if err != nil {
		return nil, fmt.Errorf("error fetching fund budget: %w", err)
	}
	return b, nil
}

func (s *BudgetServiceImpl) UpsertFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.FundBudget, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "UpsertFundBudget", trace.WithAttributes(
		attribute.String("fund.id", fundID.String()),
		attribute.String("budget.period", string(period)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpsertFundBudget"), slog.String("fundID", fundID.String()))

	if ve := validatePeriod(period); ve != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}
	if ve := params.Validate(); ve != nil {
		l.WarnContext(ctx, "Budget validation failed", slog.Any("fields", ve.Fields))
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}

	b, err := s.repo.UpsertFundBudget(ctx, userID, fundID, period, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to upsert fund budget", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return nil, err
	}

	l.InfoContext(ctx, "Fund budget configured", slog.String("period", string(period)))
	return b, nil
}

func (s *BudgetServiceImpl) GetUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod) (*types.UserBudget, error) {
	if ve := validatePeriod(period); ve != nil {
		return nil, ve
	}
	b, err := s.repo.GetUserBudget(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("error fetching user budget: %w", err)
	}
	return b, nil
}

func (s *BudgetServiceImpl) UpsertUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.UserBudget, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "UpsertUserBudget", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("budget.period", string(period)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpsertUserBudget"), slog.String("userID", userID.String()))

	if ve := validatePeriod(period); ve != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}
	if ve := params.Validate(); ve != nil {
		l.WarnContext(ctx, "Budget validation failed", slog.Any("fields", ve.Fields))
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}

	b, err := s.repo.UpsertUserBudget(ctx, userID, period, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to upsert user budget", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return nil, err
	}

	l.InfoContext(ctx, "User budget configured", slog.String("period", string(period)))
	return b, nil
}
