package profile

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

var _ ProfileService = (*ProfileServiceImpl)(nil)

// ProfileService defines the business logic contract for profile operations.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	CreateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error)
}

type ProfileServiceImpl struct {
	logger *slog.Logger
	repo   ProfileRepo
}

func NewProfileService(repo ProfileRepo, logger *slog.Logger) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func validateParams(params types.UpsertProfileParams) *types.ValidationError {
	ve := types.NewValidationError()
	if params.BudgetPeriod != nil && !params.BudgetPeriod.Valid() {
		ve.Add("budget_period", "must be one of DAILY, WEEKLY, MONTHLY, ANNUALLY")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	return p, nil
}

func (s *ProfileServiceImpl) CreateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "CreateProfile", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateProfile"), slog.String("userID", userID.String()))

	if ve := validateParams(params); ve != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, ve
	}

	created, err := s.repo.CreateProfile(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}

	l.InfoContext(ctx, "Profile created", slog.String("profileID", created.ID.String()))
	span.SetStatus(codes.Ok, "profile created")
	return created, nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	if ve := validateParams(params); ve != nil {
		return nil, ve
	}

	updated, err := s.repo.UpdateProfile(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update profile", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "Profile updated")
	return updated, nil
}
