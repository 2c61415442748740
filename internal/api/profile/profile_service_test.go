package profile

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vesmirov/fundhub/internal/types"
)

// MockProfileRepo is a mock implementation of the ProfileRepo interface
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func (m *MockProfileRepo) CreateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func (m *MockProfileRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpsertProfileParams) (*types.Profile, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Profile), args.Error(1)
}

func TestCreateProfile(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		service := NewProfileService(mockRepo, logger)
		ctx := context.Background()
		userID := uuid.New()

		balance := decimal.NewFromInt(1000)
		params := types.UpsertProfileParams{Balance: &balance}
		stored := &types.Profile{ID: uuid.New(), UserID: userID, Balance: balance}

		mockRepo.On("CreateProfile", ctx, userID, params).Return(stored, nil).Once()

		created, err := service.CreateProfile(ctx, userID, params)

		assert.NoError(t, err)
		assert.Equal(t, userID, created.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownBudgetPeriod", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		service := NewProfileService(mockRepo, logger)
		ctx := context.Background()

		period := types.BudgetPeriod("QUARTERLY")
		params := types.UpsertProfileParams{BudgetPeriod: &period}

		_, err := service.CreateProfile(ctx, uuid.New(), params)

		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "budget_period")
		mockRepo.AssertNotCalled(t, "CreateProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SecondProfileRejected", func(t *testing.T) {
		mockRepo := new(MockProfileRepo)
		service := NewProfileService(mockRepo, logger)
		ctx := context.Background()
		userID := uuid.New()

		ve := types.NewValidationError()
		ve.Add("user", "already exists")
		mockRepo.On("CreateProfile", ctx, userID, types.UpsertProfileParams{}).Return(nil, ve).Once()

		_, err := service.CreateProfile(ctx, userID, types.UpsertProfileParams{})

		var got *types.ValidationError
		assert.ErrorAs(t, err, &got)
		assert.Contains(t, got.Fields, "user")
	})
}

func TestGetProfile(t *testing.T) {
	mockRepo := new(MockProfileRepo)
	service := NewProfileService(mockRepo, slog.Default())
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetProfileByUserID", ctx, userID).Return(nil, types.ErrNotFound).Once()

	_, err := service.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
