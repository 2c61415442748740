package fund

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

// MockFundRepo is a mock implementation of the FundRepo interface
type MockFundRepo struct {
	mock.Mock
}

func (m *MockFundRepo) ListFunds(ctx context.Context, userID uuid.UUID) ([]types.Fund, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Fund), args.Error(1)
}

func (m *MockFundRepo) CreateFund(ctx context.Context, userID uuid.UUID, params types.CreateFundParams) (*types.Fund, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Fund), args.Error(1)
}

func (m *MockFundRepo) GetFund(ctx context.Context, userID, fundID uuid.UUID) (*types.Fund, error) {
	args := m.Called(ctx, userID, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Fund), args.Error(1)
}

func (m *MockFundRepo) UpdateFund(ctx context.Context, userID, fundID uuid.UUID, params types.UpdateFundParams) (*types.Fund, error) {
	args := m.Called(ctx, userID, fundID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Fund), args.Error(1)
}

func (m *MockFundRepo) DeleteFund(ctx context.Context, userID, fundID uuid.UUID) error {
	args := m.Called(ctx, userID, fundID)
	return args.Error(0)
}

func TestCreateFund(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockFundRepo)
		service := NewFundService(mockRepo, logger)
		ctx := context.Background()
		userID := uuid.New()

		params := types.CreateFundParams{Name: "Vacation"}
		stored := &types.Fund{ID: uuid.New(), Name: "Vacation"}

		mockRepo.On("CreateFund", ctx, userID, params).Return(stored, nil).Once()

		created, err := service.CreateFund(ctx, userID, params)

		assert.NoError(t, err)
		assert.Equal(t, "Vacation", created.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmptyName", func(t *testing.T) {
		mockRepo := new(MockFundRepo)
		service := NewFundService(mockRepo, logger)
		ctx := context.Background()

		_, err := service.CreateFund(ctx, uuid.New(), types.CreateFundParams{})

		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "name")
		mockRepo.AssertNotCalled(t, "CreateFund", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonPositiveGoal", func(t *testing.T) {
		mockRepo := new(MockFundRepo)
		service := NewFundService(mockRepo, logger)
		ctx := context.Background()

		goal := decimal.NewFromInt(-10)
		_, err := service.CreateFund(ctx, uuid.New(), types.CreateFundParams{Name: "Vacation", Goal: &goal})

		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "goal")
	})

	t.Run("NoProfileYet", func(t *testing.T) {
		mockRepo := new(MockFundRepo)
		service := NewFundService(mockRepo, logger)
		ctx := context.Background()
		userID := uuid.New()

		params := types.CreateFundParams{Name: "Vacation"}
		mockRepo.On("CreateFund", ctx, userID, params).Return(nil, types.ErrNotFound).Once()

		_, err := service.CreateFund(ctx, userID, params)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestGetFund(t *testing.T) {
	// A fund owned by someone else surfaces exactly like a missing one.
	mockRepo := new(MockFundRepo)
	service := NewFundService(mockRepo, slog.Default())
	ctx := context.Background()
	userID, fundID := uuid.New(), uuid.New()

	mockRepo.On("GetFund", ctx, userID, fundID).Return(nil, types.ErrNotFound).Once()

	_, err := service.GetFund(ctx, userID, fundID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
