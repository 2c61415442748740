package budget

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vesmirov/fundhub/internal/types"
)

// MockBudgetRepo is a mock implementation of the BudgetRepo interface
type MockBudgetRepo struct {
	mock.Mock
}

func (m *MockBudgetRepo) GetFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod) (*types.FundBudget, error) {
	args := m.Called(ctx, userID, fundID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FundBudget), args.Error(1)
}

func (m *MockBudgetRepo) UpsertFundBudget(ctx context.Context, userID, fundID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.FundBudget, error) {
	args := m.Called(ctx, userID, fundID, period, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FundBudget), args.Error(1)
}

func (m *MockBudgetRepo) GetUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod) (*types.UserBudget, error) {
	args := m.Called(ctx, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserBudget), args.Error(1)
}

func (m *MockBudgetRepo) UpsertUserBudget(ctx context.Context, userID uuid.UUID, period types.BudgetPeriod, params types.UpsertBudgetParams) (*types.UserBudget, error) {
	args := m.Called(ctx, userID, period, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserBudget), args.Error(1)
}

func validParams() types.UpsertBudgetParams {
	return types.UpsertBudgetParams{
		Amount:  decimal.NewFromInt(500),
		EndDate: time.Now().AddDate(0, 1, 0),
	}
}

func TestUpsertFundBudget(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockBudgetRepo)
		service := NewBudgetService(mockRepo, logger)
		ctx := context.Background()
		userID, fundID := uuid.New(), uuid.New()
		params := validParams()

		stored := &types.FundBudget{ID: uuid.New(), FundID: fundID, Period: types.PeriodMonthly, Amount: params.Amount}
		mockRepo.On("UpsertFundBudget", ctx, userID, fundID, types.PeriodMonthly, params).Return(stored, nil).Once()

		b, err := service.UpsertFundBudget(ctx, userID, fundID, types.PeriodMonthly, params)

		assert.NoError(t, err)
		assert.Equal(t, types.PeriodMonthly, b.Period)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownPeriod", func(t *testing.T) {
		mockRepo := new(MockBudgetRepo)
		service := NewBudgetService(mockRepo, logger)
		ctx := context.Background()

		_, err := service.UpsertFundBudget(ctx, uuid.New(), uuid.New(), types.BudgetPeriod("QUARTERLY"), validParams())

		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "period")
		mockRepo.AssertNotCalled(t, "UpsertFundBudget", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		mockRepo := new(MockBudgetRepo)
		service := NewBudgetService(mockRepo, logger)
		ctx := context.Background()

		params := validParams()
		params.Amount = decimal.Zero

		_, err := service.UpsertFundBudget(ctx, uuid.New(), uuid.New(), types.PeriodWeekly, params)

		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "amount")
	})

	t.Run("ForeignFundLooksMissing", func(t *testing.T) {
		mockRepo := new(MockBudgetRepo)
		service := NewBudgetService(mockRepo, logger)
		ctx := context.Background()
		userID, fundID := uuid.New(), uuid.New()
		params := validParams()

		mockRepo.On("UpsertFundBudget", ctx, userID, fundID, types.PeriodDaily, params).Return(nil, types.ErrNotFound).Once()

		_, err := service.UpsertFundBudget(ctx, userID, fundID, types.PeriodDaily, params)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestUpsertUserBudget(t *testing.T) {
	logger := slog.Default()

	t.Run("MissingEndDate", func(t *testing.T) {
		mockRepo := new(MockBudgetRepo)
		service := NewBudgetService(mockRepo, logger)
		ctx := context.Background()

		params := types.UpsertBudgetParams{Amount: decimal.NewFromInt(100)}

		_, err := service.UpsertUserBudget(ctx, uuid.New(), types.PeriodAnnually, params)

		var ve *types.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "end_date")
	})

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockBudgetRepo)
		service := NewBudgetService(mockRepo, logger)
		ctx := context.Background()
		userID := uuid.New()
		params := validParams()

		stored := &types.UserBudget{ID: uuid.New(), Period: types.PeriodAnnually, Amount: params.Amount}
		mockRepo.On("UpsertUserBudget", ctx, userID, types.PeriodAnnually, params).Return(stored, nil).Once()

		b, err := service.UpsertUserBudget(ctx, userID, types.PeriodAnnually, params)

		assert.NoError(t, err)
		assert.Equal(t, types.PeriodAnnually, b.Period)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetFundBudget(t *testing.T) {
	mockRepo := new(MockBudgetRepo)
	service := NewBudgetService(mockRepo, slog.Default())
	ctx := context.Background()

	_, err := service.GetFundBudget(ctx, uuid.New(), uuid.New(), types.BudgetPeriod("sometimes"))

	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "period")
}
