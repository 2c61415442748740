package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/vesmirov/fundhub/config"
	"github.com/vesmirov/fundhub/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepo) GetRefreshToken(ctx context.Context, token string) (uuid.UUID, time.Time, *time.Time, error) {
	args := m.Called(ctx, token)
	var revokedAt *time.Time
	if args.Get(2) != nil {
		revokedAt = args.Get(2).(*time.Time)
	}
	return args.Get(0).(uuid.UUID), args.Get(1).(time.Time), revokedAt, args.Error(3)
}

func (m *MockAuthRepo) InvalidateRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "test-issuer",
			Audience:        "test-audience",
		},
	}
}

func registeredUser(password string) *types.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	hash := string(hashed)
	email := "kira@example.com"
	return &types.User{
		ID:           uuid.New(),
		Username:     "kira",
		Email:        &email,
		PasswordHash: &hash,
		TelegramID:   "12345",
		Role:         types.RoleRegistered,
	}
}

func TestLogin(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		user := registeredUser("password123")

		mockRepo.On("GetUserByEmail", ctx, *user.Email).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		accessToken, refreshToken, err := service.Login(ctx, *user.Email, "password123")

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, "nobody@example.com").Return(nil, types.ErrNotFound).Once()

		_, _, err := service.Login(ctx, "nobody@example.com", "password123")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		user := registeredUser("password123")

		mockRepo.On("GetUserByEmail", ctx, *user.Email).Return(user, nil).Once()

		_, _, err := service.Login(ctx, *user.Email, "wrong")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnregisteredUserCannotLogin", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		email := "bot@example.com"
		user := &types.User{
			ID:         uuid.New(),
			Username:   "bot-user",
			Email:      &email,
			TelegramID: "67890",
			Role:       types.RoleUnregistered,
		}

		mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil).Once()

		_, _, err := service.Login(ctx, email, "whatever")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestRefresh(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		user := registeredUser("password123")
		oldToken := uuid.NewString()

		mockRepo.On("GetRefreshToken", ctx, oldToken).Return(user.ID, time.Now().Add(time.Hour), nil, nil).Once()
		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()
		mockRepo.On("InvalidateRefreshToken", ctx, oldToken).Return(nil).Once()

		accessToken, newRefreshToken, err := service.Refresh(ctx, oldToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, newRefreshToken)
		assert.NotEqual(t, oldToken, newRefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		oldToken := uuid.NewString()

		mockRepo.On("GetRefreshToken", ctx, oldToken).Return(uuid.New(), time.Now().Add(-time.Hour), nil, nil).Once()

		_, _, err := service.Refresh(ctx, oldToken)

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RevokedToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		oldToken := uuid.NewString()
		revokedAt := time.Now().Add(-time.Minute)

		mockRepo.On("GetRefreshToken", ctx, oldToken).Return(uuid.New(), time.Now().Add(time.Hour), &revokedAt, nil).Once()

		_, _, err := service.Refresh(ctx, oldToken)

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()

		mockRepo.On("GetRefreshToken", ctx, "unknown").Return(uuid.Nil, time.Time{}, nil, types.ErrNotFound).Once()

		_, _, err := service.Refresh(ctx, "unknown")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetCurrentUser(t *testing.T) {
	logger := slog.Default()

	t.Run("CachesAfterFirstLookup", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		user := registeredUser("password123")

		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()

		first, err := service.GetCurrentUser(ctx, user.ID)
		assert.NoError(t, err)

		second, err := service.GetCurrentUser(ctx, user.ID)
		assert.NoError(t, err)
		assert.Same(t, first, second)

		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testConfig(), logger)
		ctx := context.Background()
		userID := uuid.New()

		mockRepo.On("GetUserByID", ctx, userID).Return(nil, types.ErrNotFound).Once()

		_, err := service.GetCurrentUser(ctx, userID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestInvalidateAllSessions(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := NewAuthService(mockRepo, testConfig(), slog.Default())
	ctx := context.Background()
	user := registeredUser("password123")

	// Warm the cache, then invalidate and expect a fresh lookup.
	mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Twice()
	mockRepo.On("InvalidateAllUserRefreshTokens", ctx, user.ID).Return(nil).Once()

	_, err := service.GetCurrentUser(ctx, user.ID)
	assert.NoError(t, err)

	err = service.InvalidateAllSessions(ctx, user.ID)
	assert.NoError(t, err)

	_, err = service.GetCurrentUser(ctx, user.ID)
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}
