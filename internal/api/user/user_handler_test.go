package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vesmirov/fundhub/internal/api/auth"
	"github.com/vesmirov/fundhub/internal/types"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]types.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) GetAccount(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) UpdateAccount(ctx context.Context, userID uuid.UUID, params types.UpdateAccountParams) (*types.User, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) SignUp(ctx context.Context, params types.SignUpParams) (*types.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func authedRequest(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	return req.WithContext(ctx)
}

func TestSignUpHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("CreatedWithRestrictedView", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		email := "kira@example.com"
		created := &types.User{
			ID:         uuid.New(),
			Username:   "kira",
			Email:      &email,
			TelegramID: "12345",
			Role:       types.RoleRegistered,
		}
		mockService.On("SignUp", mock.Anything, mock.AnythingOfType("types.SignUpParams")).Return(created, nil).Once()

		body := `{"username":"kira","email":"kira@example.com","password":"password123","telegram_id":"12345"}`
		req := httptest.NewRequest(http.MethodPost, "/users/sign-up", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.SignUp(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, created.ID.String(), resp["id"])
		assert.NotContains(t, resp, "role")
		assert.NotContains(t, resp, "is_staff")
		mockService.AssertExpectations(t)
	})

	t.Run("RolePayloadFieldRejected", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		// Unknown fields are rejected at decode time, so a sign-up cannot
		// smuggle in a role even syntactically.
		body := `{"username":"kira","email":"k@e.com","password":"pw","telegram_id":"1","role":"ADMIN"}`
		req := httptest.NewRequest(http.MethodPost, "/users/sign-up", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.SignUp(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
	})

	t.Run("ValidationErrorsListEveryField", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		ve := types.NewValidationError()
		ve.Add("email", "registered users must have an email")
		ve.Add("password", "registered users must have a password")
		mockService.On("SignUp", mock.Anything, mock.AnythingOfType("types.SignUpParams")).Return(nil, ve).Once()

		body := `{"username":"kira","telegram_id":"12345"}`
		req := httptest.NewRequest(http.MethodPost, "/users/sign-up", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.SignUp(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		fields, ok := resp["fields"].(map[string]any)
		assert.True(t, ok)
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
	})
}

func TestGetAccountHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("TargetComesFromIdentity", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		userID := uuid.New()
		user := &types.User{
			ID:         userID,
			Username:   "kira",
			TelegramID: "12345",
			Role:       types.RoleRegistered,
		}
		mockService.On("GetAccount", mock.Anything, userID).Return(user, nil).Once()

		// A foreign id in the query string must be ignored.
		req := httptest.NewRequest(http.MethodGet, "/users/account?user_id="+uuid.NewString(), nil)
		req = authedRequest(req, userID)
		rr := httptest.NewRecorder()

		handler.GetAccount(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, userID.String(), resp["id"])
		assert.NotContains(t, resp, "role")
		mockService.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/users/account", nil)
		rr := httptest.NewRecorder()

		handler.GetAccount(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	})
}

func TestCreateUserHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("CreatedWithAdminView", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		created := &types.User{
			ID:         uuid.New(),
			Username:   "bot-user",
			TelegramID: "67890",
			Role:       types.RoleUnregistered,
		}
		mockService.On("CreateUser", mock.Anything, mock.AnythingOfType("types.CreateUserParams")).Return(created, nil).Once()

		body := `{"username":"bot-user","telegram_id":"67890","role":"UNREGISTERED"}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.CreateUser(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "UNREGISTERED", resp["role"])
		mockService.AssertExpectations(t)
	})
}

func TestGetUserHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		userID := uuid.New()
		mockService.On("GetUser", mock.Anything, userID).Return(nil, types.ErrNotFound).Once()

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("userID", userID.String())
		req := httptest.NewRequest(http.MethodGet, "/users/"+userID.String(), nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rr := httptest.NewRecorder()

		handler.GetUser(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("userID", "not-a-uuid")
		req := httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rr := httptest.NewRecorder()

		handler.GetUser(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})
}
