package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vesmirov/fundhub/internal/types"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	logger := slog.Default()
	cfg := testConfig()

	t.Run("MissingHeader", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, cfg, logger)
		mw := Authenticate(logger, cfg.JWT, service)

		req := httptest.NewRequest(http.MethodGet, "/funds", nil)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("MalformedToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, cfg, logger)
		mw := Authenticate(logger, cfg.JWT, service)

		req := httptest.NewRequest(http.MethodGet, "/funds", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ValidTokenResolvesIdentity", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, cfg, logger)
		mw := Authenticate(logger, cfg.JWT, service)

		user := registeredUser("password123")
		token, err := service.generateAccessToken(user)
		assert.NoError(t, err)

		mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

		var seen *types.User
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = GetUserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/funds", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.ID)
	})

	t.Run("DeletedUserIsRejected", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, cfg, logger)
		mw := Authenticate(logger, cfg.JWT, service)

		user := registeredUser("password123")
		token, err := service.generateAccessToken(user)
		assert.NoError(t, err)

		mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(nil, types.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/funds", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("DemotionTakesEffectNextRequest", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, cfg, logger)
		gate := RequireAdmin(logger)
		mw := Authenticate(logger, cfg.JWT, service)
		protected := mw(gate(okHandler()))

		admin := registeredUser("password123")
		admin.Role = types.RoleAdmin
		token, err := service.generateAccessToken(admin)
		assert.NoError(t, err)

		demoted := *admin
		demoted.Role = types.RoleRegistered

		mockRepo.On("GetUserByID", mock.Anything, admin.ID).Return(admin, nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, admin.ID).Return(&demoted, nil).Once()
		mockRepo.On("InvalidateAllUserRefreshTokens", mock.Anything, admin.ID).Return(nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		// The role change revokes sessions, so the cached identity is gone
		// and the next request resolves the demoted role from the store.
		assert.NoError(t, service.InvalidateAllSessions(context.Background(), admin.ID))

		req = httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr = httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		mockRepo.AssertNumberOfCalls(t, "GetUserByID", 2)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		otherCfg := testConfig()
		otherCfg.JWT.Issuer = "someone-else"
		otherService := NewAuthService(mockRepo, otherCfg, logger)

		user := registeredUser("password123")
		token, err := otherService.generateAccessToken(user)
		assert.NoError(t, err)

		service := NewAuthService(mockRepo, cfg, logger)
		mw := Authenticate(logger, cfg.JWT, service)

		req := httptest.NewRequest(http.MethodGet, "/funds", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func withUser(req *http.Request, user *types.User) *http.Request {
	ctx := context.WithValue(req.Context(), UserIDKey, user.ID.String())
	ctx = context.WithValue(ctx, UserKey, user)
	return req.WithContext(ctx)
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.Default()
	mw := RequireAdmin(logger)

	tests := []struct {
		name string
		user *types.User
		want int
	}{
		{"Admin", &types.User{ID: uuid.New(), Role: types.RoleAdmin}, http.StatusOK},
		{"Superuser", &types.User{ID: uuid.New(), Role: types.RoleRegistered, IsSuperuser: true}, http.StatusOK},
		{"Registered", &types.User{ID: uuid.New(), Role: types.RoleRegistered}, http.StatusForbidden},
		{"Unregistered", &types.User{ID: uuid.New(), Role: types.RoleUnregistered}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodGet, "/users", nil), tt.user)
			rr := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}

	t.Run("NoIdentity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireRegistered(t *testing.T) {
	logger := slog.Default()
	mw := RequireRegistered(logger)

	tests := []struct {
		name string
		user *types.User
		want int
	}{
		{"Admin", &types.User{ID: uuid.New(), Role: types.RoleAdmin}, http.StatusOK},
		{"Registered", &types.User{ID: uuid.New(), Role: types.RoleRegistered}, http.StatusOK},
		{"Unregistered", &types.User{ID: uuid.New(), Role: types.RoleUnregistered}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodGet, "/funds", nil), tt.user)
			rr := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

// DenialsLookIdentical checks that failed admin and registered checks produce
// the same status and body, leaking nothing about the target resource.
func TestDenialsLookIdentical(t *testing.T) {
	logger := slog.Default()
	unregistered := &types.User{ID: uuid.New(), Role: types.RoleUnregistered}

	reqAdmin := withUser(httptest.NewRequest(http.MethodGet, "/users", nil), unregistered)
	rrAdmin := httptest.NewRecorder()
	RequireAdmin(logger)(okHandler()).ServeHTTP(rrAdmin, reqAdmin)

	reqReg := withUser(httptest.NewRequest(http.MethodGet, "/funds", nil), unregistered)
	rrReg := httptest.NewRecorder()
	RequireRegistered(logger)(okHandler()).ServeHTTP(rrReg, reqReg)

	assert.Equal(t, http.StatusForbidden, rrAdmin.Code)
	assert.Equal(t, rrAdmin.Code, rrReg.Code)
	assert.Equal(t, rrAdmin.Body.String(), rrReg.Body.String())
}
