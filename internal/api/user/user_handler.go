package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vesmirov/fundhub/internal/api"
	"github.com/vesmirov/fundhub/internal/api/auth"
	"github.com/vesmirov/fundhub/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	GetAccount(w http.ResponseWriter, r *http.Request)
	UpdateAccount(w http.ResponseWriter, r *http.Request)
	SignUp(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "userID"))
}

// ListUsers godoc
// @Summary      List Users
// @Description  Returns every user with the full admin field set.
// @Tags         Users
// @Security     BearerAuth
// @Router       /users [get]
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListUsers"))

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list users")
		return
	}

	views := make([]types.UserAdminView, 0, len(users))
	for i := range users {
		views = append(views, users[i].AdminView())
	}
	api.WriteJSONResponse(w, r, http.StatusOK, views)
}

// CreateUser godoc
// @Summary      Create User
// @Description  Creates a user with the full field set, any role included.
// @Tags         Users
// @Security     BearerAuth
// @Router       /users [post]
func (h *HandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateUser"))

	var params types.CreateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.userService.CreateUser(ctx, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create user", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to create user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created.AdminView())
}

// GetUser godoc
// @Summary      Get User
// @Description  Retrieves an arbitrary user by id with the full field set.
// @Tags         Users
// @Security     BearerAuth
// @Router       /users/{userID} [get]
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetUser"))

	userID, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user.AdminView())
}

// UpdateUser godoc
// @Summary      Update User
// @Description  Partially updates an arbitrary user, any field included.
// @Tags         Users
// @Security     BearerAuth
// @Router       /users/{userID} [patch]
func (h *HandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateUser"))

	userID, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var params types.UpdateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateUser(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update user", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to update user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated.AdminView())
}

// DeleteUser godoc
// @Summary      Delete User
// @Description  Removes a user and everything its profile owns.
// @Tags         Users
// @Security     BearerAuth
// @Router       /users/{userID} [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteUser"))

	userID, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	if err := h.userService.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// GetAccount godoc
// @Summary      Get Own Account
// @Description  Retrieves the caller's own record with the restricted field set.
// @Tags         Users
// @Security     BearerAuth
// @Router       /users/account [get]
func (h *HandlerImpl) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAccount"))

	// The target is resolved strictly from the authenticated identity; any
	// identifier in the path, query or body is ignored.
	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid identity")
		return
	}

	user, err := h.userService.GetAccount(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get account", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to retrieve account")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user.View())
}

// UpdateAccount godoc
// @Summary      Update Own Account
// @Description  Updates the caller's own non-privileged fields.
// @Tags         Users
// @Security     BearerAuth
// @Router       /users/account [patch]
func (h *HandlerImpl) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateAccount"))

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid identity")
		return
	}

	var params types.UpdateAccountParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateAccount(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update account", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to update account")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated.View())
}

// SignUp godoc
// @Summary      Sign Up
// @Description  Public self-registration with the restricted field set.
// @Tags         Users
// @Router       /users/sign-up [post]
func (h *HandlerImpl) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SignUp"))

	var params types.SignUpParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.userService.SignUp(ctx, params)
	if err != nil {
		l.WarnContext(ctx, "Sign-up failed", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Sign-up failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created.View())
}
