package profile

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vesmirov/fundhub/internal/api"
	"github.com/vesmirov/fundhub/internal/api/auth"
	"github.com/vesmirov/fundhub/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
	CreateProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	profileService ProfileService
	logger         *slog.Logger
}

func NewHandlerImpl(profileService ProfileService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		profileService: profileService,
		logger:         logger,
	}
}

func callerID(r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// GetProfile godoc
// @Summary      Get Own Profile
// @Tags         Profile
// @Security     BearerAuth
// @Router       /profile [get]
func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	p, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		api.HandleDomainError(w, r, err, "Failed to retrieve profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// CreateProfile godoc
// @Summary      Create Own Profile
// @Tags         Profile
// @Security     BearerAuth
// @Router       /profile [post]
func (h *HandlerImpl) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateProfile"))

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.UpsertProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.profileService.CreateProfile(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create profile", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to create profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// UpdateProfile godoc
// @Summary      Update Own Profile
// @Tags         Profile
// @Security     BearerAuth
// @Router       /profile [put]
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.UpsertProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.profileService.UpdateProfile(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update profile", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to update profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}
