package fund

import (
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
	ListFunds(w http.ResponseWriter, r *http.Request)
	CreateFund(w http.ResponseWriter, r *http.Request)
	GetFund(w http.ResponseWriter, r *http.Request)
	UpdateFund(w http.ResponseWriter, r *http.Request)
	DeleteFund(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	fundService FundService
	logger      *slog.Logger
}

func NewHandlerImpl(fundService FundService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		fundService: fundService,
		logger:      logger,
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

// ListFunds godoc
// @Summary      List Own Funds
// @Tags         Funds
// @Security     BearerAuth
// @Router       /funds [get]
func (h *HandlerImpl) ListFunds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	funds, err := h.fundService.ListFunds(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list funds", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list funds")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, funds)
}

// CreateFund godoc
// @Summary      Create Fund
// @Tags         Funds
// @Security     BearerAuth
// @Router       /funds [post]
func (h *HandlerImpl) CreateFund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateFund"))

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.CreateFundParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.fundService.CreateFund(ctx, userID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create fund", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to create fund")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// GetFund godoc
// @Summary      Get Fund
// @Tags         Funds
// @Security     BearerAuth
// @Router       /funds/{fundID} [get]
func (h *HandlerImpl) GetFund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	fundID, err := uuid.Parse(chi.URLParam(r, "fundID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid fund ID format")
		return
	}

	f, err := h.fundService.GetFund(ctx, userID, fundID)
	if err != nil {
		api.HandleDomainError(w, r, err, "Failed to retrieve fund")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, f)
}

// UpdateFund godoc
// @Summary      Update Fund
// @Tags         Funds
// @Security     BearerAuth
// @Router       /funds/{fundID} [patch]
func (h *HandlerImpl) UpdateFund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateFund"))

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	fundID, err := uuid.Parse(chi.URLParam(r, "fundID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid fund ID format")
		return
	}

	var params types.UpdateFundParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.fundService.UpdateFund(ctx, userID, fundID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update fund", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to update fund")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteFund godoc
// @Summary      Delete Fund
// @Description  Removes a fund; its transactions and budgets cascade.
// @Tags         Funds
// @Security     BearerAuth
// @Router       /funds/{fundID} [delete]
func (h *HandlerImpl) DeleteFund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	fundID, err := uuid.Parse(chi.URLParam(r, "fundID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid fund ID format")
		return
	}

	if err := h.fundService.DeleteFund(ctx, userID, fundID); err != nil {
		api.HandleDomainError(w, r, err, "Failed to delete fund")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
