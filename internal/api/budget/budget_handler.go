package budget

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vesmirov/fundhub/internal/api"
	"github.com/vesmirov/fundhub/internal/api/auth"
	"github.com/vesmirov/fundhub/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetFundBudget(w http.ResponseWriter, r *http.Request)
	UpsertFundBudget(w http.ResponseWriter, r *http.Request)
	GetUserBudget(w http.ResponseWriter, r *http.Request)
	UpsertUserBudget(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	budgetService BudgetService
	logger        *slog.Logger
}

func NewHandlerImpl(budgetService BudgetService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		budgetService: budgetService,
		logger:        logger,
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

// periodParam accepts lowercase period names in the URL.
func periodParam(r *http.Request) types.BudgetPeriod {
	return types.BudgetPeriod(strings.ToUpper(chi.URLParam(r, "period")))
}

// GetFundBudget godoc
// @Summary      Get Fund Budget
// @Tags         Budgets
// @Security     BearerAuth
// @Router       /funds/{fundID}/budget/{period} [get]
func (h *HandlerImpl) GetFundBudget(w http.ResponseWriter, r *http.Request) {
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

	b, err := h.budgetService.GetFundBudget(ctx, userID, fundID, periodParam(r))
	if err != nil {
		api.HandleDomainError(w, r, err, "Failed to retrieve fund budget")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, b)
}

// UpsertFundBudget godoc
// @Summary      Configure Fund Budget
// @Tags         Budgets
// @Security     BearerAuth
// @Router       /funds/{fundID}/budget/{period} [put]
func (h *HandlerImpl) UpsertFundBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpsertFundBudget"))

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

	var params types.UpsertBudgetParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.budgetService.UpsertFundBudget(ctx, userID, fundID, periodParam(r), params)
	if err != nil {
		l.WarnContext(ctx, "Failed to upsert fund budget", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to configure fund budget")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, b)
}

// GetUserBudget godoc
// @Summary      Get Profile Budget
// @Tags         Budgets
// @Security     BearerAuth
// @Router       /profile/budget/{period} [get]
func (h *HandlerImpl) GetUserBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	b, err := h.budgetService.GetUserBudget(ctx, userID, periodParam(r))
	if err != nil {
		api.HandleDomainError(w, r, err, "Failed to retrieve profile budget")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, b)
}

// UpsertUserBudget godoc
// @Summary      Configure Profile Budget
// @Tags         Budgets
// @Security     BearerAuth
// @Router       /profile/budget/{period} [put]
func (h *HandlerImpl) UpsertUserBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpsertUserBudget"))

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.UpsertBudgetParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.budgetService.UpsertUserBudget(ctx, userID, periodParam(r), params)
	if err != nil {
		l.WarnContext(ctx, "Failed to upsert user budget", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to configure profile budget")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, b)
}
