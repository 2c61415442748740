package transaction

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
	ListTransactions(w http.ResponseWriter, r *http.Request)
	CreateTransaction(w http.ResponseWriter, r *http.Request)
	GetTransaction(w http.ResponseWriter, r *http.Request)
	DeleteTransaction(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	transactionService TransactionService
	logger             *slog.Logger
}

func NewHandlerImpl(transactionService TransactionService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		transactionService: transactionService,
		logger:             logger,
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

// ListTransactions godoc
// @Summary      List Fund Transactions
// @Tags         Transactions
// @Security     BearerAuth
// @Router       /funds/{fundID}/transactions [get]
func (h *HandlerImpl) ListTransactions(w http.ResponseWriter, r *http.Request) {
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

	transactions, err := h.transactionService.ListTransactions(ctx, userID, fundID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list transactions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, transactions)
}

// CreateTransaction godoc
// @Summary      Record Transaction
// @Tags         Transactions
// @Security     BearerAuth
// @Router       /funds/{fundID}/transactions [post]
func (h *HandlerImpl) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateTransaction"))

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

	var params types.CreateTransactionParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.transactionService.CreateTransaction(ctx, userID, fundID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create transaction", slog.Any("error", err))
		api.HandleDomainError(w, r, err, "Failed to record transaction")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// GetTransaction godoc
// @Summary      Get Transaction
// @Tags         Transactions
// @Security     BearerAuth
// @Router       /transactions/{transactionID} [get]
func (h *HandlerImpl) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	t, err := h.transactionService.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		api.HandleDomainError(w, r, err, "Failed to retrieve transaction")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, t)
}

// DeleteTransaction godoc
// @Summary      Delete Transaction
// @Tags         Transactions
// @Security     BearerAuth
// @Router       /transactions/{transactionID} [delete]
func (h *HandlerImpl) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	if err := h.transactionService.DeleteTransaction(ctx, userID, transactionID); err != nil {
		api.HandleDomainError(w, r, err, "Failed to delete transaction")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
