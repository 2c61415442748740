package currency

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vesmirov/fundhub/internal/api"
	"github.com/vesmirov/fundhub/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListCurrencies(w http.ResponseWriter, r *http.Request)
	CreateCurrency(w http.ResponseWriter, r *http.Request)
	GetCurrency(w http.ResponseWriter, r *http.Request)
	UpdateCurrency(w http.ResponseWriter, r *http.Request)
	DeleteCurrency(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	currencyService CurrencyService
	logger          *slog.Logger
}

func NewHandlerImpl(currencyService CurrencyService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		currencyService: currencyService,
		logger:          logger,
	}
}

func parseCurrencyID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "currencyID"))
}

// ListCurrencies godoc
// @Summary      List Currencies
// @Tags         Currencies
// @Security     BearerAuth
// @Router       /currencies [get]
func (h *HandlerImpl) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencyService.ListCurrencies(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list currencies", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list currencies")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, currencies)
}

// CreateCurrency godoc
// @Summary      Create Currency
// @Tags         Currencies
// @Security     BearerAuth
// @Router       /currencies [post]
func (h *HandlerImpl) CreateCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var params types.CreateCurrencyParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.currencyService.CreateCurrency(ctx, params)
	if err != nil {
		api.HandleDomainError(w, r, err, "Failed to create currency")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// GetCurrency godoc
// @Summary      Get Currency
// @Tags         Currencies
// @Security     BearerAuth
// @Router       /currencies/{currencyID} [get]
func (h *HandlerImpl) GetCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	currencyID, err := parseCurrencyID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid currency ID format")
		return
	}

	c, err := h.currencyService.GetCurrency(ctx, currencyID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Currency not found")
			return
		}
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve currency")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, c)
}

// UpdateCurrency godoc
// @Summary      Update Currency
// @Tags         Currencies
// @Security     BearerAuth
// @Router       /currencies/{currencyID} [put]
func (h *HandlerImpl) UpdateCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	currencyID, err := parseCurrencyID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid currency ID format")
		return
	}

	var params types.CreateCurrencyParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.currencyService.UpdateCurrency(ctx, currencyID, params)
	if err != nil {
		api.HandleDomainError(w, r, err, "Failed to update currency")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteCurrency godoc
// @Summary      Delete Currency
// @Description  Fails with a validation error while the currency is referenced.
// @Tags         Currencies
// @Security     BearerAuth
// @Router       /currencies/{currencyID} [delete]
func (h *HandlerImpl) DeleteCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	currencyID, err := parseCurrencyID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid currency ID format")
		return
	}

	if err := h.currencyService.DeleteCurrency(ctx, currencyID); err != nil {
		api.HandleDomainError(w, r, err, "Failed to delete currency")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
