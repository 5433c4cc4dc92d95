package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/stall-backend/internal/coupon"
	"github.com/Lixing-Zhang/stall-backend/internal/pricing"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
	"github.com/Lixing-Zhang/stall-backend/internal/service"
)

// writeServiceError maps a service error to its HTTP status and error code
func writeServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var ve *service.ValidationError

	switch {
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(), logger)
	case errors.Is(err, repository.ErrStoreNotFound):
		WriteError(w, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found", logger)
	case errors.Is(err, repository.ErrMenuItemNotFound):
		WriteError(w, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "Menu item not found", logger)
	case errors.Is(err, service.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", logger)
	case errors.Is(err, pricing.ErrEmptyOrder):
		WriteError(w, http.StatusBadRequest, "EMPTY_ORDER", "Order must contain at least one item", logger)
	case errors.Is(err, pricing.ErrInvalidLineItem):
		WriteError(w, http.StatusBadRequest, "INVALID_LINE_ITEM", err.Error(), logger)
	case errors.Is(err, pricing.ErrUnknownPriceSource):
		WriteError(w, http.StatusBadRequest, "UNKNOWN_MENU_ITEM", err.Error(), logger)
	case errors.Is(err, pricing.ErrItemUnavailable):
		WriteError(w, http.StatusBadRequest, "ITEM_UNAVAILABLE", err.Error(), logger)
	case coupon.ReasonCode(err) != "":
		WriteError(w, http.StatusUnprocessableEntity, coupon.ReasonCode(err), err.Error(), logger)
	case errors.Is(err, service.ErrInvalidStatus):
		WriteError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error(), logger)
	case errors.Is(err, service.ErrTerminalStatus):
		WriteError(w, http.StatusConflict, "ORDER_FINALIZED", err.Error(), logger)
	case errors.Is(err, service.ErrInvalidPeriod):
		WriteError(w, http.StatusBadRequest, "INVALID_PERIOD", "period must be one of today, week, month, all", logger)
	default:
		logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", logger)
	}
}
