package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Lixing-Zhang/stall-backend/internal/coupon"
	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/shopspring/decimal"
)

// couponValidator is the interface for coupon validation
type couponValidator interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal, now time.Time) (coupon.Result, error)
}

// couponStats reports catalog statistics
type couponStats interface {
	GetStats() map[string]interface{}
}

// CouponHandler handles HTTP requests for coupon validation
type CouponHandler struct {
	validator couponValidator
	stats     couponStats
	logger    *slog.Logger
	now       func() time.Time
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(validator couponValidator, stats couponStats, logger *slog.Logger) *CouponHandler {
	return &CouponHandler{
		validator: validator,
		stats:     stats,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateCoupon handles POST /api/coupons/validate. The coupon is checked
// against the order amount without being redeemed.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.CouponValidationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("failed to decode coupon request", "error", err)
		WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", h.logger)
		return
	}

	code := coupon.NormalizeCode(req.Code)
	if code == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "code: is required", h.logger)
		return
	}
	if req.OrderAmount.IsNegative() {
		WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "orderAmount: must not be negative", h.logger)
		return
	}

	result, err := h.validator.Validate(r.Context(), code, req.OrderAmount, h.now())
	if err != nil {
		reason := coupon.ReasonCode(err)
		if reason == "" {
			writeServiceError(w, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusUnprocessableEntity, models.CouponResult{
			Valid:          false,
			Code:           code,
			DiscountAmount: decimal.Zero,
			Reason:         reason,
			Message:        rejectionMessage(reason),
		}, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, models.CouponResult{
		Valid:          true,
		Code:           result.Coupon.Code,
		Type:           result.Coupon.Type,
		DiscountAmount: result.Discount,
		Message:        "Coupon applied",
	}, h.logger)
}

// GetStats handles GET /api/admin/coupons/stats
func (h *CouponHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.stats.GetStats(), h.logger)
}

func rejectionMessage(reason string) string {
	switch reason {
	case "COUPON_NOT_FOUND":
		return "Coupon not found or inactive"
	case "COUPON_EXPIRED":
		return "Coupon is not valid at this time"
	case "BELOW_MINIMUM_ORDER":
		return "Order amount is below the coupon minimum"
	case "USAGE_LIMIT_EXCEEDED":
		return "Coupon usage limit reached"
	}
	return strings.ToLower(strings.ReplaceAll(reason, "_", " "))
}
