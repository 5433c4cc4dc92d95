package handlers

import (
	"net/http"
	"testing"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/shopspring/decimal"
)

func TestCouponHandler_ValidateCoupon(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name             string
		body             string
		expectedStatus   int
		expectedValid    bool
		expectedReason   string
		expectedDiscount string
	}{
		{
			name:             "valid coupon",
			body:             `{"code": "WELCOME10", "orderAmount": 300}`,
			expectedStatus:   http.StatusOK,
			expectedValid:    true,
			expectedDiscount: "30",
		},
		{
			name:             "capped percentage",
			body:             `{"code": "welcome10", "orderAmount": "600"}`,
			expectedStatus:   http.StatusOK,
			expectedValid:    true,
			expectedDiscount: "50",
		},
		{
			name:           "below minimum",
			body:           `{"code": "SAVE20", "orderAmount": 150}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedReason: "BELOW_MINIMUM_ORDER",
		},
		{
			name:           "does not exist",
			body:           `{"code": "NOTEXIST", "orderAmount": 150}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedReason: "COUPON_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/coupons/validate", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}

			var result models.CouponResult
			decodeBody(t, w, &result)
			if result.Valid != tt.expectedValid {
				t.Errorf("valid = %v, want %v", result.Valid, tt.expectedValid)
			}
			if result.Reason != tt.expectedReason {
				t.Errorf("reason = %q, want %q", result.Reason, tt.expectedReason)
			}
			if tt.expectedDiscount != "" && !result.DiscountAmount.Equal(decimal.RequireFromString(tt.expectedDiscount)) {
				t.Errorf("discount = %s, want %s", result.DiscountAmount, tt.expectedDiscount)
			}
		})
	}

	// validating never redeems
	if used := app.catalog.Usage("WELCOME10"); used != 0 {
		t.Errorf("Usage(WELCOME10) = %d after validation, want 0", used)
	}
}

func TestCouponHandler_ValidateCoupon_BadRequest(t *testing.T) {
	app := newTestApp(t)

	assertError(t, app.do(t, http.MethodPost, "/api/coupons/validate", `{"orderAmount": 100}`),
		http.StatusBadRequest, "VALIDATION_ERROR")
	assertError(t, app.do(t, http.MethodPost, "/api/coupons/validate", `{"code": "SAVE20", "orderAmount": -5}`),
		http.StatusBadRequest, "VALIDATION_ERROR")
	assertError(t, app.do(t, http.MethodPost, "/api/coupons/validate", `{"code": `),
		http.StatusBadRequest, "INVALID_BODY")
}

func TestCouponHandler_GetStats(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/admin/coupons/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var stats map[string]interface{}
	decodeBody(t, w, &stats)
	if stats["total_coupons"] != float64(2) {
		t.Errorf("total_coupons = %v, want 2", stats["total_coupons"])
	}
}
