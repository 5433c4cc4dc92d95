package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a discount rule identified by a case-insensitive code.
// Zero ValidFrom/ValidUntil leave that side of the window open, a zero
// MaxDiscount means no cap and a zero UsageLimit means unlimited use.
type Coupon struct {
	Code           string          `json:"code"`
	Type           DiscountType    `json:"type"`
	Value          decimal.Decimal `json:"value"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	MaxDiscount    decimal.Decimal `json:"maxDiscount"`
	ValidFrom      time.Time       `json:"validFrom"`
	ValidUntil     time.Time       `json:"validUntil"`
	UsageLimit     int             `json:"usageLimit"`
	Active         bool            `json:"active"`
}

// CouponValidationRequest is the body of POST /api/coupons/validate
type CouponValidationRequest struct {
	Code        string          `json:"code"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
}

// CouponResult describes an accepted coupon
type CouponResult struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code"`
	Type           DiscountType    `json:"type,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Reason         string          `json:"reason,omitempty"`
	Message        string          `json:"message,omitempty"`
}
