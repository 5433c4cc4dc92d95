// Package coupon validates coupon codes against their eligibility rules.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponExpired      = errors.New("coupon is not valid at this time")
	ErrBelowMinimumOrder  = errors.New("order amount is below the coupon minimum")
	ErrUsageLimitExceeded = errors.New("coupon usage limit reached")
)

var hundred = decimal.NewFromInt(100)

// ReasonCode maps a validation error to the code reported to clients.
// It returns an empty string for errors that are not coupon rejections.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return "COUPON_NOT_FOUND"
	case errors.Is(err, ErrCouponExpired):
		return "COUPON_EXPIRED"
	case errors.Is(err, ErrBelowMinimumOrder):
		return "BELOW_MINIMUM_ORDER"
	case errors.Is(err, ErrUsageLimitExceeded):
		return "USAGE_LIMIT_EXCEEDED"
	}
	return ""
}

// Source looks coupons up by code
type Source interface {
	Lookup(code string) (models.Coupon, bool)
}

// UsageCounter reports how often a code has been redeemed. Counting
// redemptions is not the validator's job.
type UsageCounter interface {
	Usage(code string) int
}

// Result is an accepted coupon with the discount it grants
type Result struct {
	Coupon   models.Coupon
	Discount decimal.Decimal
	Trace    string
}

// Validator applies coupon eligibility rules
type Validator struct {
	source Source
	usage  UsageCounter
}

// NewValidator creates a new coupon validator. usage may be nil when
// redemptions are not tracked.
func NewValidator(source Source, usage UsageCounter) *Validator {
	return &Validator{
		source: source,
		usage:  usage,
	}
}

// Validate checks code against orderAmount at time now. Rules run in order:
// existence, validity window, minimum order, usage limit. The discount is
// capped at MaxDiscount for percentage coupons and always at orderAmount.
func (v *Validator) Validate(ctx context.Context, code string, orderAmount decimal.Decimal, now time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	cp, ok := v.source.Lookup(code)
	if !ok || !cp.Active {
		return Result{}, fmt.Errorf("%q: %w", NormalizeCode(code), ErrCouponNotFound)
	}

	if (!cp.ValidFrom.IsZero() && now.Before(cp.ValidFrom)) ||
		(!cp.ValidUntil.IsZero() && now.After(cp.ValidUntil)) {
		return Result{}, fmt.Errorf("%q: %w", cp.Code, ErrCouponExpired)
	}

	if orderAmount.LessThan(cp.MinOrderAmount) {
		return Result{}, fmt.Errorf("%q requires %s: %w", cp.Code, cp.MinOrderAmount, ErrBelowMinimumOrder)
	}

	used := 0
	if v.usage != nil {
		used = v.usage.Usage(cp.Code)
	}
	if cp.UsageLimit > 0 && used >= cp.UsageLimit {
		return Result{}, fmt.Errorf("%q used %d/%d: %w", cp.Code, used, cp.UsageLimit, ErrUsageLimitExceeded)
	}

	discount, trace := Discount(cp, orderAmount)
	return Result{Coupon: cp, Discount: discount, Trace: trace}, nil
}

// Discount computes the capped discount a coupon grants on orderAmount,
// together with a short description of how it was reached.
func Discount(cp models.Coupon, orderAmount decimal.Decimal) (decimal.Decimal, string) {
	if orderAmount.IsNegative() {
		orderAmount = decimal.Zero
	}

	var raw decimal.Decimal
	trace := ""

	switch cp.Type {
	case models.DiscountPercentage:
		raw = orderAmount.Mul(cp.Value).Div(hundred).Round(2)
		trace = fmt.Sprintf("%s%% of %s = %s", cp.Value, orderAmount, raw)
		if cp.MaxDiscount.IsPositive() && raw.GreaterThan(cp.MaxDiscount) {
			raw = cp.MaxDiscount
			trace += fmt.Sprintf(", capped at max %s", cp.MaxDiscount)
		}
	default:
		raw = cp.Value
		trace = fmt.Sprintf("fixed %s", cp.Value)
	}

	if raw.IsNegative() {
		raw = decimal.Zero
	}
	if raw.GreaterThan(orderAmount) {
		raw = orderAmount
		trace += fmt.Sprintf(", capped at order amount %s", orderAmount)
	}

	return raw, trace
}
