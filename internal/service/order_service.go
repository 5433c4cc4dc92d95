package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/stall-backend/internal/coupon"
	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/pricing"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
	"github.com/shopspring/decimal"
)

const maxNotesLength = 500

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,18}$`)

// CouponRedeemer records that a coupon was used by a stored order
type CouponRedeemer interface {
	RecordRedemption(code string)
}

// OrderService is the order register. It prices and stores orders and hands
// out sequential ORDnnnnn identifiers.
type OrderService struct {
	stores   repository.StoreRepository
	pricer   *pricing.Engine
	coupons  *coupon.Validator
	redeemer CouponRedeemer
	logger   *slog.Logger
	now      func() time.Time

	// mu guards seq and orders together so ids and storage never diverge
	mu     sync.Mutex
	seq    int64
	orders []*models.Order
	byID   map[string]*models.Order
}

// NewOrderService creates a new order service. coupons and redeemer may be
// nil, in which case orders carrying a coupon code are rejected.
func NewOrderService(stores repository.StoreRepository, pricer *pricing.Engine, coupons *coupon.Validator, redeemer CouponRedeemer, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		stores:   stores,
		pricer:   pricer,
		coupons:  coupons,
		redeemer: redeemer,
		logger:   logger,
		now:      time.Now,
		byID:     make(map[string]*models.Order),
	}
}

// CreateOrder validates, prices and stores an order. Nothing is stored and no
// sequence number is used when any stage fails.
func (s *OrderService) CreateOrder(ctx context.Context, req models.OrderRequest) (models.OrderSummary, error) {
	if err := validateRequest(req); err != nil {
		return models.OrderSummary{}, &StageError{Stage: StageValidation, Err: err}
	}

	store, err := s.stores.GetBySlug(ctx, req.StoreSlug)
	if err != nil {
		return models.OrderSummary{}, &StageError{Stage: StageValidation, Err: err}
	}

	quote, err := s.pricer.Quote(ctx, store.ID, req.Items)
	if err != nil {
		stage := StagePricing
		if errors.Is(err, pricing.ErrEmptyOrder) || errors.Is(err, pricing.ErrInvalidLineItem) {
			stage = StageValidation
		}
		return models.OrderSummary{}, &StageError{Stage: stage, Err: err}
	}

	code := coupon.NormalizeCode(req.CouponCode)

	// Coupon checks run under the register lock so usage limits hold when
	// orders race for the last redemption.
	s.mu.Lock()

	discount := decimal.Zero
	trace := ""
	if code != "" {
		if s.coupons == nil {
			s.mu.Unlock()
			return models.OrderSummary{}, &StageError{Stage: StageCoupon, Err: coupon.ErrCouponNotFound}
		}
		result, err := s.coupons.Validate(ctx, code, quote.Subtotal, s.now())
		if err != nil {
			s.mu.Unlock()
			return models.OrderSummary{}, &StageError{Stage: StageCoupon, Err: err}
		}
		discount = result.Discount
		trace = result.Trace
	}

	breakdown := s.pricer.Finalize(quote, discount)
	now := s.now()

	s.seq++
	order := &models.Order{
		ID:            fmt.Sprintf("ORD%05d", s.seq),
		Sequence:      s.seq,
		StoreID:       store.ID,
		Customer:      normalizeCustomer(req.Customer),
		Items:         breakdown.Lines,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    code,
		Notes:         strings.TrimSpace(req.Notes),
		Subtotal:      breakdown.Subtotal,
		Tax:           breakdown.Tax,
		Discount:      breakdown.Discount,
		Total:         breakdown.Total,
		Status:        models.StatusPending,
		ItemsSummary:  breakdown.ItemsSummary,
		TotalDisplay:  breakdown.TotalDisplay,
		CreatedAt:     now,
		UpdatedAt:     now,
		CouponTrace:   trace,
	}
	s.orders = append(s.orders, order)
	s.byID[order.ID] = order

	if code != "" && s.redeemer != nil {
		s.redeemer.RecordRedemption(code)
	}

	summary := order.Summary()
	s.mu.Unlock()

	s.logger.Info("order created",
		"order_id", summary.ID,
		"store_id", summary.StoreID,
		"items", summary.ItemsSummary,
		"total", summary.Total.String(),
		"coupon", summary.CouponCode,
	)
	if trace != "" {
		s.logger.Debug("coupon applied", "order_id", summary.ID, "trace", trace)
	}

	return summary, nil
}

// ListOrders returns every order, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.OrderSummary, error) {
	s.mu.Lock()
	summaries := make([]models.OrderSummary, len(s.orders))
	seqs := make(map[string]int64, len(s.orders))
	for i, o := range s.orders {
		summaries[i] = o.Summary()
		seqs[o.ID] = o.Sequence
	}
	s.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return seqs[a.ID] > seqs[b.ID]
	})

	return summaries, nil
}

// GetOrder returns one order by id
func (s *OrderService) GetOrder(ctx context.Context, id string) (models.OrderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.byID[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return models.OrderSummary{}, ErrOrderNotFound
	}
	return order.Summary(), nil
}

// UpdateStatus moves an order to status. Delivered and cancelled orders are
// final; setting the current status again is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.OrderSummary, error) {
	if !status.IsValid() {
		return models.OrderSummary{}, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.byID[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return models.OrderSummary{}, ErrOrderNotFound
	}

	if order.Status == status {
		return order.Summary(), nil
	}
	if order.Status.IsTerminal() {
		return models.OrderSummary{}, fmt.Errorf("%s is %s: %w", order.ID, order.Status, ErrTerminalStatus)
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = s.now()

	s.logger.Info("order status updated",
		"order_id", order.ID,
		"from", previous,
		"to", status,
	)

	return order.Summary(), nil
}

func validateRequest(req models.OrderRequest) error {
	if strings.TrimSpace(req.StoreSlug) == "" {
		return &ValidationError{Field: "storeSlug", Message: "is required"}
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		return &ValidationError{Field: "customer.name", Message: "is required"}
	}
	phone := strings.TrimSpace(req.Customer.Phone)
	if phone == "" {
		return &ValidationError{Field: "customer.phone", Message: "is required"}
	}
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Field: "customer.phone", Message: "is not a valid phone number"}
	}
	if email := strings.TrimSpace(req.Customer.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return &ValidationError{Field: "customer.email", Message: "is not a valid email address"}
		}
	}
	if !req.PaymentMethod.IsValid() {
		return &ValidationError{Field: "paymentMethod", Message: "must be one of cash, card, upi"}
	}
	if len(req.Items) == 0 {
		return pricing.ErrEmptyOrder
	}
	if len(req.Notes) > maxNotesLength {
		return &ValidationError{Field: "notes", Message: fmt.Sprintf("must be at most %d characters", maxNotesLength)}
	}
	return nil
}

func normalizeCustomer(c models.Customer) models.Customer {
	return models.Customer{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
	}
}
