package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled}

// PaymentMethod tags how the customer says they paid. It is an attestation,
// nothing is verified against a gateway.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// Customer holds the contact details captured with an order
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// OrderRequest represents an incoming order request
type OrderRequest struct {
	StoreSlug     string        `json:"storeSlug"`
	Customer      Customer      `json:"customer"`
	Items         []OrderItem   `json:"items"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CouponCode    string        `json:"couponCode,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// OrderItem represents a single requested item in an order
type OrderItem struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// OrderLine is a priced line item. UnitPrice is a snapshot taken when the
// order was created and never changes afterwards.
type OrderLine struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
}

// Order is the full record kept by the order register
type Order struct {
	ID            string
	Sequence      int64
	StoreID       string
	Customer      Customer
	Items         []OrderLine
	PaymentMethod PaymentMethod
	CouponCode    string
	Notes         string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Status        OrderStatus
	ItemsSummary  string
	TotalDisplay  string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// CouponTrace records how the coupon was evaluated; internal only.
	CouponTrace string
}

// OrderSummary is the view of an order handed to callers.
type OrderSummary struct {
	ID            string          `json:"id"`
	StoreID       string          `json:"storeId"`
	Customer      Customer        `json:"customer"`
	Items         []OrderLine     `json:"items"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CouponCode    string          `json:"couponCode,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	ItemsSummary  string          `json:"itemsSummary"`
	TotalDisplay  string          `json:"totalDisplay"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Summary returns the redacted view of the order.
func (o *Order) Summary() OrderSummary {
	items := make([]OrderLine, len(o.Items))
	copy(items, o.Items)

	return OrderSummary{
		ID:            o.ID,
		StoreID:       o.StoreID,
		Customer:      o.Customer,
		Items:         items,
		PaymentMethod: o.PaymentMethod,
		CouponCode:    o.CouponCode,
		Notes:         o.Notes,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Discount:      o.Discount,
		Total:         o.Total,
		ItemsSummary:  o.ItemsSummary,
		TotalDisplay:  o.TotalDisplay,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
