// Package pricing turns requested line items into a priced order breakdown.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrInvalidLineItem    = errors.New("invalid line item")
	ErrUnknownPriceSource = errors.New("no price known for menu item")
	ErrItemUnavailable    = errors.New("menu item is not available")
)

// DefaultTaxRate is applied when Options.TaxRate is nil.
var DefaultTaxRate = decimal.RequireFromString("0.05")

// PriceLookup resolves a menu item of a store. found is false when the store
// has no item with that identifier.
type PriceLookup interface {
	LookupItem(ctx context.Context, storeID, itemID string) (item models.MenuItem, found bool, err error)
}

// Options configures an Engine
type Options struct {
	// TaxRate is the fraction of the subtotal charged as tax. Nil means
	// DefaultTaxRate; a zero rate charges no tax.
	TaxRate *decimal.Decimal
	// FallbackPrice prices items the lookup does not know. Nil rejects them.
	FallbackPrice  *decimal.Decimal
	Locale         string
	CurrencySymbol string
}

// Engine computes order totals. It keeps no state between calls.
type Engine struct {
	lookup     PriceLookup
	taxRate    decimal.Decimal
	fallback   *decimal.Decimal
	tag        language.Tag
	symbol     string
	decimalSep string
}

// Quote is the priced, pre-discount view of a set of line items
type Quote struct {
	StoreID  string
	Lines    []models.OrderLine
	Subtotal decimal.Decimal
}

// Breakdown is the final pricing of an order
type Breakdown struct {
	Lines        []models.OrderLine
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	ItemsSummary string
	TotalDisplay string
}

// NewEngine creates a pricing engine backed by lookup
func NewEngine(lookup PriceLookup, opts Options) *Engine {
	taxRate := DefaultTaxRate
	if opts.TaxRate != nil {
		taxRate = *opts.TaxRate
	}

	tag := language.English
	if opts.Locale != "" {
		if t, err := language.Parse(opts.Locale); err == nil {
			tag = t
		}
	}

	return &Engine{
		lookup:     lookup,
		taxRate:    taxRate,
		fallback:   opts.FallbackPrice,
		tag:        tag,
		symbol:     opts.CurrencySymbol,
		decimalSep: decimalSeparator(tag),
	}
}

// decimalSeparator returns the separator tag uses between whole and
// fractional digits.
func decimalSeparator(tag language.Tag) string {
	s := []rune(message.NewPrinter(tag).Sprintf("%v", number.Decimal(1.5, number.Scale(1))))
	if len(s) < 3 {
		return "."
	}
	return string(s[1 : len(s)-1])
}

// TaxRate returns the configured tax rate
func (e *Engine) TaxRate() decimal.Decimal {
	return e.taxRate
}

// Quote prices every line item at the current menu price.
func (e *Engine) Quote(ctx context.Context, storeID string, items []models.OrderItem) (*Quote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	lines := make([]models.OrderLine, 0, len(items))
	subtotal := decimal.Zero

	for i, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("items[%d]: quantity %d: %w", i, item.Quantity, ErrInvalidLineItem)
		}
		if strings.TrimSpace(item.MenuItemID) == "" {
			return nil, fmt.Errorf("items[%d]: missing menu item id: %w", i, ErrInvalidLineItem)
		}

		name, unitPrice, err := e.resolve(ctx, storeID, item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, models.OrderLine{
			MenuItemID: item.MenuItemID,
			Name:       name,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			LineTotal:  lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	return &Quote{StoreID: storeID, Lines: lines, Subtotal: subtotal}, nil
}

// Finalize applies tax and discount to a quote. The discount is clamped to
// [0, subtotal] so the total is never negative.
func (e *Engine) Finalize(q *Quote, discount decimal.Decimal) Breakdown {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(q.Subtotal) {
		discount = q.Subtotal
	}

	tax := q.Subtotal.Mul(e.taxRate).Round(2)
	total := q.Subtotal.Add(tax).Sub(discount)

	return Breakdown{
		Lines:        q.Lines,
		Subtotal:     q.Subtotal,
		Tax:          tax,
		Discount:     discount,
		Total:        total,
		ItemsSummary: ItemsSummary(q.Lines),
		TotalDisplay: e.FormatAmount(total),
	}
}

// Compute is Quote followed by Finalize
func (e *Engine) Compute(ctx context.Context, storeID string, items []models.OrderItem, discount decimal.Decimal) (Breakdown, error) {
	q, err := e.Quote(ctx, storeID, items)
	if err != nil {
		return Breakdown{}, err
	}
	return e.Finalize(q, discount), nil
}

// FormatAmount renders an amount for display in the configured locale with
// exactly two fractional digits.
func (e *Engine) FormatAmount(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}

	whole, frac, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// beyond int64, shown ungrouped
		return e.symbol + sign + whole + e.decimalSep + frac
	}

	p := message.NewPrinter(e.tag)
	return e.symbol + sign + p.Sprintf("%v", number.Decimal(n)) + e.decimalSep + frac
}

func (e *Engine) resolve(ctx context.Context, storeID, itemID string) (string, decimal.Decimal, error) {
	item, found, err := e.lookup.LookupItem(ctx, storeID, itemID)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("lookup %s: %w", itemID, err)
	}

	if !found {
		if e.fallback == nil {
			return "", decimal.Zero, fmt.Errorf("menu item %s: %w", itemID, ErrUnknownPriceSource)
		}
		return itemID, *e.fallback, nil
	}

	if !item.IsAvailable {
		return "", decimal.Zero, fmt.Errorf("menu item %s: %w", itemID, ErrItemUnavailable)
	}

	return item.Name, item.Price, nil
}

// ItemsSummary renders lines as "2x Tea, 1x Samosa".
func ItemsSummary(lines []models.OrderLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%dx %s", l.Quantity, l.Name)
	}
	return strings.Join(parts, ", ")
}
