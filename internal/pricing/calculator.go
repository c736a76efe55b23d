package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart has no items")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 100")
	ErrAmountTooLarge  = errors.New("order amount is too large")
)

// MaxQuantity caps a single line. The cart and order bodies enforce the same bound.
const MaxQuantity = 100

// CouponStatus tells the shopper what happened to the code they entered.
type CouponStatus string

const (
	CouponStatusNone    CouponStatus = "none"
	CouponStatusApplied CouponStatus = "applied"
	CouponStatusInvalid CouponStatus = "invalid"
)

// Item is a priced cart line. ID keys the quantity map.
type Item struct {
	ID              string
	Price           int64
	DiscountPercent int
}

// Input is everything Calculate needs. Quantities missing from the map default to 1.
type Input struct {
	Items      []Item
	Quantities map[string]int
	Coupon     string
}

// Options carries the shop-wide shipping rules.
type Options struct {
	BaseShipping    int64
	FreeShippingQty int
}

func OptionsFromConfig(cfg config.PricingConfig) Options {
	return Options{
		BaseShipping:    cfg.BaseShipping,
		FreeShippingQty: cfg.FreeShippingQty,
	}
}

// LineQuote is one priced line of a Quote.
type LineQuote struct {
	ID              string `json:"id"`
	Price           int64  `json:"price"`
	DiscountPercent int    `json:"discountPercent"`
	DiscountedPrice int64  `json:"discountedPrice"`
	Quantity        int    `json:"quantity"`
	LineTotal       int64  `json:"lineTotal"`
}

// Quote is the full price breakdown. Total = Subtotal - Discount + Shipping.
type Quote struct {
	Lines         []LineQuote  `json:"lines"`
	TotalQuantity int          `json:"totalQuantity"`
	Subtotal      int64        `json:"subtotal"`
	Discount      int64        `json:"discount"`
	Shipping      int64        `json:"shipping"`
	Total         int64        `json:"total"`
	Coupon        string       `json:"coupon"`
	CouponStatus  CouponStatus `json:"couponStatus"`
	CouponValid   bool         `json:"couponValid"`
	FreeShipping  bool         `json:"freeShipping"`
}

// Calculate prices a cart: per-line discount, subtotal, coupon percentage,
// shipping waiver by quantity or coupon, and the grand total.
func Calculate(in Input, opts Options) (Quote, error) {
	if len(in.Items) == 0 {
		return Quote{}, ErrEmptyCart
	}

	q := Quote{Lines: make([]LineQuote, 0, len(in.Items))}
	for _, item := range in.Items {
		if item.Price < 0 {
			return Quote{}, fmt.Errorf("item %q: %w", item.ID, ErrInvalidPrice)
		}
		if item.DiscountPercent < 0 || item.DiscountPercent > 100 {
			return Quote{}, fmt.Errorf("item %q: %w", item.ID, ErrInvalidDiscount)
		}
		qty := 1
		if n, ok := in.Quantities[item.ID]; ok {
			qty = n
		}
		if qty < 1 || qty > MaxQuantity {
			return Quote{}, fmt.Errorf("item %q: %w", item.ID, ErrInvalidQuantity)
		}

		unit := DiscountedUnitPrice(item.Price, item.DiscountPercent)
		lineTotal, ok := mulAmount(unit, int64(qty))
		if !ok {
			return Quote{}, fmt.Errorf("item %q: %w", item.ID, ErrAmountTooLarge)
		}
		if q.Subtotal, ok = addAmount(q.Subtotal, lineTotal); !ok {
			return Quote{}, ErrAmountTooLarge
		}
		q.Lines = append(q.Lines, LineQuote{
			ID:              item.ID,
			Price:           item.Price,
			DiscountPercent: item.DiscountPercent,
			DiscountedPrice: unit,
			Quantity:        qty,
			LineTotal:       lineTotal,
		})
		q.TotalQuantity += qty
	}

	q.CouponStatus = CouponStatusNone
	q.CouponValid = true
	var coupon Coupon
	if code := NormalizeCouponCode(in.Coupon); code != "" {
		found, ok := LookupCoupon(code)
		if ok {
			coupon = found
			q.Coupon = found.Code
			q.CouponStatus = CouponStatusApplied
		} else {
			q.CouponStatus = CouponStatusInvalid
			q.CouponValid = false
		}
	}

	discounted := applyPercent(q.Subtotal, coupon.Percent)
	q.Discount = q.Subtotal - discounted

	q.FreeShipping = coupon.FreeShipping || (opts.FreeShippingQty > 0 && q.TotalQuantity >= opts.FreeShippingQty)
	if !q.FreeShipping {
		q.Shipping = opts.BaseShipping
	}

	total, ok := addAmount(discounted, q.Shipping)
	if !ok {
		return Quote{}, ErrAmountTooLarge
	}
	q.Total = total
	return q, nil
}

// mulAmount and addAmount work on non-negative amounts and report false on int64 overflow.
func mulAmount(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

func addAmount(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// DiscountedUnitPrice is round(price * (1 - pct/100)), rounding halves up.
func DiscountedUnitPrice(price int64, pct int) int64 {
	return applyPercent(price, pct)
}

func applyPercent(amount int64, pct int) int64 {
	if pct <= 0 {
		return amount
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(100 - pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
