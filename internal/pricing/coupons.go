package pricing

import "strings"

// Coupon is an entry of the fixed coupon table. Effects compose: a coupon may
// carry a percentage, a shipping waiver, or both.
type Coupon struct {
	Code         string
	Percent      int
	FreeShipping bool
}

var couponTable = map[string]Coupon{
	"EZOO10":   {Code: "EZOO10", Percent: 10},
	"EZOO20":   {Code: "EZOO20", Percent: 20},
	"FREESHIP": {Code: "FREESHIP", FreeShipping: true},
}

// NormalizeCouponCode trims and upper-cases a customer-entered code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupCoupon finds a recognized coupon; codes are case-insensitive.
func LookupCoupon(code string) (Coupon, bool) {
	c, ok := couponTable[NormalizeCouponCode(code)]
	return c, ok
}
