package cart

import "github.com/ezoostore/storefront-backend/internal/pricing"

// QuoteItem is one line of a quote request. Prices are never accepted from
// the client.
type QuoteItem struct {
	ProductID  *string    `json:"productId"`
	Name       string     `json:"name" validate:"omitempty,max=200"`
	Size       string     `json:"size" validate:"omitempty,max=32"`
	Color      string     `json:"color" validate:"omitempty,max=32"`
	Quantity   int        `json:"quantity" validate:"gte=0,lte=100"`
	CustomLogo bool       `json:"customLogo"`
	FrontLogo  LogoSource `json:"frontLogo"`
	BackLogo   LogoSource `json:"backLogo"`
}

// QuoteRequest is the body of POST /api/v1/cart/quote.
type QuoteRequest struct {
	Items  []QuoteItem `json:"items" validate:"required,min=1,dive"`
	Coupon string      `json:"coupon" validate:"max=32"`
}

func (r QuoteRequest) ToCart() Cart {
	lines := make([]Line, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, Line{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Size:       item.Size,
			Color:      item.Color,
			Quantity:   item.Quantity,
			CustomLogo: item.CustomLogo,
			FrontLogo:  item.FrontLogo,
			BackLogo:   item.BackLogo,
		})
	}
	return New(r.Coupon, lines)
}

// QuoteLine pairs a priced line with what the shopper selected.
type QuoteLine struct {
	pricing.LineQuote
	ProductID *string `json:"productId"`
	Name      string  `json:"name"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// QuoteResponse is the priced cart returned to the wizard and cart pages.
type QuoteResponse struct {
	Lines         []QuoteLine          `json:"lines"`
	TotalQuantity int                  `json:"totalQuantity"`
	Subtotal      int64                `json:"subtotal"`
	Discount      int64                `json:"discount"`
	Shipping      int64                `json:"shipping"`
	Total         int64                `json:"total"`
	Coupon        string               `json:"coupon"`
	CouponStatus  pricing.CouponStatus `json:"couponStatus"`
	CouponValid   bool                 `json:"couponValid"`
	FreeShipping  bool                 `json:"freeShipping"`
}

func NewQuoteResponse(c Cart, q pricing.Quote) QuoteResponse {
	lines := c.Lines()
	out := QuoteResponse{
		Lines:         make([]QuoteLine, 0, len(q.Lines)),
		TotalQuantity: q.TotalQuantity,
		Subtotal:      q.Subtotal,
		Discount:      q.Discount,
		Shipping:      q.Shipping,
		Total:         q.Total,
		Coupon:        q.Coupon,
		CouponStatus:  q.CouponStatus,
		CouponValid:   q.CouponValid,
		FreeShipping:  q.FreeShipping,
	}
	for i, lq := range q.Lines {
		ql := QuoteLine{LineQuote: lq}
		if i < len(lines) {
			ql.ProductID = lines[i].ProductID
			ql.Name = lines[i].Name
			ql.Size = lines[i].Size
			ql.Color = lines[i].Color
			ql.ImageURL = lines[i].ImageURL
		}
		out.Lines = append(out.Lines, ql)
	}
	return out
}
