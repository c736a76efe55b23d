package cart

import (
	"fmt"
	"strings"

	"github.com/ezoostore/storefront-backend/internal/pricing"
)

// LogoSource is where a custom shirt's logo comes from: an inline upload
// (data URI) or a preset catalog logo URL.
type LogoSource struct {
	Upload    string `json:"upload,omitempty"`
	PresetURL string `json:"presetUrl,omitempty"`
}

func (l LogoSource) HasUpload() bool {
	return strings.TrimSpace(l.Upload) != ""
}

func (l LogoSource) IsZero() bool {
	return !l.HasUpload() && strings.TrimSpace(l.PresetURL) == ""
}

// Line is one cart entry. Price and DiscountPercent are filled in by the
// quote service from the catalog or the custom shirt price list; client
// values never reach pricing.
type Line struct {
	ID              string
	ProductID       *string
	Name            string
	Size            string
	Color           string
	Quantity        int
	Price           int64
	DiscountPercent int
	ImageURL        string
	FrontLogo       LogoSource
	BackLogo        LogoSource
	// CustomLogo marks a custom line priced as carrying an uploaded logo
	// before the upload itself is attached.
	CustomLogo bool
}

// IsCustom reports whether the line is a fully custom shirt.
func (l Line) IsCustom() bool {
	return l.ProductID == nil || strings.TrimSpace(*l.ProductID) == ""
}

// HasUploadedLogo reports whether either side carries a customer upload.
func (l Line) HasUploadedLogo() bool {
	return l.CustomLogo || l.FrontLogo.HasUpload() || l.BackLogo.HasUpload()
}

// Cart is an immutable snapshot of the shopper's selections plus coupon.
type Cart struct {
	lines  []Line
	coupon string
}

// New builds a cart. Lines without an ID get a positional one and a zero
// quantity becomes 1.
func New(coupon string, lines []Line) Cart {
	copied := make([]Line, len(lines))
	for i, line := range lines {
		if line.ID == "" {
			line.ID = fmt.Sprintf("line-%d", i)
		}
		if line.Quantity == 0 {
			line.Quantity = 1
		}
		copied[i] = line
	}
	return Cart{lines: copied, coupon: strings.TrimSpace(coupon)}
}

// Lines returns a copy of the cart lines.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) Coupon() string {
	return c.coupon
}

func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// withLines returns a copy of c carrying lines.
func (c Cart) withLines(lines []Line) Cart {
	return Cart{lines: lines, coupon: c.coupon}
}

// PricingInput projects the cart onto the calculator input.
func (c Cart) PricingInput() pricing.Input {
	in := pricing.Input{
		Items:      make([]pricing.Item, 0, len(c.lines)),
		Quantities: make(map[string]int, len(c.lines)),
		Coupon:     c.coupon,
	}
	for _, line := range c.lines {
		in.Items = append(in.Items, pricing.Item{
			ID:              line.ID,
			Price:           line.Price,
			DiscountPercent: line.DiscountPercent,
		})
		in.Quantities[line.ID] = line.Quantity
	}
	return in
}
