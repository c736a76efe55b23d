package orders

import (
	"fmt"
	"strings"

	"github.com/ezoostore/storefront-backend/internal/cart"
	"github.com/ezoostore/storefront-backend/internal/media"
	"github.com/ezoostore/storefront-backend/internal/pricing"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var emailValidator = validator.New()

// ItemDraft is the canonical order line, whichever body shape it came from.
type ItemDraft struct {
	ProductID *string
	Name      string
	Size      string
	Color     string
	Quantity  int
	ImageURL  string
	FrontLogo cart.LogoSource
	BackLogo  cart.LogoSource
}

func (d ItemDraft) isCustom() bool {
	return d.ProductID == nil || strings.TrimSpace(*d.ProductID) == ""
}

// Draft is a normalized order request.
type Draft struct {
	Customer models.Customer
	Items    []ItemDraft
	Coupon   string
}

// Cart converts the draft into a cart snapshot for pricing.
func (d Draft) Cart() cart.Cart {
	lines := make([]cart.Line, 0, len(d.Items))
	for _, item := range d.Items {
		line := cart.Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			FrontLogo: item.FrontLogo,
			BackLogo:  item.BackLogo,
		}
		if line.ProductID != nil && strings.TrimSpace(*line.ProductID) == "" {
			line.ProductID = nil
		}
		lines = append(lines, line)
	}
	return cart.New(d.Coupon, lines)
}

// Normalize folds both request shapes into a Draft.
func Normalize(req CreateOrderRequest) Draft {
	draft := Draft{
		Customer: normalizeCustomer(req.Customer),
		Coupon:   strings.TrimSpace(req.Coupon),
	}

	if len(req.Items) > 0 {
		draft.Items = make([]ItemDraft, 0, len(req.Items))
		for _, item := range req.Items {
			draft.Items = append(draft.Items, newItemDraft(item.ProductID, item.Name, item.Size, item.Color, item.Quantity, item.ImageURL, item.Logo, item.BackLogo))
		}
		return draft
	}

	if hasLegacyItem(req) {
		front := req.Logo
		if front == "" {
			front = req.ImageURL
		}
		draft.Items = []ItemDraft{newItemDraft(req.ProductID, req.Name, req.Size, req.Color, req.Quantity, req.ImageURL, front, req.BackLogo)}
	}
	return draft
}

func normalizeCustomer(in CustomerInput) models.Customer {
	return models.Customer{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		Governorate: strings.TrimSpace(in.Governorate),
		Address:     strings.TrimSpace(in.Address),
	}
}

func hasLegacyItem(req CreateOrderRequest) bool {
	return req.Size != "" || req.Color != "" || req.Price != 0 || req.Logo != "" ||
		req.ImageURL != "" || req.ProductID != nil || req.Name != ""
}

func newItemDraft(productID *string, name, size, color string, quantity int, imageURL, front, back string) ItemDraft {
	if quantity == 0 {
		quantity = 1
	}
	draft := ItemDraft{
		ProductID: productID,
		Name:      strings.TrimSpace(name),
		Size:      strings.TrimSpace(size),
		Color:     strings.TrimSpace(color),
		Quantity:  quantity,
		ImageURL:  strings.TrimSpace(imageURL),
	}
	if draft.isCustom() {
		draft.ProductID = nil
		draft.FrontLogo = logoSource(front)
		draft.BackLogo = logoSource(back)
	}
	return draft
}

func logoSource(value string) cart.LogoSource {
	value = strings.TrimSpace(value)
	if value == "" {
		return cart.LogoSource{}
	}
	if media.IsDataURI(value) {
		return cart.LogoSource{Upload: value}
	}
	return cart.LogoSource{PresetURL: value}
}

// Validate checks a draft before any network call is made.
func Validate(d Draft) error {
	problems := customerProblems(d.Customer)

	if len(d.Items) == 0 {
		problems = append(problems, "at least one item is required")
	}
	for i, item := range d.Items {
		if item.Size == "" || item.Color == "" {
			problems = append(problems, fmt.Sprintf("item %d: size and color are required", i))
		}
		if item.Quantity < 1 || item.Quantity > pricing.MaxQuantity {
			problems = append(problems, fmt.Sprintf("item %d: quantity must be between 1 and %d", i, pricing.MaxQuantity))
		}
		if item.isCustom() && item.FrontLogo.IsZero() {
			problems = append(problems, fmt.Sprintf("item %d: a custom shirt needs a front logo", i))
		}
		for _, logo := range []cart.LogoSource{item.FrontLogo, item.BackLogo} {
			if !logo.HasUpload() {
				continue
			}
			if _, _, err := media.DecodeDataURI(logo.Upload); err != nil {
				problems = append(problems, fmt.Sprintf("item %d: logo upload is not a valid image data URI", i))
			}
		}
	}

	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order").WithDetails(problems)
	}
	return nil
}

func customerProblems(c models.Customer) []string {
	if c.Name == "" || c.Email == "" || c.Phone == "" || c.Governorate == "" || c.Address == "" {
		return []string{"customer name, email, phone, governorate and address are required"}
	}
	if err := emailValidator.Var(c.Email, "email"); err != nil {
		return []string{"customer email is invalid"}
	}
	return nil
}

// ValidateCustomer normalizes and checks a customer on its own.
func ValidateCustomer(in CustomerInput) (models.Customer, error) {
	c := normalizeCustomer(in)
	if problems := customerProblems(c); len(problems) > 0 {
		return models.Customer{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer").WithDetails(problems)
	}
	return c, nil
}

// ItemImages are the final image URLs of one line after uploads.
type ItemImages struct {
	Front string
	Back  string
}

// Build assembles the order payload from a priced cart. It has no side effects.
func Build(customer models.Customer, userID string, priced cart.Cart, quote pricing.Quote, images []ItemImages, hosted []string) (*models.Order, error) {
	lines := priced.Lines()
	if len(lines) == 0 {
		return nil, fmt.Errorf("order has no items")
	}
	if len(quote.Lines) != len(lines) || len(images) != len(lines) {
		return nil, fmt.Errorf("quote covers %d of %d lines", len(quote.Lines), len(lines))
	}

	items := make([]models.OrderItem, 0, len(lines))
	for i, line := range lines {
		lq := quote.Lines[i]
		front := images[i].Front
		if front == "" {
			front = line.ImageURL
		}
		items = append(items, models.OrderItem{
			ProductID:       line.ProductID,
			Name:            line.Name,
			Size:            line.Size,
			Color:           line.Color,
			Quantity:        lq.Quantity,
			Price:           lq.Price,
			DiscountedPrice: lq.DiscountedPrice,
			ImageURL:        front,
			BackImageURL:    images[i].Back,
			Status:          enums.OrderStatusProcessing,
		})
	}

	return &models.Order{
		UserID:       userID,
		Items:        items,
		Subtotal:     quote.Subtotal,
		Discount:     quote.Discount,
		Coupon:       quote.Coupon,
		Shipping:     quote.Shipping,
		Total:        quote.Total,
		Status:       enums.OrderStatusProcessing,
		Customer:     customer,
		HostedAssets: hosted,
		Version:      1,
	}, nil
}
