package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ezoostore/storefront-backend/internal/attributes"
	"github.com/ezoostore/storefront-backend/internal/pricing"
	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

const customShirtName = "Custom T-Shirt"

type productLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
}

type optionsSource interface {
	Options(ctx context.Context) (attributes.Options, error)
}

// Service resolves cart prices on the server and produces quotes.
type Service struct {
	products    productLookup
	options     optionsSource
	pricingOpts pricing.Options
	customPrice int64
	logoPrice   int64
}

func NewService(products productLookup, options optionsSource, cfg config.PricingConfig) (*Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if options == nil {
		return nil, fmt.Errorf("attribute options required")
	}
	return &Service{
		products:    products,
		options:     options,
		pricingOpts: pricing.OptionsFromConfig(cfg),
		customPrice: cfg.CustomShirtPrice,
		logoPrice:   cfg.CustomLogoPrice,
	}, nil
}

// Resolve fills in each line's price, discount, name and image from the
// catalog (or the custom price list) and checks selections against the
// attribute catalog.
func (s *Service) Resolve(ctx context.Context, c Cart) (Cart, error) {
	if c.IsEmpty() {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeValidation, pricing.ErrEmptyCart, "cart is empty")
	}

	opts, err := s.options.Options(ctx)
	if err != nil {
		return Cart{}, err
	}

	lines := c.Lines()
	var problems []string
	ids := make([]string, 0, len(lines))
	for i, line := range lines {
		if line.IsCustom() {
			continue
		}
		if _, err := uuid.Parse(*line.ProductID); err != nil {
			problems = append(problems, fmt.Sprintf("item %d: invalid product id", i))
			continue
		}
		ids = append(ids, *line.ProductID)
	}
	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}

	for i := range lines {
		line := &lines[i]
		if line.Quantity < 1 || line.Quantity > pricing.MaxQuantity {
			problems = append(problems, fmt.Sprintf("item %d: quantity must be between 1 and %d", i, pricing.MaxQuantity))
		}
		if line.Size != "" && !opts.HasSize(line.Size) {
			problems = append(problems, fmt.Sprintf("item %d: unknown size %q", i, line.Size))
		}
		if line.Color != "" && !opts.HasColor(line.Color) {
			problems = append(problems, fmt.Sprintf("item %d: unknown color %q", i, line.Color))
		}
		for _, logo := range []LogoSource{line.FrontLogo, line.BackLogo} {
			if !logo.HasUpload() && logo.PresetURL != "" && !opts.HasLogo(logo.PresetURL) {
				problems = append(problems, fmt.Sprintf("item %d: unknown preset logo", i))
			}
		}

		if line.IsCustom() {
			line.ProductID = nil
			line.Price = s.customPrice
			if line.HasUploadedLogo() {
				line.Price = s.logoPrice
			}
			line.DiscountPercent = 0
			if line.Name == "" {
				line.Name = customShirtName
			}
			continue
		}

		product, ok := catalog[*line.ProductID]
		if !ok {
			if _, err := uuid.Parse(*line.ProductID); err != nil {
				continue
			}
			problems = append(problems, fmt.Sprintf("item %d: product %s not found", i, *line.ProductID))
			continue
		}
		line.Price = product.Price
		line.DiscountPercent = product.Discount
		line.Name = product.Name
		if line.ImageURL == "" {
			line.ImageURL = product.ImageURL
		}
	}
	if len(problems) > 0 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart has invalid items").WithDetails(problems)
	}

	return c.withLines(lines), nil
}

// Quote resolves the cart and prices it.
func (s *Service) Quote(ctx context.Context, c Cart) (Cart, pricing.Quote, error) {
	resolved, err := s.Resolve(ctx, c)
	if err != nil {
		return Cart{}, pricing.Quote{}, err
	}
	q, err := pricing.Calculate(resolved.PricingInput(), s.pricingOpts)
	if err != nil {
		return Cart{}, pricing.Quote{}, mapPricingError(err)
	}
	return resolved, q, nil
}

func mapPricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrEmptyCart),
		errors.Is(err, pricing.ErrInvalidPrice),
		errors.Is(err, pricing.ErrInvalidDiscount),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrAmountTooLarge):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "price cart")
	}
}
