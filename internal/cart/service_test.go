package cart

import (
	"context"
	"testing"

	"github.com/ezoostore/storefront-backend/internal/attributes"
	"github.com/ezoostore/storefront-backend/internal/pricing"
	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts map[string]models.Product

func (s stubProducts) FindByIDs(_ context.Context, ids []string) (map[string]models.Product, error) {
	out := map[string]models.Product{}
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubOptions struct {
	opts attributes.Options
}

func (s stubOptions) Options(context.Context) (attributes.Options, error) {
	return s.opts, nil
}

var testPricing = config.PricingConfig{BaseShipping: 20, FreeShippingQty: 4, CustomShirtPrice: 200, CustomLogoPrice: 250}

func strPtr(v string) *string { return &v }

func newTestService(t *testing.T, products stubProducts, opts attributes.Options) *Service {
	t.Helper()
	svc, err := NewService(products, stubOptions{opts: opts}, testPricing)
	require.NoError(t, err)
	return svc
}

func TestQuoteUsesCatalogPricesNotClientPrices(t *testing.T) {
	id := uuid.NewString()
	svc := newTestService(t, stubProducts{id: {ID: id, Name: "Owl", Price: 100, Discount: 10, ImageURL: "https://cdn/owl.png"}}, attributes.Options{})

	c := New("EZOO20", []Line{{ProductID: strPtr(id), Quantity: 2, Price: 1}})
	resolved, q, err := svc.Quote(context.Background(), c)
	require.NoError(t, err)

	line := resolved.Lines()[0]
	assert.Equal(t, int64(100), line.Price)
	assert.Equal(t, "Owl", line.Name)
	assert.Equal(t, "https://cdn/owl.png", line.ImageURL)
	assert.Equal(t, int64(180), q.Subtotal)
	assert.Equal(t, int64(20), q.Shipping)
	assert.Equal(t, int64(164), q.Total)
}

func TestQuoteCustomShirtPricing(t *testing.T) {
	svc := newTestService(t, stubProducts{}, attributes.Options{})

	c := New("", []Line{
		{Size: "L", Color: "black"},
		{Size: "M", Color: "white", FrontLogo: LogoSource{Upload: "data:image/png;base64,AAAA"}},
		{Size: "S", Color: "red", CustomLogo: true},
	})
	resolved, q, err := svc.Quote(context.Background(), c)
	require.NoError(t, err)

	lines := resolved.Lines()
	assert.Equal(t, int64(200), lines[0].Price)
	assert.Equal(t, int64(250), lines[1].Price)
	assert.Equal(t, int64(250), lines[2].Price)
	assert.Equal(t, customShirtName, lines[0].Name)
	assert.Equal(t, int64(700), q.Subtotal)
	assert.Equal(t, int64(720), q.Total)
}

func TestResolveRejectsUnknownSelections(t *testing.T) {
	opts := attributes.Options{
		Sizes:  map[string]struct{}{"m": {}},
		Colors: map[string]struct{}{"black": {}},
		Logos:  map[string]struct{}{"https://cdn/star.png": {}},
	}
	svc := newTestService(t, stubProducts{}, opts)

	c := New("", []Line{
		{Size: "XXL", Color: "black"},
		{Size: "M", Color: "purple"},
		{Size: "M", Color: "Black", FrontLogo: LogoSource{PresetURL: "https://evil/x.png"}},
		{ProductID: strPtr(uuid.NewString()), Size: "M", Color: "black"},
		{ProductID: strPtr("not-a-uuid"), Size: "M", Color: "black"},
	})
	_, err := svc.Resolve(context.Background(), c)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	details, ok := pkgerrors.As(err).Details().([]string)
	require.True(t, ok)
	assert.Len(t, details, 5)
}

func TestResolveAcceptsPresetLogoAndKnownOptions(t *testing.T) {
	opts := attributes.Options{
		Sizes: map[string]struct{}{"m": {}},
		Logos: map[string]struct{}{"https://cdn/star.png": {}},
	}
	svc := newTestService(t, stubProducts{}, opts)

	_, err := svc.Resolve(context.Background(), New("", []Line{{Size: "m", Color: "any", FrontLogo: LogoSource{PresetURL: "https://cdn/star.png"}}}))
	require.NoError(t, err)
}

func TestQuoteRejectsEmptyCartAndBadQuantity(t *testing.T) {
	svc := newTestService(t, stubProducts{}, attributes.Options{})

	_, _, err := svc.Quote(context.Background(), New("", nil))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, _, err = svc.Quote(context.Background(), New("", []Line{{Quantity: -1}}))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, _, err = svc.Quote(context.Background(), New("", []Line{{Size: "M", Color: "black", Quantity: pricing.MaxQuantity + 1}}))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCartDefaultsAndPricingInput(t *testing.T) {
	c := New(" FREESHIP ", []Line{{Price: 100}, {ID: "custom", Price: 50, Quantity: 3}})
	assert.Equal(t, "FREESHIP", c.Coupon())
	assert.Equal(t, 4, c.TotalQuantity())

	in := c.PricingInput()
	require.Len(t, in.Items, 2)
	assert.Equal(t, "line-0", in.Items[0].ID)
	assert.Equal(t, 1, in.Quantities["line-0"])
	assert.Equal(t, 3, in.Quantities["custom"])

	q, err := pricing.Calculate(in, pricing.Options{BaseShipping: 20, FreeShippingQty: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(250), q.Total)

	lines := c.Lines()
	lines[0].Price = 999
	assert.Equal(t, int64(100), c.Lines()[0].Price, "Lines returns a copy")
}

func TestQuoteResponseCarriesSelections(t *testing.T) {
	c := New("", []Line{{Name: "Custom T-Shirt", Size: "L", Color: "red", Price: 200}})
	q, err := pricing.Calculate(c.PricingInput(), pricing.Options{BaseShipping: 20, FreeShippingQty: 4})
	require.NoError(t, err)

	resp := NewQuoteResponse(c, q)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "L", resp.Lines[0].Size)
	assert.Equal(t, int64(200), resp.Lines[0].DiscountedPrice)
	assert.Equal(t, int64(220), resp.Total)
	assert.Equal(t, pricing.CouponStatusNone, resp.CouponStatus)
}
