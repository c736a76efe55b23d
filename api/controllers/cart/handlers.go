package cart

import (
	"context"
	"net/http"

	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/api/validators"
	cartsvc "github.com/ezoostore/storefront-backend/internal/cart"
	"github.com/ezoostore/storefront-backend/internal/pricing"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// Quoter prices a cart snapshot.
type Quoter interface {
	Quote(ctx context.Context, c cartsvc.Cart) (cartsvc.Cart, pricing.Quote, error)
}

// CartQuote prices a cart snapshot. The cart itself lives on the client; the
// server only recomputes totals and reports whether the coupon applied.
func CartQuote(svc Quoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload cartsvc.QuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priced, quote, err := svc.Quote(r.Context(), payload.ToCart())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.NewQuoteResponse(priced, quote))
	}
}
