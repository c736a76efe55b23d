package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ezoostore/storefront-backend/api/middleware"
	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/api/validators"
	internalorders "github.com/ezoostore/storefront-backend/internal/orders"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

func callerFromContext(ctx context.Context) internalorders.Caller {
	return internalorders.Caller{
		UserID: middleware.UserIDFromContext(ctx),
		Role:   enums.UserRole(middleware.RoleFromContext(ctx)),
	}
}

func orderIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return id, nil
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
}

// Create places an order for the caller. Older storefront builds post extra
// keys, so the body is decoded leniently; totals, shipping and status sent
// by the client are ignored.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		var body internalorders.CreateOrderRequest
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), callerFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListByUser returns a user's orders, newest first. Only the owner or an admin may read them.
func ListByUser(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		userID := strings.TrimSpace(chi.URLParam(r, "userId"))
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id is required"))
			return
		}

		list, err := svc.ListByUser(r.Context(), callerFromContext(r.Context()), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), callerFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return customerAction(logg, func(ctx context.Context, caller internalorders.Caller, id string) (*internalorders.OrderDTO, error) {
		if svc == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
		}
		return svc.Cancel(ctx, caller, id)
	})
}

func RequestReturn(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return customerAction(logg, func(ctx context.Context, caller internalorders.Caller, id string) (*internalorders.OrderDTO, error) {
		if svc == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
		}
		return svc.RequestReturn(ctx, caller, id)
	})
}

type orderAction func(ctx context.Context, caller internalorders.Caller, id string) (*internalorders.OrderDTO, error)

func customerAction(logg *logger.Logger, action orderAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := action(r.Context(), callerFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
