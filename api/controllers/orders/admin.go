package orders

import (
	"net/http"

	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/api/validators"
	internalorders "github.com/ezoostore/storefront-backend/internal/orders"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// AdminList returns every order, newest first.
func AdminList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminUpdate applies a partial status/customer update. A stale version is 409.
func AdminUpdate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body internalorders.UpdateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AdminUpdate(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminDelete removes the order and its uploaded logos.
func AdminDelete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted", "id": id})
	}
}
