package middleware

import (
	"net/http"
	"slices"

	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// RequireRole lets the request through when the caller's role is one of
// allowed. It must run after Auth.
func RequireRole(logg *logger.Logger, allowed ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.UserRole(RoleFromContext(r.Context()))
			if !slices.Contains(allowed, role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role for this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
