package controllers

import (
	"net/http"

	"github.com/ezoostore/storefront-backend/api/middleware"
	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/internal/sessions"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// SessionsList returns the caller's device sessions, flagging the current one.
func SessionsList(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		ctx := r.Context()
		list, err := svc.List(ctx, middleware.UserIDFromContext(ctx), middleware.AccessIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SessionsRevoke signs one of the caller's devices out.
func SessionsRevoke(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		sessionID, err := pathParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), middleware.UserIDFromContext(r.Context()), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}
