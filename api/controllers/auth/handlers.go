package auth

import (
	"net/http"

	"github.com/ezoostore/storefront-backend/api/middleware"
	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/api/validators"
	"github.com/ezoostore/storefront-backend/internal/auth"
	"github.com/ezoostore/storefront-backend/pkg/config"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

func clientMeta(r *http.Request) auth.ClientMeta {
	return auth.ClientMeta{UserAgent: r.UserAgent()}
}

// AuthSignup creates a shopper account and signs it in.
func AuthSignup(svc auth.Service, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.SignupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Signup(r.Context(), body, clientMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cookie, result.AccessToken)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AdminRegister bootstraps an admin account outside production.
func AdminRegister(svc auth.Service, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.SignupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RegisterAdmin(r.Context(), body, clientMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cookie, result.AccessToken)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body, clientMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cookie, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthRefresh rotates the refresh token and mints a new access token.
func AuthRefresh(svc auth.Service, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cookie, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the device session behind the presented access token.
func AuthLogout(svc auth.Service, cookie config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w, cookie)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
