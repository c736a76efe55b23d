package auth

import (
	"net/http"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/config"
)

func setSessionCookie(w http.ResponseWriter, cfg config.CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   int(cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: sameSite(cfg),
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: sameSite(cfg),
	})
}

// SameSite=None is only honoured by browsers on secure cookies.
func sameSite(cfg config.CookieConfig) http.SameSite {
	if cfg.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
