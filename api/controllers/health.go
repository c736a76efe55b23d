package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/pkg/config"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ezoo-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and reports the first failure.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ezoo-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").
					WithDetails(map[string]string{"dependency": name}))
				return
			}
			checks[name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
