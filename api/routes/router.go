package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ezoostore/storefront-backend/api/controllers"
	authcontrollers "github.com/ezoostore/storefront-backend/api/controllers/auth"
	cartcontrollers "github.com/ezoostore/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/ezoostore/storefront-backend/api/controllers/orders"
	"github.com/ezoostore/storefront-backend/api/middleware"
	"github.com/ezoostore/storefront-backend/internal/attributes"
	"github.com/ezoostore/storefront-backend/internal/auth"
	"github.com/ezoostore/storefront-backend/internal/orders"
	"github.com/ezoostore/storefront-backend/internal/products"
	"github.com/ezoostore/storefront-backend/internal/sessions"
	"github.com/ezoostore/storefront-backend/internal/users"
	"github.com/ezoostore/storefront-backend/pkg/auth/session"
	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/ezoostore/storefront-backend/pkg/metrics"
	pkgredis "github.com/ezoostore/storefront-backend/pkg/redis"
)

// Deps is everything the HTTP surface needs. Nil stores disable the
// middleware that uses them.
type Deps struct {
	Ready       map[string]controllers.Pinger
	Sessions    session.AccessSessionChecker
	RateLimiter middleware.RateLimitStore
	Idempotency pkgredis.IdempotencyStore
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth           auth.Service
	Users          users.Service
	DeviceSessions sessions.Service
	Products       products.Service
	Attributes     attributes.Service
	Cart           cartcontrollers.Quoter
	Orders         orders.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	signupPolicy := middleware.SignupRateLimitPolicy(cfg.AuthRateLimit)
	requireAuth := middleware.Auth(cfg.JWT, cfg.Cookie.Name, deps.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signupPolicy, deps.RateLimiter, logg)).Post("/signup", authcontrollers.AuthSignup(deps.Auth, cfg.Cookie, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/login", authcontrollers.AuthLogin(deps.Auth, cfg.Cookie, logg))
			r.Post("/refresh", authcontrollers.AuthRefresh(deps.Auth, cfg.Cookie, logg))
			r.With(requireAuth).Post("/logout", authcontrollers.AuthLogout(deps.Auth, cfg.Cookie, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
		})
		r.Route("/attributes", func(r chi.Router) {
			r.Get("/", controllers.AttributesList(deps.Attributes, logg))
			r.Get("/{attributeId}", controllers.AttributeDetail(deps.Attributes, logg))
		})
		r.Post("/cart/quote", cartcontrollers.CartQuote(deps.Cart, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", controllers.Me(deps.Users, logg))
			r.Patch("/me", controllers.UpdateMe(deps.Users, logg))

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", controllers.SessionsList(deps.DeviceSessions, logg))
				r.Delete("/{sessionId}", controllers.SessionsRevoke(deps.DeviceSessions, logg))
			})

			createOnce := middleware.Idempotent(deps.Idempotency, middleware.OrderCreateIdempotencyTTL, logg)
			actOnce := middleware.Idempotent(deps.Idempotency, middleware.OrderActionIdempotencyTTL, logg)
			r.Route("/orders", func(r chi.Router) {
				r.With(createOnce).Post("/", ordercontrollers.Create(deps.Orders, logg))
				r.Get("/user/{userId}", ordercontrollers.ListByUser(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
				r.With(actOnce).Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
				r.With(actOnce).Post("/{orderId}/return", ordercontrollers.RequestReturn(deps.Orders, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.With(middleware.AuthRateLimit(signupPolicy, deps.RateLimiter, logg)).Post("/auth/register", authcontrollers.AdminRegister(deps.Auth, cfg.Cookie, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.AdminList(deps.Orders, logg))
				r.Put("/{orderId}", ordercontrollers.AdminUpdate(deps.Orders, logg))
				r.Delete("/{orderId}", ordercontrollers.AdminDelete(deps.Orders, logg))
			})
			r.Route("/attributes", func(r chi.Router) {
				r.Post("/", controllers.AdminAttributeCreate(deps.Attributes, logg))
				r.Put("/{attributeId}", controllers.AdminAttributeUpdate(deps.Attributes, logg))
				r.Delete("/{attributeId}", controllers.AdminAttributeDelete(deps.Attributes, logg))
			})
			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(deps.Products, logg))
			})
			r.Get("/users", controllers.AdminUsersList(deps.Users, logg))
		})
	})

	return r
}
