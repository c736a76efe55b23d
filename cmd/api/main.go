package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ezoostore/storefront-backend/api/controllers"
	"github.com/ezoostore/storefront-backend/api/routes"
	"github.com/ezoostore/storefront-backend/internal/attributes"
	"github.com/ezoostore/storefront-backend/internal/auth"
	"github.com/ezoostore/storefront-backend/internal/cart"
	"github.com/ezoostore/storefront-backend/internal/media"
	"github.com/ezoostore/storefront-backend/internal/orders"
	"github.com/ezoostore/storefront-backend/internal/products"
	"github.com/ezoostore/storefront-backend/internal/sessions"
	"github.com/ezoostore/storefront-backend/internal/users"
	"github.com/ezoostore/storefront-backend/pkg/auth/session"
	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/instance"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/ezoostore/storefront-backend/pkg/metrics"
	"github.com/ezoostore/storefront-backend/pkg/migrate"
	"github.com/ezoostore/storefront-backend/pkg/mongo"
	"github.com/ezoostore/storefront-backend/pkg/redis"
	"github.com/ezoostore/storefront-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error

	dbClient, err := db.New(runCtx, cfg.DB, logg)
	requireResource(logg, "bootstrap database", err)
	closers = append(closers, dbClient.Close)

	requireResource(logg, "run dev migrations", migrate.MaybeRunDev(runCtx, cfg, logg, dbClient))

	redisClient, err := redis.New(runCtx, cfg.Redis, logg)
	requireResource(logg, "bootstrap redis", err)
	closers = append(closers, redisClient.Close)

	gcsClient, err := gcs.NewClient(runCtx, cfg.GCS, cfg.GCP, logg)
	requireResource(logg, "bootstrap gcs", err)
	closers = append(closers, gcsClient.Close)

	ready := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
		"gcs":      gcsClient,
	}

	var orderRepo orders.Repository
	if cfg.Store.UsesMongo() {
		mongoClient, err := mongo.New(runCtx, cfg.Mongo, logg)
		requireResource(logg, "bootstrap mongo", err)
		closers = append(closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return mongoClient.Close(ctx)
		})
		ready["mongo"] = mongoClient
		orderRepo = orders.NewMongoRepository(mongoClient.Orders())
	} else {
		orderRepo = orders.NewSQLRepository(dbClient.DB())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	mediaService, err := media.NewService(gcsClient, cfg.Media, logg)
	requireResource(logg, "create media service", err)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(logg, "create session manager", err)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	requireResource(logg, "create user service", err)

	deviceSessions, err := sessions.NewService(sessions.NewRepository(dbClient.DB()), sessionManager, logg)
	requireResource(logg, "create device session service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:              users.NewRepository(dbClient.DB()),
		Refresh:            sessionManager,
		Sessions:           deviceSessions,
		JWTConfig:          cfg.JWT,
		PasswordConfig:     cfg.Password,
		Logger:             logg,
		AllowAdminRegister: !cfg.App.IsProd(),
	})
	requireResource(logg, "create auth service", err)

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, mediaService, logg, cfg.Media.ProductFolder)
	requireResource(logg, "create product service", err)

	attributeService, err := attributes.NewService(attributes.ServiceParams{
		Repo:       attributes.NewRepository(dbClient.DB()),
		Cache:      redisClient,
		Media:      mediaService,
		Logger:     logg,
		CacheTTL:   cfg.Catalog.CacheTTL,
		LogoFolder: cfg.Media.AdminFolder,
	})
	requireResource(logg, "create attribute service", err)

	cartService, err := cart.NewService(productRepo, attributeService, cfg.Pricing)
	requireResource(logg, "create cart service", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:        orderRepo,
		Pricer:      cartService,
		Media:       mediaService,
		Metrics:     orderMetrics,
		Logger:      logg,
		StoreName:   cfg.Store.Orders,
		AssetFolder: cfg.Media.OrderFolder,
	})
	requireResource(logg, "create order service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"instance":    instance.GetID(),
		"order_store": cfg.Store.Orders,
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Ready:          ready,
			Sessions:       sessionManager,
			RateLimiter:    redisClient,
			Idempotency:    redisClient,
			HTTPMetrics:    httpMetrics,
			Gatherer:       registry,
			Auth:           authService,
			Users:          userService,
			DeviceSessions: deviceSessions,
			Products:       productService,
			Attributes:     attributeService,
			Cart:           cartService,
			Orders:         orderService,
		}),
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		cancel()
	}

	if err := closeAll(closers); err != nil {
		logg.Error(context.Background(), "error closing resources", err)
	}
}

// closeAll releases resources in reverse acquisition order.
func closeAll(closers []func() error) error {
	var errs error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, closers[i]())
	}
	return errs
}

func requireResource(logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to "+step, err)
	os.Exit(1)
}
