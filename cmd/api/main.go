package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-commerce/api/controllers"
	"github.com/angelmondragon/storefront-commerce/api/routes"
	"github.com/angelmondragon/storefront-commerce/internal/commerce"
	"github.com/angelmondragon/storefront-commerce/internal/localstore"
	"github.com/angelmondragon/storefront-commerce/internal/notify"
	"github.com/angelmondragon/storefront-commerce/internal/remote"
	"github.com/angelmondragon/storefront-commerce/pkg/config"
	"github.com/angelmondragon/storefront-commerce/pkg/db"
	"github.com/angelmondragon/storefront-commerce/pkg/instance"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/metrics"
	"github.com/angelmondragon/storefront-commerce/pkg/migrate"
	"github.com/angelmondragon/storefront-commerce/pkg/redis"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"instance": instance.GetID()},
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
	} else {
		logg.Warn(ctx, "redis not configured; idempotency replay and guest rate limits disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	commerceMetrics := metrics.NewCommerceMetrics(registry)

	bus, err := newBus(ctx, cfg.Notify, redisClient, logg)
	if err != nil {
		return err
	}
	storage, err := newLocalStorage(cfg.LocalStore, redisClient)
	if err != nil {
		return err
	}

	guests := commerce.NewGuests(commerce.GuestOptions{
		Storage:   storage,
		Namespace: cfg.LocalStore.Namespace,
		Bus:       bus,
		Logger:    logg,
		Metrics:   commerceMetrics,
	})

	backend, err := remote.NewBackend(dbClient, types.ShippingConfig{
		ShippingFee:           cfg.Shipping.Fee,
		FreeShippingThreshold: cfg.Shipping.FreeShippingThreshold,
	}, logg, nil)
	if err != nil {
		return err
	}

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	readiness, err := controllers.NewReadiness(dbClient, redisPinger)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	// WriteTimeout stays zero so /api/guest/events can stream.
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:    cfg,
			Logger:    logg,
			Readiness: readiness,
			Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Redis:     redisClient,
			Services:  backend.Services,
			Catalog:   backend.Products,
			Guests:    guests,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newBus(ctx context.Context, cfg config.NotifyConfig, client *redis.Client, logg *logger.Logger) (notify.Bus, error) {
	if !strings.EqualFold(cfg.Backend, config.BackendRedis) {
		return notify.NewMemoryBus(), nil
	}
	if client == nil {
		return nil, errors.New("notify backend redis requires STOREFRONT_REDIS_URL or STOREFRONT_REDIS_ADDR")
	}
	bus := notify.NewRedisBus(client, cfg.ChannelPrefix, logg)
	go func() {
		if err := bus.Listen(ctx); err != nil {
			logg.Error(ctx, "signal relay stopped", err)
		}
	}()
	return bus, nil
}

func newLocalStorage(cfg config.LocalStoreConfig, client *redis.Client) (localstore.Storage, error) {
	if !strings.EqualFold(cfg.Backend, config.BackendRedis) {
		return localstore.NewMemoryStorage(), nil
	}
	if client == nil {
		return nil, errors.New("local store backend redis requires STOREFRONT_REDIS_URL or STOREFRONT_REDIS_ADDR")
	}
	return localstore.NewRedisStorage(client, cfg.GuestTTL), nil
}
