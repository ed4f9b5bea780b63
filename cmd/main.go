package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/clients"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/wishlist"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cart slot
	var slot cache.Slot
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		slot = cache.NewRedisSlot(redisClient, cfg.CartTTL)
	} else {
		logger.Warn("REDIS_ADDR not set, carts are kept in memory")
		slot = cache.NewMemorySlot()
	}

	// Backend
	backend, err := clients.NewClient("backend", cfg.BackendURL, clients.NewHTTPClient(), cfg.RequestTimeout, logger)
	if err != nil {
		logger.Fatal("invalid backend url", zap.Error(err))
	}
	catalog := clients.NewCatalogClient(backend)
	orders := clients.NewOrderClient(backend)
	profiles := clients.NewProfileClient(backend)

	// Events
	var publisher checkout.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := events.NewPublisher(cfg.KafkaBrokers...)
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("kafka writer close failed", zap.Error(err))
			}
		}()
		publisher = p
		logger.Info("publishing checkout events", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	sink := notify.NewRequestSink(logger)
	sessions := service.NewSessions(slot, sink, logger, cfg.SessionIdleTTL)
	bridge := checkout.NewBridge(orders, orders, publisher, sink, logger, cfg.DefaultCountry)
	machines := checkout.NewRegistry(bridge, cfg.SessionIdleTTL)
	go sessions.Run(ctx)
	go machines.Run(ctx)
	store := wishlist.NewStore(profiles, sink, logger)

	limiter := h.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	go limiter.Run(ctx)

	router := h.NewRouter(h.RouterConfig{
		Log:                logger,
		Verifier:           auth.NewVerifier(cfg.JWTSecret),
		Limiter:            limiter,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		SecureCookies:      cfg.SecureCookies,
		Cart:               h.NewCartHandler(sessions, catalog, cfg.RequestTimeout, logger),
		Checkout: h.NewCheckoutHandler(sessions, machines, bridge, profiles,
			cfg.RazorpayKeyID, cfg.RequestTimeout, logger),
		Wishlist: h.NewWishlistHandler(store, cfg.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server exited")
}
