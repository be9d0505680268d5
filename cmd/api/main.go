package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/api/router"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/availability"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/booking"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/bookings"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	appconfig "github.com/SuleymanovTahir/beauty-crm-sub004/internal/config"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/holds"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/notify"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/observability/metrics"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting beauty-crm booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.SchedulerBaseURL == "" {
		logger.Error("SCHEDULER_BASE_URL is required")
		os.Exit(1)
	}

	// Redis backs sessions and the catalog cache.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Upstream scheduler client
	scheduler := upstream.NewClient(cfg.SchedulerBaseURL, cfg.SchedulerAPIKey, cfg.SchedulerTimeout, logger)

	// Catalog, availability, holds
	catalogStore := catalog.NewStore(redisClient, scheduler, cfg.CatalogCacheTTL, logger)
	catalogHandler := catalog.NewHandler(catalogStore, cfg.DefaultLocale, logger)

	availabilityService := availability.NewService(scheduler, logger, bookingMetrics)
	availabilityHandler := availability.NewHandler(availabilityService, catalogStore, scheduler, logger)

	holdManager := holds.NewManager(scheduler, cfg.HoldsEnabled, logger, bookingMetrics)

	// Sessions
	sessionStore := booking.NewStore(redisClient, cfg.SessionTTL)
	sessionHandler := booking.NewHandler(sessionStore, catalogStore, holdManager, logger)

	// Optional Postgres booking records
	var repo *bookings.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = bookings.NewRepository(pool, logger)
	} else {
		logger.Warn("DATABASE_URL not set, booking records will not be persisted")
	}

	// Optional confirmation email
	var sender notify.EmailSender
	if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
		sender = notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromName, cfg.SendGridFromEmail, logger)
	} else {
		sender = notify.NewLogSender(logger)
	}

	submissionService := bookings.NewService(scheduler, catalogStore, repo, sender, cfg.DefaultLocale, logger, bookingMetrics)
	bookingsHandler := bookings.NewHandler(submissionService, sessionStore, repo, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		CatalogHandler:      catalogHandler,
		AvailabilityHandler: availabilityHandler,
		SessionHandler:      sessionHandler,
		BookingsHandler:     bookingsHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
