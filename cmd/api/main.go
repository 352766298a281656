package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkarlsen/bookline/internal/api/router"
	"github.com/mkarlsen/bookline/internal/app/bootstrap"
	"github.com/mkarlsen/bookline/internal/bookings"
	appconfig "github.com/mkarlsen/bookline/internal/config"
	"github.com/mkarlsen/bookline/internal/gcal"
	"github.com/mkarlsen/bookline/internal/http/handlers"
	httpmiddleware "github.com/mkarlsen/bookline/internal/http/middleware"
	"github.com/mkarlsen/bookline/internal/observability/metrics"
	"github.com/mkarlsen/bookline/internal/services"
	"github.com/mkarlsen/bookline/internal/settings"
	"github.com/mkarlsen/bookline/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	rdb, err := bootstrap.BuildRedisClient(ctx, cfg, true)
	if err != nil {
		logger.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer func() { _ = rdb.Close() }()

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	bookingMetrics := metrics.NewBookingMetrics(reg)

	settingsStore := settings.NewStore(rdb).WithDefaults(cfg.Timezone, cfg.SlotIntervalMinutes)
	servicesRepo := services.NewRepository(pool)
	bookingsRepo := bookings.NewRepository(pool)

	calClient, tokenStore, err := bootstrap.BuildCalendar(ctx, cfg, rdb, logger)
	if err != nil {
		logger.Error("calendar setup failed", "error", err)
		os.Exit(1)
	}
	emailSender := bootstrap.BuildEmailSender(cfg, logger)

	// A nil *gcal.Client must stay a nil interface, or the sync path
	// dereferences it.
	var external bookings.BusySource
	var calSync bookings.CalendarSync
	if calClient != nil {
		external = calClient
		calSync = calClient
	}
	bookingSvc := bookings.NewService(bookingsRepo, settingsStore, servicesRepo,
		external, calSync, emailSender, bookingMetrics, logger)

	var calendarAuth *gcal.Handler
	if tokenStore != nil {
		conf := gcal.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleOAuthRedirect)
		calendarAuth = gcal.NewHandler(conf, tokenStore, logger)
	}

	businessLocation := func() *time.Location {
		s, err := settingsStore.Get(ctx)
		if err != nil {
			return time.UTC
		}
		return s.Location()
	}

	r := router.New(&router.Config{
		Logger:             logger,
		Availability:       handlers.NewAvailabilityHandler(bookingSvc, logger),
		Calendar:           handlers.NewCalendarHandler(businessLocation, logger),
		Bookings:           handlers.NewBookingsHandler(bookingSvc, logger),
		ServicesHandler:    services.NewHandler(servicesRepo, logger),
		SettingsHandler:    settings.NewHandler(settingsStore, logger),
		CalendarAuth:       calendarAuth,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingRateLimit:   httpmiddleware.DefaultBookingRate,
		BookingBurst:       httpmiddleware.DefaultBookingBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
