// Package router assembles the public and admin HTTP route trees.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkarlsen/bookline/internal/gcal"
	"github.com/mkarlsen/bookline/internal/http/handlers"
	httpmiddleware "github.com/mkarlsen/bookline/internal/http/middleware"
	"github.com/mkarlsen/bookline/internal/services"
	"github.com/mkarlsen/bookline/internal/settings"
	"github.com/mkarlsen/bookline/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	Availability    *handlers.AvailabilityHandler
	Calendar        *handlers.CalendarHandler
	Bookings        *handlers.BookingsHandler
	ServicesHandler *services.Handler
	SettingsHandler *settings.Handler
	CalendarAuth    *gcal.Handler // optional, nil disables the connect flow

	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Public booking rate limit; zero disables it.
	BookingRateLimit float64
	BookingBurst     int
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: everything the booking page needs.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ServicesHandler != nil {
			public.Get("/services", cfg.ServicesHandler.List)
		}
		if cfg.Availability != nil {
			public.Get("/availability", cfg.Availability.Get)
		}
		if cfg.Calendar != nil {
			public.Get("/calendar/{year}/{month}", cfg.Calendar.Month)
		}
		if cfg.Bookings != nil {
			create := public
			if cfg.BookingRateLimit > 0 {
				create = public.With(httpmiddleware.RateLimit(cfg.BookingRateLimit, cfg.BookingBurst))
			}
			create.Post("/bookings", cfg.Bookings.Create)
		}
	})

	// Admin endpoints, JWT-protected.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.SettingsHandler != nil {
			admin.Mount("/settings", cfg.SettingsHandler.Routes())
		}
		if cfg.ServicesHandler != nil {
			admin.Mount("/services", cfg.ServicesHandler.AdminRoutes())
		}
		if cfg.Bookings != nil {
			admin.Mount("/bookings", cfg.Bookings.AdminRoutes())
		}
		if cfg.CalendarAuth != nil {
			admin.Mount("/calendar", cfg.CalendarAuth.Routes())
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status": "ok"}`))
}
