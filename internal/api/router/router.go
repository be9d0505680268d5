// Package router assembles the HTTP surface of the booking service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/availability"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/booking"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/bookings"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	httpmiddleware "github.com/SuleymanovTahir/beauty-crm-sub004/internal/http/middleware"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	CatalogHandler      *catalog.Handler
	AvailabilityHandler *availability.Handler
	SessionHandler      *booking.Handler
	BookingsHandler     *bookings.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
	RateLimitPerSecond  float64
	RateLimitBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
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
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.CatalogHandler != nil {
			api.Get("/services", cfg.CatalogHandler.GetServices)
			api.Get("/masters", cfg.CatalogHandler.GetMasters)
			api.Get("/holidays", cfg.CatalogHandler.GetHolidays)
		}

		if cfg.AvailabilityHandler != nil {
			api.Get("/slots", cfg.AvailabilityHandler.GetSlots)
			api.Get("/available-dates", cfg.AvailabilityHandler.GetAvailableDates)
			api.Get("/calendar", cfg.AvailabilityHandler.GetCalendar)
			api.Get("/masters-availability", cfg.AvailabilityHandler.GetMastersAvailability)
		}

		if cfg.BookingsHandler != nil {
			api.Get("/bookings", cfg.BookingsHandler.History)
		}

		if cfg.SessionHandler != nil {
			api.Post("/sessions", cfg.SessionHandler.CreateSession)
			api.Route("/sessions/{id}", func(s chi.Router) {
				s.Get("/", cfg.SessionHandler.GetSession)
				s.Get("/link", cfg.SessionHandler.ShareLink)
				s.Post("/services", cfg.SessionHandler.AddService)
				s.Delete("/services/{serviceID}", cfg.SessionHandler.RemoveService)
				s.Put("/services/{serviceID}/master", cfg.SessionHandler.SetMaster)
				s.Put("/services/{serviceID}/date", cfg.SessionHandler.SetDate)
				s.Put("/services/{serviceID}/time", cfg.SessionHandler.SetTime)
				s.Put("/draft", cfg.SessionHandler.UpdateDraft)
				s.Post("/step", cfg.SessionHandler.Navigate)
				if cfg.BookingsHandler != nil {
					s.Post("/submit", cfg.BookingsHandler.Submit)
				}
			})
		}
	})

	return r
}
