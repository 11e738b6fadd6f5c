package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/salonkit/booking-engine/internal/availability"
	"github.com/salonkit/booking-engine/internal/booking"
	"github.com/salonkit/booking-engine/internal/lock"
	redisclient "github.com/salonkit/booking-engine/internal/redis"
)

type RouterConfig struct {
	Availability *availability.Service
	Locks        *lock.Manager
	Bookings     *booking.Service
	Limiter      redisclient.RateLimiter
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Get("/availability/slots", getSlotsHandler(cfg.Availability))
	r.Get("/availability/dates", getDateAvailabilityHandler(cfg.Availability))

	// The mutating booking-flow endpoints are rate limited per actor.
	throttled := RateLimitMiddleware(cfg.Limiter)

	r.Route("/locks", func(r chi.Router) {
		r.With(throttled).Post("/", acquireLockHandler(cfg.Locks))
		r.Delete("/{id}", releaseLockHandler(cfg.Locks))
	})

	r.Route("/appointments", func(r chi.Router) {
		r.With(throttled).Post("/", createAppointmentHandler(cfg.Bookings))
		r.Get("/{id}", getAppointmentHandler(cfg.Bookings))
		r.Get("/code/{code}", getAppointmentByCodeHandler(cfg.Bookings))
		r.Post("/{id}/reschedule", rescheduleAppointmentHandler(cfg.Bookings))
		r.Post("/{id}/status", updateStatusHandler(cfg.Bookings))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Bookings))
	})

	return r
}
