package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/salonkit/booking-engine/internal/api"
	"github.com/salonkit/booking-engine/internal/availability"
	"github.com/salonkit/booking-engine/internal/booking"
	"github.com/salonkit/booking-engine/internal/config"
	"github.com/salonkit/booking-engine/internal/db"
	"github.com/salonkit/booking-engine/internal/lock"
	"github.com/salonkit/booking-engine/internal/logging"
	"github.com/salonkit/booking-engine/internal/org"
	redisclient "github.com/salonkit/booking-engine/internal/redis"
	"github.com/salonkit/booking-engine/internal/schedule"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("dev", "api-server")
		log.Fatal().Err(err).Msg("config load")
	}
	logging.Setup(cfg.Env, "api-server")
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	directory := org.NewPgDirectory(pgPool)
	schedRepo := schedule.NewPgRepository(pgPool)
	bookingRepo := booking.NewPgRepository(pgPool)
	lockRepo := lock.NewPgRepository(pgPool)

	mutex := redisclient.NewRedisMutex(rdb, cfg.MutexTTL)
	lockMgr := lock.NewManager(lockRepo, bookingRepo, directory, mutex, cfg.LockTTL)

	availSvc := availability.NewService(directory, schedRepo, bookingRepo, lockRepo)
	bookingSvc := booking.NewService(bookingRepo, directory, lockMgr)

	limiter := redisclient.NewFixedWindowLimiter(rdb, cfg.RateLimitPerMin, time.Minute, "booking")

	router := api.NewRouter(api.RouterConfig{
		Availability: availSvc,
		Locks:        lockMgr,
		Bookings:     bookingSvc,
		Limiter:      limiter,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
