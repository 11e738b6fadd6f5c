package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/salonkit/booking-engine/internal/booking"
	"github.com/salonkit/booking-engine/internal/config"
	"github.com/salonkit/booking-engine/internal/db"
	"github.com/salonkit/booking-engine/internal/lock"
	"github.com/salonkit/booking-engine/internal/logging"
	"github.com/salonkit/booking-engine/internal/org"
	redisclient "github.com/salonkit/booking-engine/internal/redis"
)

// The sweep is the only path that reclaims expired slot locks. Read paths
// filter on expiry but never delete, so without this worker stale rows
// would accumulate unbounded.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("dev", "sweep-worker")
		log.Fatal().Err(err).Msg("config load")
	}
	logging.Setup(cfg.Env, "sweep-worker")
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.SweepInterval).Msg("sweep-worker starting")

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

	directory := org.NewPgDirectory(pgPool)
	bookingRepo := booking.NewPgRepository(pgPool)
	lockRepo := lock.NewPgRepository(pgPool)
	mutex := redisclient.NewRedisMutex(rdb, cfg.MutexTTL)
	mgr := lock.NewManager(lockRepo, bookingRepo, directory, mutex, cfg.LockTTL)

	// Run once at startup, then on the ticker.
	runOnce(rootCtx, mgr)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping sweep worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, mgr)
		}
	}
}

func runOnce(ctx context.Context, mgr *lock.Manager) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	purged, err := mgr.PurgeExpired(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("sweep run")
		return
	}
	log.Info().Int("purged", purged).Dur("took", time.Since(start)).Msg("sweep run complete")
}
