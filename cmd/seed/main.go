package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/salonkit/booking-engine/internal/db"
	"github.com/salonkit/booking-engine/internal/logging"
)

const (
	orgCount         = 5
	staffPerOrg      = 8
	servicesPerOrg   = 12
	customersPerOrg  = 400
	servicesPerStaff = 6
)

func main() {
	logging.Setup("dev", "seed")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	for i := 0; i < orgCount; i++ {
		if err := seedOrganization(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("seed organization")
		}
	}

	log.Info().Msg("seed complete")
}

func seedOrganization(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	orgID := uuid.New()
	orgName := gofakeit.Company() + " Salon"

	_, err = tx.Exec(ctx, `
		INSERT INTO organizations (id, name, created_at)
		VALUES ($1, $2, now())
	`, orgID, orgName)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO organization_settings
			(organization_id, slot_increment_min, min_advance_booking_min,
			 buffer_between_bookings_min, allow_online_booking,
			 cancellation_window_hours, timezone)
		VALUES ($1, 15, 60, $2, true, 24, $3)
	`, orgID, gofakeit.Number(0, 15), gofakeit.TimeZoneRegion())
	if err != nil {
		return err
	}

	serviceNames := []string{
		"Haircut", "Beard Trim", "Color", "Highlights", "Blowout",
		"Deep Conditioning", "Manicure", "Pedicure", "Facial",
		"Brow Shaping", "Waxing", "Scalp Treatment",
	}
	serviceIDs := make([]uuid.UUID, 0, servicesPerOrg)
	for i := 0; i < servicesPerOrg && i < len(serviceNames); i++ {
		id := uuid.New()
		serviceIDs = append(serviceIDs, id)
		_, err := tx.Exec(ctx, `
			INSERT INTO services
				(id, organization_id, name, price_cents, duration_min, buffer_min, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'active')
		`, id, orgID, serviceNames[i],
			int64(gofakeit.Number(2000, 20000)),
			gofakeit.Number(2, 8)*15,
			gofakeit.Number(0, 2)*5)
		if err != nil {
			return err
		}
	}

	for i := 0; i < staffPerOrg; i++ {
		staffID := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO staff (id, organization_id, name, active, created_at, updated_at)
			VALUES ($1, $2, $3, true, now(), now())
		`, staffID, orgID, gofakeit.Name())
		if err != nil {
			return err
		}

		// Tue-Sat working week, 09:00-18:00.
		for weekday := 2; weekday <= 6; weekday++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO weekly_schedules (staff_id, weekday, start_min, end_min, available)
				VALUES ($1, $2, 540, 1080, true)
			`, staffID, weekday)
			if err != nil {
				return err
			}
		}

		for _, svcID := range pickServices(serviceIDs, servicesPerStaff) {
			_, err := tx.Exec(ctx, `
				INSERT INTO staff_services (staff_id, service_id)
				VALUES ($1, $2)
			`, staffID, svcID)
			if err != nil {
				return err
			}
		}
	}

	for i := 0; i < customersPerOrg; i++ {
		_, err := tx.Exec(ctx, `
			INSERT INTO customers (id, organization_id, name, phone, email, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (organization_id, phone) DO NOTHING
		`, uuid.New(), orgID, gofakeit.Name(), gofakeit.Phone(), gofakeit.Email())
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Str("org", orgName).Msg("organization seeded")
	return nil
}

func pickServices(ids []uuid.UUID, n int) []uuid.UUID {
	if n >= len(ids) {
		return ids
	}
	shuffled := make([]uuid.UUID, len(ids))
	copy(shuffled, ids)
	gofakeit.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}
