package org

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

func (d *PgDirectory) GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, organization_id, name, active, created_at, updated_at
		FROM staff
		WHERE id = $1
	`, id)

	var s Staff
	err := row.Scan(&s.ID, &s.OrgID, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (d *PgDirectory) ListBookableStaff(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID) ([]Staff, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	// Staff must be assigned to every requested service; partial coverage is
	// not bookable.
	rows, err := d.pool.Query(ctx, `
		SELECT s.id, s.organization_id, s.name, s.active, s.created_at, s.updated_at
		FROM staff s
		WHERE s.organization_id = $1
		  AND s.active
		  AND NOT EXISTS (
			SELECT 1 FROM unnest($2::uuid[]) AS req(service_id)
			WHERE NOT EXISTS (
				SELECT 1 FROM staff_services ss
				WHERE ss.staff_id = s.id AND ss.service_id = req.service_id
			)
		  )
		ORDER BY s.name
	`, orgID, serviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.OrgID, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (d *PgDirectory) GetServices(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Service, error) {
	if len(ids) == 0 {
		return nil, ErrServiceNotFound
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, organization_id, name, price_cents, duration_min, buffer_min, status
		FROM services
		WHERE organization_id = $1 AND id = ANY($2::uuid[]) AND status = 'active'
	`, orgID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]Service, len(ids))
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.OrgID, &s.Name, &s.PriceCents, &s.DurationMin, &s.BufferMin, &s.Status); err != nil {
			return nil, err
		}
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve request order and catch missing/inactive ids.
	result := make([]Service, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("service %s: %w", id, ErrServiceNotFound)
		}
		result = append(result, s)
	}
	return result, nil
}

func (d *PgDirectory) GetSettings(ctx context.Context, orgID uuid.UUID) (Settings, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT slot_increment_min, min_advance_booking_min, buffer_between_bookings_min,
		       allow_online_booking, cancellation_window_hours, timezone
		FROM organization_settings
		WHERE organization_id = $1
	`, orgID)

	var s Settings
	err := row.Scan(
		&s.SlotIncrementMin,
		&s.MinAdvanceBookingMin,
		&s.BufferBetweenBookingsMin,
		&s.AllowOnlineBooking,
		&s.CancellationWindowHours,
		&s.Timezone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultSettings, nil
		}
		return Settings{}, err
	}

	if s.SlotIncrementMin <= 0 {
		s.SlotIncrementMin = DefaultSettings.SlotIncrementMin
	}
	if s.Timezone == "" {
		s.Timezone = DefaultSettings.Timezone
	}
	return s, nil
}
