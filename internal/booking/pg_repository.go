package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonkit/booking-engine/internal/org"
	"github.com/salonkit/booking-engine/internal/schedule"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository methods run standalone or inside InTx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool *pgxpool.Pool
	db   querier
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool, db: pool}
}

func (r *PgRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		// already transactional
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PgRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const appointmentColumns = `
	id, organization_id, customer_id, staff_id, date, start_min, end_min,
	status, confirmation_code, source, COALESCE(notes, ''),
	COALESCE(cancelled_by, ''), COALESCE(cancel_reason, ''), cancelled_at,
	reschedule_count, reschedule_history, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var staffID *uuid.UUID
	var cancelledAt *time.Time
	var history []byte

	err := row.Scan(
		&a.ID,
		&a.OrgID,
		&a.CustomerID,
		&staffID,
		&a.Date,
		&a.StartMin,
		&a.EndMin,
		&a.Status,
		&a.ConfirmationCode,
		&a.Source,
		&a.Notes,
		&a.CancelledBy,
		&a.CancelReason,
		&cancelledAt,
		&a.RescheduleCount,
		&history,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.StaffID = staffID
	a.CancelledAt = cancelledAt
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.RescheduleHistory); err != nil {
			return nil, fmt.Errorf("decode reschedule history: %w", err)
		}
	}
	return &a, nil
}

func (r *PgRepository) Insert(ctx context.Context, a *Appointment) error {
	history, err := json.Marshal(a.RescheduleHistory)
	if err != nil {
		return fmt.Errorf("encode reschedule history: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO appointments
			(id, organization_id, customer_id, staff_id, date, start_min, end_min,
			 status, confirmation_code, source, notes, reschedule_count,
			 reschedule_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, now(), now())
	`, a.ID, a.OrgID, a.CustomerID, a.StaffID, a.Date, a.StartMin, a.EndMin,
		a.Status, a.ConfirmationCode, a.Source, a.Notes, history)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	for _, item := range a.Items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO appointment_items
				(id, appointment_id, service_id, name, price_cents, duration_min)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, a.ID, item.ServiceID, item.Name, item.PriceCents, item.DurationMin)
		if err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND organization_id = $2
	`, id, orgID)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, a)
}

func (r *PgRepository) GetByCode(ctx context.Context, orgID uuid.UUID, code string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE organization_id = $1 AND confirmation_code = $2
	`, orgID, code)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, a)
}

func (r *PgRepository) CodeExists(ctx context.Context, orgID uuid.UUID, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE organization_id = $1 AND confirmation_code = $2
		)
	`, orgID, code).Scan(&exists)
	return exists, err
}

func (r *PgRepository) ListActiveByStaffDate(ctx context.Context, staffID uuid.UUID, date string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE staff_id = $1
		  AND date = $2
		  AND status NOT IN ('cancelled', 'no_show')
		ORDER BY start_min
	`, staffID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListActiveIntervals returns the blocked time ranges of active appointments
// for a (staff, date), used by the availability and lock packages.
func (r *PgRepository) ListActiveIntervals(ctx context.Context, staffID uuid.UUID, date string) ([]schedule.Window, error) {
	appts, err := r.ListActiveByStaffDate(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	windows := make([]schedule.Window, 0, len(appts))
	for _, a := range appts {
		windows = append(windows, schedule.Window{Start: a.StartMin, End: a.EndMin})
	}
	return windows, nil
}

// ListActiveIntervalsInRange returns blocked ranges grouped by date for a
// staff member across a date span, used by the date-range aggregator.
func (r *PgRepository) ListActiveIntervalsInRange(ctx context.Context, staffID uuid.UUID, from, to string) (map[string][]schedule.Window, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date, start_min, end_min
		FROM appointments
		WHERE staff_id = $1
		  AND date BETWEEN $2 AND $3
		  AND status NOT IN ('cancelled', 'no_show')
	`, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]schedule.Window)
	for rows.Next() {
		var date string
		var w schedule.Window
		if err := rows.Scan(&date, &w.Start, &w.End); err != nil {
			return nil, err
		}
		result[date] = append(result[date], w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns,
		id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) Cancel(ctx context.Context, id uuid.UUID, from Status, by CancelActor, reason string, at time.Time) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
		    cancelled_by = $2,
		    cancel_reason = $3,
		    cancelled_at = $4,
		    updated_at = now()
		WHERE id = $1
		  AND status = $5
		RETURNING `+appointmentColumns,
		id, by, reason, at, from)
	return scanAppointment(row)
}

func (r *PgRepository) Reschedule(ctx context.Context, id uuid.UUID, date string, startMin, endMin int, entry Reschedule) (*Appointment, error) {
	hist, err := json.Marshal([]Reschedule{entry})
	if err != nil {
		return nil, fmt.Errorf("encode reschedule entry: %w", err)
	}

	// The status predicate guards against a cancel or completion committing
	// after the caller's pre-checks; zero rows surfaces as not-found.
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET date = $2,
		    start_min = $3,
		    end_min = $4,
		    reschedule_count = reschedule_count + 1,
		    reschedule_history = COALESCE(reschedule_history, '[]'::jsonb) || $5::jsonb,
		    updated_at = now()
		WHERE id = $1
		  AND status NOT IN ('cancelled', 'no_show', 'completed')
		RETURNING `+appointmentColumns,
		id, date, startMin, endMin, hist)
	return scanAppointment(row)
}

func (r *PgRepository) UpsertCustomerByPhone(ctx context.Context, orgID uuid.UUID, name, phone, email string) (*org.Customer, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO customers (id, organization_id, name, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (organization_id, phone) DO UPDATE
		SET name = EXCLUDED.name,
		    email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE customers.email END
		RETURNING id, organization_id, name, phone, email, created_at
	`, uuid.New(), orgID, name, phone, email)

	var c org.Customer
	if err := row.Scan(&c.ID, &c.OrgID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return &c, nil
}

func (r *PgRepository) attachItems(ctx context.Context, a *Appointment) (*Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, service_id, name, price_cents, duration_min
		FROM appointment_items
		WHERE appointment_id = $1
	`, a.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.ID, &item.ServiceID, &item.Name, &item.PriceCents, &item.DurationMin); err != nil {
			return nil, err
		}
		a.Items = append(a.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return a, nil
}
