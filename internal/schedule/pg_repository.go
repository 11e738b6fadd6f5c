package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetWeeklySchedule(ctx context.Context, staffID uuid.UUID) (WeeklySchedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_min, end_min, available
		FROM weekly_schedules
		WHERE staff_id = $1
	`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weekly := WeeklySchedule{}
	for rows.Next() {
		var weekday int
		var d DayHours
		if err := rows.Scan(&weekday, &d.StartMin, &d.EndMin, &d.Available); err != nil {
			return nil, err
		}
		weekly[time.Weekday(weekday)] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return weekly, nil
}

func (r *PgRepository) GetOverride(ctx context.Context, staffID uuid.UUID, date string) (*Override, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, staff_id, date, type, start_min, end_min, COALESCE(reason, '')
		FROM schedule_overrides
		WHERE staff_id = $1 AND date = $2
	`, staffID, date)

	ov, err := scanOverride(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ov, nil
}

func (r *PgRepository) ListOvertime(ctx context.Context, staffID uuid.UUID, date string) ([]Overtime, error) {
	return r.listOvertime(ctx, `
		SELECT id, staff_id, date, start_min, end_min, COALESCE(reason, '')
		FROM overtime_entries
		WHERE staff_id = $1 AND date = $2
		ORDER BY start_min
	`, staffID, date)
}

func (r *PgRepository) ListOverridesInRange(ctx context.Context, staffID uuid.UUID, from, to string) ([]Override, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, staff_id, date, type, start_min, end_min, COALESCE(reason, '')
		FROM schedule_overrides
		WHERE staff_id = $1 AND date BETWEEN $2 AND $3
	`, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Override
	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ov)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) ListOvertimeInRange(ctx context.Context, staffID uuid.UUID, from, to string) ([]Overtime, error) {
	return r.listOvertime(ctx, `
		SELECT id, staff_id, date, start_min, end_min, COALESCE(reason, '')
		FROM overtime_entries
		WHERE staff_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, start_min
	`, staffID, from, to)
}

func (r *PgRepository) listOvertime(ctx context.Context, query string, args ...any) ([]Overtime, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Overtime
	for rows.Next() {
		var ot Overtime
		if err := rows.Scan(&ot.ID, &ot.StaffID, &ot.Date, &ot.StartMin, &ot.EndMin, &ot.Reason); err != nil {
			return nil, err
		}
		result = append(result, ot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOverride(row pgx.Row) (*Override, error) {
	var ov Override
	err := row.Scan(&ov.ID, &ov.StaffID, &ov.Date, &ov.Type, &ov.StartMin, &ov.EndMin, &ov.Reason)
	if err != nil {
		return nil, err
	}
	return &ov, nil
}
