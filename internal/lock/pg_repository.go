package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonkit/booking-engine/internal/schedule"
)

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

const lockColumns = `
	id, organization_id, staff_id, date, start_min, end_min,
	session_id, expires_at, created_at`

func scanLock(row pgx.Row) (*SlotLock, error) {
	var l SlotLock
	err := row.Scan(
		&l.ID,
		&l.OrgID,
		&l.StaffID,
		&l.Date,
		&l.StartMin,
		&l.EndMin,
		&l.SessionID,
		&l.ExpiresAt,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLockNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *PgRepository) Insert(ctx context.Context, l *SlotLock) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO slot_locks
			(id, organization_id, staff_id, date, start_min, end_min,
			 session_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.OrgID, l.StaffID, l.Date, l.StartMin, l.EndMin,
		l.SessionID, l.ExpiresAt, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert slot lock: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (*SlotLock, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+lockColumns+`
		FROM slot_locks
		WHERE id = $1
	`, id)
	return scanLock(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM slot_locks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLockNotFound
	}
	return nil
}

func (r *PgRepository) DeleteBySession(ctx context.Context, orgID uuid.UUID, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM slot_locks
		WHERE organization_id = $1 AND session_id = $2
	`, orgID, sessionID)
	if err != nil {
		return fmt.Errorf("delete session locks: %w", err)
	}
	return nil
}

func (r *PgRepository) ListActive(ctx context.Context, staffID uuid.UUID, date string, now time.Time) ([]SlotLock, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+lockColumns+`
		FROM slot_locks
		WHERE staff_id = $1 AND date = $2 AND expires_at > $3
		ORDER BY start_min
	`, staffID, date, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocks(rows)
}

func (r *PgRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]SlotLock, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+lockColumns+`
		FROM slot_locks
		WHERE expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocks(rows)
}

// ListActiveIntervals returns the ranges held by other sessions' live locks,
// used by the availability service as blocked intervals.
func (r *PgRepository) ListActiveIntervals(ctx context.Context, staffID uuid.UUID, date, excludeSession string, now time.Time) ([]schedule.Window, error) {
	rows, err := r.db.Query(ctx, `
		SELECT start_min, end_min
		FROM slot_locks
		WHERE staff_id = $1 AND date = $2 AND expires_at > $3 AND session_id <> $4
	`, staffID, date, now, excludeSession)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []schedule.Window
	for rows.Next() {
		var w schedule.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}

func collectLocks(rows pgx.Rows) ([]SlotLock, error) {
	var result []SlotLock
	for rows.Next() {
		l, err := scanLock(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
