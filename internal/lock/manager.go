package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/salonkit/booking-engine/internal/org"
	redisclient "github.com/salonkit/booking-engine/internal/redis"
	"github.com/salonkit/booking-engine/internal/schedule"
	"github.com/salonkit/booking-engine/internal/timeutil"
)

// DefaultTTL bounds how long a slot can be invisibly reserved between the
// hold step and the booking commit. Long enough to fill a contact form,
// short enough that abandoned holds don't stale-lock real availability.
const DefaultTTL = 120 * time.Second

const sweepBatchSize = 500

// AppointmentSource supplies committed appointment ranges for conflict
// checks; a lock must never be granted over a booked range.
type AppointmentSource interface {
	ListActiveIntervals(ctx context.Context, staffID uuid.UUID, date string) ([]schedule.Window, error)
}

// StaffDirectory resolves staff for cross-organization validation.
type StaffDirectory interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*org.Staff, error)
}

type Manager struct {
	repo  Repository
	appts AppointmentSource
	staff StaffDirectory
	mutex redisclient.Locker
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(repo Repository, appts AppointmentSource, staff StaffDirectory, mutex redisclient.Locker, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		repo:  repo,
		appts: appts,
		staff: staff,
		mutex: mutex,
		ttl:   ttl,
		now:   time.Now,
	}
}

type invalidRangeError struct {
	msg string
}

func (e *invalidRangeError) Error() string {
	return e.msg
}

// IsInvalidRange reports whether err is a lock request validation failure.
func IsInvalidRange(err error) bool {
	var e *invalidRangeError
	return errors.As(err, &e)
}

// Acquire grants a session an exclusive short-lived hold on a time range.
// Any lock the session already holds is superseded. The check-then-insert
// runs inside one transaction, serialized per (staff, date) by a Redis
// mutex so two overlapping acquires cannot both pass the overlap checks.
func (m *Manager) Acquire(ctx context.Context, orgID, staffID uuid.UUID, date string, startMin, endMin int, sessionID string) (*SlotLock, error) {
	if startMin < 0 || endMin <= startMin || endMin > timeutil.MinutesPerDay {
		return nil, &invalidRangeError{msg: "invalid time range"}
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, &invalidRangeError{msg: err.Error()}
	}
	if sessionID == "" {
		return nil, &invalidRangeError{msg: "session id is required"}
	}

	staff, err := m.staff.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.OrgID != orgID {
		return nil, org.ErrStaffNotFound
	}

	var created *SlotLock

	key := fmt.Sprintf("slot:%s:%s", staffID, date)
	err = m.mutex.WithLock(ctx, key, func(lockCtx context.Context) error {
		return m.repo.InTx(lockCtx, func(tx Repository) error {
			now := m.now()

			// User changed their mind: the new hold replaces the old one.
			if err := tx.DeleteBySession(lockCtx, orgID, sessionID); err != nil {
				return err
			}

			held, err := tx.ListActive(lockCtx, staffID, date, now)
			if err != nil {
				return fmt.Errorf("list active locks: %w", err)
			}
			for i := range held {
				if timeutil.Overlaps(startMin, endMin, held[i].StartMin, held[i].EndMin) {
					return ErrSlotHeld
				}
			}

			booked, err := m.appts.ListActiveIntervals(lockCtx, staffID, date)
			if err != nil {
				return fmt.Errorf("list booked intervals: %w", err)
			}
			for _, w := range booked {
				if timeutil.Overlaps(startMin, endMin, w.Start, w.End) {
					return ErrSlotTaken
				}
			}

			l := &SlotLock{
				ID:        uuid.New(),
				OrgID:     orgID,
				StaffID:   staffID,
				Date:      date,
				StartMin:  startMin,
				EndMin:    endMin,
				SessionID: sessionID,
				ExpiresAt: now.Add(m.ttl),
				CreatedAt: now,
			}
			if err := tx.Insert(lockCtx, l); err != nil {
				return err
			}

			created = l
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Release drops a lock, but only for the session that owns it. One session
// must not be able to release another's hold.
func (m *Manager) Release(ctx context.Context, lockID uuid.UUID, sessionID string) error {
	l, err := m.repo.Get(ctx, lockID)
	if err != nil {
		return err
	}
	if l.SessionID != sessionID {
		return ErrLockNotFound
	}
	return m.repo.Delete(ctx, lockID)
}

// ReleaseSession drops whatever lock the session holds. The booking service
// calls this once a booking commits and the hold is consumed.
func (m *Manager) ReleaseSession(ctx context.Context, orgID uuid.UUID, sessionID string) error {
	return m.repo.DeleteBySession(ctx, orgID, sessionID)
}

// PurgeExpired reclaims locks past their expiry. It is the only
// garbage-collection path; read paths filter on expires_at but never
// delete. Individual deletion failures are logged and skipped so one bad
// row cannot stall the sweep.
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	expired, err := m.repo.ListExpired(ctx, m.now(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired locks: %w", err)
	}

	purged := 0
	for i := range expired {
		if err := m.repo.Delete(ctx, expired[i].ID); err != nil {
			log.Warn().Err(err).Str("lock_id", expired[i].ID.String()).Msg("purge expired lock")
			continue
		}
		purged++
	}
	return purged, nil
}
