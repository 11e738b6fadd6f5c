package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLockNotFound = errors.New("slot lock not found")

	// ErrSlotHeld means another session holds an overlapping lock.
	ErrSlotHeld = errors.New("slot is being booked by someone else")

	// ErrSlotTaken means a committed appointment already occupies the range.
	ErrSlotTaken = errors.New("slot no longer available")
)

// Repository contains all DB interactions needed by the lock manager.
type Repository interface {
	InTx(ctx context.Context, fn func(Repository) error) error

	Insert(ctx context.Context, l *SlotLock) error
	Get(ctx context.Context, id uuid.UUID) (*SlotLock, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteBySession removes whatever lock the session currently holds; a
	// session holds at most one lock at a time.
	DeleteBySession(ctx context.Context, orgID uuid.UUID, sessionID string) error

	// ListActive returns non-expired locks for the (staff, date) timeline.
	ListActive(ctx context.Context, staffID uuid.UUID, date string, now time.Time) ([]SlotLock, error)

	// ListExpired feeds the sweep. Readers never delete expired rows
	// themselves; the sweep is the only garbage-collection path.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]SlotLock, error)
}
