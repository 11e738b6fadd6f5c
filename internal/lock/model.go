package lock

import (
	"time"

	"github.com/google/uuid"
)

// SlotLock is a short-lived, session-owned hold on a (staff, date,
// time-range) tuple. It is advisory state consumed only during the booking
// window: created on hold, deleted on release, commit, or expiry sweep.
type SlotLock struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	StaffID   uuid.UUID
	Date      string
	StartMin  int
	EndMin    int
	SessionID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Active reports whether the lock still holds its range at now.
func (l *SlotLock) Active(now time.Time) bool {
	return l.ExpiresAt.After(now)
}
