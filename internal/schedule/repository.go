package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrScheduleNotFound = errors.New("schedule not found")

// Repository loads the schedule configuration the resolver needs. Overrides
// and overtime are read at request time, never cached, so staff edits take
// effect immediately.
type Repository interface {
	GetWeeklySchedule(ctx context.Context, staffID uuid.UUID) (WeeklySchedule, error)

	// GetOverride returns nil when no override exists for the date.
	GetOverride(ctx context.Context, staffID uuid.UUID, date string) (*Override, error)
	ListOvertime(ctx context.Context, staffID uuid.UUID, date string) ([]Overtime, error)

	// Range variants used by the date-range availability aggregator to avoid
	// one round trip per day.
	ListOverridesInRange(ctx context.Context, staffID uuid.UUID, from, to string) ([]Override, error)
	ListOvertimeInRange(ctx context.Context, staffID uuid.UUID, from, to string) ([]Overtime, error)
}
