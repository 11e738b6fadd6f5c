package schedule

import (
	"time"

	"github.com/google/uuid"
)

type OverrideType string

const (
	OverrideCustomHours OverrideType = "custom_hours"
	OverrideDayOff      OverrideType = "day_off"
	OverrideTimeOff     OverrideType = "time_off"
)

// DayHours is one weekday entry of a staff member's default weekly schedule.
// Start and End are minutes from midnight.
type DayHours struct {
	StartMin  int
	EndMin    int
	Available bool
}

// WeeklySchedule holds the recurring default hours, one entry per weekday.
// A missing weekday means the staff member does not work that day.
type WeeklySchedule map[time.Weekday]DayHours

// Override is a date-specific exception to the weekly schedule. At most one
// per (staff, date) is effective. StartMin/EndMin are only meaningful for
// custom_hours.
type Override struct {
	ID       uuid.UUID
	StaffID  uuid.UUID
	Date     string
	Type     OverrideType
	StartMin int
	EndMin   int
	Reason   string
}

// Overtime is an extra working window for a date. Overtime is always
// additive, it never shrinks the resolved schedule.
type Overtime struct {
	ID       uuid.UUID
	StaffID  uuid.UUID
	Date     string
	StartMin int
	EndMin   int
	Reason   string
}

// Window is a half-open working interval [Start, End) in minutes from midnight.
type Window struct {
	Start int
	End   int
}

// Resolved is the effective availability of one staff member on one date.
type Resolved struct {
	Available bool
	Windows   []Window
}
