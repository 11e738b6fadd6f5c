package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/salonkit/booking-engine/internal/org"
	"github.com/salonkit/booking-engine/internal/schedule"
	"github.com/salonkit/booking-engine/internal/timeutil"
)

// maxRangeDays bounds GetDateAvailability scans.
const maxRangeDays = 62

// ValidationError marks input the client can correct and retry.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Slot is a candidate bookable range for one staff member.
type Slot struct {
	StaffID   uuid.UUID
	StaffName string
	StartMin  int
	EndMin    int
}

// DateAvailability is one row of the coarse multi-day scan.
type DateAvailability struct {
	Date            string
	HasAvailability bool
	SlotCount       int
}

// AppointmentSource supplies committed appointment ranges as blocked
// intervals.
type AppointmentSource interface {
	ListActiveIntervals(ctx context.Context, staffID uuid.UUID, date string) ([]schedule.Window, error)
	ListActiveIntervalsInRange(ctx context.Context, staffID uuid.UUID, from, to string) (map[string][]schedule.Window, error)
}

// LockSource supplies other sessions' live slot locks as blocked intervals.
type LockSource interface {
	ListActiveIntervals(ctx context.Context, staffID uuid.UUID, date, excludeSession string, now time.Time) ([]schedule.Window, error)
}

type Service struct {
	dir   org.Directory
	sched schedule.Repository
	appts AppointmentSource
	locks LockSource
	now   func() time.Time
}

func NewService(dir org.Directory, sched schedule.Repository, appts AppointmentSource, locks LockSource) *Service {
	return &Service{
		dir:   dir,
		sched: sched,
		appts: appts,
		locks: locks,
		now:   time.Now,
	}
}

type SlotQuery struct {
	OrgID      uuid.UUID
	Date       string
	ServiceIDs []uuid.UUID
	StaffID    *uuid.UUID // nil means any eligible staff
	SessionID  string     // the requester's own lock never blocks them
}

// GetAvailableSlots computes bookable start times for a date across all
// eligible staff, pooled and sorted by (start, staff name). A staff member
// is eligible only when they can perform every requested service.
func (s *Service) GetAvailableSlots(ctx context.Context, q SlotQuery) ([]Slot, error) {
	if _, err := timeutil.ParseDate(q.Date); err != nil {
		return nil, validationError("%v", err)
	}
	if len(q.ServiceIDs) == 0 {
		return nil, validationError("at least one service is required")
	}

	settings, err := s.dir.GetSettings(ctx, q.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !settings.AllowOnlineBooking {
		return nil, nil
	}

	services, err := s.dir.GetServices(ctx, q.OrgID, q.ServiceIDs)
	if err != nil {
		return nil, err
	}
	staffList, err := s.eligibleStaff(ctx, q.OrgID, q.ServiceIDs, q.StaffID)
	if err != nil {
		return nil, err
	}

	slotLen := RequiredSlotLength(services, settings.SlotIncrementMin)
	minStart := s.minStartCutoff(q.Date, settings)
	weekday, err := timeutil.Weekday(q.Date)
	if err != nil {
		return nil, validationError("%v", err)
	}

	var slots []Slot
	for _, staff := range staffList {
		resolved, err := s.resolveDay(ctx, staff.ID, q.Date, weekday)
		if err != nil {
			return nil, err
		}
		if !resolved.Available {
			continue
		}

		blocked, err := s.blockedIntervals(ctx, staff.ID, q.Date, q.SessionID, settings.BufferBetweenBookingsMin)
		if err != nil {
			return nil, err
		}

		for _, start := range GenerateSlots(resolved.Windows, slotLen, settings.SlotIncrementMin, minStart, blocked) {
			slots = append(slots, Slot{
				StaffID:   staff.ID,
				StaffName: staff.Name,
				StartMin:  start,
				EndMin:    start + slotLen,
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartMin != slots[j].StartMin {
			return slots[i].StartMin < slots[j].StartMin
		}
		return slots[i].StaffName < slots[j].StaffName
	})

	return slots, nil
}

type RangeQuery struct {
	OrgID      uuid.UUID
	From       string
	To         string
	ServiceIDs []uuid.UUID
	StaffID    *uuid.UUID
}

// GetDateAvailability is the coarse calendar scan: per date, whether any
// opening exists and how many. It trades lock precision for query volume;
// holds live at most two minutes, which is below calendar granularity.
func (s *Service) GetDateAvailability(ctx context.Context, q RangeQuery) ([]DateAvailability, error) {
	dates, err := timeutil.DateRange(q.From, q.To, maxRangeDays)
	if err != nil {
		return nil, validationError("%v", err)
	}
	if len(q.ServiceIDs) == 0 {
		return nil, validationError("at least one service is required")
	}

	settings, err := s.dir.GetSettings(ctx, q.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	result := make([]DateAvailability, len(dates))
	for i, date := range dates {
		result[i] = DateAvailability{Date: date}
	}
	if !settings.AllowOnlineBooking {
		return result, nil
	}

	services, err := s.dir.GetServices(ctx, q.OrgID, q.ServiceIDs)
	if err != nil {
		return nil, err
	}
	staffList, err := s.eligibleStaff(ctx, q.OrgID, q.ServiceIDs, q.StaffID)
	if err != nil {
		return nil, err
	}

	slotLen := RequiredSlotLength(services, settings.SlotIncrementMin)

	for _, staff := range staffList {
		weekly, err := s.sched.GetWeeklySchedule(ctx, staff.ID)
		if err != nil {
			return nil, err
		}
		overrides, err := s.sched.ListOverridesInRange(ctx, staff.ID, q.From, q.To)
		if err != nil {
			return nil, err
		}
		overtime, err := s.sched.ListOvertimeInRange(ctx, staff.ID, q.From, q.To)
		if err != nil {
			return nil, err
		}
		booked, err := s.appts.ListActiveIntervalsInRange(ctx, staff.ID, q.From, q.To)
		if err != nil {
			return nil, err
		}

		overrideByDate := make(map[string]*schedule.Override, len(overrides))
		for i := range overrides {
			overrideByDate[overrides[i].Date] = &overrides[i]
		}
		overtimeByDate := make(map[string][]schedule.Overtime)
		for _, ot := range overtime {
			overtimeByDate[ot.Date] = append(overtimeByDate[ot.Date], ot)
		}

		for i, date := range dates {
			weekday, err := timeutil.Weekday(date)
			if err != nil {
				return nil, err
			}
			resolved := schedule.ResolveDay(weekday, weekly, overrideByDate[date], overtimeByDate[date])
			if !resolved.Available {
				continue
			}

			blocked := ExpandWindows(booked[date], settings.BufferBetweenBookingsMin)
			minStart := s.minStartCutoff(date, settings)
			n := len(GenerateSlots(resolved.Windows, slotLen, settings.SlotIncrementMin, minStart, blocked))
			if n > 0 {
				result[i].HasAvailability = true
				result[i].SlotCount += n
			}
		}
	}

	return result, nil
}

func (s *Service) eligibleStaff(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID, staffID *uuid.UUID) ([]org.Staff, error) {
	staffList, err := s.dir.ListBookableStaff(ctx, orgID, serviceIDs)
	if err != nil {
		return nil, err
	}
	if staffID == nil {
		return staffList, nil
	}
	for _, st := range staffList {
		if st.ID == *staffID {
			return []org.Staff{st}, nil
		}
	}
	// Requested staff cannot perform every service: no slots, not an error.
	return nil, nil
}

func (s *Service) resolveDay(ctx context.Context, staffID uuid.UUID, date string, weekday time.Weekday) (schedule.Resolved, error) {
	weekly, err := s.sched.GetWeeklySchedule(ctx, staffID)
	if err != nil {
		return schedule.Resolved{}, err
	}
	override, err := s.sched.GetOverride(ctx, staffID, date)
	if err != nil {
		return schedule.Resolved{}, err
	}
	overtime, err := s.sched.ListOvertime(ctx, staffID, date)
	if err != nil {
		return schedule.Resolved{}, err
	}
	return schedule.ResolveDay(weekday, weekly, override, overtime), nil
}

func (s *Service) blockedIntervals(ctx context.Context, staffID uuid.UUID, date, sessionID string, buffer int) ([]schedule.Window, error) {
	booked, err := s.appts.ListActiveIntervals(ctx, staffID, date)
	if err != nil {
		return nil, fmt.Errorf("list booked intervals: %w", err)
	}
	blocked := ExpandWindows(booked, buffer)

	held, err := s.locks.ListActiveIntervals(ctx, staffID, date, sessionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list held intervals: %w", err)
	}
	return append(blocked, held...), nil
}

// minStartCutoff applies the minimum-advance-booking rule, which only
// matters when the requested date is today in the organization's timezone.
func (s *Service) minStartCutoff(date string, settings org.Settings) int {
	loc := settings.Location()
	now := s.now()
	if !timeutil.IsToday(date, loc, now) {
		return 0
	}
	return timeutil.MinutesOfDay(now, loc) + settings.MinAdvanceBookingMin
}
