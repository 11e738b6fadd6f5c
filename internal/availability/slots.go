package availability

import (
	"github.com/salonkit/booking-engine/internal/org"
	"github.com/salonkit/booking-engine/internal/schedule"
	"github.com/salonkit/booking-engine/internal/timeutil"
)

// GenerateSlots enumerates candidate start times within the working
// windows. Candidates step forward by increment from each window's start; a
// candidate is dropped when it starts before minStart or when its range
// [start, start+slotLen) overlaps any blocked interval.
//
// Windows are expected sorted and merged (schedule.MergeWindows), so no
// candidate is produced twice.
func GenerateSlots(windows []schedule.Window, slotLen, increment, minStart int, blocked []schedule.Window) []int {
	if slotLen <= 0 || increment <= 0 {
		return nil
	}

	var starts []int
	for _, w := range windows {
		for start := w.Start; start+slotLen <= w.End; start += increment {
			if start < minStart {
				continue
			}
			if overlapsAny(start, start+slotLen, blocked) {
				continue
			}
			starts = append(starts, start)
		}
	}
	return starts
}

func overlapsAny(start, end int, blocked []schedule.Window) bool {
	for _, b := range blocked {
		if timeutil.Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// RequiredSlotLength is the booking length for a service selection: the sum
// of durations and buffer times rounded up to the slot increment.
func RequiredSlotLength(services []org.Service, incrementMin int) int {
	total := 0
	for _, svc := range services {
		total += svc.DurationMin + svc.BufferMin
	}
	return timeutil.RoundUpTo(total, incrementMin)
}

// ExpandWindows widens each blocked interval by pad minutes on both sides,
// used for the inter-booking buffer around committed appointments.
func ExpandWindows(in []schedule.Window, pad int) []schedule.Window {
	if pad <= 0 {
		return in
	}
	out := make([]schedule.Window, len(in))
	for i, w := range in {
		out[i] = schedule.Window{Start: w.Start - pad, End: w.End + pad}
	}
	return out
}
