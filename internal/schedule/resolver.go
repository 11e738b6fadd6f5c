package schedule

import (
	"sort"
	"time"
)

// ResolveDay merges a staff member's weekly default, an optional date
// override and any overtime entries into the effective working windows for
// one date. It is a pure function; callers fetch the inputs.
//
// day_off and time_off overrides suppress the default window entirely,
// custom_hours replaces it. Overtime windows are added regardless of the
// override type, so a staff member can work overtime on a day off.
func ResolveDay(weekday time.Weekday, weekly WeeklySchedule, override *Override, overtime []Overtime) Resolved {
	var windows []Window

	base, baseOK := weekly[weekday]
	switch {
	case override == nil:
		if baseOK && base.Available && base.StartMin < base.EndMin {
			windows = append(windows, Window{Start: base.StartMin, End: base.EndMin})
		}
	case override.Type == OverrideCustomHours:
		if override.StartMin < override.EndMin {
			windows = append(windows, Window{Start: override.StartMin, End: override.EndMin})
		}
	case override.Type == OverrideDayOff, override.Type == OverrideTimeOff:
		// default window fully suppressed
	}

	for _, ot := range overtime {
		if ot.StartMin < ot.EndMin {
			windows = append(windows, Window{Start: ot.StartMin, End: ot.EndMin})
		}
	}

	windows = MergeWindows(windows)

	return Resolved{
		Available: len(windows) > 0,
		Windows:   windows,
	}
}

// MergeWindows sorts windows by start time and coalesces overlapping or
// contiguous ones. The input slice is not modified.
func MergeWindows(in []Window) []Window {
	if len(in) == 0 {
		return nil
	}

	windows := make([]Window, len(in))
	copy(windows, in)
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Start != windows[j].Start {
			return windows[i].Start < windows[j].Start
		}
		return windows[i].End < windows[j].End
	})

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}
