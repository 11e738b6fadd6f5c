package timeutil

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the canonical wire format for booking dates.
	DateLayout = "2006-01-02"

	MinutesPerDay = 24 * 60
)

// TimeToMinutes converts an "HH:MM" string to minutes from midnight.
func TimeToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}

	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q, out of range", s)
	}

	return h*60 + m, nil
}

// MinutesToTime converts minutes from midnight back to "HH:MM".
func MinutesToTime(n int) string {
	if n < 0 {
		n = 0
	}
	n = n % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", n/60, n%60)
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) share any time.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// RoundUpTo rounds n up to the next multiple of inc.
func RoundUpTo(n, inc int) int {
	if inc <= 0 {
		return n
	}
	if rem := n % inc; rem != 0 {
		return n + inc - rem
	}
	return n
}

// ParseDate parses a "2006-01-02" date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Weekday returns the weekday of a "2006-01-02" date string.
func Weekday(date string) (time.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// DateRange returns every date from "from" through "to" inclusive.
// It returns an error when to is before from or the span exceeds maxDays.
func DateRange(from, to string, maxDays int) ([]string, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("date range end %s before start %s", to, from)
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
		if maxDays > 0 && len(dates) > maxDays {
			return nil, fmt.Errorf("date range longer than %d days", maxDays)
		}
	}
	return dates, nil
}

// IsToday reports whether date is the current day in loc.
func IsToday(date string, loc *time.Location, now time.Time) bool {
	return now.In(loc).Format(DateLayout) == date
}

// MinutesOfDay returns how many minutes have elapsed since midnight in loc.
func MinutesOfDay(now time.Time, loc *time.Location) int {
	t := now.In(loc)
	return t.Hour()*60 + t.Minute()
}
