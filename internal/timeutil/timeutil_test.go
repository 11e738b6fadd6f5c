package timeutil

import (
	"testing"
	"time"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:00", want: 540},
		{in: "09:15", want: 555},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := TimeToMinutes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("TimeToMinutes(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("TimeToMinutes(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMinutesToTimeRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "00:01", "09:00", "12:30", "18:45", "23:59"} {
		n, err := TimeToMinutes(s)
		if err != nil {
			t.Fatalf("TimeToMinutes(%q): %v", s, err)
		}
		if back := MinutesToTime(n); back != s {
			t.Errorf("round trip %q -> %d -> %q", s, n, back)
		}
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{name: "disjoint", aStart: 540, aEnd: 600, bStart: 600, bEnd: 660, want: false},
		{name: "touching ends are open", aStart: 600, aEnd: 660, bStart: 540, bEnd: 600, want: false},
		{name: "identical", aStart: 540, aEnd: 600, bStart: 540, bEnd: 600, want: true},
		{name: "partial", aStart: 540, aEnd: 600, bStart: 570, bEnd: 630, want: true},
		{name: "contained", aStart: 540, aEnd: 720, bStart: 600, bEnd: 660, want: true},
	}

	for _, tt := range tests {
		if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
			t.Errorf("%s: Overlaps(%d,%d,%d,%d) = %v, want %v",
				tt.name, tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
		}
		// overlap is symmetric
		if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
			t.Errorf("%s: overlap not symmetric", tt.name)
		}
	}
}

func TestRoundUpTo(t *testing.T) {
	tests := []struct {
		n, inc, want int
	}{
		{45, 15, 45},
		{46, 15, 60},
		{0, 15, 0},
		{50, 15, 60},
		{30, 0, 30},
	}
	for _, tt := range tests {
		if got := RoundUpTo(tt.n, tt.inc); got != tt.want {
			t.Errorf("RoundUpTo(%d, %d) = %d, want %d", tt.n, tt.inc, got, tt.want)
		}
	}
}

func TestDateRange(t *testing.T) {
	dates, err := DateRange("2026-03-30", "2026-04-02", 31)
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	want := []string{"2026-03-30", "2026-03-31", "2026-04-01", "2026-04-02"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}

	if _, err := DateRange("2026-04-02", "2026-03-30", 31); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := DateRange("2026-01-01", "2026-03-30", 31); err == nil {
		t.Error("expected error for range over limit")
	}
}

func TestIsToday(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 01:30 UTC on the 11th is still the 10th in New York.
	now := time.Date(2026, 6, 11, 1, 30, 0, 0, time.UTC)
	if !IsToday("2026-06-10", loc, now) {
		t.Error("expected 2026-06-10 to be today in New York")
	}
	if IsToday("2026-06-11", loc, now) {
		t.Error("expected 2026-06-11 to not be today in New York")
	}
}
