package schedule

import (
	"testing"
	"time"
)

func defaultWeekly() WeeklySchedule {
	return WeeklySchedule{
		time.Monday:    {StartMin: 540, EndMin: 1080, Available: true}, // 09:00-18:00
		time.Tuesday:   {StartMin: 540, EndMin: 1080, Available: true},
		time.Wednesday: {StartMin: 600, EndMin: 900, Available: true}, // 10:00-15:00
		time.Saturday:  {StartMin: 540, EndMin: 780, Available: false},
	}
}

func TestResolveDay(t *testing.T) {
	weekly := defaultWeekly()

	tests := []struct {
		name     string
		weekday  time.Weekday
		override *Override
		overtime []Overtime
		want     Resolved
	}{
		{
			name:    "default hours stand without override",
			weekday: time.Monday,
			want:    Resolved{Available: true, Windows: []Window{{Start: 540, End: 1080}}},
		},
		{
			name:    "missing weekday entry means not working",
			weekday: time.Sunday,
			want:    Resolved{Available: false},
		},
		{
			name:    "unavailable weekday entry means not working",
			weekday: time.Saturday,
			want:    Resolved{Available: false},
		},
		{
			name:     "custom hours replace the default window",
			weekday:  time.Monday,
			override: &Override{Type: OverrideCustomHours, StartMin: 720, EndMin: 960},
			want:     Resolved{Available: true, Windows: []Window{{Start: 720, End: 960}}},
		},
		{
			name:     "day off suppresses the default window",
			weekday:  time.Monday,
			override: &Override{Type: OverrideDayOff},
			want:     Resolved{Available: false},
		},
		{
			name:     "time off suppresses the default window",
			weekday:  time.Tuesday,
			override: &Override{Type: OverrideTimeOff, Reason: "dentist"},
			want:     Resolved{Available: false},
		},
		{
			name:     "overtime is additive to default hours",
			weekday:  time.Wednesday,
			overtime: []Overtime{{StartMin: 1080, EndMin: 1200}},
			want:     Resolved{Available: true, Windows: []Window{{Start: 600, End: 900}, {Start: 1080, End: 1200}}},
		},
		{
			name:     "overtime applies on a day off",
			weekday:  time.Monday,
			override: &Override{Type: OverrideDayOff},
			overtime: []Overtime{{StartMin: 1080, EndMin: 1200}}, // 18:00-20:00
			want:     Resolved{Available: true, Windows: []Window{{Start: 1080, End: 1200}}},
		},
		{
			name:     "contiguous overtime merges with the default window",
			weekday:  time.Monday,
			overtime: []Overtime{{StartMin: 1080, EndMin: 1200}},
			want:     Resolved{Available: true, Windows: []Window{{Start: 540, End: 1200}}},
		},
		{
			name:     "inverted overtime entry is ignored",
			weekday:  time.Sunday,
			overtime: []Overtime{{StartMin: 900, EndMin: 600}},
			want:     Resolved{Available: false},
		},
		{
			name:     "inverted custom hours leave no window",
			weekday:  time.Monday,
			override: &Override{Type: OverrideCustomHours, StartMin: 960, EndMin: 720},
			want:     Resolved{Available: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDay(tt.weekday, weekly, tt.override, tt.overtime)
			if got.Available != tt.want.Available {
				t.Fatalf("Available = %v, want %v", got.Available, tt.want.Available)
			}
			if len(got.Windows) != len(tt.want.Windows) {
				t.Fatalf("windows = %v, want %v", got.Windows, tt.want.Windows)
			}
			for i := range got.Windows {
				if got.Windows[i] != tt.want.Windows[i] {
					t.Errorf("windows[%d] = %v, want %v", i, got.Windows[i], tt.want.Windows[i])
				}
			}
		})
	}
}

func TestMergeWindows(t *testing.T) {
	tests := []struct {
		name string
		in   []Window
		want []Window
	}{
		{name: "empty", in: nil, want: nil},
		{
			name: "disjoint stay separate",
			in:   []Window{{540, 720}, {780, 900}},
			want: []Window{{540, 720}, {780, 900}},
		},
		{
			name: "overlapping coalesce",
			in:   []Window{{540, 720}, {660, 900}},
			want: []Window{{540, 900}},
		},
		{
			name: "contiguous coalesce",
			in:   []Window{{540, 720}, {720, 900}},
			want: []Window{{540, 900}},
		},
		{
			name: "unsorted input",
			in:   []Window{{780, 900}, {540, 600}},
			want: []Window{{540, 600}, {780, 900}},
		},
		{
			name: "contained window absorbed",
			in:   []Window{{540, 900}, {600, 660}},
			want: []Window{{540, 900}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeWindows(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("MergeWindows(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("merged[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
