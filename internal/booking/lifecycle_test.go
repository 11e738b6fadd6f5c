package booking

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"confirmed to checked in", StatusConfirmed, StatusCheckedIn, true},
		{"checked in to in progress", StatusCheckedIn, StatusInProgress, true},
		{"in progress to completed", StatusInProgress, StatusCompleted, true},
		{"no skipping ahead", StatusPending, StatusCheckedIn, false},
		{"no going back", StatusConfirmed, StatusPending, false},
		{"pending to completed", StatusPending, StatusCompleted, false},
		{"cancel from pending", StatusPending, StatusCancelled, true},
		{"cancel from in progress", StatusInProgress, StatusCancelled, true},
		{"no show from confirmed", StatusConfirmed, StatusNoShow, true},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"no show is terminal", StatusNoShow, StatusCancelled, false},
		{"unknown from", Status("archived"), StatusConfirmed, false},
		{"unknown to", StatusPending, Status("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow,
	} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []Status{"", "archived", "PENDING", "done"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	}
	for _, s := range []Status{
		StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow,
	} {
		if got := IsTerminal(s); got != terminal[s] {
			t.Errorf("IsTerminal(%q) = %v, want %v", s, got, terminal[s])
		}
	}
}
