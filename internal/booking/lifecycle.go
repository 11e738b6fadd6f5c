package booking

// transitions is the forward edge per state. Cancellation and no-show are
// handled separately: both are reachable from any pre-completion state.
var transitions = map[Status]Status{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusCheckedIn,
	StatusCheckedIn:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// ValidStatus reports whether s is a known lifecycle status. Unknown values
// are rejected, never defaulted.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransition reports whether from → to is a legal lifecycle step.
// Transitions are one-directional; there is no un-completing.
func CanTransition(from, to Status) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if IsTerminal(from) {
		return false
	}
	if to == StatusCancelled || to == StatusNoShow {
		return true
	}
	return transitions[from] == to
}
