package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

type Source string

const (
	SourceOnline Source = "online"
	SourceWalkIn Source = "walk_in"
	SourceStaff  Source = "staff"
	SourcePhone  Source = "phone"
)

type CancelActor string

const (
	CancelledByCustomer CancelActor = "customer"
	CancelledByStaff    CancelActor = "staff"
	CancelledBySystem   CancelActor = "system"
)

// LineItem is a service snapshot taken at booking time. Later catalog edits
// do not touch it.
type LineItem struct {
	ID          uuid.UUID
	ServiceID   uuid.UUID
	Name        string
	PriceCents  int64
	DurationMin int
}

// Reschedule is one entry of an appointment's reschedule history, stored as
// JSONB alongside the appointment row.
type Reschedule struct {
	FromDate      string    `json:"from_date"`
	FromStartMin  int       `json:"from_start_min"`
	FromEndMin    int       `json:"from_end_min"`
	ToDate        string    `json:"to_date"`
	ToStartMin    int       `json:"to_start_min"`
	ToEndMin      int       `json:"to_end_min"`
	RescheduledBy string    `json:"rescheduled_by"`
	RescheduledAt time.Time `json:"rescheduled_at"`
}

// Appointment keeps its identity and confirmation code for life; status and
// reschedules mutate it, nothing hard-deletes it.
//
// StaffID is nil once the staff member has been removed; the record stays
// for history and callers must handle the missing reference explicitly.
type Appointment struct {
	ID                uuid.UUID
	OrgID             uuid.UUID
	CustomerID        uuid.UUID
	StaffID           *uuid.UUID
	Date              string
	StartMin          int
	EndMin            int
	Status            Status
	ConfirmationCode  string
	Source            Source
	Notes             string
	CancelledBy       CancelActor
	CancelReason      string
	CancelledAt       *time.Time
	RescheduleCount   int
	RescheduleHistory []Reschedule
	Items             []LineItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Blocks reports whether the appointment still occupies its time range for
// availability purposes.
func (a *Appointment) Blocks() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}
