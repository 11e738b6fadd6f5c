package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonkit/booking-engine/internal/org"
)

// Repository contains all DB interactions needed by the booking service.
// InTx runs fn against a transactional view of the same repository; every
// write inside fn commits or rolls back as one unit.
type Repository interface {
	InTx(ctx context.Context, fn func(Repository) error) error

	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Appointment, error)
	GetByCode(ctx context.Context, orgID uuid.UUID, code string) (*Appointment, error)
	CodeExists(ctx context.Context, orgID uuid.UUID, code string) (bool, error)

	// ListActiveByStaffDate returns non-cancelled, non-no-show appointments
	// for the (staff, date) timeline, ordered by start time.
	ListActiveByStaffDate(ctx context.Context, staffID uuid.UUID, date string) ([]Appointment, error)

	// UpdateStatus is a compare-and-set on the status column; it returns
	// ErrAppointmentNotFound when the appointment is missing or its status
	// no longer matches from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, from Status, by CancelActor, reason string, at time.Time) (*Appointment, error)

	// Reschedule moves the appointment and appends entry to its history. It
	// returns ErrAppointmentNotFound when the appointment is missing or has
	// reached a terminal status since the caller last read it.
	Reschedule(ctx context.Context, id uuid.UUID, date string, startMin, endMin int, entry Reschedule) (*Appointment, error)

	// UpsertCustomerByPhone matches an existing customer by (org, phone) or
	// creates one.
	UpsertCustomerByPhone(ctx context.Context, orgID uuid.UUID, name, phone, email string) (*org.Customer, error)
}
