package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/salonkit/booking-engine/internal/availability"
	"github.com/salonkit/booking-engine/internal/org"
	"github.com/salonkit/booking-engine/internal/timeutil"
)

// LockReleaser lets the service drop a session's slot hold once the booking
// has committed and the hold is consumed.
type LockReleaser interface {
	ReleaseSession(ctx context.Context, orgID uuid.UUID, sessionID string) error
}

type Service struct {
	repo  Repository
	dir   org.Directory
	locks LockReleaser
	rnd   io.Reader
	now   func() time.Time
}

func NewService(repo Repository, dir org.Directory, locks LockReleaser) *Service {
	return &Service{
		repo:  repo,
		dir:   dir,
		locks: locks,
		rnd:   rand.Reader,
		now:   time.Now,
	}
}

type CreateInput struct {
	OrgID         uuid.UUID
	StaffID       uuid.UUID
	Date          string
	StartMin      int
	ServiceIDs    []uuid.UUID
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Source        Source
	SessionID     string
	Notes         string
}

type CreateResult struct {
	AppointmentID    uuid.UUID
	ConfirmationCode string
	CustomerID       uuid.UUID
}

// Create books an appointment. The slot lock held by the client is advisory;
// this is the authoritative check, re-validating overlap against committed
// state inside one all-or-nothing transaction. Staff-initiated bookings may
// skip the lock step entirely and still go through the same path.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if err := s.validateCreate(&in); err != nil {
		return nil, err
	}

	staff, err := s.dir.GetStaff(ctx, in.StaffID)
	if err != nil {
		return nil, err
	}
	if staff.OrgID != in.OrgID {
		// Cross-organization reference is a security-relevant mismatch,
		// reported the same as a missing staff member.
		return nil, org.ErrStaffNotFound
	}

	services, err := s.dir.GetServices(ctx, in.OrgID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	settings, err := s.dir.GetSettings(ctx, in.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	slotLen := availability.RequiredSlotLength(services, settings.SlotIncrementMin)
	endMin := in.StartMin + slotLen
	if endMin > timeutil.MinutesPerDay {
		return nil, validationError("appointment does not fit within the day")
	}

	status := StatusConfirmed
	if in.Source == SourceOnline {
		status = StatusPending
	}

	var result CreateResult

	err = s.repo.InTx(ctx, func(tx Repository) error {
		existing, err := tx.ListActiveByStaffDate(ctx, in.StaffID, in.Date)
		if err != nil {
			return fmt.Errorf("list active appointments: %w", err)
		}
		buffer := settings.BufferBetweenBookingsMin
		for i := range existing {
			if timeutil.Overlaps(in.StartMin, endMin, existing[i].StartMin-buffer, existing[i].EndMin+buffer) {
				return ErrTimeConflict
			}
		}

		customer, err := tx.UpsertCustomerByPhone(ctx, in.OrgID, in.CustomerName, in.CustomerPhone, in.CustomerEmail)
		if err != nil {
			return err
		}

		code, err := s.uniqueCode(ctx, tx, in.OrgID)
		if err != nil {
			return err
		}

		staffID := in.StaffID
		appt := &Appointment{
			ID:               uuid.New(),
			OrgID:            in.OrgID,
			CustomerID:       customer.ID,
			StaffID:          &staffID,
			Date:             in.Date,
			StartMin:         in.StartMin,
			EndMin:           endMin,
			Status:           status,
			ConfirmationCode: code,
			Source:           in.Source,
			Notes:            in.Notes,
			Items:            lineItems(services),
		}
		if err := tx.Insert(ctx, appt); err != nil {
			return err
		}

		result = CreateResult{
			AppointmentID:    appt.ID,
			ConfirmationCode: code,
			CustomerID:       customer.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The hold served its purpose; reclaiming it eagerly frees the range for
	// other sessions sooner than the sweep would. A failure here is only a
	// delayed cleanup, never a failed booking.
	if in.SessionID != "" && s.locks != nil {
		if err := s.locks.ReleaseSession(ctx, in.OrgID, in.SessionID); err != nil {
			log.Warn().Err(err).Str("session_id", in.SessionID).Msg("release slot lock after booking")
		}
	}

	return &result, nil
}

func (s *Service) validateCreate(in *CreateInput) error {
	if _, err := timeutil.ParseDate(in.Date); err != nil {
		return validationError("invalid date: %v", err)
	}
	if in.StartMin < 0 || in.StartMin >= timeutil.MinutesPerDay {
		return validationError("start time out of range")
	}
	if len(in.ServiceIDs) == 0 {
		return validationError("at least one service is required")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return validationError("customer name is required")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return validationError("customer phone is required")
	}
	switch in.Source {
	case SourceOnline, SourceWalkIn, SourceStaff, SourcePhone:
	case "":
		in.Source = SourceOnline
	default:
		return validationError("unknown booking source %q", in.Source)
	}
	return nil
}

func lineItems(services []org.Service) []LineItem {
	items := make([]LineItem, 0, len(services))
	for _, svc := range services {
		items = append(items, LineItem{
			ID:          uuid.New(),
			ServiceID:   svc.ID,
			Name:        svc.Name,
			PriceCents:  svc.PriceCents,
			DurationMin: svc.DurationMin,
		})
	}
	return items
}

func (s *Service) uniqueCode(ctx context.Context, repo Repository, orgID uuid.UUID) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(s.rnd)
		if err != nil {
			return "", err
		}
		exists, err := repo.CodeExists(ctx, orgID, code)
		if err != nil {
			return "", fmt.Errorf("check confirmation code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

type RescheduleInput struct {
	OrgID         uuid.UUID
	AppointmentID uuid.UUID
	Date          string
	StartMin      int
	RescheduledBy string
}

// Reschedule moves an appointment to a new range, keeping its identity and
// confirmation code. The new range goes through the same overlap validation
// as creation; client-supplied slot data is never trusted.
func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (*Appointment, error) {
	if _, err := timeutil.ParseDate(in.Date); err != nil {
		return nil, validationError("invalid date: %v", err)
	}
	if in.StartMin < 0 || in.StartMin >= timeutil.MinutesPerDay {
		return nil, validationError("start time out of range")
	}

	appt, err := s.repo.GetByID(ctx, in.OrgID, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if IsTerminal(appt.Status) {
		return nil, ErrInvalidTransition
	}
	if appt.StaffID == nil {
		return nil, validationError("appointment has no assigned staff")
	}

	duration := appt.EndMin - appt.StartMin
	endMin := in.StartMin + duration
	if endMin > timeutil.MinutesPerDay {
		return nil, validationError("appointment does not fit within the day")
	}

	settings, err := s.dir.GetSettings(ctx, in.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var updated *Appointment
	err = s.repo.InTx(ctx, func(tx Repository) error {
		existing, err := tx.ListActiveByStaffDate(ctx, *appt.StaffID, in.Date)
		if err != nil {
			return fmt.Errorf("list active appointments: %w", err)
		}
		buffer := settings.BufferBetweenBookingsMin
		for i := range existing {
			if existing[i].ID == appt.ID {
				continue
			}
			if timeutil.Overlaps(in.StartMin, endMin, existing[i].StartMin-buffer, existing[i].EndMin+buffer) {
				return ErrTimeConflict
			}
		}

		entry := Reschedule{
			FromDate:      appt.Date,
			FromStartMin:  appt.StartMin,
			FromEndMin:    appt.EndMin,
			ToDate:        in.Date,
			ToStartMin:    in.StartMin,
			ToEndMin:      endMin,
			RescheduledBy: in.RescheduledBy,
			RescheduledAt: s.now(),
		}
		updated, err = tx.Reschedule(ctx, appt.ID, in.Date, in.StartMin, endMin, entry)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The appointment went terminal between the read and the update.
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

// UpdateStatus advances an appointment along the lifecycle. Unknown target
// statuses are rejected, never coerced to a default.
func (s *Service) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, to Status) (*Appointment, error) {
	if !ValidStatus(to) {
		return nil, validationError("unknown status %q", to)
	}

	appt, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, id, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost a race with a concurrent transition.
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

type CancelInput struct {
	OrgID         uuid.UUID
	AppointmentID uuid.UUID
	CancelledBy   CancelActor
	Reason        string
}

// Cancel marks an appointment cancelled. Customer-initiated cancellation is
// refused once inside the organization's cancellation window; staff and
// system cancellations are not subject to it.
func (s *Service) Cancel(ctx context.Context, in CancelInput) (*Appointment, error) {
	switch in.CancelledBy {
	case CancelledByCustomer, CancelledByStaff, CancelledBySystem:
	default:
		return nil, validationError("unknown cancellation actor %q", in.CancelledBy)
	}

	appt, err := s.repo.GetByID(ctx, in.OrgID, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	if in.CancelledBy == CancelledByCustomer {
		settings, err := s.dir.GetSettings(ctx, in.OrgID)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		if withinCancellationWindow(appt, settings, s.now()) {
			return nil, ErrCancellationClosed
		}
	}

	updated, err := s.repo.Cancel(ctx, appt.ID, appt.Status, in.CancelledBy, in.Reason, s.now())
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

func withinCancellationWindow(appt *Appointment, settings org.Settings, now time.Time) bool {
	if settings.CancellationWindowHours <= 0 {
		return false
	}
	day, err := timeutil.ParseDate(appt.Date)
	if err != nil {
		return false
	}
	loc := settings.Location()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, appt.StartMin, 0, 0, loc)
	cutoff := start.Add(-time.Duration(settings.CancellationWindowHours) * time.Hour)
	return now.After(cutoff)
}

// GetByCode supports public lookup of a booking by its confirmation code.
func (s *Service) GetByCode(ctx context.Context, orgID uuid.UUID, code string) (*Appointment, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != codeLength {
		return nil, validationError("invalid confirmation code")
	}
	return s.repo.GetByCode(ctx, orgID, code)
}

// Get returns one appointment scoped to its organization.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, orgID, id)
}
