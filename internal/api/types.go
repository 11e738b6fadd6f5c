package api

import (
	"time"

	"github.com/google/uuid"
)

type SlotResponse struct {
	StaffID   uuid.UUID `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

type DateAvailabilityResponse struct {
	Date            string `json:"date"`
	HasAvailability bool   `json:"has_availability"`
	SlotCount       int    `json:"slot_count"`
}

type AcquireLockRequest struct {
	OrgID     string `json:"org_id"`
	StaffID   string `json:"staff_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SessionID string `json:"session_id"`
}

type LockResponse struct {
	LockID    uuid.UUID `json:"lock_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CustomerPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type CreateAppointmentRequest struct {
	OrgID      string          `json:"org_id"`
	StaffID    string          `json:"staff_id"`
	Date       string          `json:"date"`
	StartTime  string          `json:"start_time"`
	ServiceIDs []string        `json:"service_ids"`
	Customer   CustomerPayload `json:"customer"`
	Source     string          `json:"source,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

type CreateAppointmentResponse struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	CustomerID       uuid.UUID `json:"customer_id"`
}

type RescheduleRequest struct {
	OrgID         string `json:"org_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	RescheduledBy string `json:"rescheduled_by"`
}

type UpdateStatusRequest struct {
	OrgID  string `json:"org_id"`
	Status string `json:"status"`
}

type CancelRequest struct {
	OrgID       string `json:"org_id"`
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

type LineItemResponse struct {
	ServiceID   uuid.UUID `json:"service_id"`
	Name        string    `json:"name"`
	PriceCents  int64     `json:"price_cents"`
	DurationMin int       `json:"duration_min"`
}

type AppointmentResponse struct {
	ID               uuid.UUID          `json:"id"`
	OrgID            uuid.UUID          `json:"org_id"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	StaffID          *uuid.UUID         `json:"staff_id,omitempty"`
	Date             string             `json:"date"`
	StartTime        string             `json:"start_time"`
	EndTime          string             `json:"end_time"`
	Status           string             `json:"status"`
	ConfirmationCode string             `json:"confirmation_code"`
	Source           string             `json:"source"`
	RescheduleCount  int                `json:"reschedule_count"`
	Items            []LineItemResponse `json:"items,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
