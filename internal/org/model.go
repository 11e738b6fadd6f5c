package org

import (
	"time"

	"github.com/google/uuid"
)

type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "active"
	ServiceInactive ServiceStatus = "inactive"
)

type Staff struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service is a bookable catalog entry. PriceCents is denormalized into
// appointment line items at booking time.
type Service struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	Name        string
	PriceCents  int64
	DurationMin int
	BufferMin   int
	Status      ServiceStatus
}

type Customer struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// Settings are the organization-level booking knobs consumed by the engine.
type Settings struct {
	SlotIncrementMin         int
	MinAdvanceBookingMin     int
	BufferBetweenBookingsMin int
	AllowOnlineBooking       bool
	CancellationWindowHours  int
	Timezone                 string
}

// DefaultSettings is used when an organization has no settings row yet.
var DefaultSettings = Settings{
	SlotIncrementMin:         15,
	MinAdvanceBookingMin:     60,
	BufferBetweenBookingsMin: 0,
	AllowOnlineBooking:       true,
	CancellationWindowHours:  24,
	Timezone:                 "UTC",
}

// Location resolves the organization timezone, falling back to UTC when the
// stored name is unknown.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
