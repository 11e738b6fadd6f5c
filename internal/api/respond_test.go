package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salonkit/booking-engine/internal/booking"
	"github.com/salonkit/booking-engine/internal/lock"
	"github.com/salonkit/booking-engine/internal/org"
	redisclient "github.com/salonkit/booking-engine/internal/redis"
)

func TestHandleEngineError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"staff not found", org.ErrStaffNotFound, http.StatusNotFound, "not_found"},
		{"service not found", org.ErrServiceNotFound, http.StatusNotFound, "not_found"},
		{"appointment not found", booking.ErrAppointmentNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("lookup: %w", booking.ErrAppointmentNotFound), http.StatusNotFound, "not_found"},
		{"lock not found", lock.ErrLockNotFound, http.StatusNotFound, "not_found"},
		{"slot held", lock.ErrSlotHeld, http.StatusConflict, "slot_being_booked"},
		{"mutex contended", redisclient.ErrMutexNotAcquired, http.StatusConflict, "slot_being_booked"},
		{"slot taken", lock.ErrSlotTaken, http.StatusConflict, "slot_unavailable"},
		{"time conflict", booking.ErrTimeConflict, http.StatusConflict, "slot_unavailable"},
		{"invalid transition", booking.ErrInvalidTransition, http.StatusConflict, "invalid_status_transition"},
		{"cancellation closed", booking.ErrCancellationClosed, http.StatusConflict, "cancellation_window_closed"},
		{"unknown error", errors.New("pool exhausted"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleEngineError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantCode {
				t.Errorf("error code = %q, want %q", body.Error, tt.wantCode)
			}
		})
	}
}

func TestParseUUIDList(t *testing.T) {
	ids, err := parseUUIDList("8b9d2763-21f5-4a3f-9a13-2f80cddf4f4f, 9c0e3874-32f6-4b40-ab24-3f91deef5f50")
	if err != nil {
		t.Fatalf("parseUUIDList: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}

	ids, err = parseUUIDList("  ")
	if err != nil || ids != nil {
		t.Errorf("blank input: got %v, %v; want nil, nil", ids, err)
	}

	if _, err := parseUUIDList("not-a-uuid"); err == nil {
		t.Error("expected error for malformed id")
	}
}
