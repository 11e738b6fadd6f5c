package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/salonkit/booking-engine/internal/availability"
	"github.com/salonkit/booking-engine/internal/booking"
	"github.com/salonkit/booking-engine/internal/lock"
	"github.com/salonkit/booking-engine/internal/org"
	redisclient "github.com/salonkit/booking-engine/internal/redis"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleEngineError maps engine errors onto HTTP statuses. Conflicts get an
// actionable message because they are an expected outcome of concurrent
// demand, not a bug.
func handleEngineError(w http.ResponseWriter, err error) {
	var bookingValidation *booking.ValidationError
	var availValidation *availability.ValidationError

	switch {
	case errors.As(err, &bookingValidation),
		errors.As(err, &availValidation),
		lock.IsInvalidRange(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())

	case errors.Is(err, org.ErrStaffNotFound),
		errors.Is(err, org.ErrServiceNotFound),
		errors.Is(err, booking.ErrAppointmentNotFound),
		errors.Is(err, lock.ErrLockNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, lock.ErrSlotHeld),
		errors.Is(err, redisclient.ErrMutexNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked",
			"this time is being booked by someone else, please pick another or retry shortly")

	case errors.Is(err, lock.ErrSlotTaken),
		errors.Is(err, booking.ErrTimeConflict):
		writeError(w, http.StatusConflict, "slot_unavailable",
			"this time is no longer available, please pick another")

	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())

	case errors.Is(err, booking.ErrCancellationClosed):
		writeError(w, http.StatusConflict, "cancellation_window_closed", err.Error())

	default:
		log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
