package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salonkit/booking-engine/internal/availability"
	"github.com/salonkit/booking-engine/internal/booking"
	"github.com/salonkit/booking-engine/internal/lock"
	"github.com/salonkit/booking-engine/internal/timeutil"
)

func getSlotsHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		orgID, err := uuid.Parse(q.Get("org_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}
		serviceIDs, err := parseUUIDList(q.Get("service_ids"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_ids", err.Error())
			return
		}
		var staffID *uuid.UUID
		if s := q.Get("staff_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_staff_id", "staff_id must be a valid UUID")
				return
			}
			staffID = &id
		}

		slots, err := svc.GetAvailableSlots(r.Context(), availability.SlotQuery{
			OrgID:      orgID,
			Date:       q.Get("date"),
			ServiceIDs: serviceIDs,
			StaffID:    staffID,
			SessionID:  q.Get("session_id"),
		})
		if err != nil {
			handleEngineError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, SlotResponse{
				StaffID:   s.StaffID,
				StaffName: s.StaffName,
				StartTime: timeutil.MinutesToTime(s.StartMin),
				EndTime:   timeutil.MinutesToTime(s.EndMin),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getDateAvailabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		orgID, err := uuid.Parse(q.Get("org_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}
		serviceIDs, err := parseUUIDList(q.Get("service_ids"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_ids", err.Error())
			return
		}
		var staffID *uuid.UUID
		if s := q.Get("staff_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_staff_id", "staff_id must be a valid UUID")
				return
			}
			staffID = &id
		}

		days, err := svc.GetDateAvailability(r.Context(), availability.RangeQuery{
			OrgID:      orgID,
			From:       q.Get("from"),
			To:         q.Get("to"),
			ServiceIDs: serviceIDs,
			StaffID:    staffID,
		})
		if err != nil {
			handleEngineError(w, err)
			return
		}

		resp := make([]DateAvailabilityResponse, 0, len(days))
		for _, d := range days {
			resp = append(resp, DateAvailabilityResponse{
				Date:            d.Date,
				HasAvailability: d.HasAvailability,
				SlotCount:       d.SlotCount,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func acquireLockHandler(mgr *lock.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AcquireLockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		orgID, err := uuid.Parse(req.OrgID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}
		staffID, err := uuid.Parse(req.StaffID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_staff_id", "staff_id must be a valid UUID")
			return
		}
		startMin, err := timeutil.TimeToMinutes(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", err.Error())
			return
		}
		endMin, err := timeutil.TimeToMinutes(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", err.Error())
			return
		}

		held, err := mgr.Acquire(r.Context(), orgID, staffID, req.Date, startMin, endMin, req.SessionID)
		if err != nil {
			handleEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, LockResponse{
			LockID:    held.ID,
			ExpiresAt: held.ExpiresAt,
		})
	}
}

func releaseLockHandler(mgr *lock.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lockID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_lock_id", "id must be a valid UUID")
			return
		}
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
			return
		}

		if err := mgr.Release(r.Context(), lockID, sessionID); err != nil {
			handleEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func createAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		orgID, err := uuid.Parse(req.OrgID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}
		staffID, err := uuid.Parse(req.StaffID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_staff_id", "staff_id must be a valid UUID")
			return
		}
		startMin, err := timeutil.TimeToMinutes(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", err.Error())
			return
		}
		serviceIDs := make([]uuid.UUID, 0, len(req.ServiceIDs))
		for _, s := range req.ServiceIDs {
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_service_ids", "service ids must be valid UUIDs")
				return
			}
			serviceIDs = append(serviceIDs, id)
		}

		result, err := svc.Create(r.Context(), booking.CreateInput{
			OrgID:         orgID,
			StaffID:       staffID,
			Date:          req.Date,
			StartMin:      startMin,
			ServiceIDs:    serviceIDs,
			CustomerName:  req.Customer.Name,
			CustomerPhone: req.Customer.Phone,
			CustomerEmail: req.Customer.Email,
			Source:        booking.Source(req.Source),
			SessionID:     req.SessionID,
			Notes:         req.Notes,
		})
		if err != nil {
			handleEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateAppointmentResponse{
			AppointmentID:    result.AppointmentID,
			ConfirmationCode: result.ConfirmationCode,
			CustomerID:       result.CustomerID,
		})
	}
}

func rescheduleAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apptID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		orgID, err := uuid.Parse(req.OrgID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}
		startMin, err := timeutil.TimeToMinutes(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", err.Error())
			return
		}

		appt, err := svc.Reschedule(r.Context(), booking.RescheduleInput{
			OrgID:         orgID,
			AppointmentID: apptID,
			Date:          req.Date,
			StartMin:      startMin,
			RescheduledBy: req.RescheduledBy,
		})
		if err != nil {
			handleEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func updateStatusHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apptID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		orgID, err := uuid.Parse(req.OrgID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), orgID, apptID, booking.Status(req.Status))
		if err != nil {
			handleEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apptID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req CancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		orgID, err := uuid.Parse(req.OrgID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}

		appt, err := svc.Cancel(r.Context(), booking.CancelInput{
			OrgID:         orgID,
			AppointmentID: apptID,
			CancelledBy:   booking.CancelActor(req.CancelledBy),
			Reason:        req.Reason,
		})
		if err != nil {
			handleEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apptID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}
		orgID, err := uuid.Parse(r.URL.Query().Get("org_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), orgID, apptID)
		if err != nil {
			handleEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

// getAppointmentByCodeHandler supports public lookup by confirmation code,
// no authentication required.
func getAppointmentByCodeHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := uuid.Parse(r.URL.Query().Get("org_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id", "org_id must be a valid UUID")
			return
		}

		appt, err := svc.GetByCode(r.Context(), orgID, chi.URLParam(r, "code"))
		if err != nil {
			handleEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func appointmentResponse(a *booking.Appointment) AppointmentResponse {
	items := make([]LineItemResponse, 0, len(a.Items))
	for _, item := range a.Items {
		items = append(items, LineItemResponse{
			ServiceID:   item.ServiceID,
			Name:        item.Name,
			PriceCents:  item.PriceCents,
			DurationMin: item.DurationMin,
		})
	}
	return AppointmentResponse{
		ID:               a.ID,
		OrgID:            a.OrgID,
		CustomerID:       a.CustomerID,
		StaffID:          a.StaffID,
		Date:             a.Date,
		StartTime:        timeutil.MinutesToTime(a.StartMin),
		EndTime:          timeutil.MinutesToTime(a.EndMin),
		Status:           string(a.Status),
		ConfirmationCode: a.ConfirmationCode,
		Source:           string(a.Source),
		RescheduleCount:  a.RescheduleCount,
		Items:            items,
	}
}

func parseUUIDList(raw string) ([]uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
