package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"randevulu/internal/booking"
	"randevulu/internal/changes"
	"randevulu/internal/models"
	"randevulu/internal/validate"
)

type appointmentRequest struct {
	TenantID   string `json:"tenant_id"`
	CustomerID string `json:"customer_id"`
	ServiceID  string `json:"service_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Notes      string `json:"notes"`
}

type bookingRequest struct {
	TenantID      string `json:"tenant_id"`
	ServiceID     string `json:"service_id"`
	Date          string `json:"date"`
	Slot          string `json:"slot"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Notes         string `json:"notes"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	tenantID := strings.TrimSpace(query.Get("tenant_id"))
	date := strings.TrimSpace(query.Get("date"))
	slots, err := h.bookings.Availability(r.Context(), tenantID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenant_id": tenantID,
		"date":      date,
		"slots":     slots,
	})
}

func (h *Handler) handleAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		appointments, err := h.bookings.ListByTenant(r.Context(), actor)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": appointments})
	case http.MethodPost:
		var req appointmentRequest
		if !decodeRequest(w, r, &req, false) {
			return
		}
		var fields []validate.FieldError
		start := h.parseTimestamp("start_time", req.StartTime, &fields)
		end := h.parseTimestamp("end_time", req.EndTime, &fields)
		if len(fields) > 0 {
			h.fail(w, r, &validate.Error{Fields: fields})
			return
		}
		appointment, set, err := h.bookings.Create(r.Context(), actor, booking.CreateInput{
			TenantID:   req.TenantID,
			CustomerID: req.CustomerID,
			ServiceID:  req.ServiceID,
			StartTime:  start,
			EndTime:    end,
			Notes:      req.Notes,
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeAppointment(w, http.StatusCreated, appointment, set)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleMyAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	appointments, err := h.bookings.ListMine(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": appointments})
}

func (h *Handler) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req bookingRequest
	if !decodeRequest(w, r, &req, false) {
		return
	}
	appointment, set, err := h.bookings.Book(r.Context(), actor, booking.BookInput(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeAppointment(w, http.StatusCreated, appointment, set)
}

// handleAppointmentActions serves DELETE /api/appointments/{id} and
// POST /api/appointments/{id}/{approve|reject|cancel|complete}.
func (h *Handler) handleAppointmentActions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	appointmentID, action := pathID(r.URL.Path, "/api/appointments/")
	if appointmentID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if action == "" {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		set, err := h.bookings.Delete(r.Context(), actor, appointmentID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"changes": changeList(set)})
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var (
		appointment models.Appointment
		set         changes.Set
		err         error
	)
	switch action {
	case "approve":
		appointment, set, err = h.bookings.Approve(r.Context(), actor, appointmentID)
	case "reject":
		var req rejectRequest
		if !decodeRequest(w, r, &req, true) {
			return
		}
		appointment, set, err = h.bookings.Reject(r.Context(), actor, appointmentID, req.Reason)
	case "cancel":
		appointment, set, err = h.bookings.Cancel(r.Context(), actor, appointmentID)
	case "complete":
		appointment, set, err = h.bookings.Complete(r.Context(), actor, appointmentID)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeAppointment(w, http.StatusOK, appointment, set)
}

// parseTimestamp leaves empty values to the appointment rules, which report
// them as required.
func (h *Handler) parseTimestamp(field, value string, fields *[]validate.FieldError) time.Time {
	if strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	parsed, err := validate.Timestamp(field, value, h.location)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			*fields = append(*fields, verr.Fields...)
		}
		return time.Time{}
	}
	return parsed
}

func writeAppointment(w http.ResponseWriter, status int, appointment models.Appointment, set changes.Set) {
	writeJSON(w, status, map[string]interface{}{
		"appointment": appointment,
		"changes":     changeList(set),
	})
}
