package store

import (
	"time"

	"randevulu/internal/models"
)

const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentApproved  = "appointment.approved"
	EventAppointmentRejected  = "appointment.rejected"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
	EventAppointmentDeleted   = "appointment.deleted"
)

var actionEvents = map[string]string{
	ActionApprove:  EventAppointmentApproved,
	ActionReject:   EventAppointmentRejected,
	ActionCancel:   EventAppointmentCancelled,
	ActionComplete: EventAppointmentCompleted,
}

// EventForAction names the outbox event written for a status transition.
func EventForAction(action string) string {
	return actionEvents[action]
}

// AppointmentEvent is the outbox payload for every appointment event.
type AppointmentEvent struct {
	AppointmentID string    `json:"appointment_id"`
	TenantID      string    `json:"tenant_id"`
	CustomerID    string    `json:"customer_id"`
	ServiceID     *string   `json:"service_id,omitempty"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewAppointmentEvent(appointment models.Appointment, occurredAt time.Time) AppointmentEvent {
	return AppointmentEvent{
		AppointmentID: appointment.AppointmentID,
		TenantID:      appointment.TenantID,
		CustomerID:    appointment.CustomerID,
		ServiceID:     appointment.ServiceID,
		Status:        appointment.Status,
		StartTime:     appointment.StartTime,
		EndTime:       appointment.EndTime,
		CreatedBy:     appointment.CreatedBy,
		OccurredAt:    occurredAt,
	}
}
