package models

import "time"

const (
	NotificationAppointmentCreated  = "appointment_created"
	NotificationAppointmentApproved = "appointment_approved"
	NotificationAppointmentRejected = "appointment_rejected"
	NotificationAppointmentReminder = "appointment_reminder"
	NotificationSystem              = "system"
)

type Notification struct {
	NotificationID       string    `json:"id"`
	UserID               string    `json:"user_id"`
	Type                 string    `json:"type"`
	Title                string    `json:"title"`
	Message              string    `json:"message"`
	RelatedAppointmentID *string   `json:"related_appointment_id"`
	Read                 bool      `json:"read"`
	CreatedAt            time.Time `json:"created_at"`
}

func IsNotificationType(value string) bool {
	switch value {
	case NotificationAppointmentCreated, NotificationAppointmentApproved, NotificationAppointmentRejected,
		NotificationAppointmentReminder, NotificationSystem:
		return true
	default:
		return false
	}
}
