package models

import "time"

type Appointment struct {
	AppointmentID string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	CustomerID    string    `json:"customer_id"`
	ServiceID     *string   `json:"service_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
	CreatedBy     *string   `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AppointmentDetail is an appointment joined with the names the dashboards show.
type AppointmentDetail struct {
	Appointment
	CustomerName    string   `json:"customer_name,omitempty"`
	CustomerPhone   *string  `json:"customer_phone,omitempty"`
	TenantName      string   `json:"tenant_name,omitempty"`
	ServiceName     *string  `json:"service_name,omitempty"`
	ServiceDuration *int     `json:"service_duration_minutes,omitempty"`
	ServicePrice    *float64 `json:"service_price,omitempty"`
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

func IsAppointmentStatus(value string) bool {
	switch value {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}
