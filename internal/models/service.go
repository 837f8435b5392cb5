package models

import "time"

const DefaultCurrency = "TRY"

type Service struct {
	ServiceID       string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}
