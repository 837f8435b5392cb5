package models

import "time"

type Customer struct {
	CustomerID string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	FullName   string    `json:"full_name"`
	Phone      *string   `json:"phone"`
	Email      *string   `json:"email"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}
