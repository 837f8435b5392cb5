package models

import "time"

const (
	RoleOwner    = "owner"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

type Profile struct {
	ProfileID string    `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	TenantID  *string   `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IsBusiness reports whether the profile acts on behalf of a tenant.
func (p Profile) IsBusiness() bool {
	return p.Role == RoleOwner || p.Role == RoleStaff
}

type Account struct {
	AccountID string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
