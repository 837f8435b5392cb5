package models

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
}

func (a Actor) IsBusiness() bool {
	return (a.Role == RoleOwner || a.Role == RoleStaff) && a.TenantID != ""
}

func (a Actor) IsAnonymous() bool {
	return a.UserID == ""
}
