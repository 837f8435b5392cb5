package store

import (
	"context"
	"encoding/json"
	"time"

	"randevulu/internal/models"
)

// Scope restricts an appointment lookup or mutation. A row matches when it
// belongs to TenantID or was created by CreatedBy; empty fields never match.
type Scope struct {
	TenantID  string
	CreatedBy string
}

type CreateAppointmentInput struct {
	TenantID   string
	CustomerID string
	ServiceID  string
	StartTime  time.Time
	EndTime    time.Time
	Notes      string
	CreatedBy  string
	CreatedAt  time.Time
}

type TransitionInput struct {
	AppointmentID string
	Scope         Scope
	Action        string
	OccurredAt    time.Time
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, input CreateAppointmentInput) (models.Appointment, error)
	GetAppointment(ctx context.Context, scope Scope, appointmentID string) (models.Appointment, error)
	ListAppointmentsByTenant(ctx context.Context, tenantID string) ([]models.AppointmentDetail, error)
	ListAppointmentsByCreator(ctx context.Context, userID string) ([]models.AppointmentDetail, error)
	TransitionAppointment(ctx context.Context, input TransitionInput) (models.Appointment, error)
	DeleteAppointment(ctx context.Context, tenantID, appointmentID string) (models.Appointment, error)
	ListAppointmentStarts(ctx context.Context, tenantID string, from, to time.Time) ([]time.Time, error)
}

type CreateTenantInput struct {
	Name             string
	SubscriptionTier string
	Settings         models.TenantSettings
	OwnerID          string
	OwnerName        string
}

type UpdateTenantInput struct {
	TenantID         string
	Name             string
	SubscriptionTier string
	Settings         models.TenantSettings
}

type TenantStore interface {
	GetTenant(ctx context.Context, tenantID string) (models.Tenant, error)
	ListTenants(ctx context.Context, city string) ([]models.Tenant, error)
	CreateTenantWithOwner(ctx context.Context, input CreateTenantInput) (models.Tenant, models.Profile, error)
	UpdateTenant(ctx context.Context, input UpdateTenantInput) (models.Tenant, error)
}

type UpdateProfileInput struct {
	ProfileID string
	FullName  string
	Phone     string
}

type ProfileStore interface {
	GetProfile(ctx context.Context, profileID string) (models.Profile, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (models.Profile, error)
	GetTenantOwner(ctx context.Context, tenantID string) (models.Profile, error)
}

type CreateCustomerInput struct {
	TenantID string
	FullName string
	Phone    string
	Email    string
	Notes    string
}

type CustomerStore interface {
	ListCustomers(ctx context.Context, tenantID string) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (models.Customer, error)
	// FindOrCreateCustomer returns the customer with the same tenant and
	// phone, creating it when absent. The bool is true when a row was created.
	FindOrCreateCustomer(ctx context.Context, input CreateCustomerInput) (models.Customer, bool, error)
	DeleteCustomer(ctx context.Context, tenantID, customerID string) error
}

type CreateServiceInput struct {
	TenantID        string
	Name            string
	DurationMinutes int
	Price           float64
	Currency        string
}

type UpdateServiceInput struct {
	TenantID        string
	ServiceID       string
	Name            *string
	DurationMinutes *int
	Price           *float64
}

type ServiceStore interface {
	ListServices(ctx context.Context, tenantID string) ([]models.Service, error)
	GetService(ctx context.Context, tenantID, serviceID string) (models.Service, error)
	CreateService(ctx context.Context, input CreateServiceInput) (models.Service, error)
	UpdateService(ctx context.Context, input UpdateServiceInput) (models.Service, error)
	DeleteService(ctx context.Context, tenantID, serviceID string) error
}

type CreateNotificationInput struct {
	UserID               string
	Type                 string
	Title                string
	Message              string
	RelatedAppointmentID string
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, input CreateNotificationInput) (models.Notification, error)
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	// MarkAllNotificationsRead returns how many rows changed from unread to read.
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}

type CreateAccountInput struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	// TenantName creates a tenant owned by the new account when set.
	TenantName string
}

type AccountStore interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (models.Account, models.Profile, error)
	GetAccountByEmail(ctx context.Context, email string) (models.Account, string, error)
	GetPasswordHash(ctx context.Context, accountID string) (string, error)
	UpdatePasswordHash(ctx context.Context, accountID, hash string) error
	CreateSession(ctx context.Context, accountID string, expiresAt time.Time) (models.Session, error)
	GetSession(ctx context.Context, sessionID string) (models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type OutboxEvent struct {
	Seq       int64           `json:"seq"`
	EventID   string          `json:"event_id"`
	TenantID  string          `json:"tenant_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type OutboxStore interface {
	ListOutboxEvents(ctx context.Context, afterSeq int64, limit int) ([]OutboxEvent, error)
	GetRelayOffset(ctx context.Context, name string) (int64, error)
	UpdateRelayOffset(ctx context.Context, name string, seq int64) error
}

// ReminderCandidate is a confirmed appointment due for a reminder.
type ReminderCandidate struct {
	AppointmentID string
	TenantID      string
	TenantName    string
	CreatedBy     string
	StartTime     time.Time
	ServiceName   string
}

type ReminderStore interface {
	ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]ReminderCandidate, error)
	// RecordReminder returns false when a reminder was already recorded.
	RecordReminder(ctx context.Context, appointmentID string, sentAt time.Time) (bool, error)
}

type Store interface {
	AppointmentStore
	TenantStore
	ProfileStore
	CustomerStore
	ServiceStore
	NotificationStore
	AccountStore
	OutboxStore
	ReminderStore
}
