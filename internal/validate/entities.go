package validate

import (
	"maps"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"randevulu/internal/models"
)

const (
	AccountBusiness   = "business"
	AccountIndividual = "individual"
)

type RegistrationInput struct {
	FullName    string
	Email       string
	Password    string
	AccountType string
}

func Registration(in RegistrationInput) (RegistrationInput, error) {
	var c collector
	out := RegistrationInput{
		FullName:    c.name("full_name", in.FullName),
		Email:       c.email("email", in.Email, true),
		Password:    in.Password,
		AccountType: strings.TrimSpace(in.AccountType),
	}
	if out.Email != "" && !hasAllowedDomain(out.Email) {
		c.add("email", KindDisallowedEmailDomain, "only Gmail or Hotmail addresses are accepted")
	}
	c.password("password", in.Password)
	if out.AccountType == "" {
		out.AccountType = AccountIndividual
	}
	if out.AccountType != AccountBusiness && out.AccountType != AccountIndividual {
		c.add("account_type", KindInvalidEnum, "account_type must be business or individual")
	}
	return out, c.err()
}

func hasAllowedDomain(email string) bool {
	for _, domain := range registrationDomains {
		if strings.HasSuffix(email, domain) {
			return true
		}
	}
	return false
}

type LoginInput struct {
	Email    string
	Password string
}

func Login(in LoginInput) (LoginInput, error) {
	var c collector
	out := LoginInput{Email: c.email("email", in.Email, true), Password: in.Password}
	if in.Password == "" {
		c.add("password", KindRequired, "password is required")
	}
	return out, c.err()
}

// PasswordReset applies the registration strength rules to a new password.
func PasswordReset(password string) error {
	var c collector
	c.password("password", password)
	return c.err()
}

type ProfileInput struct {
	FullName string
	Phone    string
	Role     string
	TenantID string
}

// Profile validates a profile including the role/tenant invariant: business
// roles need a tenant, customers must not have one.
func Profile(in ProfileInput) (ProfileInput, error) {
	var c collector
	out := ProfileInput{
		FullName: c.name("full_name", in.FullName),
		Phone:    c.phone("phone", in.Phone),
		Role:     strings.TrimSpace(in.Role),
		TenantID: c.uuid("tenant_id", in.TenantID, false),
	}
	switch out.Role {
	case models.RoleOwner, models.RoleStaff:
		if strings.TrimSpace(in.TenantID) == "" {
			c.add("tenant_id", KindInvalidRole, out.Role+" profiles must belong to a tenant")
		}
	case models.RoleCustomer:
		if strings.TrimSpace(in.TenantID) != "" {
			c.add("tenant_id", KindInvalidRole, "customer profiles cannot belong to a tenant")
		}
	default:
		c.add("role", KindInvalidEnum, "role must be owner, staff or customer")
	}
	return out, c.err()
}

type CustomerInput struct {
	TenantID string
	FullName string
	Phone    string
	Email    string
	Notes    string
}

func Customer(in CustomerInput) (CustomerInput, error) {
	var c collector
	out := CustomerInput{
		TenantID: c.uuid("tenant_id", in.TenantID, true),
		FullName: c.name("full_name", in.FullName),
		Phone:    c.phone("phone", in.Phone),
		Email:    c.email("email", in.Email, false),
		Notes:    c.maxLen("notes", in.Notes, MaxNotesLength),
	}
	return out, c.err()
}

type AppointmentInput struct {
	TenantID   string
	CustomerID string
	ServiceID  string
	StartTime  time.Time
	EndTime    time.Time
	Notes      string
	CreatedBy  string
}

// Appointment requires a start strictly after now and an end strictly after
// the start.
func Appointment(in AppointmentInput, now time.Time) (AppointmentInput, error) {
	var c collector
	out := AppointmentInput{
		TenantID:   c.uuid("tenant_id", in.TenantID, true),
		CustomerID: c.uuid("customer_id", in.CustomerID, true),
		ServiceID:  c.uuid("service_id", in.ServiceID, false),
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Notes:      c.maxLen("notes", in.Notes, MaxNotesLength),
		CreatedBy:  c.uuid("created_by", in.CreatedBy, false),
	}
	switch {
	case in.StartTime.IsZero():
		c.add("start_time", KindRequired, "start_time is required")
	case !in.StartTime.After(now):
		c.add("start_time", KindPastStartTime, "start_time must be in the future")
	}
	switch {
	case in.EndTime.IsZero():
		c.add("end_time", KindRequired, "end_time is required")
	case !in.StartTime.IsZero() && !in.EndTime.After(in.StartTime):
		c.add("end_time", KindEndBeforeStart, "end_time must be after start_time")
	}
	return out, c.err()
}

type ServiceInput struct {
	TenantID        string
	Name            string
	DurationMinutes int
	Price           float64
	Currency        string
}

func Service(in ServiceInput) (ServiceInput, error) {
	var c collector
	out := ServiceInput{
		TenantID:        c.uuid("tenant_id", in.TenantID, true),
		Name:            c.name("name", in.Name),
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		Currency:        c.currency("currency", in.Currency),
	}
	c.duration("duration_minutes", in.DurationMinutes)
	c.price("price", in.Price)
	return out, c.err()
}

type ServiceUpdateInput struct {
	Name            *string
	DurationMinutes *int
	Price           *float64
}

// ServiceUpdate validates only the fields being changed.
func ServiceUpdate(in ServiceUpdateInput) (ServiceUpdateInput, error) {
	var c collector
	out := in
	if in.Name != nil {
		name := c.name("name", *in.Name)
		out.Name = &name
	}
	if in.DurationMinutes != nil {
		c.duration("duration_minutes", *in.DurationMinutes)
	}
	if in.Price != nil {
		c.price("price", *in.Price)
	}
	if in.Name == nil && in.DurationMinutes == nil && in.Price == nil {
		c.add("service", KindRequired, "at least one field must be updated")
	}
	return out, c.err()
}

func (c *collector) duration(field string, minutes int) {
	if minutes < MinServiceDuration || minutes > MaxServiceDuration {
		c.add(field, KindOutOfRange, field+" must be between 5 and 480")
	}
}

func (c *collector) price(field string, price float64) {
	if price < 0 {
		c.add(field, KindOutOfRange, field+" cannot be negative")
	}
}

func (c *collector) currency(field, value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return models.DefaultCurrency
	}
	if utf8.RuneCountInString(value) != 3 {
		c.add(field, KindInvalidCurrency, field+" must be exactly 3 characters")
	}
	return value
}

type NotificationInput struct {
	UserID               string
	Type                 string
	Title                string
	Message              string
	RelatedAppointmentID string
}

func Notification(in NotificationInput) (NotificationInput, error) {
	var c collector
	out := NotificationInput{
		UserID:               c.uuid("user_id", in.UserID, true),
		Type:                 strings.TrimSpace(in.Type),
		Title:                strings.TrimSpace(in.Title),
		Message:              strings.TrimSpace(in.Message),
		RelatedAppointmentID: c.uuid("related_appointment_id", in.RelatedAppointmentID, false),
	}
	if !models.IsNotificationType(out.Type) {
		c.add("type", KindInvalidEnum, "unknown notification type")
	}
	c.text("title", out.Title, MaxTitleLength)
	c.text("message", out.Message, MaxMessageLength)
	return out, c.err()
}

func (c *collector) text(field, value string, limit int) {
	switch length := utf8.RuneCountInString(value); {
	case length == 0:
		c.add(field, KindRequired, field+" is required")
	case length > limit:
		c.add(field, KindTooLong, field+" is too long")
	}
}

type TenantInput struct {
	Name             string
	SubscriptionTier string
	Settings         models.TenantSettings
}

func Tenant(in TenantInput) (TenantInput, error) {
	var c collector
	out := TenantInput{
		Name:             c.name("name", in.Name),
		SubscriptionTier: strings.TrimSpace(in.SubscriptionTier),
		Settings:         in.Settings,
	}
	if out.SubscriptionTier == "" {
		out.SubscriptionTier = models.TierFree
	}
	if out.SubscriptionTier != models.TierFree && out.SubscriptionTier != models.TierPro {
		c.add("subscription_tier", KindInvalidEnum, "subscription_tier must be free or pro")
	}
	settings := &out.Settings
	settings.Description = c.maxLen("settings.description", settings.Description, MaxDescriptionLength)
	settings.Address = c.maxLen("settings.address", settings.Address, MaxAddressLength)
	settings.Phone = strings.TrimSpace(settings.Phone)
	settings.City = strings.TrimSpace(settings.City)
	settings.District = strings.TrimSpace(settings.District)
	c.merge(WorkingHours(settings.WorkingHours))
	return out, c.err()
}

// WorkingHours checks weekday keys and HH:MM ranges of open days.
func WorkingHours(hours models.WorkingHours) error {
	var c collector
	for _, day := range slices.Sorted(maps.Keys(hours)) {
		value := hours[day]
		field := "settings.working_hours." + day
		if !isWeekday(day) {
			c.add(field, KindInvalidEnum, "unknown weekday")
			continue
		}
		if value.Closed {
			continue
		}
		if !clockPattern.MatchString(value.Start) || !clockPattern.MatchString(value.End) {
			c.add(field, KindInvalidTime, "start and end must be formatted as HH:MM")
			continue
		}
		if value.End <= value.Start {
			c.add(field, KindInvalidTime, "end must be after start")
		}
	}
	return c.err()
}

func isWeekday(day string) bool {
	return slices.Contains(models.Weekdays, day)
}
