package models

import "time"

const (
	TierFree = "free"
	TierPro  = "pro"
)

type Tenant struct {
	TenantID         string         `json:"id"`
	Name             string         `json:"name"`
	SubscriptionTier string         `json:"subscription_tier"`
	Settings         TenantSettings `json:"settings"`
	CreatedAt        time.Time      `json:"created_at"`
}

type TenantSettings struct {
	Description    string       `json:"description,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Address        string       `json:"address,omitempty"`
	City           string       `json:"city,omitempty"`
	District       string       `json:"district,omitempty"`
	PaymentMethods []string     `json:"payment_methods,omitempty"`
	WorkingHours   WorkingHours `json:"working_hours,omitempty"`
}

// WorkingHours is keyed by lower-case English weekday name.
type WorkingHours map[string]DayHours

type DayHours struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Closed bool   `json:"closed"`
}

var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func DefaultWorkingHours() WorkingHours {
	hours := make(WorkingHours, len(Weekdays))
	for _, day := range Weekdays {
		hours[day] = DayHours{Start: "09:00", End: "18:00", Closed: day == "sunday"}
	}
	return hours
}
