// Package changes describes which views a mutation made stale. Callers
// decide how to refresh them.
package changes

type Kind string

const (
	Appointments  Kind = "appointments"
	Calendar      Kind = "calendar"
	Dashboard     Kind = "dashboard"
	Notifications Kind = "notifications"
	Customers     Kind = "customers"
	Services      Kind = "services"
	Tenant        Kind = "tenant"
	Availability  Kind = "availability"
	Profile       Kind = "profile"
)

// Change names a stale view. Scope is the tenant or user id that owns the
// view; ID narrows it to one record when set.
type Change struct {
	Kind  Kind   `json:"kind"`
	Scope string `json:"scope"`
	ID    string `json:"id,omitempty"`
}

// Set is an ordered list of changes without duplicates.
type Set []Change

func (s Set) Add(kind Kind, scope, id string) Set {
	change := Change{Kind: kind, Scope: scope, ID: id}
	for _, existing := range s {
		if existing == change {
			return s
		}
	}
	return append(s, change)
}

func (s Set) Merge(other Set) Set {
	for _, change := range other {
		s = s.Add(change.Kind, change.Scope, change.ID)
	}
	return s
}

func (s Set) Contains(kind Kind, scope string) bool {
	for _, change := range s {
		if change.Kind == kind && change.Scope == scope {
			return true
		}
	}
	return false
}

// Tenant views touched by any appointment mutation.
func AppointmentViews(tenantID, appointmentID string) Set {
	var set Set
	set = set.Add(Appointments, tenantID, appointmentID)
	set = set.Add(Calendar, tenantID, "")
	set = set.Add(Dashboard, tenantID, "")
	set = set.Add(Availability, tenantID, "")
	return set
}
