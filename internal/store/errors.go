package store

import (
	"errors"
	"fmt"
)

// ErrNotFound covers rows that are absent and rows outside the caller's
// scope; the two are not distinguished.
var ErrNotFound = errors.New("not found")

var (
	ErrTenantNotFound       = fmt.Errorf("tenant %w", ErrNotFound)
	ErrProfileNotFound      = fmt.Errorf("profile %w", ErrNotFound)
	ErrCustomerNotFound     = fmt.Errorf("customer %w", ErrNotFound)
	ErrServiceNotFound      = fmt.Errorf("service %w", ErrNotFound)
	ErrAppointmentNotFound  = fmt.Errorf("appointment %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrSessionNotFound      = fmt.Errorf("session %w", ErrNotFound)
	ErrAccountNotFound      = fmt.Errorf("account %w", ErrNotFound)
)

var (
	ErrInvalidState   = errors.New("invalid appointment state")
	ErrAccountExists  = errors.New("account already exists")
	ErrCustomerExists = errors.New("customer with this phone already exists")
	ErrInUse          = errors.New("record is still referenced")
)
