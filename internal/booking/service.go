// Package booking runs the appointment lifecycle and the availability grid.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"randevulu/internal/changes"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"

	"go.uber.org/zap"
)

var (
	ErrForbidden = errors.New("operation not allowed for this account")
	ErrSlotTaken = errors.New("slot is already booked")
)

// PersistenceError wraps a storage failure that is not a domain outcome.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistence passes domain sentinels through and wraps everything else.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidState) || errors.Is(err, store.ErrCustomerExists) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

type Store interface {
	store.AppointmentStore
	GetTenantOwner(ctx context.Context, tenantID string) (models.Profile, error)
	GetService(ctx context.Context, tenantID, serviceID string) (models.Service, error)
	FindOrCreateCustomer(ctx context.Context, input store.CreateCustomerInput) (models.Customer, bool, error)
}

type Notifier interface {
	Create(ctx context.Context, input validate.NotificationInput) (models.Notification, changes.Set, error)
}

type Options struct {
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewService(st Store, notifier Notifier, logger *zap.Logger, options Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := options.Location
	if loc == nil {
		loc = time.UTC
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, notifier: notifier, logger: logger, loc: loc, now: now}
}
