package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"randevulu/internal/changes"
	"randevulu/internal/metrics"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"

	"go.uber.org/zap"
)

const defaultAppointmentLength = 60 * time.Minute

type CreateInput struct {
	TenantID   string
	CustomerID string
	ServiceID  string
	StartTime  time.Time
	EndTime    time.Time
	Notes      string
}

// Create records a pending appointment for the actor's tenant and tells the
// tenant owner about it.
func (s *Service) Create(ctx context.Context, actor models.Actor, input CreateInput) (models.Appointment, changes.Set, error) {
	if !actor.IsBusiness() {
		return models.Appointment{}, nil, ErrForbidden
	}
	if strings.TrimSpace(input.TenantID) == "" {
		input.TenantID = actor.TenantID
	}
	if id, err := validate.UUID("tenant_id", input.TenantID); err == nil && id != actor.TenantID {
		return models.Appointment{}, nil, ErrForbidden
	}
	return s.create(ctx, actor, input)
}

func (s *Service) create(ctx context.Context, actor models.Actor, input CreateInput) (models.Appointment, changes.Set, error) {
	in, err := validate.Appointment(validate.AppointmentInput{
		TenantID:   input.TenantID,
		CustomerID: input.CustomerID,
		ServiceID:  input.ServiceID,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Notes:      input.Notes,
		CreatedBy:  actor.UserID,
	}, s.now())
	if err != nil {
		return models.Appointment{}, nil, err
	}

	appointment, err := s.store.CreateAppointment(ctx, store.CreateAppointmentInput{
		TenantID:   in.TenantID,
		CustomerID: in.CustomerID,
		ServiceID:  in.ServiceID,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Notes:      in.Notes,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		metrics.AppointmentTransitionsTotal.WithLabelValues("create", "error").Inc()
		return models.Appointment{}, nil, persistence("create appointment", err)
	}
	metrics.AppointmentTransitionsTotal.WithLabelValues("create", "ok").Inc()

	set := changes.AppointmentViews(appointment.TenantID, appointment.AppointmentID)
	owner, err := s.store.GetTenantOwner(ctx, appointment.TenantID)
	switch {
	case err == nil:
		set = set.Merge(s.notify(ctx, "create", validate.NotificationInput{
			UserID:               owner.ProfileID,
			Type:                 models.NotificationAppointmentCreated,
			Title:                createdTitle,
			Message:              createdMessage,
			RelatedAppointmentID: appointment.AppointmentID,
		}))
	case errors.Is(err, store.ErrNotFound):
		s.logger.Warn("tenant has no owner to notify", zap.String("tenant_id", appointment.TenantID))
	default:
		s.sideEffectFailed("create", appointment, err)
	}
	return appointment, set, nil
}

type BookInput struct {
	TenantID      string
	ServiceID     string
	Date          string
	Slot          string
	CustomerName  string
	CustomerPhone string
	Notes         string
}

// Book is the self-service flow: it finds or creates the customer by phone,
// derives the end time from the service, and rejects slots that are taken.
func (s *Service) Book(ctx context.Context, actor models.Actor, input BookInput) (models.Appointment, changes.Set, error) {
	if actor.IsAnonymous() {
		return models.Appointment{}, nil, ErrForbidden
	}
	customer, err := validate.Customer(validate.CustomerInput{
		TenantID: input.TenantID,
		FullName: input.CustomerName,
		Phone:    input.CustomerPhone,
		Notes:    input.Notes,
	})
	fields := fieldErrors(err)
	if customer.Phone == "" && strings.TrimSpace(input.CustomerPhone) == "" {
		fields = append(fields, validate.FieldError{Field: "phone", Kind: validate.KindRequired, Message: "phone is required"})
	}
	day, err := validate.Date("date", input.Date, s.loc)
	fields = append(fields, fieldErrors(err)...)
	hour, ok := slotHour(input.Slot)
	if !ok {
		fields = append(fields, validate.FieldError{Field: "slot", Kind: validate.KindInvalidTime, Message: "slot must be one of the hourly slots between 09:00 and 18:00"})
	}
	serviceID := ""
	if strings.TrimSpace(input.ServiceID) != "" {
		id, err := validate.UUID("service_id", input.ServiceID)
		fields = append(fields, fieldErrors(err)...)
		serviceID = id
	}
	if len(fields) > 0 {
		return models.Appointment{}, nil, &validate.Error{Fields: fields}
	}

	length := defaultAppointmentLength
	if serviceID != "" {
		service, err := s.store.GetService(ctx, customer.TenantID, serviceID)
		if err != nil {
			return models.Appointment{}, nil, persistence("load service", err)
		}
		length = time.Duration(service.DurationMinutes) * time.Minute
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.loc)
	starts, err := s.store.ListAppointmentStarts(ctx, customer.TenantID, start, start.Add(time.Hour))
	if err != nil {
		return models.Appointment{}, nil, persistence("check slot", err)
	}
	for _, booked := range starts {
		if booked.In(s.loc).Hour() == hour {
			return models.Appointment{}, nil, ErrSlotTaken
		}
	}

	record, created, err := s.store.FindOrCreateCustomer(ctx, store.CreateCustomerInput{
		TenantID: customer.TenantID,
		FullName: customer.FullName,
		Phone:    customer.Phone,
	})
	if err != nil {
		return models.Appointment{}, nil, persistence("find or create customer", err)
	}

	appointment, set, err := s.create(ctx, actor, CreateInput{
		TenantID:   customer.TenantID,
		CustomerID: record.CustomerID,
		ServiceID:  serviceID,
		StartTime:  start,
		EndTime:    start.Add(length),
		Notes:      customer.Notes,
	})
	if err != nil {
		return models.Appointment{}, nil, err
	}
	if created {
		set = set.Add(changes.Customers, customer.TenantID, record.CustomerID)
	}
	return appointment, set, nil
}

// Approve confirms a pending appointment and tells its creator.
func (s *Service) Approve(ctx context.Context, actor models.Actor, appointmentID string) (models.Appointment, changes.Set, error) {
	appointment, set, err := s.transition(ctx, actor, appointmentID, store.ActionApprove)
	if err != nil {
		return models.Appointment{}, nil, err
	}
	if appointment.CreatedBy != nil {
		set = set.Merge(s.notify(ctx, store.ActionApprove, validate.NotificationInput{
			UserID:               *appointment.CreatedBy,
			Type:                 models.NotificationAppointmentApproved,
			Title:                approvedTitle,
			Message:              approvedMessage,
			RelatedAppointmentID: appointment.AppointmentID,
		}))
	}
	return appointment, set, nil
}

// Reject cancels a pending appointment and tells its creator why.
func (s *Service) Reject(ctx context.Context, actor models.Actor, appointmentID, reason string) (models.Appointment, changes.Set, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > validate.MaxMessageLength {
		return models.Appointment{}, nil, &validate.Error{Fields: []validate.FieldError{{Field: "reason", Kind: validate.KindTooLong, Message: "reason is too long"}}}
	}
	appointment, set, err := s.transition(ctx, actor, appointmentID, store.ActionReject)
	if err != nil {
		return models.Appointment{}, nil, err
	}
	if appointment.CreatedBy != nil {
		message := reason
		if message == "" {
			message = defaultRejectedMessage
		}
		set = set.Merge(s.notify(ctx, store.ActionReject, validate.NotificationInput{
			UserID:               *appointment.CreatedBy,
			Type:                 models.NotificationAppointmentRejected,
			Title:                rejectedTitle,
			Message:              message,
			RelatedAppointmentID: appointment.AppointmentID,
		}))
	}
	return appointment, set, nil
}

// Cancel is open to the tenant's business users and to the appointment's
// creator. No notification is sent.
func (s *Service) Cancel(ctx context.Context, actor models.Actor, appointmentID string) (models.Appointment, changes.Set, error) {
	if actor.IsAnonymous() {
		return models.Appointment{}, nil, ErrForbidden
	}
	scope := store.Scope{CreatedBy: actor.UserID}
	if actor.IsBusiness() {
		scope.TenantID = actor.TenantID
	}
	appointment, err := s.transitionScoped(ctx, scope, appointmentID, store.ActionCancel)
	if err != nil {
		return models.Appointment{}, nil, err
	}
	set := changes.AppointmentViews(appointment.TenantID, appointment.AppointmentID)
	if appointment.CreatedBy != nil {
		set = set.Add(changes.Appointments, *appointment.CreatedBy, appointment.AppointmentID)
	}
	return appointment, set, nil
}

func (s *Service) Complete(ctx context.Context, actor models.Actor, appointmentID string) (models.Appointment, changes.Set, error) {
	return s.transition(ctx, actor, appointmentID, store.ActionComplete)
}

// Delete removes an appointment in any state.
func (s *Service) Delete(ctx context.Context, actor models.Actor, appointmentID string) (changes.Set, error) {
	if !actor.IsBusiness() {
		return nil, ErrForbidden
	}
	id, err := validate.UUID("appointment_id", appointmentID)
	if err != nil {
		return nil, err
	}
	appointment, err := s.store.DeleteAppointment(ctx, actor.TenantID, id)
	if err != nil {
		metrics.AppointmentTransitionsTotal.WithLabelValues("delete", "error").Inc()
		return nil, persistence("delete appointment", err)
	}
	metrics.AppointmentTransitionsTotal.WithLabelValues("delete", "ok").Inc()
	set := changes.AppointmentViews(appointment.TenantID, appointment.AppointmentID)
	if appointment.CreatedBy != nil {
		set = set.Add(changes.Appointments, *appointment.CreatedBy, appointment.AppointmentID)
	}
	return set, nil
}

// ListByTenant returns the actor's tenant appointments ordered by start time.
func (s *Service) ListByTenant(ctx context.Context, actor models.Actor) ([]models.AppointmentDetail, error) {
	if !actor.IsBusiness() {
		return nil, ErrForbidden
	}
	details, err := s.store.ListAppointmentsByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, persistence("list appointments", err)
	}
	if details == nil {
		details = []models.AppointmentDetail{}
	}
	return details, nil
}

// ListMine returns the appointments the actor created.
func (s *Service) ListMine(ctx context.Context, actor models.Actor) ([]models.AppointmentDetail, error) {
	if actor.IsAnonymous() {
		return nil, ErrForbidden
	}
	details, err := s.store.ListAppointmentsByCreator(ctx, actor.UserID)
	if err != nil {
		return nil, persistence("list appointments", err)
	}
	if details == nil {
		details = []models.AppointmentDetail{}
	}
	return details, nil
}

func (s *Service) transition(ctx context.Context, actor models.Actor, appointmentID, action string) (models.Appointment, changes.Set, error) {
	if !actor.IsBusiness() {
		return models.Appointment{}, nil, ErrForbidden
	}
	appointment, err := s.transitionScoped(ctx, store.Scope{TenantID: actor.TenantID}, appointmentID, action)
	if err != nil {
		return models.Appointment{}, nil, err
	}
	set := changes.AppointmentViews(appointment.TenantID, appointment.AppointmentID)
	if appointment.CreatedBy != nil {
		set = set.Add(changes.Appointments, *appointment.CreatedBy, appointment.AppointmentID)
	}
	return appointment, set, nil
}

func (s *Service) transitionScoped(ctx context.Context, scope store.Scope, appointmentID, action string) (models.Appointment, error) {
	id, err := validate.UUID("appointment_id", appointmentID)
	if err != nil {
		return models.Appointment{}, err
	}
	appointment, err := s.store.TransitionAppointment(ctx, store.TransitionInput{
		AppointmentID: id,
		Scope:         scope,
		Action:        action,
		OccurredAt:    s.now().UTC(),
	})
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, store.ErrInvalidState):
			outcome = "invalid_state"
		case errors.Is(err, store.ErrNotFound):
			outcome = "not_found"
		}
		metrics.AppointmentTransitionsTotal.WithLabelValues(action, outcome).Inc()
		return models.Appointment{}, persistence(action+" appointment", err)
	}
	metrics.AppointmentTransitionsTotal.WithLabelValues(action, "ok").Inc()
	return appointment, nil
}

// notify never fails the caller; the appointment write is already committed.
func (s *Service) notify(ctx context.Context, op string, input validate.NotificationInput) changes.Set {
	if s.notifier == nil {
		return nil
	}
	_, set, err := s.notifier.Create(ctx, input)
	if err != nil {
		metrics.SideEffectFailuresTotal.WithLabelValues(op + "_notification").Inc()
		s.logger.Error("notification dispatch failed",
			zap.String("operation", op),
			zap.String("user_id", input.UserID),
			zap.String("appointment_id", input.RelatedAppointmentID),
			zap.Error(err))
		return nil
	}
	return set
}

func (s *Service) sideEffectFailed(op string, appointment models.Appointment, err error) {
	metrics.SideEffectFailuresTotal.WithLabelValues(op + "_owner_lookup").Inc()
	s.logger.Error("owner lookup failed",
		zap.String("operation", op),
		zap.String("tenant_id", appointment.TenantID),
		zap.String("appointment_id", appointment.AppointmentID),
		zap.Error(err))
}

func fieldErrors(err error) []validate.FieldError {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
