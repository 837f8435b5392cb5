package booking

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"randevulu/internal/changes"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	tenantID      = "0b8f6a3c-1d2e-4f50-8a9b-c0d1e2f3a4b5"
	otherTenantID = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
	ownerID       = "1c2d3e4f-5a6b-4c7d-8e9f-a0b1c2d3e4f5"
	customerUser  = "2d3e4f5a-6b7c-4d8e-9fa0-b1c2d3e4f5a6"
	customerID    = "3e4f5a6b-7c8d-4e9f-a0b1-c2d3e4f5a6b7"
	serviceID     = "4f5a6b7c-8d9e-4fa0-b1c2-d3e4f5a6b7c8"
	appointmentID = "5a6b7c8d-9e0f-4a1b-8c2d-e3f4a5b6c7d8"
)

var (
	istanbul = time.FixedZone("TRT", 3*60*60)
	testNow  = time.Date(2030, time.January, 10, 8, 0, 0, 0, istanbul)
	owner    = models.Actor{UserID: ownerID, Role: models.RoleOwner, TenantID: tenantID}
	customer = models.Actor{UserID: customerUser, Role: models.RoleCustomer}
)

type fakeStore struct {
	createFn     func(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error)
	transitionFn func(ctx context.Context, input store.TransitionInput) (models.Appointment, error)
	deleteFn     func(ctx context.Context, tenantID, appointmentID string) (models.Appointment, error)
	startsFn     func(ctx context.Context, tenantID string, from, to time.Time) ([]time.Time, error)
	ownerFn      func(ctx context.Context, tenantID string) (models.Profile, error)
	serviceFn    func(ctx context.Context, tenantID, serviceID string) (models.Service, error)
	customerFn   func(ctx context.Context, input store.CreateCustomerInput) (models.Customer, bool, error)
}

func (f *fakeStore) CreateAppointment(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
	if f.createFn == nil {
		return models.Appointment{}, errors.New("not implemented")
	}
	return f.createFn(ctx, input)
}

func (f *fakeStore) GetAppointment(ctx context.Context, scope store.Scope, appointmentID string) (models.Appointment, error) {
	return models.Appointment{}, store.ErrAppointmentNotFound
}

func (f *fakeStore) ListAppointmentsByTenant(ctx context.Context, tenantID string) ([]models.AppointmentDetail, error) {
	return nil, nil
}

func (f *fakeStore) ListAppointmentsByCreator(ctx context.Context, userID string) ([]models.AppointmentDetail, error) {
	return nil, nil
}

func (f *fakeStore) TransitionAppointment(ctx context.Context, input store.TransitionInput) (models.Appointment, error) {
	if f.transitionFn == nil {
		return models.Appointment{}, errors.New("not implemented")
	}
	return f.transitionFn(ctx, input)
}

func (f *fakeStore) DeleteAppointment(ctx context.Context, tenantID, appointmentID string) (models.Appointment, error) {
	if f.deleteFn == nil {
		return models.Appointment{}, errors.New("not implemented")
	}
	return f.deleteFn(ctx, tenantID, appointmentID)
}

func (f *fakeStore) ListAppointmentStarts(ctx context.Context, tenantID string, from, to time.Time) ([]time.Time, error) {
	if f.startsFn == nil {
		return nil, nil
	}
	return f.startsFn(ctx, tenantID, from, to)
}

func (f *fakeStore) GetTenantOwner(ctx context.Context, tenantID string) (models.Profile, error) {
	if f.ownerFn == nil {
		return models.Profile{ProfileID: ownerID, Role: models.RoleOwner}, nil
	}
	return f.ownerFn(ctx, tenantID)
}

func (f *fakeStore) GetService(ctx context.Context, tenantID, serviceID string) (models.Service, error) {
	if f.serviceFn == nil {
		return models.Service{}, store.ErrServiceNotFound
	}
	return f.serviceFn(ctx, tenantID, serviceID)
}

func (f *fakeStore) FindOrCreateCustomer(ctx context.Context, input store.CreateCustomerInput) (models.Customer, bool, error) {
	if f.customerFn == nil {
		return models.Customer{}, false, errors.New("not implemented")
	}
	return f.customerFn(ctx, input)
}

type fakeNotifier struct {
	sent []validate.NotificationInput
	err  error
}

func (f *fakeNotifier) Create(ctx context.Context, input validate.NotificationInput) (models.Notification, changes.Set, error) {
	if f.err != nil {
		return models.Notification{}, nil, f.err
	}
	f.sent = append(f.sent, input)
	var set changes.Set
	return models.Notification{UserID: input.UserID}, set.Add(changes.Notifications, input.UserID, ""), nil
}

func newTestService(st Store, notifier Notifier, logger *zap.Logger) *Service {
	return NewService(st, notifier, logger, Options{Location: istanbul, Now: func() time.Time { return testNow }})
}

func echoCreate(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
	appointment := models.Appointment{
		AppointmentID: appointmentID,
		TenantID:      input.TenantID,
		CustomerID:    input.CustomerID,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		Status:        models.StatusPending,
	}
	if input.ServiceID != "" {
		id := input.ServiceID
		appointment.ServiceID = &id
	}
	if input.CreatedBy != "" {
		by := input.CreatedBy
		appointment.CreatedBy = &by
	}
	return appointment, nil
}

func validCreateInput() CreateInput {
	start := testNow.Add(26 * time.Hour)
	return CreateInput{TenantID: tenantID, CustomerID: customerID, StartTime: start, EndTime: start.Add(time.Hour)}
}

func TestAvailabilityRemovesBookedHours(t *testing.T) {
	st := &fakeStore{startsFn: func(ctx context.Context, id string, from, to time.Time) ([]time.Time, error) {
		return []time.Time{
			time.Date(2030, time.January, 11, 10, 0, 0, 0, istanbul),
			time.Date(2030, time.January, 11, 11, 0, 0, 0, time.UTC), // 14:00 local
		}, nil
	}}
	slots, err := newTestService(st, nil, nil).Availability(context.Background(), tenantID, "2030-01-11")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	want := []string{"09:00", "11:00", "12:00", "13:00", "15:00", "16:00", "17:00", "18:00"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestAvailabilityQueriesTheLocalDay(t *testing.T) {
	var gotFrom, gotTo time.Time
	st := &fakeStore{startsFn: func(ctx context.Context, id string, from, to time.Time) ([]time.Time, error) {
		gotFrom, gotTo = from, to
		return nil, nil
	}}
	slots, err := newTestService(st, nil, nil).Availability(context.Background(), tenantID, "2030-01-11")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 10 {
		t.Fatalf("expected full grid, got %v", slots)
	}
	wantFrom := time.Date(2030, time.January, 11, 0, 0, 0, 0, istanbul)
	if !gotFrom.Equal(wantFrom) || !gotTo.Equal(wantFrom.Add(24*time.Hour)) {
		t.Fatalf("unexpected window %v - %v", gotFrom, gotTo)
	}
}

func TestAvailabilityFailsOpen(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st := &fakeStore{startsFn: func(ctx context.Context, id string, from, to time.Time) ([]time.Time, error) {
		return nil, errors.New("connection refused")
	}}
	slots, err := newTestService(st, nil, zap.New(core)).Availability(context.Background(), tenantID, "2030-01-11")
	if err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
	if !reflect.DeepEqual(slots, Slots()) {
		t.Fatalf("expected full grid, got %v", slots)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
}

func TestAvailabilityValidatesInput(t *testing.T) {
	_, err := newTestService(&fakeStore{}, nil, nil).Availability(context.Background(), "tenant", "11/01/2030")
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !verr.Has(validate.KindInvalidID) || !verr.Has(validate.KindInvalidDate) {
		t.Fatalf("expected id and date violations, got %v", verr)
	}
}

func TestCreateNotifiesOwnerAndReturnsChanges(t *testing.T) {
	var got store.CreateAppointmentInput
	st := &fakeStore{createFn: func(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
		got = input
		return echoCreate(ctx, input)
	}}
	notifier := &fakeNotifier{}
	appointment, set, err := newTestService(st, notifier, nil).Create(context.Background(), owner, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appointment.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", appointment.Status)
	}
	if got.CreatedBy != ownerID {
		t.Fatalf("expected created_by to be the actor, got %q", got.CreatedBy)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	sent := notifier.sent[0]
	if sent.UserID != ownerID || sent.Type != models.NotificationAppointmentCreated || sent.Title != createdTitle || sent.RelatedAppointmentID != appointmentID {
		t.Fatalf("unexpected notification: %+v", sent)
	}
	for _, kind := range []changes.Kind{changes.Appointments, changes.Calendar} {
		if !set.Contains(kind, tenantID) {
			t.Fatalf("expected %s change for tenant, got %+v", kind, set)
		}
	}
	if !set.Contains(changes.Notifications, ownerID) {
		t.Fatalf("expected notifications change for owner, got %+v", set)
	}
}

func TestCreateSurvivesNotificationFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	st := &fakeStore{createFn: echoCreate}
	notifier := &fakeNotifier{err: errors.New("notifications table locked")}
	appointment, _, err := newTestService(st, notifier, zap.New(core)).Create(context.Background(), owner, validCreateInput())
	if err != nil {
		t.Fatalf("expected notification failure to be non-fatal, got %v", err)
	}
	if appointment.AppointmentID != appointmentID {
		t.Fatalf("expected the created appointment, got %+v", appointment)
	}
	if logs.FilterMessage("notification dispatch failed").Len() != 1 {
		t.Fatalf("expected the failure to be logged")
	}
}

func TestCreateSkipsNotificationOnPersistenceError(t *testing.T) {
	st := &fakeStore{createFn: func(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
		return models.Appointment{}, errors.New("disk full")
	}}
	notifier := &fakeNotifier{}
	_, _, err := newTestService(st, notifier, nil).Create(context.Background(), owner, validCreateInput())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestCreatePassesNotFoundThrough(t *testing.T) {
	st := &fakeStore{createFn: func(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
		return models.Appointment{}, store.ErrCustomerNotFound
	}}
	_, _, err := newTestService(st, &fakeNotifier{}, nil).Create(context.Background(), owner, validCreateInput())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		t.Fatalf("not found must not be wrapped as persistence error")
	}
}

func TestCreateValidatesBeforeWriting(t *testing.T) {
	st := &fakeStore{createFn: func(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
		t.Fatalf("store must not be called")
		return models.Appointment{}, nil
	}}
	input := validCreateInput()
	input.StartTime = testNow.Add(-time.Hour)
	input.EndTime = input.StartTime.Add(-time.Minute)
	_, _, err := newTestService(st, nil, nil).Create(context.Background(), owner, input)
	var verr *validate.Error
	if !errors.As(err, &verr) || !verr.Has(validate.KindPastStartTime) || !verr.Has(validate.KindEndBeforeStart) {
		t.Fatalf("expected past start and end-before-start, got %v", err)
	}
}

func TestCreateRejectsOtherTenantAndCustomers(t *testing.T) {
	svc := newTestService(&fakeStore{createFn: echoCreate}, nil, nil)
	input := validCreateInput()
	input.TenantID = otherTenantID
	if _, _, err := svc.Create(context.Background(), owner, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for another tenant, got %v", err)
	}
	if _, _, err := svc.Create(context.Background(), customer, validCreateInput()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for a customer, got %v", err)
	}
}

func TestApproveNotifiesCreator(t *testing.T) {
	creator := customerUser
	var got store.TransitionInput
	st := &fakeStore{transitionFn: func(ctx context.Context, input store.TransitionInput) (models.Appointment, error) {
		got = input
		return models.Appointment{AppointmentID: input.AppointmentID, TenantID: tenantID, Status: models.StatusConfirmed, CreatedBy: &creator}, nil
	}}
	notifier := &fakeNotifier{}
	appointment, set, err := newTestService(st, notifier, nil).Approve(context.Background(), owner, appointmentID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if appointment.Status != models.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", appointment.Status)
	}
	if got.Action != store.ActionApprove || got.Scope != (store.Scope{TenantID: tenantID}) {
		t.Fatalf("unexpected transition input: %+v", got)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].UserID != creator || notifier.sent[0].Message != approvedMessage {
		t.Fatalf("unexpected notifications: %+v", notifier.sent)
	}
	if !set.Contains(changes.Dashboard, tenantID) || !set.Contains(changes.Appointments, creator) {
		t.Fatalf("expected tenant and creator views, got %+v", set)
	}
}

func TestApproveWithoutCreatorSendsNothing(t *testing.T) {
	st := &fakeStore{transitionFn: func(ctx context.Context, input store.TransitionInput) (models.Appointment, error) {
		return models.Appointment{AppointmentID: input.AppointmentID, TenantID: tenantID, Status: models.StatusConfirmed}, nil
	}}
	notifier := &fakeNotifier{}
	if _, _, err := newTestService(st, notifier, nil).Approve(context.Background(), owner, appointmentID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestRejectMessage(t *testing.T) {
	creator := customerUser
	st := &fakeStore{transitionFn: func(ctx context.Context, input store.TransitionInput) (models.Appointment, error) {
		return models.Appointment{AppointmentID: input.AppointmentID, TenantID: tenantID, Status: models.StatusCancelled, CreatedBy: &creator}, nil
	}}
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{name: "default", reason: "  ", want: defaultRejectedMessage},
		{name: "reason", reason: "Bu saatte kapalıyız.", want: "Bu saatte kapalıyız."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			if _, _, err := newTestService(st, notifier, nil).Reject(context.Background(), owner, appointmentID, tc.reason); err != nil {
				t.Fatalf("reject: %v", err)
			}
			if len(notifier.sent) != 1 || notifier.sent[0].Message != tc.want || notifier.sent[0].Type != models.NotificationAppointmentRejected {
				t.Fatalf("unexpected notifications: %+v", notifier.sent)
			}
		})
	}
}

// stateStore applies the transition table to a single in-memory row.
func stateStore(status *string) *fakeStore {
	return &fakeStore{transitionFn: func(ctx context.Context, input store.TransitionInput) (models.Appointment, error) {
		if !slices.Contains(store.TransitionSources(input.Action), *status) {
			return models.Appointment{}, store.ErrInvalidState
		}
		*status, _ = store.TransitionTarget(input.Action)
		return models.Appointment{AppointmentID: input.AppointmentID, TenantID: tenantID, Status: *status}, nil
	}}
}

func TestApproveAfterCancelIsRejected(t *testing.T) {
	status := models.StatusPending
	svc := newTestService(stateStore(&status), &fakeNotifier{}, nil)
	if _, _, err := svc.Cancel(context.Background(), owner, appointmentID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, _, err := svc.Approve(context.Background(), owner, appointmentID)
	if !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if status != models.StatusCancelled {
		t.Fatalf("expected status to stay cancelled, got %s", status)
	}
}

func TestConfirmedThenCompleted(t *testing.T) {
	status := models.StatusPending
	svc := newTestService(stateStore(&status), &fakeNotifier{}, nil)
	if _, _, err := svc.Complete(context.Background(), owner, appointmentID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected pending appointment to refuse completion, got %v", err)
	}
	if _, _, err := svc.Approve(context.Background(), owner, appointmentID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	appointment, _, err := svc.Complete(context.Background(), owner, appointmentID)
	if err != nil || appointment.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %+v err=%v", appointment, err)
	}
}

func TestCancelScopeFollowsActor(t *testing.T) {
	var scopes []store.Scope
	st := &fakeStore{transitionFn: func(ctx context.Context, input store.TransitionInput) (models.Appointment, error) {
		scopes = append(scopes, input.Scope)
		return models.Appointment{AppointmentID: input.AppointmentID, TenantID: tenantID, Status: models.StatusCancelled}, nil
	}}
	svc := newTestService(st, nil, nil)
	for _, actor := range []models.Actor{owner, customer} {
		if _, _, err := svc.Cancel(context.Background(), actor, appointmentID); err != nil {
			t.Fatalf("cancel as %s: %v", actor.Role, err)
		}
	}
	want := []store.Scope{{TenantID: tenantID, CreatedBy: ownerID}, {CreatedBy: customerUser}}
	if !reflect.DeepEqual(scopes, want) {
		t.Fatalf("expected scopes %+v, got %+v", want, scopes)
	}
}

func TestBusinessOnlyOperations(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil, nil)
	ctx := context.Background()
	checks := map[string]error{}
	_, _, checks["approve"] = svc.Approve(ctx, customer, appointmentID)
	_, _, checks["reject"] = svc.Reject(ctx, customer, appointmentID, "")
	_, _, checks["complete"] = svc.Complete(ctx, customer, appointmentID)
	_, checks["delete"] = svc.Delete(ctx, customer, appointmentID)
	_, checks["list"] = svc.ListByTenant(ctx, customer)
	for op, err := range checks {
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("%s: expected forbidden, got %v", op, err)
		}
	}
}

func TestDeleteIsTenantScoped(t *testing.T) {
	st := &fakeStore{deleteFn: func(ctx context.Context, id, appointment string) (models.Appointment, error) {
		if id != tenantID {
			return models.Appointment{}, store.ErrAppointmentNotFound
		}
		return models.Appointment{AppointmentID: appointment, TenantID: id, Status: models.StatusConfirmed}, nil
	}}
	set, err := newTestService(st, nil, nil).Delete(context.Background(), owner, appointmentID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !set.Contains(changes.Availability, tenantID) {
		t.Fatalf("expected availability change, got %+v", set)
	}
	other := models.Actor{UserID: ownerID, Role: models.RoleOwner, TenantID: otherTenantID}
	if _, err := newTestService(st, nil, nil).Delete(context.Background(), other, appointmentID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for another tenant, got %v", err)
	}
}

func TestBookDerivesEndTimeAndReusesCustomer(t *testing.T) {
	var created store.CreateAppointmentInput
	var lookedUp store.CreateCustomerInput
	st := &fakeStore{
		serviceFn: func(ctx context.Context, tenant, service string) (models.Service, error) {
			return models.Service{ServiceID: service, TenantID: tenant, DurationMinutes: 45}, nil
		},
		customerFn: func(ctx context.Context, input store.CreateCustomerInput) (models.Customer, bool, error) {
			lookedUp = input
			return models.Customer{CustomerID: customerID, TenantID: input.TenantID}, false, nil
		},
		createFn: func(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
			created = input
			return echoCreate(ctx, input)
		},
	}
	_, set, err := newTestService(st, &fakeNotifier{}, nil).Book(context.Background(), customer, BookInput{
		TenantID:      tenantID,
		ServiceID:     serviceID,
		Date:          "2030-01-11",
		Slot:          "14:00",
		CustomerName:  "Ayşe Yılmaz",
		CustomerPhone: "+90 532 123 45 67",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if lookedUp.Phone != "5321234567" {
		t.Fatalf("expected normalized phone, got %q", lookedUp.Phone)
	}
	wantStart := time.Date(2030, time.January, 11, 14, 0, 0, 0, istanbul)
	if !created.StartTime.Equal(wantStart) || !created.EndTime.Equal(wantStart.Add(45*time.Minute)) {
		t.Fatalf("unexpected times %v - %v", created.StartTime, created.EndTime)
	}
	if created.CustomerID != customerID || created.CreatedBy != customerUser {
		t.Fatalf("unexpected appointment input: %+v", created)
	}
	if set.Contains(changes.Customers, tenantID) {
		t.Fatalf("reused customer must not mark customers stale")
	}
}

func TestBookRejectsTakenSlot(t *testing.T) {
	st := &fakeStore{startsFn: func(ctx context.Context, id string, from, to time.Time) ([]time.Time, error) {
		return []time.Time{from}, nil
	}}
	_, _, err := newTestService(st, nil, nil).Book(context.Background(), customer, BookInput{
		TenantID:      tenantID,
		Date:          "2030-01-11",
		Slot:          "10:00",
		CustomerName:  "Ayşe Yılmaz",
		CustomerPhone: "05321234567",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected slot taken, got %v", err)
	}
}

func TestBookCollectsFieldErrors(t *testing.T) {
	_, _, err := newTestService(&fakeStore{}, nil, nil).Book(context.Background(), customer, BookInput{
		TenantID: tenantID,
		Date:     "tomorrow",
		Slot:     "19:30",
	})
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"full_name", "phone", "date", "slot"} {
		if _, ok := verr.Field(field); !ok {
			t.Fatalf("expected violation for %s, got %v", field, verr)
		}
	}
}
