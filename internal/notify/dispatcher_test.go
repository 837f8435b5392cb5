package notify

import (
	"context"
	"errors"
	"testing"

	"randevulu/internal/changes"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"
)

const (
	testUserID         = "6f1c2f8e-6a4c-4c3c-9a57-2f7b1f9f4b10"
	testNotificationID = "0d7c4f1a-2f0c-4d87-9c1c-5a1b2c3d4e5f"
)

type fakeStore struct {
	createFn  func(ctx context.Context, input store.CreateNotificationInput) (models.Notification, error)
	markFn    func(ctx context.Context, userID, notificationID string) error
	markAllFn func(ctx context.Context, userID string) (int64, error)
	listFn    func(ctx context.Context, userID string) ([]models.Notification, error)
}

func (f *fakeStore) CreateNotification(ctx context.Context, input store.CreateNotificationInput) (models.Notification, error) {
	if f.createFn == nil {
		return models.Notification{}, errors.New("not implemented")
	}
	return f.createFn(ctx, input)
}

func (f *fakeStore) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, userID)
}

func (f *fakeStore) CountUnread(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (f *fakeStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	if f.markFn == nil {
		return errors.New("not implemented")
	}
	return f.markFn(ctx, userID, notificationID)
}

func (f *fakeStore) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	if f.markAllFn == nil {
		return 0, errors.New("not implemented")
	}
	return f.markAllFn(ctx, userID)
}

func TestCreateStoresUnreadAndSignalsUserView(t *testing.T) {
	var got store.CreateNotificationInput
	st := &fakeStore{createFn: func(ctx context.Context, input store.CreateNotificationInput) (models.Notification, error) {
		got = input
		return models.Notification{NotificationID: testNotificationID, UserID: input.UserID, Type: input.Type}, nil
	}}
	dispatcher := NewDispatcher(st, nil)

	_, set, err := dispatcher.Create(context.Background(), validate.NotificationInput{
		UserID:  testUserID,
		Type:    models.NotificationAppointmentApproved,
		Title:   " Randevu Onaylandı ",
		Message: "Randevunuz onaylandı!",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Title != "Randevu Onaylandı" {
		t.Fatalf("expected trimmed title, got %q", got.Title)
	}
	if !set.Contains(changes.Notifications, testUserID) {
		t.Fatalf("expected notifications change for user, got %+v", set)
	}
}

func TestCreateRejectsInvalidInputWithoutWriting(t *testing.T) {
	st := &fakeStore{createFn: func(ctx context.Context, input store.CreateNotificationInput) (models.Notification, error) {
		t.Fatalf("store must not be called")
		return models.Notification{}, nil
	}}
	_, _, err := NewDispatcher(st, nil).Create(context.Background(), validate.NotificationInput{UserID: "nope", Type: "sms"})
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !verr.Has(validate.KindInvalidID) || !verr.Has(validate.KindInvalidEnum) || !verr.Has(validate.KindRequired) {
		t.Fatalf("expected id, enum and required violations, got %v", verr)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	calls := 0
	st := &fakeStore{markFn: func(ctx context.Context, userID, notificationID string) error {
		calls++
		return nil
	}}
	dispatcher := NewDispatcher(st, nil)
	for i := 0; i < 2; i++ {
		if _, err := dispatcher.MarkRead(context.Background(), testUserID, testNotificationID); err != nil {
			t.Fatalf("mark read #%d: %v", i+1, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 store calls, got %d", calls)
	}
}

func TestMarkReadPropagatesNotFound(t *testing.T) {
	st := &fakeStore{markFn: func(ctx context.Context, userID, notificationID string) error {
		return store.ErrNotificationNotFound
	}}
	_, err := NewDispatcher(st, nil).MarkRead(context.Background(), testUserID, testNotificationID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkAllReadOnlySignalsWhenSomethingChanged(t *testing.T) {
	updated := int64(3)
	st := &fakeStore{markAllFn: func(ctx context.Context, userID string) (int64, error) {
		n := updated
		updated = 0
		return n, nil
	}}
	dispatcher := NewDispatcher(st, nil)

	n, set, err := dispatcher.MarkAllRead(context.Background(), testUserID)
	if err != nil || n != 3 || len(set) != 1 {
		t.Fatalf("first call: n=%d set=%v err=%v", n, set, err)
	}
	n, set, err = dispatcher.MarkAllRead(context.Background(), testUserID)
	if err != nil || n != 0 || len(set) != 0 {
		t.Fatalf("second call: n=%d set=%v err=%v", n, set, err)
	}
}

func TestListNeverReturnsNil(t *testing.T) {
	notifications, err := NewDispatcher(&fakeStore{}, nil).List(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if notifications == nil {
		t.Fatalf("expected empty slice")
	}
}
