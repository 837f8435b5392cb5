// Package notify writes in-app notifications and keeps their read state.
package notify

import (
	"context"

	"randevulu/internal/changes"
	"randevulu/internal/metrics"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"

	"go.uber.org/zap"
)

type Dispatcher struct {
	store  store.NotificationStore
	logger *zap.Logger
}

func NewDispatcher(st store.NotificationStore, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{store: st, logger: logger}
}

// Create stores one unread notification for input.UserID.
func (d *Dispatcher) Create(ctx context.Context, input validate.NotificationInput) (models.Notification, changes.Set, error) {
	in, err := validate.Notification(input)
	if err != nil {
		return models.Notification{}, nil, err
	}
	notification, err := d.store.CreateNotification(ctx, store.CreateNotificationInput{
		UserID:               in.UserID,
		Type:                 in.Type,
		Title:                in.Title,
		Message:              in.Message,
		RelatedAppointmentID: in.RelatedAppointmentID,
	})
	if err != nil {
		return models.Notification{}, nil, err
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(in.Type).Inc()
	d.logger.Debug("notification created",
		zap.String("notification_id", notification.NotificationID),
		zap.String("user_id", in.UserID),
		zap.String("type", in.Type))
	return notification, userViews(in.UserID), nil
}

// MarkRead is a no-op success for a notification that is already read.
func (d *Dispatcher) MarkRead(ctx context.Context, userID, notificationID string) (changes.Set, error) {
	id, err := validate.UUID("notification_id", notificationID)
	if err != nil {
		return nil, err
	}
	if err := d.store.MarkNotificationRead(ctx, userID, id); err != nil {
		return nil, err
	}
	return userViews(userID), nil
}

// MarkAllRead returns how many notifications changed state.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID string) (int64, changes.Set, error) {
	updated, err := d.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	var set changes.Set
	if updated > 0 {
		set = userViews(userID)
	}
	return updated, set, nil
}

func (d *Dispatcher) List(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := d.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (d *Dispatcher) UnreadCount(ctx context.Context, userID string) (int, error) {
	return d.store.CountUnread(ctx, userID)
}

func userViews(userID string) changes.Set {
	var set changes.Set
	return set.Add(changes.Notifications, userID, "")
}
