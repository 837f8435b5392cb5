package postgres

import (
	"context"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, user_id, type, title, message, related_appointment_id, read, created_at`

func scanNotification(row pgx.Row) (models.Notification, error) {
	var notification models.Notification
	err := row.Scan(&notification.NotificationID, &notification.UserID, &notification.Type, &notification.Title,
		&notification.Message, &notification.RelatedAppointmentID, &notification.Read, &notification.CreatedAt)
	return notification, err
}

func (s *Store) CreateNotification(ctx context.Context, input store.CreateNotificationInput) (models.Notification, error) {
	notification, err := scanNotification(s.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, related_appointment_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
		RETURNING `+notificationColumns,
		uuid.NewString(), input.UserID, input.Type, input.Title, input.Message, nullIfEmpty(input.RelatedAppointmentID), s.now()))
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return models.Notification{}, store.ErrProfileNotFound
		}
		return models.Notification{}, err
	}
	return notification, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID).Scan(&count)
	return count, err
}

// MarkNotificationRead succeeds for notifications that are already read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotificationNotFound
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
