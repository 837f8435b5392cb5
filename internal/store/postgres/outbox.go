package postgres

import (
	"context"
	"errors"
	"time"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListOutboxEvents(ctx context.Context, afterSeq int64, limit int) ([]store.OutboxEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, event_id, tenant_id, type, payload_json, created_at
		FROM outbox_events
		WHERE seq > $1
		ORDER BY seq ASC
		LIMIT $2
	`, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []store.OutboxEvent
	for rows.Next() {
		var (
			event   store.OutboxEvent
			payload []byte
		)
		if err := rows.Scan(&event.Seq, &event.EventID, &event.TenantID, &event.Type, &payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.Payload = payload
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) GetRelayOffset(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := s.pool.QueryRow(ctx, `SELECT last_seq FROM relay_offsets WHERE name = $1`, name).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return seq, nil
}

func (s *Store) UpdateRelayOffset(ctx context.Context, name string, seq int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO relay_offsets (name, last_seq, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET last_seq = EXCLUDED.last_seq, updated_at = EXCLUDED.updated_at
	`, name, seq, s.now())
	return err
}

func (s *Store) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]store.ReminderCandidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.tenant_id, t.name, a.created_by, a.start_time, COALESCE(sv.name, '')
		FROM appointments a
		JOIN tenants t ON t.id = a.tenant_id
		LEFT JOIN services sv ON sv.id = a.service_id
		LEFT JOIN appointment_reminders r ON r.appointment_id = a.id
		WHERE a.status = $1
		  AND a.created_by IS NOT NULL
		  AND r.appointment_id IS NULL
		  AND a.start_time >= $2 AND a.start_time < $3
		ORDER BY a.start_time ASC
		LIMIT $4
	`, models.StatusConfirmed, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []store.ReminderCandidate
	for rows.Next() {
		var candidate store.ReminderCandidate
		if err := rows.Scan(&candidate.AppointmentID, &candidate.TenantID, &candidate.TenantName, &candidate.CreatedBy,
			&candidate.StartTime, &candidate.ServiceName); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *Store) RecordReminder(ctx context.Context, appointmentID string, sentAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO appointment_reminders (appointment_id, sent_at)
		VALUES ($1, $2)
		ON CONFLICT (appointment_id) DO NOTHING
	`, appointmentID, sentAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

var _ store.Store = (*Store)(nil)
