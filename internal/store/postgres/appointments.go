package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const appointmentColumns = `id, tenant_id, customer_id, service_id, start_time, end_time, status, notes, created_by, created_at, updated_at`

func scanAppointment(row pgx.Row, dest ...interface{}) (models.Appointment, error) {
	var appointment models.Appointment
	targets := []interface{}{
		&appointment.AppointmentID, &appointment.TenantID, &appointment.CustomerID, &appointment.ServiceID,
		&appointment.StartTime, &appointment.EndTime, &appointment.Status, &appointment.Notes,
		&appointment.CreatedBy, &appointment.CreatedAt, &appointment.UpdatedAt,
	}
	if err := row.Scan(append(targets, dest...)...); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (s *Store) CreateAppointment(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := ensureTenantExists(ctx, tx, input.TenantID); err != nil {
		return models.Appointment{}, err
	}
	if err := ensureTenantOwns(ctx, tx, "customers", input.TenantID, input.CustomerID, store.ErrCustomerNotFound); err != nil {
		return models.Appointment{}, err
	}
	if input.ServiceID != "" {
		if err := ensureTenantOwns(ctx, tx, "services", input.TenantID, input.ServiceID, store.ErrServiceNotFound); err != nil {
			return models.Appointment{}, err
		}
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (
			id, tenant_id, customer_id, service_id, start_time, end_time, status, notes, created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
		RETURNING `+appointmentColumns,
		uuid.NewString(), input.TenantID, input.CustomerID, nullIfEmpty(input.ServiceID), input.StartTime.UTC(), input.EndTime.UTC(),
		models.StatusPending, nullIfEmpty(input.Notes), nullIfEmpty(input.CreatedBy), createdAt)
	appointment, err := scanAppointment(row)
	if err != nil {
		return models.Appointment{}, err
	}

	if err := insertOutboxEvent(ctx, tx, input.TenantID, store.EventAppointmentCreated, store.NewAppointmentEvent(appointment, createdAt), createdAt); err != nil {
		return models.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (s *Store) GetAppointment(ctx context.Context, scope store.Scope, appointmentID string) (models.Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND (tenant_id = NULLIF($2, '')::uuid OR created_by = NULLIF($3, '')::uuid)
	`, appointmentID, scope.TenantID, scope.CreatedBy)
	appointment, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, store.ErrAppointmentNotFound
		}
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (s *Store) ListAppointmentsByTenant(ctx context.Context, tenantID string) ([]models.AppointmentDetail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.tenant_id, a.customer_id, a.service_id, a.start_time, a.end_time, a.status, a.notes,
		       a.created_by, a.created_at, a.updated_at,
		       c.full_name, c.phone, sv.name, sv.duration_minutes, sv.price
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id
		LEFT JOIN services sv ON sv.id = a.service_id
		WHERE a.tenant_id = $1
		ORDER BY a.start_time ASC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.AppointmentDetail
	for rows.Next() {
		var detail models.AppointmentDetail
		appointment, err := scanAppointment(rows, &detail.CustomerName, &detail.CustomerPhone, &detail.ServiceName, &detail.ServiceDuration, &detail.ServicePrice)
		if err != nil {
			return nil, err
		}
		detail.Appointment = appointment
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *Store) ListAppointmentsByCreator(ctx context.Context, userID string) ([]models.AppointmentDetail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.tenant_id, a.customer_id, a.service_id, a.start_time, a.end_time, a.status, a.notes,
		       a.created_by, a.created_at, a.updated_at,
		       t.name, sv.name, sv.duration_minutes, sv.price
		FROM appointments a
		JOIN tenants t ON t.id = a.tenant_id
		LEFT JOIN services sv ON sv.id = a.service_id
		WHERE a.created_by = $1
		ORDER BY a.start_time ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.AppointmentDetail
	for rows.Next() {
		var detail models.AppointmentDetail
		appointment, err := scanAppointment(rows, &detail.TenantName, &detail.ServiceName, &detail.ServiceDuration, &detail.ServicePrice)
		if err != nil {
			return nil, err
		}
		detail.Appointment = appointment
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// TransitionAppointment moves an appointment to the action's target status
// only while it still holds one of the allowed source statuses.
func (s *Store) TransitionAppointment(ctx context.Context, input store.TransitionInput) (models.Appointment, error) {
	toStatus, ok := store.TransitionTarget(input.Action)
	if !ok {
		return models.Appointment{}, store.ErrInvalidState
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
		  AND (tenant_id = NULLIF($4, '')::uuid OR created_by = NULLIF($5, '')::uuid)
		  AND status = ANY($6)
		RETURNING `+appointmentColumns,
		toStatus, occurredAt, input.AppointmentID, input.Scope.TenantID, input.Scope.CreatedBy, store.TransitionSources(input.Action))
	appointment, err := scanAppointment(row)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, err
		}
		state, exists, err := loadAppointmentState(ctx, tx, input.Scope, input.AppointmentID)
		if err != nil {
			return models.Appointment{}, err
		}
		if !exists {
			return models.Appointment{}, store.ErrAppointmentNotFound
		}
		return models.Appointment{}, fmt.Errorf("%w: %s from %s", store.ErrInvalidState, input.Action, state)
	}

	if err := insertOutboxEvent(ctx, tx, appointment.TenantID, store.EventForAction(input.Action), store.NewAppointmentEvent(appointment, occurredAt), occurredAt); err != nil {
		return models.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, tenantID, appointmentID string) (models.Appointment, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		DELETE FROM appointments
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+appointmentColumns, appointmentID, tenantID)
	appointment, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, store.ErrAppointmentNotFound
		}
		return models.Appointment{}, err
	}

	deletedAt := s.now()
	if err := insertOutboxEvent(ctx, tx, tenantID, store.EventAppointmentDeleted, store.NewAppointmentEvent(appointment, deletedAt), deletedAt); err != nil {
		return models.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (s *Store) ListAppointmentStarts(ctx context.Context, tenantID string, from, to time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT start_time
		FROM appointments
		WHERE tenant_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var start time.Time
		if err := rows.Scan(&start); err != nil {
			return nil, err
		}
		starts = append(starts, start)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return starts, nil
}

func loadAppointmentState(ctx context.Context, tx pgx.Tx, scope store.Scope, appointmentID string) (string, bool, error) {
	var status string
	row := tx.QueryRow(ctx, `
		SELECT status
		FROM appointments
		WHERE id = $1 AND (tenant_id = NULLIF($2, '')::uuid OR created_by = NULLIF($3, '')::uuid)
	`, appointmentID, scope.TenantID, scope.CreatedBy)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return status, true, nil
}

func ensureTenantExists(ctx context.Context, tx pgx.Tx, tenantID string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, tenantID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrTenantNotFound
	}
	return nil
}

// ensureTenantOwns checks that id exists in table and belongs to tenantID.
// table is always a package constant, never user input.
func ensureTenantOwns(ctx context.Context, tx pgx.Tx, table, tenantID, id string, notFound error) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE id = $1 AND tenant_id = $2)`
	if err := tx.QueryRow(ctx, query, id, tenantID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return notFound
	}
	return nil
}
