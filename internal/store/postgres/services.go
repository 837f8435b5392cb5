package postgres

import (
	"context"
	"errors"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const serviceColumns = `id, tenant_id, name, duration_minutes, price, currency, created_at`

func scanService(row pgx.Row) (models.Service, error) {
	var service models.Service
	err := row.Scan(&service.ServiceID, &service.TenantID, &service.Name, &service.DurationMinutes, &service.Price, &service.Currency, &service.CreatedAt)
	return service, err
}

func (s *Store) ListServices(ctx context.Context, tenantID string) ([]models.Service, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE tenant_id = $1
		ORDER BY created_at ASC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Store) GetService(ctx context.Context, tenantID, serviceID string) (models.Service, error) {
	service, err := scanService(s.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+` FROM services WHERE id = $1 AND tenant_id = $2
	`, serviceID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Service{}, store.ErrServiceNotFound
		}
		return models.Service{}, err
	}
	return service, nil
}

func (s *Store) CreateService(ctx context.Context, input store.CreateServiceInput) (models.Service, error) {
	currency := input.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	service, err := scanService(s.pool.QueryRow(ctx, `
		INSERT INTO services (id, tenant_id, name, duration_minutes, price, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+serviceColumns,
		uuid.NewString(), input.TenantID, input.Name, input.DurationMinutes, input.Price, currency, s.now()))
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return models.Service{}, store.ErrTenantNotFound
		}
		return models.Service{}, err
	}
	return service, nil
}

// UpdateService changes only the fields that are set.
func (s *Store) UpdateService(ctx context.Context, input store.UpdateServiceInput) (models.Service, error) {
	service, err := scanService(s.pool.QueryRow(ctx, `
		UPDATE services
		SET name = COALESCE($3, name),
		    duration_minutes = COALESCE($4, duration_minutes),
		    price = COALESCE($5, price)
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+serviceColumns,
		input.ServiceID, input.TenantID, input.Name, input.DurationMinutes, input.Price))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Service{}, store.ErrServiceNotFound
		}
		return models.Service{}, err
	}
	return service, nil
}

func (s *Store) DeleteService(ctx context.Context, tenantID, serviceID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM services WHERE id = $1 AND tenant_id = $2`, serviceID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrServiceNotFound
	}
	return nil
}
