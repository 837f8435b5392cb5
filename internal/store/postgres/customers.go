package postgres

import (
	"context"
	"errors"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, tenant_id, full_name, phone, email, notes, created_at`

func scanCustomer(row pgx.Row) (models.Customer, error) {
	var customer models.Customer
	err := row.Scan(&customer.CustomerID, &customer.TenantID, &customer.FullName, &customer.Phone, &customer.Email, &customer.Notes, &customer.CreatedAt)
	return customer, err
}

func (s *Store) ListCustomers(ctx context.Context, tenantID string) ([]models.Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE tenant_id = $1
		ORDER BY full_name ASC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) CreateCustomer(ctx context.Context, input store.CreateCustomerInput) (models.Customer, error) {
	customer, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (id, tenant_id, full_name, phone, email, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+customerColumns,
		uuid.NewString(), input.TenantID, input.FullName, nullIfEmpty(input.Phone), nullIfEmpty(input.Email), nullIfEmpty(input.Notes), s.now()))
	if err != nil {
		return models.Customer{}, mapCustomerWriteError(err)
	}
	return customer, nil
}

func (s *Store) FindOrCreateCustomer(ctx context.Context, input store.CreateCustomerInput) (models.Customer, bool, error) {
	if input.Phone == "" {
		customer, err := s.CreateCustomer(ctx, input)
		return customer, err == nil, err
	}

	customer, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (id, tenant_id, full_name, phone, email, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, phone) WHERE phone IS NOT NULL DO NOTHING
		RETURNING `+customerColumns,
		uuid.NewString(), input.TenantID, input.FullName, input.Phone, nullIfEmpty(input.Email), nullIfEmpty(input.Notes), s.now()))
	if err == nil {
		return customer, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Customer{}, false, mapCustomerWriteError(err)
	}

	customer, err = scanCustomer(s.pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE tenant_id = $1 AND phone = $2
	`, input.TenantID, input.Phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Customer{}, false, store.ErrCustomerNotFound
		}
		return models.Customer{}, false, err
	}
	return customer, false, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, tenantID, customerID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1 AND tenant_id = $2`, customerID, tenantID)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return store.ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrCustomerNotFound
	}
	return nil
}

func mapCustomerWriteError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolation:
		return store.ErrCustomerExists
	case foreignKeyViolation:
		return store.ErrTenantNotFound
	default:
		return err
	}
}
