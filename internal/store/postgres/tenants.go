package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tenantColumns = `id, name, subscription_tier, settings, created_at`

func scanTenant(row pgx.Row) (models.Tenant, error) {
	var (
		tenant   models.Tenant
		settings []byte
	)
	if err := row.Scan(&tenant.TenantID, &tenant.Name, &tenant.SubscriptionTier, &settings, &tenant.CreatedAt); err != nil {
		return models.Tenant{}, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &tenant.Settings); err != nil {
			return models.Tenant{}, err
		}
	}
	return tenant, nil
}

func (s *Store) GetTenant(ctx context.Context, tenantID string) (models.Tenant, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, tenantID)
	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tenant{}, store.ErrTenantNotFound
		}
		return models.Tenant{}, err
	}
	return tenant, nil
}

// ListTenants returns newest tenants first, optionally filtered by city
// (case-insensitive).
func (s *Store) ListTenants(ctx context.Context, city string) ([]models.Tenant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE $1 = '' OR lower(settings->>'city') = lower($1)
		ORDER BY created_at DESC
	`, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (s *Store) CreateTenantWithOwner(ctx context.Context, input store.CreateTenantInput) (models.Tenant, models.Profile, error) {
	settings, err := jsonBytes(input.Settings)
	if err != nil {
		return models.Tenant{}, models.Profile{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Tenant{}, models.Profile{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tier := input.SubscriptionTier
	if tier == "" {
		tier = models.TierFree
	}
	tenant, err := scanTenant(tx.QueryRow(ctx, `
		INSERT INTO tenants (id, name, subscription_tier, settings, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+tenantColumns,
		uuid.NewString(), input.Name, tier, settings, s.now()))
	if err != nil {
		return models.Tenant{}, models.Profile{}, err
	}

	profile, err := scanProfile(tx.QueryRow(ctx, `
		INSERT INTO profiles (id, full_name, role, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role, tenant_id = EXCLUDED.tenant_id
		RETURNING `+profileColumns,
		input.OwnerID, input.OwnerName, models.RoleOwner, tenant.TenantID, s.now()))
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return models.Tenant{}, models.Profile{}, store.ErrAccountNotFound
		}
		return models.Tenant{}, models.Profile{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Tenant{}, models.Profile{}, err
	}
	return tenant, profile, nil
}

func (s *Store) UpdateTenant(ctx context.Context, input store.UpdateTenantInput) (models.Tenant, error) {
	settings, err := jsonBytes(input.Settings)
	if err != nil {
		return models.Tenant{}, err
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE tenants
		SET name = $2, subscription_tier = COALESCE(NULLIF($3, ''), subscription_tier), settings = $4
		WHERE id = $1
		RETURNING `+tenantColumns,
		input.TenantID, input.Name, input.SubscriptionTier, settings)
	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tenant{}, store.ErrTenantNotFound
		}
		return models.Tenant{}, err
	}
	return tenant, nil
}
