package postgres

import (
	"context"
	"errors"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, full_name, phone, role, tenant_id, created_at`

func scanProfile(row pgx.Row) (models.Profile, error) {
	var profile models.Profile
	err := row.Scan(&profile.ProfileID, &profile.FullName, &profile.Phone, &profile.Role, &profile.TenantID, &profile.CreatedAt)
	return profile, err
}

func (s *Store) GetProfile(ctx context.Context, profileID string) (models.Profile, error) {
	profile, err := scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, store.ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}

func (s *Store) UpdateProfile(ctx context.Context, input store.UpdateProfileInput) (models.Profile, error) {
	profile, err := scanProfile(s.pool.QueryRow(ctx, `
		UPDATE profiles
		SET full_name = $2, phone = $3
		WHERE id = $1
		RETURNING `+profileColumns,
		input.ProfileID, input.FullName, nullIfEmpty(input.Phone)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, store.ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}

// GetTenantOwner returns the earliest owner profile of a tenant.
func (s *Store) GetTenantOwner(ctx context.Context, tenantID string) (models.Profile, error) {
	profile, err := scanProfile(s.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE tenant_id = $1 AND role = $2
		ORDER BY created_at ASC
		LIMIT 1
	`, tenantID, models.RoleOwner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, store.ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}
