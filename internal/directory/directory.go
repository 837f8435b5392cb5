// Package directory manages the records around appointments: tenants and
// their settings, profiles, customers and the service catalogue.
package directory

import (
	"context"
	"errors"

	"randevulu/internal/changes"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"

	"go.uber.org/zap"
)

var ErrForbidden = errors.New("operation not allowed for this account")

type Store interface {
	store.TenantStore
	store.ProfileStore
	store.CustomerStore
	store.ServiceStore
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(st Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, logger: logger}
}

func (s *Service) GetTenant(ctx context.Context, tenantID string) (models.Tenant, error) {
	id, err := validate.UUID("tenant_id", tenantID)
	if err != nil {
		return models.Tenant{}, err
	}
	return s.store.GetTenant(ctx, id)
}

// ListTenants backs the public explore page, newest first.
func (s *Service) ListTenants(ctx context.Context, city string) ([]models.Tenant, error) {
	tenants, err := s.store.ListTenants(ctx, city)
	if err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []models.Tenant{}
	}
	return tenants, nil
}

type TenantInput = validate.TenantInput

// SaveTenant updates the owner's tenant. A customer saving settings for the
// first time creates a tenant and becomes its owner.
func (s *Service) SaveTenant(ctx context.Context, actor models.Actor, input TenantInput) (models.Tenant, models.Actor, changes.Set, error) {
	in, err := validate.Tenant(input)
	if err != nil {
		return models.Tenant{}, actor, nil, err
	}
	if in.Settings.WorkingHours == nil {
		in.Settings.WorkingHours = models.DefaultWorkingHours()
	}

	switch {
	case actor.Role == models.RoleOwner && actor.TenantID != "":
		tenant, err := s.store.UpdateTenant(ctx, store.UpdateTenantInput{
			TenantID:         actor.TenantID,
			Name:             in.Name,
			SubscriptionTier: in.SubscriptionTier,
			Settings:         in.Settings,
		})
		if err != nil {
			return models.Tenant{}, actor, nil, err
		}
		return tenant, actor, tenantViews(tenant.TenantID), nil
	case actor.Role == models.RoleCustomer && !actor.IsAnonymous():
		profile, err := s.store.GetProfile(ctx, actor.UserID)
		if err != nil {
			return models.Tenant{}, actor, nil, err
		}
		tenant, owner, err := s.store.CreateTenantWithOwner(ctx, store.CreateTenantInput{
			Name:             in.Name,
			SubscriptionTier: in.SubscriptionTier,
			Settings:         in.Settings,
			OwnerID:          profile.ProfileID,
			OwnerName:        profile.FullName,
		})
		if err != nil {
			return models.Tenant{}, actor, nil, err
		}
		s.logger.Info("tenant created",
			zap.String("tenant_id", tenant.TenantID),
			zap.String("owner_id", owner.ProfileID))
		upgraded := models.Actor{UserID: owner.ProfileID, Role: owner.Role, TenantID: tenant.TenantID}
		set := tenantViews(tenant.TenantID).Add(changes.Profile, owner.ProfileID, "")
		return tenant, upgraded, set, nil
	default:
		return models.Tenant{}, actor, nil, ErrForbidden
	}
}

func (s *Service) GetProfile(ctx context.Context, actor models.Actor) (models.Profile, error) {
	if actor.IsAnonymous() {
		return models.Profile{}, ErrForbidden
	}
	return s.store.GetProfile(ctx, actor.UserID)
}

func (s *Service) UpdateProfile(ctx context.Context, actor models.Actor, fullName, phone string) (models.Profile, changes.Set, error) {
	if actor.IsAnonymous() {
		return models.Profile{}, nil, ErrForbidden
	}
	in, err := validate.Profile(validate.ProfileInput{
		FullName: fullName,
		Phone:    phone,
		Role:     actor.Role,
		TenantID: actor.TenantID,
	})
	if err != nil {
		return models.Profile{}, nil, err
	}
	profile, err := s.store.UpdateProfile(ctx, store.UpdateProfileInput{
		ProfileID: actor.UserID,
		FullName:  in.FullName,
		Phone:     in.Phone,
	})
	if err != nil {
		return models.Profile{}, nil, err
	}
	var set changes.Set
	return profile, set.Add(changes.Profile, actor.UserID, ""), nil
}

func tenantViews(tenantID string) changes.Set {
	var set changes.Set
	return set.Add(changes.Tenant, tenantID, "")
}
