package directory

import (
	"context"

	"randevulu/internal/changes"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"
)

func (s *Service) ListCustomers(ctx context.Context, actor models.Actor) ([]models.Customer, error) {
	if !actor.IsBusiness() {
		return nil, ErrForbidden
	}
	customers, err := s.store.ListCustomers(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	return customers, nil
}

type CustomerInput struct {
	FullName string
	Phone    string
	Email    string
	Notes    string
}

func (s *Service) CreateCustomer(ctx context.Context, actor models.Actor, input CustomerInput) (models.Customer, changes.Set, error) {
	if !actor.IsBusiness() {
		return models.Customer{}, nil, ErrForbidden
	}
	in, err := validate.Customer(validate.CustomerInput{
		TenantID: actor.TenantID,
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
		Notes:    input.Notes,
	})
	if err != nil {
		return models.Customer{}, nil, err
	}
	customer, err := s.store.CreateCustomer(ctx, store.CreateCustomerInput(in))
	if err != nil {
		return models.Customer{}, nil, err
	}
	return customer, customerViews(actor.TenantID, customer.CustomerID), nil
}

// FindOrCreateCustomer reuses the tenant's customer with the same phone.
func (s *Service) FindOrCreateCustomer(ctx context.Context, actor models.Actor, input CustomerInput) (models.Customer, changes.Set, error) {
	if !actor.IsBusiness() {
		return models.Customer{}, nil, ErrForbidden
	}
	in, err := validate.Customer(validate.CustomerInput{
		TenantID: actor.TenantID,
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
		Notes:    input.Notes,
	})
	if err != nil {
		return models.Customer{}, nil, err
	}
	customer, created, err := s.store.FindOrCreateCustomer(ctx, store.CreateCustomerInput(in))
	if err != nil {
		return models.Customer{}, nil, err
	}
	if !created {
		return customer, nil, nil
	}
	return customer, customerViews(actor.TenantID, customer.CustomerID), nil
}

// DeleteCustomer fails with store.ErrInUse while appointments reference the
// customer.
func (s *Service) DeleteCustomer(ctx context.Context, actor models.Actor, customerID string) (changes.Set, error) {
	if !actor.IsBusiness() {
		return nil, ErrForbidden
	}
	id, err := validate.UUID("customer_id", customerID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteCustomer(ctx, actor.TenantID, id); err != nil {
		return nil, err
	}
	return customerViews(actor.TenantID, id), nil
}

// ListServices is public so the booking page can show the catalogue.
func (s *Service) ListServices(ctx context.Context, tenantID string) ([]models.Service, error) {
	id, err := validate.UUID("tenant_id", tenantID)
	if err != nil {
		return nil, err
	}
	services, err := s.store.ListServices(ctx, id)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []models.Service{}
	}
	return services, nil
}

type ServiceInput struct {
	Name            string
	DurationMinutes int
	Price           float64
	Currency        string
}

func (s *Service) CreateService(ctx context.Context, actor models.Actor, input ServiceInput) (models.Service, changes.Set, error) {
	if !actor.IsBusiness() {
		return models.Service{}, nil, ErrForbidden
	}
	in, err := validate.Service(validate.ServiceInput{
		TenantID:        actor.TenantID,
		Name:            input.Name,
		DurationMinutes: input.DurationMinutes,
		Price:           input.Price,
		Currency:        input.Currency,
	})
	if err != nil {
		return models.Service{}, nil, err
	}
	service, err := s.store.CreateService(ctx, store.CreateServiceInput(in))
	if err != nil {
		return models.Service{}, nil, err
	}
	return service, serviceViews(actor.TenantID, service.ServiceID), nil
}

type ServiceUpdate = validate.ServiceUpdateInput

func (s *Service) UpdateService(ctx context.Context, actor models.Actor, serviceID string, update ServiceUpdate) (models.Service, changes.Set, error) {
	if !actor.IsBusiness() {
		return models.Service{}, nil, ErrForbidden
	}
	id, idErr := validate.UUID("service_id", serviceID)
	in, err := validate.ServiceUpdate(update)
	if idErr != nil {
		return models.Service{}, nil, idErr
	}
	if err != nil {
		return models.Service{}, nil, err
	}
	service, err := s.store.UpdateService(ctx, store.UpdateServiceInput{
		TenantID:        actor.TenantID,
		ServiceID:       id,
		Name:            in.Name,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
	})
	if err != nil {
		return models.Service{}, nil, err
	}
	return service, serviceViews(actor.TenantID, id), nil
}

func (s *Service) DeleteService(ctx context.Context, actor models.Actor, serviceID string) (changes.Set, error) {
	if !actor.IsBusiness() {
		return nil, ErrForbidden
	}
	id, err := validate.UUID("service_id", serviceID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteService(ctx, actor.TenantID, id); err != nil {
		return nil, err
	}
	return serviceViews(actor.TenantID, id), nil
}

func customerViews(tenantID, customerID string) changes.Set {
	var set changes.Set
	set = set.Add(changes.Customers, tenantID, customerID)
	return set.Add(changes.Dashboard, tenantID, "")
}

func serviceViews(tenantID, serviceID string) changes.Set {
	var set changes.Set
	set = set.Add(changes.Services, tenantID, serviceID)
	return set.Add(changes.Dashboard, tenantID, "")
}
