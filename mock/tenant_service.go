package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.TenantService = (*TenantService)(nil)

// TenantService is a mock implementation of castiel.TenantService.
type TenantService struct {
	FindTenantByIDFn func(ctx context.Context, id platform.ID) (*castiel.Tenant, error)
	FindTenantFn     func(ctx context.Context, filter castiel.TenantFilter) (*castiel.Tenant, error)
	FindTenantsFn    func(ctx context.Context, filter castiel.TenantFilter, opt ...castiel.FindOptions) ([]*castiel.Tenant, int, error)
	CreateTenantFn   func(ctx context.Context, t *castiel.Tenant) error
	UpdateTenantFn   func(ctx context.Context, id platform.ID, upd castiel.TenantUpdate) (*castiel.Tenant, error)
	DeleteTenantFn   func(ctx context.Context, id platform.ID) error
}

// FindTenantByID returns a single tenant by ID.
func (s *TenantService) FindTenantByID(ctx context.Context, id platform.ID) (*castiel.Tenant, error) {
	return s.FindTenantByIDFn(ctx, id)
}

// FindTenant returns the first tenant that matches filter.
func (s *TenantService) FindTenant(ctx context.Context, filter castiel.TenantFilter) (*castiel.Tenant, error) {
	return s.FindTenantFn(ctx, filter)
}

// FindTenants returns a list of tenants that match filter.
func (s *TenantService) FindTenants(ctx context.Context, filter castiel.TenantFilter, opt ...castiel.FindOptions) ([]*castiel.Tenant, int, error) {
	return s.FindTenantsFn(ctx, filter, opt...)
}

// CreateTenant creates a new tenant.
func (s *TenantService) CreateTenant(ctx context.Context, t *castiel.Tenant) error {
	return s.CreateTenantFn(ctx, t)
}

// UpdateTenant updates a single tenant with changeset.
func (s *TenantService) UpdateTenant(ctx context.Context, id platform.ID, upd castiel.TenantUpdate) (*castiel.Tenant, error) {
	return s.UpdateTenantFn(ctx, id, upd)
}

// DeleteTenant removes a tenant by ID.
func (s *TenantService) DeleteTenant(ctx context.Context, id platform.ID) error {
	return s.DeleteTenantFn(ctx, id)
}
