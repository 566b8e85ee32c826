package tenant

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
)

// TenantMetrics is a metrics service middleware for the tenant service.
type TenantMetrics struct {
	rec           *metric.REDClient
	tenantService castiel.TenantService
}

var _ castiel.TenantService = (*TenantMetrics)(nil)

// NewTenantMetrics returns a metrics service middleware for the tenant
// service.
func NewTenantMetrics(reg prometheus.Registerer, s castiel.TenantService) *TenantMetrics {
	return &TenantMetrics{
		rec:           metric.New(reg, "tenant"),
		tenantService: s,
	}
}

func (m *TenantMetrics) CreateTenant(ctx context.Context, t *castiel.Tenant) error {
	rec := m.rec.Record("create_tenant")
	err := m.tenantService.CreateTenant(ctx, t)
	return rec(err)
}

func (m *TenantMetrics) FindTenantByID(ctx context.Context, id platform.ID) (*castiel.Tenant, error) {
	rec := m.rec.Record("find_tenant_by_id")
	t, err := m.tenantService.FindTenantByID(ctx, id)
	return t, rec(err)
}

func (m *TenantMetrics) FindTenant(ctx context.Context, filter castiel.TenantFilter) (*castiel.Tenant, error) {
	rec := m.rec.Record("find_tenant")
	t, err := m.tenantService.FindTenant(ctx, filter)
	return t, rec(err)
}

func (m *TenantMetrics) FindTenants(ctx context.Context, filter castiel.TenantFilter, opt ...castiel.FindOptions) ([]*castiel.Tenant, int, error) {
	rec := m.rec.Record("find_tenants")
	ts, n, err := m.tenantService.FindTenants(ctx, filter, opt...)
	return ts, n, rec(err)
}

func (m *TenantMetrics) UpdateTenant(ctx context.Context, id platform.ID, upd castiel.TenantUpdate) (*castiel.Tenant, error) {
	rec := m.rec.Record("update_tenant")
	t, err := m.tenantService.UpdateTenant(ctx, id, upd)
	return t, rec(err)
}

func (m *TenantMetrics) DeleteTenant(ctx context.Context, id platform.ID) error {
	rec := m.rec.Record("delete_tenant")
	err := m.tenantService.DeleteTenant(ctx, id)
	return rec(err)
}
