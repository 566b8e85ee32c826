package quota

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var _ castiel.QuotaService = (*QuotaMetrics)(nil)

// QuotaMetrics records RED metrics for quota service calls.
type QuotaMetrics struct {
	rec          *metric.REDClient
	quotaService castiel.QuotaService
}

// NewQuotaMetrics returns a metrics service middleware for the Quota Service.
func NewQuotaMetrics(reg prometheus.Registerer, s castiel.QuotaService) *QuotaMetrics {
	return &QuotaMetrics{
		rec:          metric.New(reg, "quota"),
		quotaService: s,
	}
}

func (m *QuotaMetrics) FindQuotaByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Quota, error) {
	rec := m.rec.Record("find_quota_by_id")
	q, err := m.quotaService.FindQuotaByID(ctx, tenantID, id)
	return q, rec(err)
}

func (m *QuotaMetrics) FindQuotas(ctx context.Context, filter castiel.QuotaFilter, opt ...castiel.FindOptions) ([]*castiel.Quota, int, error) {
	rec := m.rec.Record("find_quotas")
	quotas, n, err := m.quotaService.FindQuotas(ctx, filter, opt...)
	return quotas, n, rec(err)
}

func (m *QuotaMetrics) CreateQuota(ctx context.Context, q *castiel.Quota) error {
	rec := m.rec.Record("create_quota")
	err := m.quotaService.CreateQuota(ctx, q)
	return rec(err)
}

func (m *QuotaMetrics) UpdateQuota(ctx context.Context, tenantID, id platform.ID, upd castiel.QuotaUpdate) (*castiel.Quota, error) {
	rec := m.rec.Record("update_quota")
	q, err := m.quotaService.UpdateQuota(ctx, tenantID, id, upd)
	return q, rec(err)
}

func (m *QuotaMetrics) SetAttainment(ctx context.Context, tenantID, id platform.ID, attained decimal.Decimal) (*castiel.Quota, error) {
	rec := m.rec.Record("set_quota_attainment")
	q, err := m.quotaService.SetAttainment(ctx, tenantID, id, attained)
	return q, rec(err)
}

func (m *QuotaMetrics) DeleteQuota(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("delete_quota")
	err := m.quotaService.DeleteQuota(ctx, tenantID, id)
	return rec(err)
}

func (m *QuotaMetrics) RollupQuota(ctx context.Context, tenantID, id platform.ID) (*castiel.QuotaRollup, error) {
	rec := m.rec.Record("rollup_quota")
	r, err := m.quotaService.RollupQuota(ctx, tenantID, id)
	return r, rec(err)
}

func (m *QuotaMetrics) ForecastQuota(ctx context.Context, tenantID, id platform.ID, periods int) (*castiel.QuotaForecast, error) {
	rec := m.rec.Record("forecast_quota")
	f, err := m.quotaService.ForecastQuota(ctx, tenantID, id, periods)
	return f, rec(err)
}

func (m *QuotaMetrics) FindQuotaSnapshots(ctx context.Context, tenantID, id platform.ID) ([]*castiel.QuotaSnapshot, error) {
	rec := m.rec.Record("find_quota_snapshots")
	snaps, err := m.quotaService.FindQuotaSnapshots(ctx, tenantID, id)
	return snaps, rec(err)
}
