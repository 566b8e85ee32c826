package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
)

var _ castiel.QuotaService = (*QuotaService)(nil)

// QuotaService is a mock implementation of castiel.QuotaService.
type QuotaService struct {
	FindQuotaByIDFn      func(ctx context.Context, tenantID, id platform.ID) (*castiel.Quota, error)
	FindQuotasFn         func(ctx context.Context, filter castiel.QuotaFilter, opt ...castiel.FindOptions) ([]*castiel.Quota, int, error)
	CreateQuotaFn        func(ctx context.Context, q *castiel.Quota) error
	UpdateQuotaFn        func(ctx context.Context, tenantID, id platform.ID, upd castiel.QuotaUpdate) (*castiel.Quota, error)
	SetAttainmentFn      func(ctx context.Context, tenantID, id platform.ID, attained decimal.Decimal) (*castiel.Quota, error)
	DeleteQuotaFn        func(ctx context.Context, tenantID, id platform.ID) error
	RollupQuotaFn        func(ctx context.Context, tenantID, id platform.ID) (*castiel.QuotaRollup, error)
	ForecastQuotaFn      func(ctx context.Context, tenantID, id platform.ID, periods int) (*castiel.QuotaForecast, error)
	FindQuotaSnapshotsFn func(ctx context.Context, tenantID, id platform.ID) ([]*castiel.QuotaSnapshot, error)
}

// FindQuotaByID returns a single quota by ID.
func (s *QuotaService) FindQuotaByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Quota, error) {
	return s.FindQuotaByIDFn(ctx, tenantID, id)
}

// FindQuotas returns the quotas matching filter.
func (s *QuotaService) FindQuotas(ctx context.Context, filter castiel.QuotaFilter, opt ...castiel.FindOptions) ([]*castiel.Quota, int, error) {
	return s.FindQuotasFn(ctx, filter, opt...)
}

// CreateQuota creates a new quota.
func (s *QuotaService) CreateQuota(ctx context.Context, q *castiel.Quota) error {
	return s.CreateQuotaFn(ctx, q)
}

// UpdateQuota applies the changeset to a quota.
func (s *QuotaService) UpdateQuota(ctx context.Context, tenantID, id platform.ID, upd castiel.QuotaUpdate) (*castiel.Quota, error) {
	return s.UpdateQuotaFn(ctx, tenantID, id, upd)
}

// SetAttainment records the current attainment and captures a snapshot.
func (s *QuotaService) SetAttainment(ctx context.Context, tenantID, id platform.ID, attained decimal.Decimal) (*castiel.Quota, error) {
	return s.SetAttainmentFn(ctx, tenantID, id, attained)
}

// DeleteQuota removes a quota.
func (s *QuotaService) DeleteQuota(ctx context.Context, tenantID, id platform.ID) error {
	return s.DeleteQuotaFn(ctx, tenantID, id)
}

// RollupQuota walks the subtree under id and aggregates targets and attainment.
func (s *QuotaService) RollupQuota(ctx context.Context, tenantID, id platform.ID) (*castiel.QuotaRollup, error) {
	return s.RollupQuotaFn(ctx, tenantID, id)
}

// ForecastQuota projects attainment periods steps forward.
func (s *QuotaService) ForecastQuota(ctx context.Context, tenantID, id platform.ID, periods int) (*castiel.QuotaForecast, error) {
	return s.ForecastQuotaFn(ctx, tenantID, id, periods)
}

// FindQuotaSnapshots returns the attainment history of a quota.
func (s *QuotaService) FindQuotaSnapshots(ctx context.Context, tenantID, id platform.ID) ([]*castiel.QuotaSnapshot, error) {
	return s.FindQuotaSnapshotsFn(ctx, tenantID, id)
}
