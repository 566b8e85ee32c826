package castiel

import (
	"context"
	"time"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
)

// Ops for quota errors and quota journal events.
const (
	OpFindQuotaByID      = "FindQuotaByID"
	OpFindQuotas         = "FindQuotas"
	OpCreateQuota        = "CreateQuota"
	OpUpdateQuota        = "UpdateQuota"
	OpDeleteQuota        = "DeleteQuota"
	OpSetQuotaAttainment = "SetQuotaAttainment"
	OpRollupQuota        = "RollupQuota"
	OpForecastQuota      = "ForecastQuota"
)

// Quota is a revenue target for a period, owned by a user and optionally
// nested under a parent quota. Amounts are decimals; they are money.
type Quota struct {
	ID          platform.ID     `json:"id,omitempty"`
	TenantID    platform.ID     `json:"tenantID"`
	OwnerID     platform.ID     `json:"ownerID,omitempty"`
	ParentID    *platform.ID    `json:"parentID,omitempty"`
	Name        string          `json:"name"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	Target      decimal.Decimal `json:"target"`
	Attained    decimal.Decimal `json:"attained"`
	CRUDLog
}

// Valid validates the quota record. Child periods must nest inside the
// parent period; that check needs the parent and lives in the service.
func (q Quota) Valid() error {
	if q.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "quota name cannot be empty",
		}
	}
	if !q.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "quota tenant id is invalid",
		}
	}
	if !q.PeriodEnd.After(q.PeriodStart) {
		return &Error{
			Code: EInvalid,
			Msg:  "quota period end must follow period start",
		}
	}
	if q.Target.IsNegative() {
		return &Error{
			Code: EInvalid,
			Msg:  "quota target cannot be negative",
		}
	}
	return nil
}

// QuotaSnapshot is one point of attainment history, captured whenever
// attainment is set. Snapshots feed forecasting.
type QuotaSnapshot struct {
	ID         platform.ID     `json:"id,omitempty"`
	QuotaID    platform.ID     `json:"quotaID"`
	Attained   decimal.Decimal `json:"attained"`
	CapturedAt time.Time       `json:"capturedAt"`
}

// QuotaRollup is the on-demand aggregation of a quota subtree. Totals
// include the node itself and every descendant.
type QuotaRollup struct {
	Quota         *Quota          `json:"quota"`
	Children      []*QuotaRollup  `json:"children,omitempty"`
	TargetTotal   decimal.Decimal `json:"targetTotal"`
	AttainedTotal decimal.Decimal `json:"attainedTotal"`
	// Percent is attained over target, as a percentage rounded to two
	// places. Zero targets report zero, not a division error.
	Percent decimal.Decimal `json:"percent"`
}

// ForecastSource tells which path produced a forecast.
type ForecastSource string

const (
	// ForecastSourceModel means a deployed forecasting model was called.
	ForecastSourceModel ForecastSource = "model"
	// ForecastSourceLinear means the built-in linear projection ran, either
	// by choice or as fallback when no model is deployed.
	ForecastSourceLinear ForecastSource = "linear"
)

// QuotaForecast projects attainment forward from the snapshot history.
type QuotaForecast struct {
	QuotaID   platform.ID     `json:"quotaID"`
	Generated time.Time       `json:"generated"`
	Periods   int             `json:"periods"`
	P10       decimal.Decimal `json:"p10"`
	P50       decimal.Decimal `json:"p50"`
	P90       decimal.Decimal `json:"p90"`
	Source    ForecastSource  `json:"source"`
}

// QuotaFilter represents a set of filters that restrict the returned results.
type QuotaFilter struct {
	TenantID    platform.ID
	OwnerID     *platform.ID
	ParentID    *platform.ID
	RootsOnly   bool
	PeriodAfter *time.Time
}

// QueryParams implements PagingFilter.
func (f QuotaFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.OwnerID != nil {
		qp["ownerID"] = []string{f.OwnerID.String()}
	}
	if f.ParentID != nil {
		qp["parentID"] = []string{f.ParentID.String()}
	}
	if f.RootsOnly {
		qp["rootsOnly"] = []string{"true"}
	}
	if f.PeriodAfter != nil {
		qp["periodAfter"] = []string{f.PeriodAfter.Format(time.RFC3339)}
	}
	return qp
}

// QuotaUpdate is the set of changes to apply to a quota.
type QuotaUpdate struct {
	Name        *string          `json:"name,omitempty"`
	OwnerID     *platform.ID     `json:"ownerID,omitempty"`
	PeriodStart *time.Time       `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time       `json:"periodEnd,omitempty"`
	Target      *decimal.Decimal `json:"target,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd QuotaUpdate) Valid() error {
	if upd.Name != nil && *upd.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "quota name cannot be empty",
		}
	}
	if upd.Target != nil && upd.Target.IsNegative() {
		return &Error{
			Code: EInvalid,
			Msg:  "quota target cannot be negative",
		}
	}
	return nil
}

// QuotaService represents a service for managing quotas, their attainment
// history, and the rollup/forecast reads built on them.
type QuotaService interface {
	// FindQuotaByID returns a single quota by ID.
	FindQuotaByID(ctx context.Context, tenantID, id platform.ID) (*Quota, error)

	// FindQuotas returns the quotas matching filter and the total count of
	// matching quotas.
	FindQuotas(ctx context.Context, filter QuotaFilter, opt ...FindOptions) ([]*Quota, int, error)

	// CreateQuota creates a new quota and sets q.ID. A parent, when named,
	// must exist in the same tenant and contain the child period.
	CreateQuota(ctx context.Context, q *Quota) error

	// UpdateQuota applies the changeset and returns the new state.
	UpdateQuota(ctx context.Context, tenantID, id platform.ID, upd QuotaUpdate) (*Quota, error)

	// SetAttainment records the current attainment and captures a snapshot.
	SetAttainment(ctx context.Context, tenantID, id platform.ID, attained decimal.Decimal) (*Quota, error)

	// DeleteQuota removes a quota. Refused while children exist.
	DeleteQuota(ctx context.Context, tenantID, id platform.ID) error

	// RollupQuota walks the subtree under id and aggregates targets and
	// attainment. The walk is cycle-safe.
	RollupQuota(ctx context.Context, tenantID, id platform.ID) (*QuotaRollup, error)

	// ForecastQuota projects attainment periods steps forward, through a
	// deployed forecasting model when the tenant has one, otherwise through
	// linear projection over the snapshot history.
	ForecastQuota(ctx context.Context, tenantID, id platform.ID, periods int) (*QuotaForecast, error)

	// FindQuotaSnapshots returns the attainment history of a quota in
	// capture order.
	FindQuotaSnapshots(ctx context.Context, tenantID, id platform.ID) ([]*QuotaSnapshot, error)
}
