// Package quota implements revenue targets over sqlite: CRUD, attainment
// snapshots, subtree rollups, and forecasting.
package quota

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/snowflake"
	"github.com/Edgame2/castiel/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ castiel.QuotaService = (*Service)(nil)

// Service implements the quota service over the shared sqlite store.
type Service struct {
	store       *sqlite.SqlStore
	log         *zap.Logger
	idGenerator platform.IDGenerator

	// Forecasting collaborators. Both may be nil; forecasts then always
	// take the linear path.
	models castiel.AIModelService
	scorer castiel.ScoringService
}

// NewService constructs a quota service. models and scorer feed the
// model-backed forecast path and may be nil.
func NewService(logger *zap.Logger, store *sqlite.SqlStore, models castiel.AIModelService, scorer castiel.ScoringService) *Service {
	return &Service{
		store:       store,
		log:         logger,
		idGenerator: snowflake.NewIDGenerator(),
		models:      models,
		scorer:      scorer,
	}
}

type quotaRow struct {
	ID          string         `db:"id"`
	TenantID    string         `db:"tenant_id"`
	OwnerID     sql.NullString `db:"owner_id"`
	ParentID    sql.NullString `db:"parent_id"`
	Name        string         `db:"name"`
	PeriodStart string         `db:"period_start"`
	PeriodEnd   string         `db:"period_end"`
	Target      string         `db:"target"`
	Attained    string         `db:"attained"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

func (r quotaRow) toQuota() (*castiel.Quota, error) {
	q := &castiel.Quota{Name: r.Name}

	if err := q.ID.DecodeFromString(r.ID); err != nil {
		return nil, err
	}
	if err := q.TenantID.DecodeFromString(r.TenantID); err != nil {
		return nil, err
	}
	if r.OwnerID.Valid {
		if err := q.OwnerID.DecodeFromString(r.OwnerID.String); err != nil {
			return nil, err
		}
	}
	if r.ParentID.Valid {
		var parentID platform.ID
		if err := parentID.DecodeFromString(r.ParentID.String); err != nil {
			return nil, err
		}
		q.ParentID = &parentID
	}

	var err error
	if q.PeriodStart, err = time.Parse(time.RFC3339Nano, r.PeriodStart); err != nil {
		return nil, err
	}
	if q.PeriodEnd, err = time.Parse(time.RFC3339Nano, r.PeriodEnd); err != nil {
		return nil, err
	}
	if q.Target, err = decimal.NewFromString(r.Target); err != nil {
		return nil, err
	}
	if q.Attained, err = decimal.NewFromString(r.Attained); err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.SetCreatedAt(createdAt)
	q.SetUpdatedAt(updatedAt)
	return q, nil
}

func nullableID(id platform.ID) interface{} {
	if !id.Valid() {
		return nil
	}
	return id.String()
}

func nullableIDPtr(id *platform.ID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

var quotaColumns = []string{"id", "tenant_id", "owner_id", "parent_id", "name", "period_start", "period_end", "target", "attained", "created_at", "updated_at"}

func (s *Service) getQuota(ctx context.Context, tenantID, id platform.ID) (*castiel.Quota, error) {
	query, args, err := sq.Select(quotaColumns...).
		From("quotas").
		Where(sq.Eq{"id": id.String(), "tenant_id": tenantID.String()}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var r quotaRow
	if err := s.store.DB.GetContext(ctx, &r, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQuotaNotFound
		}
		return nil, err
	}
	return r.toQuota()
}

func (s *Service) putQuota(ctx context.Context, q *castiel.Quota) error {
	query, args, err := sq.Replace("quotas").
		Columns(quotaColumns...).
		Values(
			q.ID.String(),
			q.TenantID.String(),
			nullableID(q.OwnerID),
			nullableIDPtr(q.ParentID),
			q.Name,
			q.PeriodStart.Format(time.RFC3339Nano),
			q.PeriodEnd.Format(time.RFC3339Nano),
			q.Target.String(),
			q.Attained.String(),
			q.CreatedAt.Format(time.RFC3339Nano),
			q.UpdatedAt.Format(time.RFC3339Nano),
		).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.store.DB.ExecContext(ctx, query, args...)
	return err
}

// FindQuotaByID returns a single quota by ID.
func (s *Service) FindQuotaByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Quota, error) {
	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()
	return s.getQuota(ctx, tenantID, id)
}

// FindQuotas returns the quotas matching filter and the total count of
// matching quotas.
func (s *Service) FindQuotas(ctx context.Context, filter castiel.QuotaFilter, opt ...castiel.FindOptions) ([]*castiel.Quota, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	conds := sq.And{sq.Eq{"tenant_id": filter.TenantID.String()}}
	if filter.OwnerID != nil {
		conds = append(conds, sq.Eq{"owner_id": filter.OwnerID.String()})
	}
	if filter.ParentID != nil {
		conds = append(conds, sq.Eq{"parent_id": filter.ParentID.String()})
	}
	if filter.RootsOnly {
		conds = append(conds, sq.Eq{"parent_id": nil})
	}
	if filter.PeriodAfter != nil {
		conds = append(conds, sq.GtOrEq{"period_end": filter.PeriodAfter.Format(time.RFC3339Nano)})
	}

	countQuery, countArgs, err := sq.Select("COUNT(*)").From("quotas").Where(conds).ToSql()
	if err != nil {
		return nil, 0, err
	}

	q := sq.Select(quotaColumns...).From("quotas").Where(conds).OrderBy("period_start", "name")
	if o.Limit > 0 {
		q = q.Limit(uint64(o.Limit))
	}
	if o.Offset > 0 {
		q = q.Offset(uint64(o.Offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	var total int
	if err := s.store.DB.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	var rows []quotaRow
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	quotas := make([]*castiel.Quota, 0, len(rows))
	for _, r := range rows {
		quota, err := r.toQuota()
		if err != nil {
			return nil, 0, err
		}
		quotas = append(quotas, quota)
	}
	return quotas, total, nil
}

func periodInside(child, parent *castiel.Quota) bool {
	return !child.PeriodStart.Before(parent.PeriodStart) && !child.PeriodEnd.After(parent.PeriodEnd)
}

// CreateQuota creates a new quota and sets q.ID. A parent, when named, must
// exist in the same tenant and contain the child period.
func (s *Service) CreateQuota(ctx context.Context, q *castiel.Quota) error {
	if err := q.Valid(); err != nil {
		return err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	if q.ParentID != nil {
		parent, err := s.getQuota(ctx, q.TenantID, *q.ParentID)
		if err != nil {
			return err
		}
		if !periodInside(q, parent) {
			return ErrPeriodOutsideParent
		}
	}

	q.ID = s.idGenerator.ID()
	now := time.Now().UTC()
	q.SetCreatedAt(now)
	q.SetUpdatedAt(now)
	return s.putQuota(ctx, q)
}

// UpdateQuota applies the changeset and returns the new state. Period
// changes are revalidated against the parent.
func (s *Service) UpdateQuota(ctx context.Context, tenantID, id platform.ID, upd castiel.QuotaUpdate) (*castiel.Quota, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	q, err := s.getQuota(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		q.Name = *upd.Name
	}
	if upd.OwnerID != nil {
		q.OwnerID = *upd.OwnerID
	}
	if upd.PeriodStart != nil {
		q.PeriodStart = *upd.PeriodStart
	}
	if upd.PeriodEnd != nil {
		q.PeriodEnd = *upd.PeriodEnd
	}
	if upd.Target != nil {
		q.Target = *upd.Target
	}

	if err := q.Valid(); err != nil {
		return nil, err
	}
	if q.ParentID != nil {
		parent, err := s.getQuota(ctx, tenantID, *q.ParentID)
		if err != nil {
			return nil, err
		}
		if !periodInside(q, parent) {
			return nil, ErrPeriodOutsideParent
		}
	}

	q.SetUpdatedAt(time.Now().UTC())
	if err := s.putQuota(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// SetAttainment records the current attainment and captures a snapshot.
func (s *Service) SetAttainment(ctx context.Context, tenantID, id platform.ID, attained decimal.Decimal) (*castiel.Quota, error) {
	if attained.IsNegative() {
		return nil, ErrNegativeAttainment
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	q, err := s.getQuota(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q.Attained = attained
	q.SetUpdatedAt(now)
	if err := s.putQuota(ctx, q); err != nil {
		return nil, err
	}

	query, args, err := sq.Insert("quota_snapshots").
		Columns("id", "quota_id", "attained", "captured_at").
		Values(s.idGenerator.ID().String(), id.String(), attained.String(), now.Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := s.store.DB.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuota removes a quota and its snapshots. Refused while children
// exist.
func (s *Service) DeleteQuota(ctx context.Context, tenantID, id platform.ID) error {
	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	if _, err := s.getQuota(ctx, tenantID, id); err != nil {
		return err
	}

	countQuery, countArgs, err := sq.Select("COUNT(*)").
		From("quotas").
		Where(sq.Eq{"parent_id": id.String()}).
		ToSql()
	if err != nil {
		return err
	}
	var children int
	if err := s.store.DB.GetContext(ctx, &children, countQuery, countArgs...); err != nil {
		return err
	}
	if children > 0 {
		return ErrQuotaHasChildren
	}

	for _, del := range []sq.DeleteBuilder{
		sq.Delete("quota_snapshots").Where(sq.Eq{"quota_id": id.String()}),
		sq.Delete("quotas").Where(sq.Eq{"id": id.String()}),
	} {
		query, args, err := del.ToSql()
		if err != nil {
			return err
		}
		if _, err := s.store.DB.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// FindQuotaSnapshots returns the attainment history of a quota in capture
// order.
func (s *Service) FindQuotaSnapshots(ctx context.Context, tenantID, id platform.ID) ([]*castiel.QuotaSnapshot, error) {
	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	if _, err := s.getQuota(ctx, tenantID, id); err != nil {
		return nil, err
	}

	query, args, err := sq.Select("id", "quota_id", "attained", "captured_at").
		From("quota_snapshots").
		Where(sq.Eq{"quota_id": id.String()}).
		OrderBy("captured_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID         string `db:"id"`
		QuotaID    string `db:"quota_id"`
		Attained   string `db:"attained"`
		CapturedAt string `db:"captured_at"`
	}
	if err := s.store.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	snaps := make([]*castiel.QuotaSnapshot, 0, len(rows))
	for _, r := range rows {
		snap := &castiel.QuotaSnapshot{}
		if err := snap.ID.DecodeFromString(r.ID); err != nil {
			return nil, err
		}
		if err := snap.QuotaID.DecodeFromString(r.QuotaID); err != nil {
			return nil, err
		}
		if snap.Attained, err = decimal.NewFromString(r.Attained); err != nil {
			return nil, err
		}
		if snap.CapturedAt, err = time.Parse(time.RFC3339Nano, r.CapturedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
