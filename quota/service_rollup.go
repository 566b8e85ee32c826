package quota

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RollupQuota walks the subtree under id and aggregates targets and
// attainment. The walk is cycle-safe.
func (s *Service) RollupQuota(ctx context.Context, tenantID, id platform.ID) (*castiel.QuotaRollup, error) {
	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	visited := map[platform.ID]bool{}
	return s.rollup(ctx, tenantID, id, visited)
}

func (s *Service) rollup(ctx context.Context, tenantID, id platform.ID, visited map[platform.ID]bool) (*castiel.QuotaRollup, error) {
	q, err := s.getQuota(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	visited[id] = true

	r := &castiel.QuotaRollup{
		Quota:         q,
		TargetTotal:   q.Target,
		AttainedTotal: q.Attained,
	}

	children, err := s.childIDs(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	for _, childID := range children {
		if visited[childID] {
			continue
		}
		child, err := s.rollup(ctx, tenantID, childID, visited)
		if err != nil {
			return nil, err
		}
		r.Children = append(r.Children, child)
		r.TargetTotal = r.TargetTotal.Add(child.TargetTotal)
		r.AttainedTotal = r.AttainedTotal.Add(child.AttainedTotal)
	}

	if r.TargetTotal.IsZero() {
		r.Percent = decimal.Zero
	} else {
		r.Percent = r.AttainedTotal.Div(r.TargetTotal).Mul(hundred).Round(2)
	}
	return r, nil
}

func (s *Service) childIDs(ctx context.Context, tenantID, parentID platform.ID) ([]platform.ID, error) {
	query, args, err := sq.Select("id").
		From("quotas").
		Where(sq.Eq{"tenant_id": tenantID.String(), "parent_id": parentID.String()}).
		OrderBy("period_start", "name").
		ToSql()
	if err != nil {
		return nil, err
	}

	var raw []string
	if err := s.store.DB.SelectContext(ctx, &raw, query, args...); err != nil {
		return nil, err
	}

	ids := make([]platform.ID, 0, len(raw))
	for _, r := range raw {
		var id platform.ID
		if err := id.DecodeFromString(r); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
