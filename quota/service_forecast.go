package quota

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var band = decimal.NewFromFloat(0.10)

// ForecastQuota projects attainment periods steps forward. When the tenant
// has a deployed forecasting model the projection comes from a scoring
// call; otherwise a linear fit over the snapshot history runs locally.
func (s *Service) ForecastQuota(ctx context.Context, tenantID, id platform.ID, periods int) (*castiel.QuotaForecast, error) {
	if periods <= 0 {
		return nil, ErrInvalidForecastPeriods
	}

	q, err := s.FindQuotaByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	snaps, err := s.FindQuotaSnapshots(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	model := s.deployedForecastingModel(ctx, tenantID)
	if model != nil {
		f, err := s.forecastWithModel(ctx, tenantID, model.ID, q, snaps, periods)
		// Scoring call failures surface to the caller. Linear is the
		// fallback for tenants without a model, not for a broken one.
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	return linearForecast(q, snaps, periods), nil
}

func (s *Service) deployedForecastingModel(ctx context.Context, tenantID platform.ID) *castiel.AIModel {
	if s.models == nil || s.scorer == nil {
		return nil
	}

	kind := castiel.ForecastingModel
	status := castiel.AIModelDeployed
	models, _, err := s.models.FindAIModels(ctx, castiel.AIModelFilter{
		TenantID: tenantID,
		Kind:     &kind,
		Status:   &status,
	}, castiel.FindOptions{Limit: 1})
	if err != nil {
		s.log.Warn("forecasting model lookup failed", zap.Error(err))
		return nil
	}
	if len(models) == 0 {
		return nil
	}
	return models[0]
}

func (s *Service) forecastWithModel(ctx context.Context, tenantID, modelID platform.ID, q *castiel.Quota, snaps []*castiel.QuotaSnapshot, periods int) (*castiel.QuotaForecast, error) {
	history := make([]map[string]interface{}, 0, len(snaps))
	for _, snap := range snaps {
		history = append(history, map[string]interface{}{
			"attained":   snap.Attained.String(),
			"capturedAt": snap.CapturedAt.Format(time.RFC3339Nano),
		})
	}

	input := castiel.ScoreInput{
		"quotaID":  q.ID.String(),
		"target":   q.Target.String(),
		"attained": q.Attained.String(),
		"periods":  periods,
		"history":  history,
	}
	results, err := s.scorer.Score(ctx, tenantID, modelID, []castiel.ScoreInput{input})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].P50 == nil {
		return nil, &castiel.Error{
			Code: castiel.EInternal,
			Msg:  "forecasting model returned no projection",
		}
	}

	res := results[0]
	f := &castiel.QuotaForecast{
		QuotaID:   q.ID,
		Generated: time.Now().UTC(),
		Periods:   periods,
		P50:       *res.P50,
		Source:    castiel.ForecastSourceModel,
	}
	if res.P10 != nil {
		f.P10 = *res.P10
	} else {
		f.P10 = f.P50
	}
	if res.P90 != nil {
		f.P90 = *res.P90
	} else {
		f.P90 = f.P50
	}
	return f, nil
}

// linearForecast fits a per-step slope over the snapshot history and
// projects it forward. Fewer than two snapshots project flat.
func linearForecast(q *castiel.Quota, snaps []*castiel.QuotaSnapshot, periods int) *castiel.QuotaForecast {
	last := q.Attained
	slope := decimal.Zero
	if n := len(snaps); n >= 2 {
		last = snaps[n-1].Attained
		steps := decimal.NewFromInt(int64(n - 1))
		slope = snaps[n-1].Attained.Sub(snaps[0].Attained).Div(steps)
	} else if n == 1 {
		last = snaps[0].Attained
	}

	p50 := last.Add(slope.Mul(decimal.NewFromInt(int64(periods))))
	if p50.IsNegative() {
		p50 = decimal.Zero
	}
	spread := p50.Mul(band)

	f := &castiel.QuotaForecast{
		QuotaID:   q.ID,
		Generated: time.Now().UTC(),
		Periods:   periods,
		P10:       p50.Sub(spread),
		P50:       p50,
		P90:       p50.Add(spread),
		Source:    castiel.ForecastSourceLinear,
	}
	if f.P10.IsNegative() {
		f.P10 = decimal.Zero
	}
	return f
}
