package quota

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ castiel.QuotaService = (*QuotaLogger)(nil)

// QuotaLogger logs quota service calls and their durations.
type QuotaLogger struct {
	log          *zap.Logger
	quotaService castiel.QuotaService
}

// NewQuotaLogger returns a logging service middleware for the Quota Service.
func NewQuotaLogger(log *zap.Logger, s castiel.QuotaService) *QuotaLogger {
	return &QuotaLogger{
		log:          log,
		quotaService: s,
	}
}

func (l *QuotaLogger) FindQuotaByID(ctx context.Context, tenantID, id platform.ID) (q *castiel.Quota, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find quota by ID", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota find by ID", dur)
	}(time.Now())
	return l.quotaService.FindQuotaByID(ctx, tenantID, id)
}

func (l *QuotaLogger) FindQuotas(ctx context.Context, filter castiel.QuotaFilter, opt ...castiel.FindOptions) (quotas []*castiel.Quota, n int, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find quotas matching the given filter", zap.Error(err), dur)
			return
		}
		l.log.Debug("quotas find", dur)
	}(time.Now())
	return l.quotaService.FindQuotas(ctx, filter, opt...)
}

func (l *QuotaLogger) CreateQuota(ctx context.Context, q *castiel.Quota) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to create quota", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota create", dur)
	}(time.Now())
	return l.quotaService.CreateQuota(ctx, q)
}

func (l *QuotaLogger) UpdateQuota(ctx context.Context, tenantID, id platform.ID, upd castiel.QuotaUpdate) (q *castiel.Quota, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to update quota", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota update", dur)
	}(time.Now())
	return l.quotaService.UpdateQuota(ctx, tenantID, id, upd)
}

func (l *QuotaLogger) SetAttainment(ctx context.Context, tenantID, id platform.ID, attained decimal.Decimal) (q *castiel.Quota, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to set quota attainment", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota set attainment", dur)
	}(time.Now())
	return l.quotaService.SetAttainment(ctx, tenantID, id, attained)
}

func (l *QuotaLogger) DeleteQuota(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to delete quota", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota delete", dur)
	}(time.Now())
	return l.quotaService.DeleteQuota(ctx, tenantID, id)
}

func (l *QuotaLogger) RollupQuota(ctx context.Context, tenantID, id platform.ID) (r *castiel.QuotaRollup, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to roll up quota", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota rollup", dur)
	}(time.Now())
	return l.quotaService.RollupQuota(ctx, tenantID, id)
}

func (l *QuotaLogger) ForecastQuota(ctx context.Context, tenantID, id platform.ID, periods int) (f *castiel.QuotaForecast, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to forecast quota", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota forecast", dur)
	}(time.Now())
	return l.quotaService.ForecastQuota(ctx, tenantID, id, periods)
}

func (l *QuotaLogger) FindQuotaSnapshots(ctx context.Context, tenantID, id platform.ID) (snaps []*castiel.QuotaSnapshot, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find quota snapshots", zap.Error(err), dur)
			return
		}
		l.log.Debug("quota snapshots find", dur)
	}(time.Now())
	return l.quotaService.FindQuotaSnapshots(ctx, tenantID, id)
}
