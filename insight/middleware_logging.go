package insight

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

var _ castiel.InsightService = (*InsightLogger)(nil)

// InsightLogger logs insight service calls and their durations.
type InsightLogger struct {
	log            *zap.Logger
	insightService castiel.InsightService
}

// NewInsightLogger returns a logging service middleware for the Insight Service.
func NewInsightLogger(log *zap.Logger, s castiel.InsightService) *InsightLogger {
	return &InsightLogger{
		log:            log,
		insightService: s,
	}
}

func (l *InsightLogger) FindInsightByID(ctx context.Context, tenantID, id platform.ID) (i *castiel.Insight, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find insight by ID", zap.Error(err), dur)
			return
		}
		l.log.Debug("insight find by ID", dur)
	}(time.Now())
	return l.insightService.FindInsightByID(ctx, tenantID, id)
}

func (l *InsightLogger) FindInsights(ctx context.Context, filter castiel.InsightFilter, opt ...castiel.FindOptions) (insights []*castiel.Insight, n int, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find insights matching the given filter", zap.Error(err), dur)
			return
		}
		l.log.Debug("insights find", dur)
	}(time.Now())
	return l.insightService.FindInsights(ctx, filter, opt...)
}

func (l *InsightLogger) CreateInsight(ctx context.Context, i *castiel.Insight) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to create insight", zap.Error(err), dur)
			return
		}
		l.log.Debug("insight create", dur)
	}(time.Now())
	return l.insightService.CreateInsight(ctx, i)
}

func (l *InsightLogger) UpdateInsight(ctx context.Context, tenantID, id platform.ID, upd castiel.InsightUpdate) (i *castiel.Insight, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to update insight", zap.Error(err), dur)
			return
		}
		l.log.Debug("insight update", dur)
	}(time.Now())
	return l.insightService.UpdateInsight(ctx, tenantID, id, upd)
}

func (l *InsightLogger) DeleteInsight(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to delete insight", zap.Error(err), dur)
			return
		}
		l.log.Debug("insight delete", dur)
	}(time.Now())
	return l.insightService.DeleteInsight(ctx, tenantID, id)
}

func (l *InsightLogger) AddInsightComment(ctx context.Context, tenantID platform.ID, c *castiel.InsightComment) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to add insight comment", zap.Error(err), dur)
			return
		}
		l.log.Debug("insight comment add", dur)
	}(time.Now())
	return l.insightService.AddInsightComment(ctx, tenantID, c)
}

func (l *InsightLogger) FindInsightComments(ctx context.Context, tenantID, insightID platform.ID) (comments []*castiel.InsightComment, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find insight comments", zap.Error(err), dur)
			return
		}
		l.log.Debug("insight comments find", dur)
	}(time.Now())
	return l.insightService.FindInsightComments(ctx, tenantID, insightID)
}

func (l *InsightLogger) DeleteInsightComment(ctx context.Context, tenantID, insightID, commentID platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to delete insight comment", zap.Error(err), dur)
			return
		}
		l.log.Debug("insight comment delete", dur)
	}(time.Now())
	return l.insightService.DeleteInsightComment(ctx, tenantID, insightID, commentID)
}
