package aimodel

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

var _ castiel.AIModelService = (*ModelLogger)(nil)

// ModelLogger logs model registry calls and their durations.
type ModelLogger struct {
	log          *zap.Logger
	modelService castiel.AIModelService
}

// NewModelLogger returns a logging service middleware for the AI Model Service.
func NewModelLogger(log *zap.Logger, s castiel.AIModelService) *ModelLogger {
	return &ModelLogger{
		log:          log,
		modelService: s,
	}
}

func (l *ModelLogger) FindAIModelByID(ctx context.Context, tenantID, id platform.ID) (m *castiel.AIModel, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find model by ID", zap.Error(err), dur)
			return
		}
		l.log.Debug("model find by ID", dur)
	}(time.Now())
	return l.modelService.FindAIModelByID(ctx, tenantID, id)
}

func (l *ModelLogger) FindAIModels(ctx context.Context, filter castiel.AIModelFilter, opt ...castiel.FindOptions) (models []*castiel.AIModel, n int, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find models matching the given filter", zap.Error(err), dur)
			return
		}
		l.log.Debug("models find", dur)
	}(time.Now())
	return l.modelService.FindAIModels(ctx, filter, opt...)
}

func (l *ModelLogger) CreateAIModel(ctx context.Context, m *castiel.AIModel) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to create model", zap.Error(err), dur)
			return
		}
		l.log.Debug("model create", dur)
	}(time.Now())
	return l.modelService.CreateAIModel(ctx, m)
}

func (l *ModelLogger) UpdateAIModel(ctx context.Context, tenantID, id platform.ID, upd castiel.AIModelUpdate) (m *castiel.AIModel, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to update model", zap.Error(err), dur)
			return
		}
		l.log.Debug("model update", dur)
	}(time.Now())
	return l.modelService.UpdateAIModel(ctx, tenantID, id, upd)
}

func (l *ModelLogger) DeployAIModel(ctx context.Context, tenantID, id platform.ID) (m *castiel.AIModel, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to deploy model", zap.Error(err), dur)
			return
		}
		l.log.Debug("model deploy", dur)
	}(time.Now())
	return l.modelService.DeployAIModel(ctx, tenantID, id)
}

func (l *ModelLogger) RetireAIModel(ctx context.Context, tenantID, id platform.ID) (m *castiel.AIModel, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to retire model", zap.Error(err), dur)
			return
		}
		l.log.Debug("model retire", dur)
	}(time.Now())
	return l.modelService.RetireAIModel(ctx, tenantID, id)
}

func (l *ModelLogger) DeleteAIModel(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to delete model", zap.Error(err), dur)
			return
		}
		l.log.Debug("model delete", dur)
	}(time.Now())
	return l.modelService.DeleteAIModel(ctx, tenantID, id)
}
