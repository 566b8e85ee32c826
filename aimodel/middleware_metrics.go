package aimodel

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
)

var _ castiel.AIModelService = (*ModelMetrics)(nil)

// ModelMetrics records RED metrics for model registry calls.
type ModelMetrics struct {
	rec          *metric.REDClient
	modelService castiel.AIModelService
}

// NewModelMetrics returns a metrics service middleware for the AI Model Service.
func NewModelMetrics(reg prometheus.Registerer, s castiel.AIModelService) *ModelMetrics {
	return &ModelMetrics{
		rec:          metric.New(reg, "aimodel"),
		modelService: s,
	}
}

func (m *ModelMetrics) FindAIModelByID(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	rec := m.rec.Record("find_model_by_id")
	model, err := m.modelService.FindAIModelByID(ctx, tenantID, id)
	return model, rec(err)
}

func (m *ModelMetrics) FindAIModels(ctx context.Context, filter castiel.AIModelFilter, opt ...castiel.FindOptions) ([]*castiel.AIModel, int, error) {
	rec := m.rec.Record("find_models")
	models, n, err := m.modelService.FindAIModels(ctx, filter, opt...)
	return models, n, rec(err)
}

func (m *ModelMetrics) CreateAIModel(ctx context.Context, model *castiel.AIModel) error {
	rec := m.rec.Record("create_model")
	err := m.modelService.CreateAIModel(ctx, model)
	return rec(err)
}

func (m *ModelMetrics) UpdateAIModel(ctx context.Context, tenantID, id platform.ID, upd castiel.AIModelUpdate) (*castiel.AIModel, error) {
	rec := m.rec.Record("update_model")
	model, err := m.modelService.UpdateAIModel(ctx, tenantID, id, upd)
	return model, rec(err)
}

func (m *ModelMetrics) DeployAIModel(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	rec := m.rec.Record("deploy_model")
	model, err := m.modelService.DeployAIModel(ctx, tenantID, id)
	return model, rec(err)
}

func (m *ModelMetrics) RetireAIModel(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	rec := m.rec.Record("retire_model")
	model, err := m.modelService.RetireAIModel(ctx, tenantID, id)
	return model, rec(err)
}

func (m *ModelMetrics) DeleteAIModel(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("delete_model")
	err := m.modelService.DeleteAIModel(ctx, tenantID, id)
	return rec(err)
}

var _ castiel.ScoringService = (*ScoringMetrics)(nil)

// ScoringMetrics records RED metrics for scoring calls.
type ScoringMetrics struct {
	rec            *metric.REDClient
	scoringService castiel.ScoringService
}

// NewScoringMetrics returns a metrics service middleware for the Scoring Service.
func NewScoringMetrics(reg prometheus.Registerer, s castiel.ScoringService) *ScoringMetrics {
	return &ScoringMetrics{
		rec:            metric.New(reg, "scoring"),
		scoringService: s,
	}
}

func (m *ScoringMetrics) Score(ctx context.Context, tenantID, modelID platform.ID, inputs []castiel.ScoreInput) ([]castiel.ScoreResult, error) {
	rec := m.rec.Record("score")
	results, err := m.scoringService.Score(ctx, tenantID, modelID, inputs)
	return results, rec(err)
}
