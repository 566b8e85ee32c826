package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.AIModelService = (*AIModelService)(nil)

// AIModelService is a mock implementation of castiel.AIModelService.
type AIModelService struct {
	FindAIModelByIDFn func(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error)
	FindAIModelsFn    func(ctx context.Context, filter castiel.AIModelFilter, opt ...castiel.FindOptions) ([]*castiel.AIModel, int, error)
	CreateAIModelFn   func(ctx context.Context, m *castiel.AIModel) error
	UpdateAIModelFn   func(ctx context.Context, tenantID, id platform.ID, upd castiel.AIModelUpdate) (*castiel.AIModel, error)
	DeployAIModelFn   func(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error)
	RetireAIModelFn   func(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error)
	DeleteAIModelFn   func(ctx context.Context, tenantID, id platform.ID) error
}

// FindAIModelByID returns a single model by ID.
func (s *AIModelService) FindAIModelByID(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	return s.FindAIModelByIDFn(ctx, tenantID, id)
}

// FindAIModels returns the models matching filter.
func (s *AIModelService) FindAIModels(ctx context.Context, filter castiel.AIModelFilter, opt ...castiel.FindOptions) ([]*castiel.AIModel, int, error) {
	return s.FindAIModelsFn(ctx, filter, opt...)
}

// CreateAIModel registers a model as a draft.
func (s *AIModelService) CreateAIModel(ctx context.Context, m *castiel.AIModel) error {
	return s.CreateAIModelFn(ctx, m)
}

// UpdateAIModel applies the changeset to a model.
func (s *AIModelService) UpdateAIModel(ctx context.Context, tenantID, id platform.ID, upd castiel.AIModelUpdate) (*castiel.AIModel, error) {
	return s.UpdateAIModelFn(ctx, tenantID, id, upd)
}

// DeployAIModel moves a draft model to deployed.
func (s *AIModelService) DeployAIModel(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	return s.DeployAIModelFn(ctx, tenantID, id)
}

// RetireAIModel moves a deployed model to retired.
func (s *AIModelService) RetireAIModel(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	return s.RetireAIModelFn(ctx, tenantID, id)
}

// DeleteAIModel removes a model from the registry.
func (s *AIModelService) DeleteAIModel(ctx context.Context, tenantID, id platform.ID) error {
	return s.DeleteAIModelFn(ctx, tenantID, id)
}

var _ castiel.ScoringService = (*ScoringService)(nil)

// ScoringService is a mock implementation of castiel.ScoringService.
type ScoringService struct {
	ScoreFn func(ctx context.Context, tenantID, modelID platform.ID, inputs []castiel.ScoreInput) ([]castiel.ScoreResult, error)
}

// Score submits the feature vectors to the model endpoint.
func (s *ScoringService) Score(ctx context.Context, tenantID, modelID platform.ID, inputs []castiel.ScoreInput) ([]castiel.ScoreResult, error) {
	return s.ScoreFn(ctx, tenantID, modelID, inputs)
}
