package aimodel

import (
	"context"
	"strings"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

var _ castiel.AIModelService = (*Service)(nil)

// Service implements the model registry over the kv store.
type Service struct {
	store *Store
}

// NewService constructs a model registry service.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// FindAIModelByID returns a single model by ID.
func (s *Service) FindAIModelByID(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	var m *castiel.AIModel
	err := s.store.View(ctx, func(tx kv.Tx) error {
		var err error
		m, err = s.store.GetModel(ctx, tx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindAIModels returns the models matching filter and the total count of
// matching models.
func (s *Service) FindAIModels(ctx context.Context, filter castiel.AIModelFilter, opt ...castiel.FindOptions) ([]*castiel.AIModel, int, error) {
	var (
		models []*castiel.AIModel
		total  int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		var err error
		models, total, err = s.store.ListModels(ctx, tx, filter, opt...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return models, total, nil
}

func (s *Service) nameTaken(ctx context.Context, tx kv.Tx, tenantID platform.ID, name string, exclude platform.ID) (bool, error) {
	models, _, err := s.store.ListModels(ctx, tx, castiel.AIModelFilter{TenantID: tenantID})
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.ID != exclude && strings.EqualFold(m.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// CreateAIModel registers a model as a draft and sets m.ID. Names are
// unique per tenant.
func (s *Service) CreateAIModel(ctx context.Context, m *castiel.AIModel) error {
	m.Status = castiel.AIModelDraft
	if err := m.Valid(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		taken, err := s.nameTaken(ctx, tx, m.TenantID, m.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrModelNameTaken
		}

		m.ID = s.store.IDGen.ID()
		m.Version = 1
		now := s.store.TimeGen.Now()
		m.SetCreatedAt(now)
		m.SetUpdatedAt(now)
		return s.store.PutModel(ctx, tx, m)
	})
}

// UpdateAIModel applies the changeset and returns the new state. Endpoint
// changes bump the version.
func (s *Service) UpdateAIModel(ctx context.Context, tenantID, id platform.ID, upd castiel.AIModelUpdate) (*castiel.AIModel, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	var m *castiel.AIModel
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		var err error
		m, err = s.store.GetModel(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}

		if upd.Name != nil && *upd.Name != m.Name {
			taken, err := s.nameTaken(ctx, tx, tenantID, *upd.Name, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrModelNameTaken
			}
			m.Name = *upd.Name
		}
		if upd.Endpoint != nil && *upd.Endpoint != m.Endpoint {
			m.Endpoint = *upd.Endpoint
			m.Version++
		}
		if upd.SecretKey != nil {
			m.SecretKey = *upd.SecretKey
		}

		m.SetUpdatedAt(s.store.TimeGen.Now())
		return s.store.PutModel(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DeployAIModel moves a draft model to deployed.
func (s *Service) DeployAIModel(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	var m *castiel.AIModel
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		var err error
		m, err = s.store.GetModel(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if m.Status != castiel.AIModelDraft {
			return ErrModelNotDraft
		}

		m.Status = castiel.AIModelDeployed
		m.SetUpdatedAt(s.store.TimeGen.Now())
		return s.store.PutModel(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RetireAIModel moves a deployed model to retired. Retired is terminal.
func (s *Service) RetireAIModel(ctx context.Context, tenantID, id platform.ID) (*castiel.AIModel, error) {
	var m *castiel.AIModel
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		var err error
		m, err = s.store.GetModel(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if m.Status != castiel.AIModelDeployed {
			return ErrModelNotDeployed
		}

		m.Status = castiel.AIModelRetired
		m.SetUpdatedAt(s.store.TimeGen.Now())
		return s.store.PutModel(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteAIModel removes a model from the registry.
func (s *Service) DeleteAIModel(ctx context.Context, tenantID, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetModel(ctx, tx, tenantID, id); err != nil {
			return err
		}
		return s.store.DeleteModel(ctx, tx, tenantID, id)
	})
}
