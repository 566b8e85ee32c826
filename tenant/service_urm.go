package tenant

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

// FindUserResourceMappings returns a list of mappings that match filter and
// the total count of matching mappings.
func (s *Service) FindUserResourceMappings(ctx context.Context, filter castiel.UserResourceMappingFilter, opt ...castiel.FindOptions) ([]*castiel.UserResourceMapping, int, error) {
	var (
		ms    []*castiel.UserResourceMapping
		total int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		mappings, n, err := s.store.ListURMs(ctx, tx, filter, opt...)
		if err != nil {
			return err
		}
		ms, total = mappings, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return ms, total, nil
}

// CreateUserResourceMapping creates a user resource mapping. The user and
// the target resource must both exist.
func (s *Service) CreateUserResourceMapping(ctx context.Context, m *castiel.UserResourceMapping) error {
	if err := m.Validate(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetUser(ctx, tx, m.UserID); err != nil {
			return err
		}

		switch m.ResourceType {
		case castiel.TenantsMappableType:
			if _, err := s.store.GetTenant(ctx, tx, m.ResourceID); err != nil {
				return err
			}
		case castiel.RolesMappableType:
			if _, err := s.store.GetRole(ctx, tx, m.ResourceID); err != nil {
				return err
			}
		}

		return s.store.CreateURM(ctx, tx, m)
	})
}

// DeleteUserResourceMapping deletes a user resource mapping.
func (s *Service) DeleteUserResourceMapping(ctx context.Context, resourceID, userID platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		return s.store.DeleteURM(ctx, tx, resourceID, userID)
	})
}
