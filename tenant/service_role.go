package tenant

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

// FindRoleByID returns a single role by ID.
func (s *Service) FindRoleByID(ctx context.Context, id platform.ID) (*castiel.Role, error) {
	var r *castiel.Role
	err := s.store.View(ctx, func(tx kv.Tx) error {
		role, err := s.store.GetRole(ctx, tx, id)
		if err != nil {
			return err
		}
		r = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// FindRoles returns a list of roles that match filter and the total count
// of matching roles.
func (s *Service) FindRoles(ctx context.Context, filter castiel.RoleFilter, opt ...castiel.FindOptions) ([]*castiel.Role, int, error) {
	if filter.ID != nil {
		r, err := s.FindRoleByID(ctx, *filter.ID)
		if err != nil {
			return nil, 0, err
		}
		return []*castiel.Role{r}, 1, nil
	}

	var (
		rs    []*castiel.Role
		total int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		roles, n, err := s.store.ListRoles(ctx, tx, filter, opt...)
		if err != nil {
			return err
		}
		rs, total = roles, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return rs, total, nil
}

// CreateRole creates a new role and sets r.ID with the new identifier. The
// owning tenant must exist.
func (s *Service) CreateRole(ctx context.Context, r *castiel.Role) error {
	if err := r.Valid(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetTenant(ctx, tx, r.TenantID); err != nil {
			return err
		}

		r.ID = s.store.IDGen.ID()
		now := s.store.TimeGen.Now()
		r.SetCreatedAt(now)
		r.SetUpdatedAt(now)
		return s.store.CreateRole(ctx, tx, r)
	})
}

// UpdateRole updates a single role with changeset and returns the new state.
func (s *Service) UpdateRole(ctx context.Context, id platform.ID, upd castiel.RoleUpdate) (*castiel.Role, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	var r *castiel.Role
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		role, err := s.store.UpdateRole(ctx, tx, id, upd)
		if err != nil {
			return err
		}
		r = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRole removes a role by ID and drops its memberships.
func (s *Service) DeleteRole(ctx context.Context, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		if err := s.store.DeleteURMsForResource(ctx, tx, id); err != nil {
			return err
		}
		return s.store.DeleteRole(ctx, tx, id)
	})
}
