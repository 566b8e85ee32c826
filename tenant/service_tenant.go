package tenant

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/kv"
)

// FindTenantByID returns a single tenant by ID.
func (s *Service) FindTenantByID(ctx context.Context, id platform.ID) (*castiel.Tenant, error) {
	var t *castiel.Tenant
	err := s.store.View(ctx, func(tx kv.Tx) error {
		tenant, err := s.store.GetTenant(ctx, tx, id)
		if err != nil {
			return err
		}
		t = tenant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindTenant returns the first tenant that matches filter.
func (s *Service) FindTenant(ctx context.Context, filter castiel.TenantFilter) (*castiel.Tenant, error) {
	if filter.ID != nil {
		return s.FindTenantByID(ctx, *filter.ID)
	}
	if filter.Name == nil {
		return nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "tenant filter requires an id or a name",
		}
	}

	var t *castiel.Tenant
	err := s.store.View(ctx, func(tx kv.Tx) error {
		tenant, err := s.store.GetTenantByName(ctx, tx, *filter.Name)
		if err != nil {
			return err
		}
		t = tenant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindTenants returns a list of tenants that match filter and the total
// count of matching tenants.
func (s *Service) FindTenants(ctx context.Context, filter castiel.TenantFilter, opt ...castiel.FindOptions) ([]*castiel.Tenant, int, error) {
	// an id or name filter can only ever produce one tenant
	if filter.ID != nil || filter.Name != nil {
		t, err := s.FindTenant(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		return []*castiel.Tenant{t}, 1, nil
	}

	var (
		ts    []*castiel.Tenant
		total int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		tenants, err := s.store.ListTenants(ctx, tx, opt...)
		if err != nil {
			return err
		}
		n, err := s.store.CountTenants(ctx, tx)
		if err != nil {
			return err
		}
		ts, total = tenants, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return ts, total, nil
}

// CreateTenant creates a new tenant and sets t.ID with the new identifier.
func (s *Service) CreateTenant(ctx context.Context, t *castiel.Tenant) error {
	if t.Name == "" {
		return &errors.Error{
			Code: errors.EEmptyValue,
			Msg:  "tenant name cannot be empty",
		}
	}
	if t.Status == "" {
		t.Status = castiel.TenantActive
	}
	if err := t.Status.Valid(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		t.ID = s.store.IDGen.ID()
		now := s.store.TimeGen.Now()
		t.SetCreatedAt(now)
		t.SetUpdatedAt(now)
		return s.store.CreateTenant(ctx, tx, t)
	})
}

// UpdateTenant updates a single tenant with changeset and returns the new
// state.
func (s *Service) UpdateTenant(ctx context.Context, id platform.ID, upd castiel.TenantUpdate) (*castiel.Tenant, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	var t *castiel.Tenant
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		tenant, err := s.store.UpdateTenant(ctx, tx, id, upd)
		if err != nil {
			return err
		}
		t = tenant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTenant removes a tenant by ID, along with its memberships and its
// roles.
func (s *Service) DeleteTenant(ctx context.Context, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		roles, _, err := s.store.ListRoles(ctx, tx, castiel.RoleFilter{TenantID: &id})
		if err != nil {
			return err
		}
		for _, r := range roles {
			if err := s.store.DeleteURMsForResource(ctx, tx, r.ID); err != nil {
				return err
			}
			if err := s.store.DeleteRole(ctx, tx, r.ID); err != nil {
				return err
			}
		}

		if err := s.store.DeleteURMsForResource(ctx, tx, id); err != nil {
			return err
		}
		return s.store.DeleteTenant(ctx, tx, id)
	})
}
