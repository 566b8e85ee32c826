package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.RoleService = (*RoleService)(nil)

// RoleService is a mock implementation of castiel.RoleService.
type RoleService struct {
	FindRoleByIDFn func(ctx context.Context, id platform.ID) (*castiel.Role, error)
	FindRolesFn    func(ctx context.Context, filter castiel.RoleFilter, opt ...castiel.FindOptions) ([]*castiel.Role, int, error)
	CreateRoleFn   func(ctx context.Context, r *castiel.Role) error
	UpdateRoleFn   func(ctx context.Context, id platform.ID, upd castiel.RoleUpdate) (*castiel.Role, error)
	DeleteRoleFn   func(ctx context.Context, id platform.ID) error
}

// FindRoleByID returns a single role by ID.
func (s *RoleService) FindRoleByID(ctx context.Context, id platform.ID) (*castiel.Role, error) {
	return s.FindRoleByIDFn(ctx, id)
}

// FindRoles returns a list of roles that match filter.
func (s *RoleService) FindRoles(ctx context.Context, filter castiel.RoleFilter, opt ...castiel.FindOptions) ([]*castiel.Role, int, error) {
	return s.FindRolesFn(ctx, filter, opt...)
}

// CreateRole creates a new role.
func (s *RoleService) CreateRole(ctx context.Context, r *castiel.Role) error {
	return s.CreateRoleFn(ctx, r)
}

// UpdateRole updates a single role with changeset.
func (s *RoleService) UpdateRole(ctx context.Context, id platform.ID, upd castiel.RoleUpdate) (*castiel.Role, error) {
	return s.UpdateRoleFn(ctx, id, upd)
}

// DeleteRole removes a role by ID.
func (s *RoleService) DeleteRole(ctx context.Context, id platform.ID) error {
	return s.DeleteRoleFn(ctx, id)
}
