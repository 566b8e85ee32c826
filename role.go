package castiel

import (
	"context"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for role errors and role journal events.
const (
	OpFindRoleByID = "FindRoleByID"
	OpFindRoles    = "FindRoles"
	OpCreateRole   = "CreateRole"
	OpUpdateRole   = "UpdateRole"
	OpDeleteRole   = "DeleteRole"
)

// Role is a named bundle of permissions, granted to users through
// user resource mappings. Roles are scoped to a tenant, and shard ACL
// entries may reference them as subjects.
type Role struct {
	ID          platform.ID  `json:"id,omitempty"`
	TenantID    platform.ID  `json:"tenantID"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions"`
	CRUDLog
}

// Valid validates the role.
func (r Role) Valid() error {
	if r.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "role name cannot be empty",
		}
	}
	if !r.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "role tenant id is invalid",
		}
	}
	for _, p := range r.Permissions {
		if err := p.Valid(); err != nil {
			return err
		}
	}
	return nil
}

// RoleService represents a service for managing role data.
type RoleService interface {
	// FindRoleByID returns a single role by ID.
	FindRoleByID(ctx context.Context, id platform.ID) (*Role, error)

	// FindRoles returns a list of roles that match filter and the total count of matching roles.
	FindRoles(ctx context.Context, filter RoleFilter, opt ...FindOptions) ([]*Role, int, error)

	// CreateRole creates a new role and sets r.ID with the new identifier.
	CreateRole(ctx context.Context, r *Role) error

	// UpdateRole updates a single role with changeset.
	// Returns the new role state after update.
	UpdateRole(ctx context.Context, id platform.ID, upd RoleUpdate) (*Role, error)

	// DeleteRole removes a role by ID and drops its memberships.
	DeleteRole(ctx context.Context, id platform.ID) error
}

// RoleFilter represents a set of filters that restrict the returned results.
type RoleFilter struct {
	ID       *platform.ID
	TenantID *platform.ID
	Name     *string
}

// QueryParams implements PagingFilter.
func (f RoleFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.ID != nil {
		qp["id"] = []string{f.ID.String()}
	}
	if f.TenantID != nil {
		qp["tenantID"] = []string{f.TenantID.String()}
	}
	if f.Name != nil {
		qp["name"] = []string{*f.Name}
	}
	return qp
}

// RoleUpdate is the set of changes to apply to a role.
type RoleUpdate struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd RoleUpdate) Valid() error {
	if upd.Name != nil && *upd.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "role name cannot be empty",
		}
	}
	for _, p := range upd.Permissions {
		if err := p.Valid(); err != nil {
			return err
		}
	}
	return nil
}
