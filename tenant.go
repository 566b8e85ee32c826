package castiel

import (
	"context"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for tenant errors and tenant journal events.
const (
	OpFindTenantByID = "FindTenantByID"
	OpFindTenant     = "FindTenant"
	OpFindTenants    = "FindTenants"
	OpCreateTenant   = "CreateTenant"
	OpUpdateTenant   = "UpdateTenant"
	OpDeleteTenant   = "DeleteTenant"
)

// TenantStatus defines the lifecycle state of a tenant.
type TenantStatus string

const (
	// TenantActive is the status of a tenant serving traffic.
	TenantActive TenantStatus = "active"
	// TenantSuspended is the status of a tenant blocked from all API access.
	TenantSuspended TenantStatus = "suspended"
)

// Valid checks the status is a member of the TenantStatus enum.
func (s TenantStatus) Valid() error {
	switch s {
	case TenantActive, TenantSuspended:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  "tenant status must be active or suspended",
		}
	}
}

// Tenant is an isolated customer account. Every record in the system hangs
// off exactly one tenant.
type Tenant struct {
	ID          platform.ID  `json:"id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Status      TenantStatus `json:"status"`
	CRUDLog
}

// TenantService represents a service for managing tenant data.
type TenantService interface {
	// FindTenantByID returns a single tenant by ID.
	FindTenantByID(ctx context.Context, id platform.ID) (*Tenant, error)

	// FindTenant returns the first tenant that matches filter.
	FindTenant(ctx context.Context, filter TenantFilter) (*Tenant, error)

	// FindTenants returns a list of tenants that match filter and the total count of matching tenants.
	// Additional options provide pagination & sorting.
	FindTenants(ctx context.Context, filter TenantFilter, opt ...FindOptions) ([]*Tenant, int, error)

	// CreateTenant creates a new tenant and sets t.ID with the new identifier.
	CreateTenant(ctx context.Context, t *Tenant) error

	// UpdateTenant updates a single tenant with changeset.
	// Returns the new tenant state after update.
	UpdateTenant(ctx context.Context, id platform.ID, upd TenantUpdate) (*Tenant, error)

	// DeleteTenant removes a tenant by ID and purges its memberships and roles.
	DeleteTenant(ctx context.Context, id platform.ID) error
}

// TenantFilter represents a set of filters that restrict the returned results.
type TenantFilter struct {
	Name *string
	ID   *platform.ID
}

// QueryParams implements PagingFilter.
func (f TenantFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.ID != nil {
		qp["id"] = []string{f.ID.String()}
	}
	if f.Name != nil {
		qp["name"] = []string{*f.Name}
	}
	return qp
}

// TenantUpdate is the set of changes to apply to a tenant.
type TenantUpdate struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TenantStatus `json:"status,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd TenantUpdate) Valid() error {
	if upd.Name != nil && *upd.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "tenant name cannot be empty",
		}
	}
	if upd.Status != nil {
		return upd.Status.Valid()
	}
	return nil
}
