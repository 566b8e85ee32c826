package castiel

import (
	"fmt"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
)

// Authorizer will authorize a permission.
type Authorizer interface {
	// PermissionSet returns the set of permissions this authorizer holds.
	PermissionSet() (PermissionSet, error)

	// Identifier returns the identifier of this authorizer.
	Identifier() platform.ID

	// GetUserID returns the user id this authorizer acts for.
	GetUserID() platform.ID

	// Kind metadata for auditing.
	Kind() string
}

// Action is an enum defining all possible resource operations.
type Action string

const (
	// ReadAction is the action for reading.
	ReadAction Action = "read"
	// WriteAction is the action for writing.
	WriteAction Action = "write"
)

var actions = []Action{
	ReadAction,
	WriteAction,
}

// Valid checks if the action is a member of the Action enum.
func (a Action) Valid() error {
	switch a {
	case ReadAction, WriteAction:
		return nil
	}
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("invalid action type %q", a),
	}
}

// ResourceType is an enum defining all resource types that have a permission model in the platform.
type ResourceType string

// Resource is an authorizable resource.
type Resource struct {
	Type     ResourceType `json:"type"`
	ID       *platform.ID `json:"id,omitempty"`
	TenantID *platform.ID `json:"tenantID,omitempty"`
}

// String stringifies a resource.
func (r Resource) String() string {
	if r.TenantID != nil && r.ID != nil {
		return fmt.Sprintf("%s/%s/%s/%s", TenantsResourceType, r.TenantID, r.Type, r.ID)
	}
	if r.TenantID != nil {
		return fmt.Sprintf("%s/%s/%s", TenantsResourceType, r.TenantID, r.Type)
	}
	if r.ID != nil {
		return fmt.Sprintf("%s/%s", r.Type, r.ID)
	}
	return string(r.Type)
}

const (
	// TenantsResourceType gives permission to one or more tenants.
	TenantsResourceType = ResourceType("tenants")
	// UsersResourceType gives permission to one or more users.
	UsersResourceType = ResourceType("users")
	// RolesResourceType gives permission to one or more roles.
	RolesResourceType = ResourceType("roles")
	// ShardsResourceType gives permission to one or more shards.
	ShardsResourceType = ResourceType("shards")
	// ShardTypesResourceType gives permission to one or more shard types.
	ShardTypesResourceType = ResourceType("shard-types")
	// DocumentsResourceType gives permission to one or more documents.
	DocumentsResourceType = ResourceType("documents")
	// AuditResourceType gives permission to the audit log.
	AuditResourceType = ResourceType("audit")
	// QuotasResourceType gives permission to one or more quotas.
	QuotasResourceType = ResourceType("quotas")
	// ModelsResourceType gives permission to one or more AI models.
	ModelsResourceType = ResourceType("models")
	// InsightsResourceType gives permission to one or more insights.
	InsightsResourceType = ResourceType("insights")
	// SecretsResourceType gives permission to one or more secrets.
	SecretsResourceType = ResourceType("secrets")
	// AuthorizationsResourceType gives permission to one or more authorizations.
	AuthorizationsResourceType = ResourceType("authorizations")
)

// AllResourceTypes is the list of all known resource types.
var AllResourceTypes = []ResourceType{
	TenantsResourceType,
	UsersResourceType,
	RolesResourceType,
	ShardsResourceType,
	ShardTypesResourceType,
	DocumentsResourceType,
	AuditResourceType,
	QuotasResourceType,
	ModelsResourceType,
	InsightsResourceType,
	SecretsResourceType,
	AuthorizationsResourceType,
}

// Valid checks if the resource type is a member of the ResourceType enum.
func (t ResourceType) Valid() error {
	for _, rt := range AllResourceTypes {
		if rt == t {
			return nil
		}
	}
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("invalid resource type %q", t),
	}
}

// Permission defines an action and a resource.
type Permission struct {
	Action   Action   `json:"action"`
	Resource Resource `json:"resource"`
}

// Matches returns whether or not one permission matches the other.
func (p Permission) Matches(perm Permission) bool {
	if p.Action != perm.Action {
		return false
	}

	if p.Resource.Type != perm.Resource.Type {
		return false
	}

	if p.Resource.TenantID == nil && p.Resource.ID == nil {
		return true
	}

	if p.Resource.TenantID != nil && perm.Resource.TenantID != nil && p.Resource.ID == nil {
		if *p.Resource.TenantID == *perm.Resource.TenantID {
			return true
		}
	}

	if p.Resource.ID != nil {
		pID := *p.Resource.ID
		if perm.Resource.ID != nil {
			permID := *perm.Resource.ID
			if pID == permID {
				return true
			}
		}
	}

	return false
}

func (p Permission) String() string {
	return fmt.Sprintf("%s:%s", p.Action, p.Resource)
}

// Valid checks if there the resource and action provided is known.
func (p *Permission) Valid() error {
	if err := p.Resource.Type.Valid(); err != nil {
		return &errors.Error{
			Code: errors.EInvalid,
			Err:  err,
			Msg:  "invalid resource type for permission",
		}
	}

	if err := p.Action.Valid(); err != nil {
		return &errors.Error{
			Code: errors.EInvalid,
			Err:  err,
			Msg:  "invalid action type for permission",
		}
	}

	if p.Resource.TenantID != nil && !p.Resource.TenantID.Valid() {
		return &errors.Error{
			Code: errors.EInvalid,
			Err:  platform.ErrInvalidID,
			Msg:  "invalid tenant id for permission",
		}
	}

	if p.Resource.ID != nil && !p.Resource.ID.Valid() {
		return &errors.Error{
			Code: errors.EInvalid,
			Err:  platform.ErrInvalidID,
			Msg:  "invalid resource id for permission",
		}
	}

	return nil
}

// NewPermission returns a permission with provided arguments.
func NewPermission(a Action, rt ResourceType, tenantID platform.ID) (*Permission, error) {
	p := &Permission{
		Action: a,
		Resource: Resource{
			Type:     rt,
			TenantID: &tenantID,
		},
	}

	return p, p.Valid()
}

// NewPermissionAtID creates a permission with the provided arguments.
func NewPermissionAtID(id platform.ID, a Action, rt ResourceType, tenantID platform.ID) (*Permission, error) {
	p := &Permission{
		Action: a,
		Resource: Resource{
			Type:     rt,
			TenantID: &tenantID,
			ID:       &id,
		},
	}

	return p, p.Valid()
}

// NewResourcePermission returns a permission with provided arguments.
func NewResourcePermission(a Action, rt ResourceType, rid platform.ID) (*Permission, error) {
	p := &Permission{
		Action: a,
		Resource: Resource{
			Type: rt,
			ID:   &rid,
		},
	}

	return p, p.Valid()
}

// NewGlobalPermission constructs a global permission capable of accessing any resource of type rt.
func NewGlobalPermission(a Action, rt ResourceType) (*Permission, error) {
	p := &Permission{
		Action: a,
		Resource: Resource{
			Type: rt,
		},
	}
	return p, p.Valid()
}

// PermissionSet is a set of permissions.
type PermissionSet []Permission

// Allowed returns true if the permission set grants p.
func (ps PermissionSet) Allowed(p Permission) bool {
	return PermissionAllowed(p, ps)
}

// PermissionAllowed determines if a permission is allowed.
func PermissionAllowed(perm Permission, ps []Permission) bool {
	for _, p := range ps {
		if p.Matches(perm) {
			return true
		}
	}
	return false
}

// TenantPermissions returns the typical set of read/write permissions
// scoped to the provided tenant.
func TenantPermissions(tenantID platform.ID) []Permission {
	ps := []Permission{}
	for _, r := range AllResourceTypes {
		if r == TenantsResourceType || r == AuthorizationsResourceType {
			continue
		}
		for _, a := range actions {
			ps = append(ps, Permission{Action: a, Resource: Resource{Type: r, TenantID: &tenantID}})
		}
	}
	return ps
}

// OperPermissions are the default permissions for those who setup the application.
func OperPermissions() []Permission {
	ps := []Permission{}
	for _, r := range AllResourceTypes {
		for _, a := range actions {
			ps = append(ps, Permission{Action: a, Resource: Resource{Type: r}})
		}
	}
	return ps
}

// ReadAllPermissions represents permission to read all data and metadata.
func ReadAllPermissions() []Permission {
	ps := make([]Permission, len(AllResourceTypes))
	for i, t := range AllResourceTypes {
		ps[i] = Permission{Action: ReadAction, Resource: Resource{Type: t}}
	}
	return ps
}
