package castiel

import (
	"context"
	"fmt"

	"github.com/Edgame2/castiel/kit/platform"
)

// UserType can either be owner or member.
type UserType string

const (
	// Owner can read and write to a resource
	Owner UserType = "owner" // 1
	// Member can read from a resource.
	Member UserType = "member" // 2
)

// Valid checks if the UserType is a member of the UserType enum.
func (ut UserType) Valid() (err error) {
	switch ut {
	case Owner: // 1
	case Member: // 2
	default:
		err = &Error{
			Code: EInvalid,
			Msg:  "mapping type is invalid",
		}
	}

	return err
}

// MappableResourceType is the type of a resource members can be mapped to.
type MappableResourceType string

const (
	// TenantsMappableType is a tenant membership.
	TenantsMappableType = MappableResourceType("tenants")
	// RolesMappableType is a role grant.
	RolesMappableType = MappableResourceType("roles")
)

// Valid checks if the resource type is a member of the MappableResourceType enum.
func (t MappableResourceType) Valid() error {
	switch t {
	case TenantsMappableType, RolesMappableType:
		return nil
	}
	return &Error{
		Code: EInvalid,
		Msg:  fmt.Sprintf("invalid mappable resource type %q", t),
	}
}

// UserResourceMapping represents a mapping of a resource to its user.
type UserResourceMapping struct {
	UserID       platform.ID          `json:"userID"`
	UserType     UserType             `json:"userType"`
	ResourceType MappableResourceType `json:"resourceType"`
	ResourceID   platform.ID          `json:"resourceID"`
}

// Validate reports any validation errors for the mapping.
func (m UserResourceMapping) Validate() error {
	if !m.ResourceID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "mapping resource id is invalid",
		}
	}
	if !m.UserID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "mapping user id is invalid",
		}
	}
	if err := m.UserType.Valid(); err != nil {
		return err
	}
	return m.ResourceType.Valid()
}

// UserResourceMappingService maps the relationships between users and resources.
type UserResourceMappingService interface {
	// FindUserResourceMappings returns a list of UserResourceMappings that match filter and the total count of matching mappings.
	FindUserResourceMappings(ctx context.Context, filter UserResourceMappingFilter, opt ...FindOptions) ([]*UserResourceMapping, int, error)

	// CreateUserResourceMapping creates a user resource mapping.
	CreateUserResourceMapping(ctx context.Context, m *UserResourceMapping) error

	// DeleteUserResourceMapping deletes a user resource mapping.
	DeleteUserResourceMapping(ctx context.Context, resourceID, userID platform.ID) error
}

// UserResourceMappingFilter represents a set of filters that restrict the returned results.
type UserResourceMappingFilter struct {
	ResourceID   platform.ID
	ResourceType MappableResourceType
	UserID       platform.ID
	UserType     UserType
}

// QueryParams implements PagingFilter.
func (f UserResourceMappingFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.ResourceID.Valid() {
		qp["resourceID"] = []string{f.ResourceID.String()}
	}
	if f.UserID.Valid() {
		qp["userID"] = []string{f.UserID.String()}
	}
	if f.ResourceType != "" {
		qp["resourceType"] = []string{string(f.ResourceType)}
	}
	if f.UserType != "" {
		qp["userType"] = []string{string(f.UserType)}
	}
	return qp
}
