package castiel

import (
	"context"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for shard type errors and journal events.
const (
	OpFindShardTypeByID = "FindShardTypeByID"
	OpFindShardTypes    = "FindShardTypes"
	OpCreateShardType   = "CreateShardType"
	OpUpdateShardType   = "UpdateShardType"
	OpDeleteShardType   = "DeleteShardType"
)

// ShardType names a class of shards and describes the structured fields its
// members are expected to carry. The schema is advisory, free-form JSON;
// the platform does not enforce it on writes.
type ShardType struct {
	ID          platform.ID            `json:"id,omitempty"`
	TenantID    platform.ID            `json:"tenantID"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Schema      map[string]interface{} `json:"schema,omitempty"`
	CRUDLog
}

// Valid validates the shard type.
func (t ShardType) Valid() error {
	if t.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "shard type name cannot be empty",
		}
	}
	if !t.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "shard type tenant id is invalid",
		}
	}
	return nil
}

// ShardTypeFilter represents a set of filters that restrict the returned results.
type ShardTypeFilter struct {
	TenantID platform.ID
	Name     *string
}

// QueryParams implements PagingFilter.
func (f ShardTypeFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.Name != nil {
		qp["name"] = []string{*f.Name}
	}
	return qp
}

// ShardTypeUpdate is the set of changes to apply to a shard type.
type ShardTypeUpdate struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Schema      map[string]interface{} `json:"schema,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd ShardTypeUpdate) Valid() error {
	if upd.Name != nil && *upd.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "shard type name cannot be empty",
		}
	}
	return nil
}

// ShardTypeService represents a service for managing shard types.
type ShardTypeService interface {
	// FindShardTypeByID returns a single shard type by ID.
	FindShardTypeByID(ctx context.Context, tenantID, id platform.ID) (*ShardType, error)

	// FindShardTypes returns the shard types matching filter and the total
	// count of matching types.
	FindShardTypes(ctx context.Context, filter ShardTypeFilter, opt ...FindOptions) ([]*ShardType, int, error)

	// CreateShardType creates a new shard type. Names are unique per tenant.
	CreateShardType(ctx context.Context, t *ShardType) error

	// UpdateShardType applies the changeset and returns the new state.
	UpdateShardType(ctx context.Context, tenantID, id platform.ID, upd ShardTypeUpdate) (*ShardType, error)

	// DeleteShardType removes a shard type. Refused while shards still
	// reference it.
	DeleteShardType(ctx context.Context, tenantID, id platform.ID) error
}
