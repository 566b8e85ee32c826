package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.ShardService = (*ShardService)(nil)

// ShardService is a mock implementation of castiel.ShardService.
type ShardService struct {
	FindShardByIDFn    func(ctx context.Context, tenantID, id platform.ID) (*castiel.Shard, error)
	FindShardsFn       func(ctx context.Context, filter castiel.ShardFilter, opt ...castiel.FindOptions) ([]*castiel.Shard, int, error)
	CreateShardFn      func(ctx context.Context, sh *castiel.Shard) error
	UpdateShardFn      func(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error)
	DeleteShardFn      func(ctx context.Context, tenantID, id platform.ID) error
	RestoreShardFn     func(ctx context.Context, tenantID, id platform.ID) error
	HardDeleteShardFn  func(ctx context.Context, tenantID, id platform.ID) error
	BulkCreateShardsFn func(ctx context.Context, tenantID platform.ID, shards []*castiel.Shard, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error)
	BulkUpdateShardsFn func(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error)
	BulkDeleteShardsFn func(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error)
	GetShardACLFn      func(ctx context.Context, tenantID, id platform.ID) ([]castiel.ACLEntry, error)
	PutShardACLFn      func(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) error
}

// FindShardByID returns a single shard by ID.
func (s *ShardService) FindShardByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Shard, error) {
	return s.FindShardByIDFn(ctx, tenantID, id)
}

// FindShards returns a list of shards that match filter.
func (s *ShardService) FindShards(ctx context.Context, filter castiel.ShardFilter, opt ...castiel.FindOptions) ([]*castiel.Shard, int, error) {
	return s.FindShardsFn(ctx, filter, opt...)
}

// CreateShard creates a new shard.
func (s *ShardService) CreateShard(ctx context.Context, sh *castiel.Shard) error {
	return s.CreateShardFn(ctx, sh)
}

// UpdateShard applies the changeset to a single shard.
func (s *ShardService) UpdateShard(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error) {
	return s.UpdateShardFn(ctx, tenantID, id, upd)
}

// DeleteShard soft deletes a shard.
func (s *ShardService) DeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	return s.DeleteShardFn(ctx, tenantID, id)
}

// RestoreShard reverses a soft delete.
func (s *ShardService) RestoreShard(ctx context.Context, tenantID, id platform.ID) error {
	return s.RestoreShardFn(ctx, tenantID, id)
}

// HardDeleteShard physically removes a shard.
func (s *ShardService) HardDeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	return s.HardDeleteShardFn(ctx, tenantID, id)
}

// BulkCreateShards creates shards sequentially.
func (s *ShardService) BulkCreateShards(ctx context.Context, tenantID platform.ID, shards []*castiel.Shard, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	return s.BulkCreateShardsFn(ctx, tenantID, shards, policy)
}

// BulkUpdateShards applies changesets sequentially.
func (s *ShardService) BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	return s.BulkUpdateShardsFn(ctx, tenantID, updates, policy)
}

// BulkDeleteShards soft deletes shards sequentially.
func (s *ShardService) BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	return s.BulkDeleteShardsFn(ctx, tenantID, ids, policy)
}

// GetShardACL returns the ACL of a shard.
func (s *ShardService) GetShardACL(ctx context.Context, tenantID, id platform.ID) ([]castiel.ACLEntry, error) {
	return s.GetShardACLFn(ctx, tenantID, id)
}

// PutShardACL replaces the ACL of a shard.
func (s *ShardService) PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) error {
	return s.PutShardACLFn(ctx, tenantID, id, acl)
}

var _ castiel.ShardLinkingService = (*ShardLinkingService)(nil)

// ShardLinkingService is a mock implementation of castiel.ShardLinkingService.
type ShardLinkingService struct {
	LinkShardsFn     func(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*castiel.Shard, error)
	UnlinkShardsFn   func(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*castiel.Shard, error)
	LinkExternalFn   func(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (*castiel.Shard, error)
	UnlinkExternalFn func(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*castiel.Shard, error)
	FindRelatedFn    func(ctx context.Context, tenantID, parentID platform.ID) ([]castiel.RelatedShard, error)
}

// LinkShards attaches an internal edge from parent to child.
func (s *ShardLinkingService) LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*castiel.Shard, error) {
	return s.LinkShardsFn(ctx, tenantID, parentID, childID, relType, metadata)
}

// UnlinkShards removes the (child, type) edge from parent.
func (s *ShardLinkingService) UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*castiel.Shard, error) {
	return s.UnlinkShardsFn(ctx, tenantID, parentID, childID, relType)
}

// LinkExternal attaches an edge to an outside system record.
func (s *ShardLinkingService) LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (*castiel.Shard, error) {
	return s.LinkExternalFn(ctx, tenantID, parentID, rel)
}

// UnlinkExternal removes the (system, externalID) edge from parent.
func (s *ShardLinkingService) UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*castiel.Shard, error) {
	return s.UnlinkExternalFn(ctx, tenantID, parentID, system, externalID)
}

// FindRelated expands the internal edges of parent into shard summaries.
func (s *ShardLinkingService) FindRelated(ctx context.Context, tenantID, parentID platform.ID) ([]castiel.RelatedShard, error) {
	return s.FindRelatedFn(ctx, tenantID, parentID)
}

var _ castiel.ContextAssemblyService = (*ContextAssemblyService)(nil)

// ContextAssemblyService is a mock implementation of castiel.ContextAssemblyService.
type ContextAssemblyService struct {
	AssembleContextFn func(ctx context.Context, tenantID, shardID platform.ID, opts castiel.ContextAssemblyOptions) (*castiel.ContextBundle, error)
}

// AssembleContext collects a shard and its satellites into one bundle.
func (s *ContextAssemblyService) AssembleContext(ctx context.Context, tenantID, shardID platform.ID, opts castiel.ContextAssemblyOptions) (*castiel.ContextBundle, error) {
	return s.AssembleContextFn(ctx, tenantID, shardID, opts)
}

var _ castiel.ShardTypeService = (*ShardTypeService)(nil)

// ShardTypeService is a mock implementation of castiel.ShardTypeService.
type ShardTypeService struct {
	FindShardTypeByIDFn func(ctx context.Context, tenantID, id platform.ID) (*castiel.ShardType, error)
	FindShardTypesFn    func(ctx context.Context, filter castiel.ShardTypeFilter, opt ...castiel.FindOptions) ([]*castiel.ShardType, int, error)
	CreateShardTypeFn   func(ctx context.Context, t *castiel.ShardType) error
	UpdateShardTypeFn   func(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardTypeUpdate) (*castiel.ShardType, error)
	DeleteShardTypeFn   func(ctx context.Context, tenantID, id platform.ID) error
}

// FindShardTypeByID returns a single shard type by ID.
func (s *ShardTypeService) FindShardTypeByID(ctx context.Context, tenantID, id platform.ID) (*castiel.ShardType, error) {
	return s.FindShardTypeByIDFn(ctx, tenantID, id)
}

// FindShardTypes returns the shard types matching filter.
func (s *ShardTypeService) FindShardTypes(ctx context.Context, filter castiel.ShardTypeFilter, opt ...castiel.FindOptions) ([]*castiel.ShardType, int, error) {
	return s.FindShardTypesFn(ctx, filter, opt...)
}

// CreateShardType creates a new shard type.
func (s *ShardTypeService) CreateShardType(ctx context.Context, t *castiel.ShardType) error {
	return s.CreateShardTypeFn(ctx, t)
}

// UpdateShardType applies the changeset to a shard type.
func (s *ShardTypeService) UpdateShardType(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardTypeUpdate) (*castiel.ShardType, error) {
	return s.UpdateShardTypeFn(ctx, tenantID, id, upd)
}

// DeleteShardType removes a shard type.
func (s *ShardTypeService) DeleteShardType(ctx context.Context, tenantID, id platform.ID) error {
	return s.DeleteShardTypeFn(ctx, tenantID, id)
}
