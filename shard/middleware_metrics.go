package shard

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
)

// ShardMetrics is a metrics service middleware for the shard and shard
// linking services.
type ShardMetrics struct {
	rec          *metric.REDClient
	shardService interface {
		castiel.ShardService
		castiel.ShardLinkingService
	}
}

var (
	_ castiel.ShardService        = (*ShardMetrics)(nil)
	_ castiel.ShardLinkingService = (*ShardMetrics)(nil)
)

// NewShardMetrics returns a metrics service middleware for the shard and
// shard linking services.
func NewShardMetrics(reg prometheus.Registerer, s interface {
	castiel.ShardService
	castiel.ShardLinkingService
}) *ShardMetrics {
	return &ShardMetrics{
		rec:          metric.New(reg, "shard"),
		shardService: s,
	}
}

func (m *ShardMetrics) FindShardByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Shard, error) {
	rec := m.rec.Record("find_shard_by_id")
	sh, err := m.shardService.FindShardByID(ctx, tenantID, id)
	return sh, rec(err)
}

func (m *ShardMetrics) FindShards(ctx context.Context, filter castiel.ShardFilter, opt ...castiel.FindOptions) ([]*castiel.Shard, int, error) {
	rec := m.rec.Record("find_shards")
	shs, n, err := m.shardService.FindShards(ctx, filter, opt...)
	return shs, n, rec(err)
}

func (m *ShardMetrics) CreateShard(ctx context.Context, sh *castiel.Shard) error {
	rec := m.rec.Record("create_shard")
	err := m.shardService.CreateShard(ctx, sh)
	return rec(err)
}

func (m *ShardMetrics) UpdateShard(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error) {
	rec := m.rec.Record("update_shard")
	sh, err := m.shardService.UpdateShard(ctx, tenantID, id, upd)
	return sh, rec(err)
}

func (m *ShardMetrics) DeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("delete_shard")
	err := m.shardService.DeleteShard(ctx, tenantID, id)
	return rec(err)
}

func (m *ShardMetrics) RestoreShard(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("restore_shard")
	err := m.shardService.RestoreShard(ctx, tenantID, id)
	return rec(err)
}

func (m *ShardMetrics) HardDeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("hard_delete_shard")
	err := m.shardService.HardDeleteShard(ctx, tenantID, id)
	return rec(err)
}

func (m *ShardMetrics) BulkCreateShards(ctx context.Context, tenantID platform.ID, shards []*castiel.Shard, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	rec := m.rec.Record("bulk_create_shards")
	out, err := m.shardService.BulkCreateShards(ctx, tenantID, shards, policy)
	return out, rec(err)
}

func (m *ShardMetrics) BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	rec := m.rec.Record("bulk_update_shards")
	out, err := m.shardService.BulkUpdateShards(ctx, tenantID, updates, policy)
	return out, rec(err)
}

func (m *ShardMetrics) BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	rec := m.rec.Record("bulk_delete_shards")
	out, err := m.shardService.BulkDeleteShards(ctx, tenantID, ids, policy)
	return out, rec(err)
}

func (m *ShardMetrics) GetShardACL(ctx context.Context, tenantID, id platform.ID) ([]castiel.ACLEntry, error) {
	rec := m.rec.Record("get_shard_acl")
	acl, err := m.shardService.GetShardACL(ctx, tenantID, id)
	return acl, rec(err)
}

func (m *ShardMetrics) PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) error {
	rec := m.rec.Record("put_shard_acl")
	err := m.shardService.PutShardACL(ctx, tenantID, id, acl)
	return rec(err)
}

func (m *ShardMetrics) LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*castiel.Shard, error) {
	rec := m.rec.Record("link_shards")
	sh, err := m.shardService.LinkShards(ctx, tenantID, parentID, childID, relType, metadata)
	return sh, rec(err)
}

func (m *ShardMetrics) UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*castiel.Shard, error) {
	rec := m.rec.Record("unlink_shards")
	sh, err := m.shardService.UnlinkShards(ctx, tenantID, parentID, childID, relType)
	return sh, rec(err)
}

func (m *ShardMetrics) LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (*castiel.Shard, error) {
	rec := m.rec.Record("link_external")
	sh, err := m.shardService.LinkExternal(ctx, tenantID, parentID, rel)
	return sh, rec(err)
}

func (m *ShardMetrics) UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*castiel.Shard, error) {
	rec := m.rec.Record("unlink_external")
	sh, err := m.shardService.UnlinkExternal(ctx, tenantID, parentID, system, externalID)
	return sh, rec(err)
}

func (m *ShardMetrics) FindRelated(ctx context.Context, tenantID, parentID platform.ID) ([]castiel.RelatedShard, error) {
	rec := m.rec.Record("find_related")
	related, err := m.shardService.FindRelated(ctx, tenantID, parentID)
	return related, rec(err)
}
