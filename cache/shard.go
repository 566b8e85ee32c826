// Package cache provides a redis read-through cache for shard reads and a
// pub/sub subscriber that keeps peer instances converged after writes.
//
// The cache is never a correctness dependency: every redis failure is
// logged and swallowed, and reads fall back to the wrapped service.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultTTL bounds staleness for instances that miss an invalidation.
	DefaultTTL = 5 * time.Minute

	// InvalidationChannel carries invalidation messages between instances.
	InvalidationChannel = "castiel:shard:invalidate"
)

func shardKey(tenantID, id platform.ID) string {
	return fmt.Sprintf("castiel:shard:%s:%s", tenantID, id)
}

type invalidation struct {
	Key           string `json:"key"`
	CorrelationID string `json:"correlationID,omitempty"`
}

// ShardCache decorates a ShardService with a redis read-through cache.
// FindShardByID is served from redis when possible; every mutation,
// linking included, invalidates the affected keys and publishes the
// invalidation so peers converge.
type ShardCache struct {
	castiel.ShardService

	log     *zap.Logger
	client  *redis.Client
	ttl     time.Duration
	linking castiel.ShardLinkingService
}

// NewShardCache wraps s with a redis-backed cache. A zero ttl means
// DefaultTTL.
func NewShardCache(log *zap.Logger, client *redis.Client, s interface {
	castiel.ShardService
	castiel.ShardLinkingService
}, ttl time.Duration) *ShardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ShardCache{
		ShardService: s,
		log:          log,
		client:       client,
		ttl:          ttl,
		linking:      s,
	}
}

var (
	_ castiel.ShardService        = (*ShardCache)(nil)
	_ castiel.ShardLinkingService = (*ShardCache)(nil)
)

// FindShardByID returns a single shard by ID, from cache when possible.
func (c *ShardCache) FindShardByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Shard, error) {
	key := shardKey(tenantID, id)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var sh castiel.Shard
		if err := json.Unmarshal(raw, &sh); err == nil {
			return &sh, nil
		}
		// Unreadable entry; drop it and fall through to the store.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.log.Warn("shard cache read failed", zap.String("key", key), zap.Error(err))
	}

	sh, err := c.ShardService.FindShardByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(sh); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("shard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return sh, nil
}

// Invalidate drops the shard from the local cache and tells peers to do
// the same. Redis failures are logged and swallowed.
func (c *ShardCache) Invalidate(ctx context.Context, tenantID, id platform.ID) {
	key := shardKey(tenantID, id)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("shard cache invalidation failed", zap.String("key", key), zap.Error(err))
	}

	correlationID := icontext.GetCorrelationID(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	msg, err := json.Marshal(invalidation{Key: key, CorrelationID: correlationID})
	if err != nil {
		return
	}
	if err := c.client.Publish(ctx, InvalidationChannel, msg).Err(); err != nil {
		c.log.Warn("shard invalidation publish failed",
			zap.String("key", key),
			zap.String("correlation_id", correlationID),
			zap.Error(err))
	}
}

// UpdateShard applies the changeset to a single shard and returns the new
// state.
func (c *ShardCache) UpdateShard(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error) {
	sh, err := c.ShardService.UpdateShard(ctx, tenantID, id, upd)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, tenantID, id)
	return sh, nil
}

// DeleteShard soft deletes a shard.
func (c *ShardCache) DeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	if err := c.ShardService.DeleteShard(ctx, tenantID, id); err != nil {
		return err
	}
	c.Invalidate(ctx, tenantID, id)
	return nil
}

// RestoreShard reverses a soft delete.
func (c *ShardCache) RestoreShard(ctx context.Context, tenantID, id platform.ID) error {
	if err := c.ShardService.RestoreShard(ctx, tenantID, id); err != nil {
		return err
	}
	c.Invalidate(ctx, tenantID, id)
	return nil
}

// HardDeleteShard physically removes a shard.
func (c *ShardCache) HardDeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	if err := c.ShardService.HardDeleteShard(ctx, tenantID, id); err != nil {
		return err
	}
	c.Invalidate(ctx, tenantID, id)
	return nil
}

// PutShardACL replaces the ACL of a shard.
func (c *ShardCache) PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) error {
	if err := c.ShardService.PutShardACL(ctx, tenantID, id, acl); err != nil {
		return err
	}
	c.Invalidate(ctx, tenantID, id)
	return nil
}

// LinkShards attaches an internal edge from parent to child. Both
// endpoints drop out of the cache: the parent's relation set changed and
// peers expanding the edge must not see a stale child.
func (c *ShardCache) LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*castiel.Shard, error) {
	sh, err := c.linking.LinkShards(ctx, tenantID, parentID, childID, relType, metadata)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, tenantID, parentID)
	c.Invalidate(ctx, tenantID, childID)
	return sh, nil
}

// UnlinkShards removes the (child, type) edge from parent.
func (c *ShardCache) UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*castiel.Shard, error) {
	sh, err := c.linking.UnlinkShards(ctx, tenantID, parentID, childID, relType)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, tenantID, parentID)
	c.Invalidate(ctx, tenantID, childID)
	return sh, nil
}

// LinkExternal attaches an edge to an outside system record.
func (c *ShardCache) LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (*castiel.Shard, error) {
	sh, err := c.linking.LinkExternal(ctx, tenantID, parentID, rel)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, tenantID, parentID)
	return sh, nil
}

// UnlinkExternal removes the (system, externalID) edge from parent.
func (c *ShardCache) UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*castiel.Shard, error) {
	sh, err := c.linking.UnlinkExternal(ctx, tenantID, parentID, system, externalID)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, tenantID, parentID)
	return sh, nil
}

// FindRelated expands the internal edges of parent into shard summaries.
func (c *ShardCache) FindRelated(ctx context.Context, tenantID, parentID platform.ID) ([]castiel.RelatedShard, error) {
	return c.linking.FindRelated(ctx, tenantID, parentID)
}

// BulkUpdateShards applies changesets sequentially, honoring the on-error
// policy, and reports per-item outcomes. Every touched shard is
// invalidated, including ones whose update failed partway.
func (c *ShardCache) BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	outcomes, err := c.ShardService.BulkUpdateShards(ctx, tenantID, updates, policy)
	for _, u := range updates {
		c.Invalidate(ctx, tenantID, u.ID)
	}
	return outcomes, err
}

// BulkDeleteShards soft deletes shards sequentially, honoring the on-error
// policy, and reports per-item outcomes.
func (c *ShardCache) BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	outcomes, err := c.ShardService.BulkDeleteShards(ctx, tenantID, ids, policy)
	for _, id := range ids {
		c.Invalidate(ctx, tenantID, id)
	}
	return outcomes, err
}
