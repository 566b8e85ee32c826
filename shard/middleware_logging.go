package shard

import (
	"context"
	"fmt"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

// ShardLogger is a logging service middleware for the shard and shard
// linking services.
type ShardLogger struct {
	logger       *zap.Logger
	shardService interface {
		castiel.ShardService
		castiel.ShardLinkingService
	}
}

// NewShardLogger returns a logging service middleware for the shard and
// shard linking services.
func NewShardLogger(log *zap.Logger, s interface {
	castiel.ShardService
	castiel.ShardLinkingService
}) *ShardLogger {
	return &ShardLogger{
		logger:       log,
		shardService: s,
	}
}

var (
	_ castiel.ShardService        = (*ShardLogger)(nil)
	_ castiel.ShardLinkingService = (*ShardLogger)(nil)
)

func (l *ShardLogger) FindShardByID(ctx context.Context, tenantID, id platform.ID) (sh *castiel.Shard, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to find shard with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard find by ID", dur)
	}(time.Now())
	return l.shardService.FindShardByID(ctx, tenantID, id)
}

func (l *ShardLogger) FindShards(ctx context.Context, filter castiel.ShardFilter, opt ...castiel.FindOptions) (shs []*castiel.Shard, n int, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find shards matching the given filter", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shards find", dur)
	}(time.Now())
	return l.shardService.FindShards(ctx, filter, opt...)
}

func (l *ShardLogger) CreateShard(ctx context.Context, sh *castiel.Shard) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to create shard", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard create", dur)
	}(time.Now())
	return l.shardService.CreateShard(ctx, sh)
}

func (l *ShardLogger) UpdateShard(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (sh *castiel.Shard, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to update shard", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard update", dur)
	}(time.Now())
	return l.shardService.UpdateShard(ctx, tenantID, id, upd)
}

func (l *ShardLogger) DeleteShard(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to delete shard with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard delete", dur)
	}(time.Now())
	return l.shardService.DeleteShard(ctx, tenantID, id)
}

func (l *ShardLogger) RestoreShard(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to restore shard with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard restore", dur)
	}(time.Now())
	return l.shardService.RestoreShard(ctx, tenantID, id)
}

func (l *ShardLogger) HardDeleteShard(ctx context.Context, tenantID, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to hard delete shard with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard hard delete", dur)
	}(time.Now())
	return l.shardService.HardDeleteShard(ctx, tenantID, id)
}

func (l *ShardLogger) BulkCreateShards(ctx context.Context, tenantID platform.ID, shards []*castiel.Shard, policy castiel.OnErrorPolicy) (out []castiel.BulkOutcome, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to bulk create shards", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shards bulk create", zap.Int("items", len(shards)), dur)
	}(time.Now())
	return l.shardService.BulkCreateShards(ctx, tenantID, shards, policy)
}

func (l *ShardLogger) BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) (out []castiel.BulkOutcome, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to bulk update shards", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shards bulk update", zap.Int("items", len(updates)), dur)
	}(time.Now())
	return l.shardService.BulkUpdateShards(ctx, tenantID, updates, policy)
}

func (l *ShardLogger) BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) (out []castiel.BulkOutcome, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to bulk delete shards", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shards bulk delete", zap.Int("items", len(ids)), dur)
	}(time.Now())
	return l.shardService.BulkDeleteShards(ctx, tenantID, ids, policy)
}

func (l *ShardLogger) GetShardACL(ctx context.Context, tenantID, id platform.ID) (acl []castiel.ACLEntry, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to get shard ACL", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard ACL get", dur)
	}(time.Now())
	return l.shardService.GetShardACL(ctx, tenantID, id)
}

func (l *ShardLogger) PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to put shard ACL", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard ACL put", dur)
	}(time.Now())
	return l.shardService.PutShardACL(ctx, tenantID, id, acl)
}

func (l *ShardLogger) LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (sh *castiel.Shard, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to link shards", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shards link", dur)
	}(time.Now())
	return l.shardService.LinkShards(ctx, tenantID, parentID, childID, relType, metadata)
}

func (l *ShardLogger) UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (sh *castiel.Shard, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to unlink shards", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shards unlink", dur)
	}(time.Now())
	return l.shardService.UnlinkShards(ctx, tenantID, parentID, childID, relType)
}

func (l *ShardLogger) LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (sh *castiel.Shard, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to link external record", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard external link", dur)
	}(time.Now())
	return l.shardService.LinkExternal(ctx, tenantID, parentID, rel)
}

func (l *ShardLogger) UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (sh *castiel.Shard, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to unlink external record", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shard external unlink", dur)
	}(time.Now())
	return l.shardService.UnlinkExternal(ctx, tenantID, parentID, system, externalID)
}

func (l *ShardLogger) FindRelated(ctx context.Context, tenantID, parentID platform.ID) (related []castiel.RelatedShard, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find related shards", zap.Error(err), dur)
			return
		}
		l.logger.Debug("shards find related", dur)
	}(time.Now())
	return l.shardService.FindRelated(ctx, tenantID, parentID)
}
