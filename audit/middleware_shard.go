package audit

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

// ShardService records an audit entry for every successful mutating call of
// the wrapped shard and shard linking services. Reads pass straight
// through.
type ShardService struct {
	recorder
	underlying interface {
		castiel.ShardService
		castiel.ShardLinkingService
	}
}

var (
	_ castiel.ShardService        = (*ShardService)(nil)
	_ castiel.ShardLinkingService = (*ShardService)(nil)
)

// NewShardService decorates s with audit recording.
func NewShardService(log *zap.Logger, auditService castiel.AuditService, s interface {
	castiel.ShardService
	castiel.ShardLinkingService
}) *ShardService {
	return &ShardService{
		recorder:   recorder{log: log, auditService: auditService},
		underlying: s,
	}
}

func (s *ShardService) FindShardByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Shard, error) {
	return s.underlying.FindShardByID(ctx, tenantID, id)
}

func (s *ShardService) FindShards(ctx context.Context, filter castiel.ShardFilter, opt ...castiel.FindOptions) ([]*castiel.Shard, int, error) {
	return s.underlying.FindShards(ctx, filter, opt...)
}

func (s *ShardService) CreateShard(ctx context.Context, sh *castiel.Shard) error {
	if err := s.underlying.CreateShard(ctx, sh); err != nil {
		return err
	}
	s.record(ctx, sh.TenantID, castiel.AuditActionCreate, castiel.ShardsResourceType, sh.ID, map[string]interface{}{
		"name": sh.Name,
	})
	return nil
}

func (s *ShardService) UpdateShard(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error) {
	sh, err := s.underlying.UpdateShard(ctx, tenantID, id, upd)
	if err != nil {
		return nil, err
	}
	s.record(ctx, tenantID, castiel.AuditActionUpdate, castiel.ShardsResourceType, id, nil)
	return sh, nil
}

func (s *ShardService) DeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	if err := s.underlying.DeleteShard(ctx, tenantID, id); err != nil {
		return err
	}
	s.record(ctx, tenantID, castiel.AuditActionDelete, castiel.ShardsResourceType, id, nil)
	return nil
}

func (s *ShardService) RestoreShard(ctx context.Context, tenantID, id platform.ID) error {
	if err := s.underlying.RestoreShard(ctx, tenantID, id); err != nil {
		return err
	}
	s.record(ctx, tenantID, castiel.AuditActionRestore, castiel.ShardsResourceType, id, nil)
	return nil
}

func (s *ShardService) HardDeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	if err := s.underlying.HardDeleteShard(ctx, tenantID, id); err != nil {
		return err
	}
	s.record(ctx, tenantID, castiel.AuditActionHardDelete, castiel.ShardsResourceType, id, nil)
	return nil
}

func (s *ShardService) BulkCreateShards(ctx context.Context, tenantID platform.ID, shards []*castiel.Shard, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	outcomes, err := s.underlying.BulkCreateShards(ctx, tenantID, shards, policy)
	for _, o := range outcomes {
		if o.Succeeded() {
			s.record(ctx, tenantID, castiel.AuditActionCreate, castiel.ShardsResourceType, o.ID, map[string]interface{}{
				"bulk": true,
			})
		}
	}
	return outcomes, err
}

func (s *ShardService) BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	outcomes, err := s.underlying.BulkUpdateShards(ctx, tenantID, updates, policy)
	for _, o := range outcomes {
		if o.Succeeded() {
			s.record(ctx, tenantID, castiel.AuditActionUpdate, castiel.ShardsResourceType, o.ID, map[string]interface{}{
				"bulk": true,
			})
		}
	}
	return outcomes, err
}

func (s *ShardService) BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	outcomes, err := s.underlying.BulkDeleteShards(ctx, tenantID, ids, policy)
	for _, o := range outcomes {
		if o.Succeeded() {
			s.record(ctx, tenantID, castiel.AuditActionDelete, castiel.ShardsResourceType, o.ID, map[string]interface{}{
				"bulk": true,
			})
		}
	}
	return outcomes, err
}

func (s *ShardService) GetShardACL(ctx context.Context, tenantID, id platform.ID) ([]castiel.ACLEntry, error) {
	return s.underlying.GetShardACL(ctx, tenantID, id)
}

func (s *ShardService) PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) error {
	if err := s.underlying.PutShardACL(ctx, tenantID, id, acl); err != nil {
		return err
	}
	s.record(ctx, tenantID, castiel.AuditActionACLChange, castiel.ShardsResourceType, id, map[string]interface{}{
		"entries": len(acl),
	})
	return nil
}

func (s *ShardService) LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*castiel.Shard, error) {
	sh, err := s.underlying.LinkShards(ctx, tenantID, parentID, childID, relType, metadata)
	if err != nil {
		return nil, err
	}
	s.record(ctx, tenantID, castiel.AuditActionLink, castiel.ShardsResourceType, parentID, map[string]interface{}{
		"childID": childID.String(),
		"type":    relType,
	})
	return sh, nil
}

func (s *ShardService) UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*castiel.Shard, error) {
	sh, err := s.underlying.UnlinkShards(ctx, tenantID, parentID, childID, relType)
	if err != nil {
		return nil, err
	}
	s.record(ctx, tenantID, castiel.AuditActionUnlink, castiel.ShardsResourceType, parentID, map[string]interface{}{
		"childID": childID.String(),
		"type":    relType,
	})
	return sh, nil
}

func (s *ShardService) LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (*castiel.Shard, error) {
	sh, err := s.underlying.LinkExternal(ctx, tenantID, parentID, rel)
	if err != nil {
		return nil, err
	}
	s.record(ctx, tenantID, castiel.AuditActionLink, castiel.ShardsResourceType, parentID, map[string]interface{}{
		"system":     rel.System,
		"externalID": rel.ExternalID,
	})
	return sh, nil
}

func (s *ShardService) UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*castiel.Shard, error) {
	sh, err := s.underlying.UnlinkExternal(ctx, tenantID, parentID, system, externalID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, tenantID, castiel.AuditActionUnlink, castiel.ShardsResourceType, parentID, map[string]interface{}{
		"system":     system,
		"externalID": externalID,
	})
	return sh, nil
}

func (s *ShardService) FindRelated(ctx context.Context, tenantID, parentID platform.ID) ([]castiel.RelatedShard, error) {
	return s.underlying.FindRelated(ctx, tenantID, parentID)
}
