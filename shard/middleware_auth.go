package shard

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/authorizer"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
)

// AuthedService enforces shard ACLs on top of the shard and shard linking
// services. Tenant isolation is the router's concern; this layer decides
// whether the caller's grants on the individual shard cover the requested
// action. A shard with an empty ACL is visible to the whole tenant.
type AuthedService struct {
	shardService interface {
		castiel.ShardService
		castiel.ShardLinkingService
	}
	urms castiel.UserResourceMappingService
}

// NewAuthedService returns an ACL-checking middleware for the shard and
// shard linking services. Role grants are resolved through urms.
func NewAuthedService(s interface {
	castiel.ShardService
	castiel.ShardLinkingService
}, urms castiel.UserResourceMappingService) *AuthedService {
	return &AuthedService{
		shardService: s,
		urms:         urms,
	}
}

var (
	_ castiel.ShardService        = (*AuthedService)(nil)
	_ castiel.ShardLinkingService = (*AuthedService)(nil)
)

// ErrACLDenied is returned when a caller holds no grant covering the
// requested action on a shard.
var ErrACLDenied = &errors.Error{
	Msg:  "no acl grant covers this action",
	Code: errors.EForbidden,
}

// isOperator reports whether the caller holds the global shard write
// permission. Operators bypass per-shard ACLs.
func (s *AuthedService) isOperator(ctx context.Context) bool {
	p, err := castiel.NewGlobalPermission(castiel.WriteAction, castiel.ShardsResourceType)
	if err != nil {
		return false
	}
	return authorizer.IsAllowed(ctx, *p) == nil
}

// roleIDs returns the set of roles the user is a member of.
func (s *AuthedService) roleIDs(ctx context.Context, userID platform.ID) (map[platform.ID]bool, error) {
	ms, _, err := s.urms.FindUserResourceMappings(ctx, castiel.UserResourceMappingFilter{
		UserID:       userID,
		ResourceType: castiel.RolesMappableType,
	})
	if err != nil {
		return nil, err
	}
	ids := make(map[platform.ID]bool, len(ms))
	for _, m := range ms {
		ids[m.ResourceID] = true
	}
	return ids, nil
}

// aclAllows checks the shard's ACL for a grant covering action. Role
// memberships are only resolved when the ACL carries role entries.
func (s *AuthedService) aclAllows(ctx context.Context, sh *castiel.Shard, action castiel.ACLAction) error {
	if len(sh.ACL) == 0 || s.isOperator(ctx) {
		return nil
	}

	userID, err := icontext.GetUserID(ctx)
	if err != nil {
		return err
	}

	var roles map[platform.ID]bool
	for _, e := range sh.ACL {
		if !e.Allows(action) {
			continue
		}
		switch e.SubjectType {
		case castiel.ACLSubjectUser:
			if e.SubjectID == userID {
				return nil
			}
		case castiel.ACLSubjectRole:
			if roles == nil {
				roles, err = s.roleIDs(ctx, userID)
				if err != nil {
					return err
				}
			}
			if roles[e.SubjectID] {
				return nil
			}
		}
	}
	return ErrACLDenied
}

// checkShard loads the shard and verifies the caller may perform action
// on it.
func (s *AuthedService) checkShard(ctx context.Context, tenantID, id platform.ID, action castiel.ACLAction) (*castiel.Shard, error) {
	sh, err := s.shardService.FindShardByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.aclAllows(ctx, sh, action); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *AuthedService) FindShardByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Shard, error) {
	return s.checkShard(ctx, tenantID, id, castiel.ACLRead)
}

// FindShards drops shards the caller cannot read from the result set.
func (s *AuthedService) FindShards(ctx context.Context, filter castiel.ShardFilter, opt ...castiel.FindOptions) ([]*castiel.Shard, int, error) {
	shs, n, err := s.shardService.FindShards(ctx, filter, opt...)
	if err != nil {
		return nil, 0, err
	}

	readable := shs[:0]
	for _, sh := range shs {
		if err := s.aclAllows(ctx, sh, castiel.ACLRead); err != nil {
			if errors.ErrorCode(err) == errors.EForbidden {
				n--
				continue
			}
			return nil, 0, err
		}
		readable = append(readable, sh)
	}
	return readable, n, nil
}

func (s *AuthedService) CreateShard(ctx context.Context, sh *castiel.Shard) error {
	return s.shardService.CreateShard(ctx, sh)
}

func (s *AuthedService) UpdateShard(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error) {
	if _, err := s.checkShard(ctx, tenantID, id, castiel.ACLWrite); err != nil {
		return nil, err
	}
	return s.shardService.UpdateShard(ctx, tenantID, id, upd)
}

func (s *AuthedService) DeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	if _, err := s.checkShard(ctx, tenantID, id, castiel.ACLWrite); err != nil {
		return err
	}
	return s.shardService.DeleteShard(ctx, tenantID, id)
}

func (s *AuthedService) RestoreShard(ctx context.Context, tenantID, id platform.ID) error {
	if _, err := s.checkShard(ctx, tenantID, id, castiel.ACLWrite); err != nil {
		return err
	}
	return s.shardService.RestoreShard(ctx, tenantID, id)
}

// HardDeleteShard is reserved for operators; shard-level admin grants do
// not cover it.
func (s *AuthedService) HardDeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	if !s.isOperator(ctx) {
		return ErrACLDenied
	}
	return s.shardService.HardDeleteShard(ctx, tenantID, id)
}

// requireTenantWrite gates the bulk surface on the tenant-wide shard write
// permission rather than per-item ACLs.
func (s *AuthedService) requireTenantWrite(ctx context.Context, tenantID platform.ID) error {
	p, err := castiel.NewPermission(castiel.WriteAction, castiel.ShardsResourceType, tenantID)
	if err != nil {
		return err
	}
	return authorizer.IsAllowed(ctx, *p)
}

func (s *AuthedService) BulkCreateShards(ctx context.Context, tenantID platform.ID, shards []*castiel.Shard, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	if err := s.requireTenantWrite(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.shardService.BulkCreateShards(ctx, tenantID, shards, policy)
}

func (s *AuthedService) BulkUpdateShards(ctx context.Context, tenantID platform.ID, updates []castiel.BulkShardUpdate, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	if err := s.requireTenantWrite(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.shardService.BulkUpdateShards(ctx, tenantID, updates, policy)
}

func (s *AuthedService) BulkDeleteShards(ctx context.Context, tenantID platform.ID, ids []platform.ID, policy castiel.OnErrorPolicy) ([]castiel.BulkOutcome, error) {
	if err := s.requireTenantWrite(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.shardService.BulkDeleteShards(ctx, tenantID, ids, policy)
}

func (s *AuthedService) GetShardACL(ctx context.Context, tenantID, id platform.ID) ([]castiel.ACLEntry, error) {
	sh, err := s.checkShard(ctx, tenantID, id, castiel.ACLRead)
	if err != nil {
		return nil, err
	}
	return sh.ACL, nil
}

func (s *AuthedService) PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) error {
	if _, err := s.checkShard(ctx, tenantID, id, castiel.ACLAdmin); err != nil {
		return err
	}
	return s.shardService.PutShardACL(ctx, tenantID, id, acl)
}

func (s *AuthedService) LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*castiel.Shard, error) {
	if _, err := s.checkShard(ctx, tenantID, parentID, castiel.ACLWrite); err != nil {
		return nil, err
	}
	return s.shardService.LinkShards(ctx, tenantID, parentID, childID, relType, metadata)
}

func (s *AuthedService) UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*castiel.Shard, error) {
	if _, err := s.checkShard(ctx, tenantID, parentID, castiel.ACLWrite); err != nil {
		return nil, err
	}
	return s.shardService.UnlinkShards(ctx, tenantID, parentID, childID, relType)
}

func (s *AuthedService) LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (*castiel.Shard, error) {
	if _, err := s.checkShard(ctx, tenantID, parentID, castiel.ACLWrite); err != nil {
		return nil, err
	}
	return s.shardService.LinkExternal(ctx, tenantID, parentID, rel)
}

func (s *AuthedService) UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*castiel.Shard, error) {
	if _, err := s.checkShard(ctx, tenantID, parentID, castiel.ACLWrite); err != nil {
		return nil, err
	}
	return s.shardService.UnlinkExternal(ctx, tenantID, parentID, system, externalID)
}

// FindRelated checks read access on the parent and drops edges whose child
// the caller cannot read.
func (s *AuthedService) FindRelated(ctx context.Context, tenantID, parentID platform.ID) ([]castiel.RelatedShard, error) {
	if _, err := s.checkShard(ctx, tenantID, parentID, castiel.ACLRead); err != nil {
		return nil, err
	}

	related, err := s.shardService.FindRelated(ctx, tenantID, parentID)
	if err != nil {
		return nil, err
	}

	readable := related[:0]
	for _, rel := range related {
		child, err := s.shardService.FindShardByID(ctx, tenantID, rel.Shard.ID)
		if err != nil {
			if errors.ErrorCode(err) == errors.ENotFound {
				continue
			}
			return nil, err
		}
		if err := s.aclAllows(ctx, child, castiel.ACLRead); err != nil {
			if errors.ErrorCode(err) == errors.EForbidden {
				continue
			}
			return nil, err
		}
		readable = append(readable, rel)
	}
	return readable, nil
}
