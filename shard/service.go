package shard

import (
	"context"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

// Service implements the shard, shard linking, and shard type service
// interfaces over one kv store.
type Service struct {
	store *Store
}

var (
	_ castiel.ShardService        = (*Service)(nil)
	_ castiel.ShardLinkingService = (*Service)(nil)
	_ castiel.ShardTypeService    = (*Service)(nil)
)

// NewService creates a new base shard service.
func NewService(st *Store) *Service {
	return &Service{store: st}
}

// FindShardByID returns a single shard by ID.
func (s *Service) FindShardByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Shard, error) {
	var sh *castiel.Shard
	err := s.store.View(ctx, func(tx kv.Tx) error {
		shard, err := s.store.GetShard(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		sh = shard
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// FindShards returns a list of shards that match filter and the total
// count of matching shards.
func (s *Service) FindShards(ctx context.Context, filter castiel.ShardFilter, opt ...castiel.FindOptions) ([]*castiel.Shard, int, error) {
	var (
		shards []*castiel.Shard
		total  int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		shs, n, err := s.store.ListShards(ctx, tx, filter, opt...)
		if err != nil {
			return err
		}
		shards, total = shs, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return shards, total, nil
}

// CreateShard creates a new shard and sets sh.ID with the new identifier.
// The shard type must exist in the tenant; when the request carries no ACL
// the creator is granted admin.
func (s *Service) CreateShard(ctx context.Context, sh *castiel.Shard) error {
	if sh.Status == "" {
		sh.Status = castiel.ShardActive
	}
	if err := sh.Valid(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetShardType(ctx, tx, sh.TenantID, sh.TypeID); err != nil {
			return err
		}

		if len(sh.ACL) == 0 {
			if creator, err := icontext.GetUserID(ctx); err == nil {
				sh.ACL = []castiel.ACLEntry{{
					SubjectType: castiel.ACLSubjectUser,
					SubjectID:   creator,
					Actions:     []castiel.ACLAction{castiel.ACLAdmin},
				}}
			}
		}

		sh.ID = s.store.IDGen.ID()
		now := s.store.TimeGen.Now()
		sh.SetCreatedAt(now)
		sh.SetUpdatedAt(now)
		return s.store.PutShard(ctx, tx, sh)
	})
}

// UpdateShard applies the changeset to a single shard and returns the new
// state. The structured payload merges at the top level and relationship
// arrays merge under the linking uniqueness rules.
func (s *Service) UpdateShard(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	var sh *castiel.Shard
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		shard, err := s.store.GetShard(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			shard.Name = *upd.Name
		}
		if upd.TypeID != nil {
			if _, err := s.store.GetShardType(ctx, tx, tenantID, *upd.TypeID); err != nil {
				return err
			}
			shard.TypeID = *upd.TypeID
		}
		if upd.Structured != nil {
			shard.Structured = mergeStructured(shard.Structured, upd.Structured)
		}
		if upd.Unstructured != nil {
			shard.Unstructured = *upd.Unstructured
		}
		now := s.store.TimeGen.Now()
		for _, rel := range upd.Internal {
			if rel.ShardID == id {
				return ErrSelfLink
			}
			target, err := s.store.GetShard(ctx, tx, tenantID, rel.ShardID)
			if err != nil {
				return err
			}
			if target.Status == castiel.ShardDeleted {
				return ErrLinkTargetDeleted
			}
			shard.Internal = mergeInternal(shard.Internal, rel, now)
		}
		for _, rel := range upd.External {
			if err := rel.Valid(); err != nil {
				return err
			}
			shard.External = mergeExternal(shard.External, rel, now)
		}

		shard.SetUpdatedAt(now)
		if err := s.store.PutShard(ctx, tx, shard); err != nil {
			return err
		}
		sh = shard
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// DeleteShard soft deletes a shard. Already-deleted shards delete again
// without error; the operation is idempotent.
func (s *Service) DeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		sh, err := s.store.GetShard(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}

		now := s.store.TimeGen.Now()
		sh.Status = castiel.ShardDeleted
		sh.DeletedAt = &now
		sh.SetUpdatedAt(now)
		return s.store.PutShard(ctx, tx, sh)
	})
}

// RestoreShard reverses a soft delete.
func (s *Service) RestoreShard(ctx context.Context, tenantID, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		sh, err := s.store.GetShard(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if sh.Status != castiel.ShardDeleted {
			return ErrShardNotDeleted
		}

		sh.Status = castiel.ShardActive
		sh.DeletedAt = nil
		sh.SetUpdatedAt(s.store.TimeGen.Now())
		return s.store.PutShard(ctx, tx, sh)
	})
}

// HardDeleteShard physically removes a shard.
func (s *Service) HardDeleteShard(ctx context.Context, tenantID, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetShard(ctx, tx, tenantID, id); err != nil {
			return err
		}
		return s.store.DeleteShard(ctx, tx, tenantID, id)
	})
}

// GetShardACL returns the ACL of a shard.
func (s *Service) GetShardACL(ctx context.Context, tenantID, id platform.ID) ([]castiel.ACLEntry, error) {
	sh, err := s.FindShardByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return sh.ACL, nil
}

// PutShardACL replaces the ACL of a shard.
func (s *Service) PutShardACL(ctx context.Context, tenantID, id platform.ID, acl []castiel.ACLEntry) error {
	for _, e := range acl {
		if err := e.Valid(); err != nil {
			return err
		}
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		sh, err := s.store.GetShard(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}

		sh.ACL = acl
		sh.SetUpdatedAt(s.store.TimeGen.Now())
		return s.store.PutShard(ctx, tx, sh)
	})
}

// mergeStructured merges the update payload into the stored payload at the
// top level. Explicit nulls delete keys.
func mergeStructured(stored, upd map[string]interface{}) map[string]interface{} {
	if stored == nil {
		stored = map[string]interface{}{}
	}
	for k, v := range upd {
		if v == nil {
			delete(stored, k)
			continue
		}
		stored[k] = v
	}
	return stored
}
