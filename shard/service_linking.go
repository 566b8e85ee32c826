package shard

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

// mergeInternal merges an edge into the internal relationship list. Edges
// are unique by (ShardID, Type); on a re-link the incoming metadata wins
// key-by-key and the original CreatedAt is preserved.
func mergeInternal(rels []castiel.Relationship, rel castiel.Relationship, now time.Time) []castiel.Relationship {
	for i := range rels {
		if rels[i].ShardID == rel.ShardID && rels[i].Type == rel.Type {
			rels[i].Metadata = mergeMetadata(rels[i].Metadata, rel.Metadata)
			return rels
		}
	}
	rel.CreatedAt = now
	return append(rels, rel)
}

// mergeExternal merges an edge into the external relationship list. Edges
// are unique by (System, ExternalID).
func mergeExternal(rels []castiel.ExternalRelationship, rel castiel.ExternalRelationship, now time.Time) []castiel.ExternalRelationship {
	for i := range rels {
		if rels[i].System == rel.System && rels[i].ExternalID == rel.ExternalID {
			rels[i].Metadata = mergeMetadata(rels[i].Metadata, rel.Metadata)
			if rel.Type != "" {
				rels[i].Type = rel.Type
			}
			return rels
		}
	}
	rel.CreatedAt = now
	return append(rels, rel)
}

func mergeMetadata(stored, upd map[string]string) map[string]string {
	if len(upd) == 0 {
		return stored
	}
	if stored == nil {
		stored = map[string]string{}
	}
	for k, v := range upd {
		stored[k] = v
	}
	return stored
}

// LinkShards attaches an internal edge from parent to child. The child must
// be a live shard in the same tenant; a shard may not link to itself.
func (s *Service) LinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string, metadata map[string]string) (*castiel.Shard, error) {
	if parentID == childID {
		return nil, ErrSelfLink
	}

	var sh *castiel.Shard
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		parent, err := s.store.GetShard(ctx, tx, tenantID, parentID)
		if err != nil {
			return err
		}
		child, err := s.store.GetShard(ctx, tx, tenantID, childID)
		if err != nil {
			return err
		}
		if child.Status == castiel.ShardDeleted {
			return ErrLinkTargetDeleted
		}

		now := s.store.TimeGen.Now()
		parent.Internal = mergeInternal(parent.Internal, castiel.Relationship{
			ShardID:  childID,
			Type:     relType,
			Metadata: metadata,
		}, now)
		parent.SetUpdatedAt(now)

		if err := s.store.PutShard(ctx, tx, parent); err != nil {
			return err
		}
		sh = parent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// UnlinkShards removes the (child, type) edge from parent.
func (s *Service) UnlinkShards(ctx context.Context, tenantID, parentID, childID platform.ID, relType string) (*castiel.Shard, error) {
	var sh *castiel.Shard
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		parent, err := s.store.GetShard(ctx, tx, tenantID, parentID)
		if err != nil {
			return err
		}

		found := false
		kept := parent.Internal[:0]
		for _, rel := range parent.Internal {
			if rel.ShardID == childID && rel.Type == relType {
				found = true
				continue
			}
			kept = append(kept, rel)
		}
		if !found {
			return ErrRelationshipNotFound
		}

		parent.Internal = kept
		parent.SetUpdatedAt(s.store.TimeGen.Now())
		if err := s.store.PutShard(ctx, tx, parent); err != nil {
			return err
		}
		sh = parent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// LinkExternal attaches an edge to an outside system record.
func (s *Service) LinkExternal(ctx context.Context, tenantID, parentID platform.ID, rel castiel.ExternalRelationship) (*castiel.Shard, error) {
	if err := rel.Valid(); err != nil {
		return nil, err
	}

	var sh *castiel.Shard
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		parent, err := s.store.GetShard(ctx, tx, tenantID, parentID)
		if err != nil {
			return err
		}

		now := s.store.TimeGen.Now()
		parent.External = mergeExternal(parent.External, rel, now)
		parent.SetUpdatedAt(now)

		if err := s.store.PutShard(ctx, tx, parent); err != nil {
			return err
		}
		sh = parent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// UnlinkExternal removes the (system, externalID) edge from parent.
func (s *Service) UnlinkExternal(ctx context.Context, tenantID, parentID platform.ID, system, externalID string) (*castiel.Shard, error) {
	var sh *castiel.Shard
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		parent, err := s.store.GetShard(ctx, tx, tenantID, parentID)
		if err != nil {
			return err
		}

		found := false
		kept := parent.External[:0]
		for _, rel := range parent.External {
			if rel.System == system && rel.ExternalID == externalID {
				found = true
				continue
			}
			kept = append(kept, rel)
		}
		if !found {
			return ErrRelationshipNotFound
		}

		parent.External = kept
		parent.SetUpdatedAt(s.store.TimeGen.Now())
		if err := s.store.PutShard(ctx, tx, parent); err != nil {
			return err
		}
		sh = parent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// FindRelated expands the internal edges of parent into shard summaries.
// Broken edges are skipped. ACL filtering of the results is the auth
// middleware's concern.
func (s *Service) FindRelated(ctx context.Context, tenantID, parentID platform.ID) ([]castiel.RelatedShard, error) {
	var related []castiel.RelatedShard
	err := s.store.View(ctx, func(tx kv.Tx) error {
		parent, err := s.store.GetShard(ctx, tx, tenantID, parentID)
		if err != nil {
			return err
		}

		related = make([]castiel.RelatedShard, 0, len(parent.Internal))
		for _, rel := range parent.Internal {
			child, err := s.store.GetShard(ctx, tx, tenantID, rel.ShardID)
			if err != nil {
				if castiel.ErrorCode(err) == castiel.ENotFound {
					continue
				}
				return err
			}
			if child.Status == castiel.ShardDeleted {
				continue
			}
			related = append(related, castiel.RelatedShard{
				Relationship: rel,
				Shard:        child.Summary(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return related, nil
}
