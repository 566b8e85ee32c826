package shard

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

// FindShardTypeByID returns a single shard type by ID.
func (s *Service) FindShardTypeByID(ctx context.Context, tenantID, id platform.ID) (*castiel.ShardType, error) {
	var st *castiel.ShardType
	err := s.store.View(ctx, func(tx kv.Tx) error {
		t, err := s.store.GetShardType(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		st = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// FindShardTypes returns the shard types matching filter and the total
// count of matching types.
func (s *Service) FindShardTypes(ctx context.Context, filter castiel.ShardTypeFilter, opt ...castiel.FindOptions) ([]*castiel.ShardType, int, error) {
	var (
		ts    []*castiel.ShardType
		total int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		types, n, err := s.store.ListShardTypes(ctx, tx, filter, opt...)
		if err != nil {
			return err
		}
		ts, total = types, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return ts, total, nil
}

// CreateShardType creates a new shard type. Names are unique per tenant.
func (s *Service) CreateShardType(ctx context.Context, t *castiel.ShardType) error {
	if err := t.Valid(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		t.ID = s.store.IDGen.ID()
		now := s.store.TimeGen.Now()
		t.SetCreatedAt(now)
		t.SetUpdatedAt(now)
		return s.store.CreateShardType(ctx, tx, t)
	})
}

// UpdateShardType applies the changeset and returns the new state.
func (s *Service) UpdateShardType(ctx context.Context, tenantID, id platform.ID, upd castiel.ShardTypeUpdate) (*castiel.ShardType, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	var st *castiel.ShardType
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		t, err := s.store.UpdateShardType(ctx, tx, tenantID, id, upd)
		if err != nil {
			return err
		}
		st = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteShardType removes a shard type. Refused while shards still
// reference it, soft-deleted ones included.
func (s *Service) DeleteShardType(ctx context.Context, tenantID, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		n, err := s.store.CountShardsByType(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrShardTypeInUse
		}
		return s.store.DeleteShardType(ctx, tx, tenantID, id)
	})
}
