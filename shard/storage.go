// Package shard implements the shard document services: CRUD, bulk writes,
// relationship linking, ACLs, shard types, and context assembly.
package shard

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/kv"
	"github.com/Edgame2/castiel/snowflake"
)

var (
	shardBucket = []byte("shardsv1")
)

// Store is the kv-backed persistence layer for shards and shard types.
// Shard keys are tenantID + shardID, so every tenant's records sit in one
// contiguous key range and tenant scans are prefix scans.
type Store struct {
	kvStore kv.Store
	IDGen   platform.IDGenerator
	TimeGen castiel.TimeGenerator
}

// NewStore creates a store over the provided kv store.
func NewStore(kvStore kv.Store) *Store {
	return &Store{
		kvStore: kvStore,
		IDGen:   snowflake.NewIDGenerator(),
		TimeGen: castiel.RealTimeGenerator{},
	}
}

// View opens up a transaction that will not write to any data.
func (s *Store) View(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.View(ctx, fn)
}

// Update opens up a transaction that will mutate data.
func (s *Store) Update(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.Update(ctx, fn)
}

func shardKey(tenantID, id platform.ID) ([]byte, error) {
	encodedTenantID, err := tenantID.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}
	encodedID, err := id.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	k := make([]byte, 0, 2*platform.IDLength)
	k = append(k, encodedTenantID...)
	k = append(k, encodedID...)
	return k, nil
}

func unmarshalShard(v []byte) (*castiel.Shard, error) {
	sh := &castiel.Shard{}
	if err := json.Unmarshal(v, sh); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "shard could not be unmarshalled",
			Err:  err,
		}
	}
	return sh, nil
}

func marshalShard(sh *castiel.Shard) ([]byte, error) {
	v, err := json.Marshal(sh)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "shard could not be marshalled",
			Err:  err,
		}
	}
	return v, nil
}

// GetShard retrieves a shard by tenant and id. Soft-deleted shards are
// returned; visibility is the service's concern.
func (s *Store) GetShard(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) (*castiel.Shard, error) {
	key, err := shardKey(tenantID, id)
	if err != nil {
		return nil, err
	}

	b, err := tx.Bucket(shardBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrShardNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(key)
	if kv.IsNotFound(err) {
		return nil, ErrShardNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalShard(v)
}

// PutShard persists a shard at its tenant-scoped key.
func (s *Store) PutShard(ctx context.Context, tx kv.Tx, sh *castiel.Shard) error {
	key, err := shardKey(sh.TenantID, sh.ID)
	if err != nil {
		return err
	}

	v, err := marshalShard(sh)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(shardBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(key, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// DeleteShard physically removes a shard record.
func (s *Store) DeleteShard(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) error {
	key, err := shardKey(tenantID, id)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(shardBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return ErrShardNotFound
		}
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

func matchShard(sh *castiel.Shard, filter castiel.ShardFilter) bool {
	if sh.Status == castiel.ShardDeleted && !filter.IncludeDeleted && filter.Status == nil {
		return false
	}
	if filter.Status != nil && sh.Status != *filter.Status {
		return false
	}
	if filter.TypeID != nil && sh.TypeID != *filter.TypeID {
		return false
	}
	if filter.NamePrefix != nil && !strings.HasPrefix(sh.Name, *filter.NamePrefix) {
		return false
	}
	return true
}

// ListShards prefix-scans the tenant's key range, filtering and paginating
// in one pass. Returns the page and the total match count.
func (s *Store) ListShards(ctx context.Context, tx kv.Tx, filter castiel.ShardFilter, opt ...castiel.FindOptions) ([]*castiel.Shard, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(shardBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, 0, nil
		}
		return nil, 0, ErrInternalServiceError(err)
	}

	prefix, err := filter.TenantID.Encode()
	if err != nil {
		return nil, 0, ErrCorruptID(err)
	}

	opts := []kv.CursorOption{kv.WithCursorPrefix(prefix)}
	if o.Descending {
		opts = append(opts, kv.WithCursorDirection(kv.CursorDescending))
	}

	cursor, err := b.ForwardCursor(prefix, opts...)
	if err != nil {
		return nil, 0, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	matched := 0
	shards := []*castiel.Shard{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		sh, err := unmarshalShard(v)
		if err != nil {
			return nil, 0, err
		}
		if !matchShard(sh, filter) {
			continue
		}

		matched++
		if o.Offset != 0 && matched <= o.Offset {
			continue
		}
		if o.Limit != 0 && len(shards) >= o.Limit {
			continue
		}
		shards = append(shards, sh)
	}

	return shards, matched, cursor.Err()
}

// CountShardsByType reports how many live shards reference a type, used to
// refuse type deletion while in use.
func (s *Store) CountShardsByType(ctx context.Context, tx kv.Tx, tenantID, typeID platform.ID) (int, error) {
	_, n, err := s.ListShards(ctx, tx, castiel.ShardFilter{
		TenantID:       tenantID,
		TypeID:         &typeID,
		IncludeDeleted: true,
	})
	return n, err
}
