package shard

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/kv"
)

var (
	shardTypeBucket = []byte("shardtypesv1")
	shardTypeIndex  = []byte("shardtypeindexv1")
)

func shardTypeIndexKey(tenantID platform.ID, name string) ([]byte, error) {
	encodedID, err := tenantID.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}
	k := make([]byte, 0, platform.IDLength+1+len(name))
	k = append(k, encodedID...)
	k = append(k, '/')
	k = append(k, []byte(strings.TrimSpace(name))...)
	return k, nil
}

func unmarshalShardType(v []byte) (*castiel.ShardType, error) {
	t := &castiel.ShardType{}
	if err := json.Unmarshal(v, t); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "shard type could not be unmarshalled",
			Err:  err,
		}
	}
	return t, nil
}

func (s *Store) uniqueShardTypeName(ctx context.Context, tx kv.Tx, tenantID platform.ID, name string) error {
	key, err := shardTypeIndexKey(tenantID, name)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(shardTypeIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}

	_, err = idx.Get(key)
	if kv.IsNotFound(err) {
		return nil
	}
	if err == nil {
		return ShardTypeAlreadyExistsError(name)
	}
	return ErrInternalServiceError(err)
}

// GetShardType retrieves a shard type by tenant and id.
func (s *Store) GetShardType(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) (*castiel.ShardType, error) {
	key, err := shardKey(tenantID, id)
	if err != nil {
		return nil, err
	}

	b, err := tx.Bucket(shardTypeBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrShardTypeNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(key)
	if kv.IsNotFound(err) {
		return nil, ErrShardTypeNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalShardType(v)
}

// ListShardTypes prefix-scans the tenant's types, filtering and paginating
// in one pass.
func (s *Store) ListShardTypes(ctx context.Context, tx kv.Tx, filter castiel.ShardTypeFilter, opt ...castiel.FindOptions) ([]*castiel.ShardType, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(shardTypeBucket)
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

	cursor, err := b.ForwardCursor(prefix, kv.WithCursorPrefix(prefix))
	if err != nil {
		return nil, 0, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	matched := 0
	ts := []*castiel.ShardType{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		t, err := unmarshalShardType(v)
		if err != nil {
			return nil, 0, err
		}
		if filter.Name != nil && t.Name != *filter.Name {
			continue
		}

		matched++
		if o.Offset != 0 && matched <= o.Offset {
			continue
		}
		if o.Limit != 0 && len(ts) >= o.Limit {
			continue
		}
		ts = append(ts, t)
	}

	return ts, matched, cursor.Err()
}

// CreateShardType persists a type and its per-tenant name index entry.
func (s *Store) CreateShardType(ctx context.Context, tx kv.Tx, t *castiel.ShardType) error {
	if err := s.uniqueShardTypeName(ctx, tx, t.TenantID, t.Name); err != nil {
		return err
	}
	return s.putShardType(ctx, tx, t)
}

// UpdateShardType applies the changeset, keeping the name index in step
// with renames.
func (s *Store) UpdateShardType(ctx context.Context, tx kv.Tx, tenantID, id platform.ID, upd castiel.ShardTypeUpdate) (*castiel.ShardType, error) {
	t, err := s.GetShardType(ctx, tx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != t.Name {
		if err := s.uniqueShardTypeName(ctx, tx, tenantID, *upd.Name); err != nil {
			return nil, err
		}

		oldKey, err := shardTypeIndexKey(tenantID, t.Name)
		if err != nil {
			return nil, err
		}
		idx, err := tx.Bucket(shardTypeIndex)
		if err != nil {
			return nil, ErrInternalServiceError(err)
		}
		if err := idx.Delete(oldKey); err != nil {
			return nil, ErrInternalServiceError(err)
		}
		t.Name = *upd.Name
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Schema != nil {
		t.Schema = upd.Schema
	}
	t.SetUpdatedAt(s.TimeGen.Now())

	if err := s.putShardType(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteShardType removes the type record and its index entry.
func (s *Store) DeleteShardType(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) error {
	t, err := s.GetShardType(ctx, tx, tenantID, id)
	if err != nil {
		return err
	}

	key, err := shardKey(tenantID, id)
	if err != nil {
		return err
	}
	idxKey, err := shardTypeIndexKey(tenantID, t.Name)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(shardTypeIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Delete(idxKey); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(shardTypeBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

func (s *Store) putShardType(ctx context.Context, tx kv.Tx, t *castiel.ShardType) error {
	key, err := shardKey(t.TenantID, t.ID)
	if err != nil {
		return err
	}
	idxKey, err := shardTypeIndexKey(t.TenantID, t.Name)
	if err != nil {
		return err
	}

	v, err := json.Marshal(t)
	if err != nil {
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  "shard type could not be marshalled",
			Err:  err,
		}
	}

	encodedID, err := t.ID.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	idx, err := tx.Bucket(shardTypeIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Put(idxKey, encodedID); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(shardTypeBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(key, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}
