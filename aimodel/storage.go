// Package aimodel implements the model registry and the scoring client
// that calls registered endpoints.
package aimodel

import (
	"context"
	"encoding/json"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/kv"
	"github.com/Edgame2/castiel/snowflake"
)

var (
	modelBucket = []byte("aimodelsv1")
)

// Store is the kv-backed persistence layer for the model registry. Model
// keys are tenantID + modelID so tenant scans are prefix scans.
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

func modelKey(tenantID, id platform.ID) ([]byte, error) {
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

func unmarshalModel(v []byte) (*castiel.AIModel, error) {
	m := &castiel.AIModel{}
	if err := json.Unmarshal(v, m); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "model could not be unmarshalled",
			Err:  err,
		}
	}
	return m, nil
}

func marshalModel(m *castiel.AIModel) ([]byte, error) {
	v, err := json.Marshal(m)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "model could not be marshalled",
			Err:  err,
		}
	}
	return v, nil
}

// GetModel retrieves a model by tenant and id.
func (s *Store) GetModel(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) (*castiel.AIModel, error) {
	key, err := modelKey(tenantID, id)
	if err != nil {
		return nil, err
	}

	b, err := tx.Bucket(modelBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrModelNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(key)
	if kv.IsNotFound(err) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalModel(v)
}

// PutModel persists a model at its tenant-scoped key.
func (s *Store) PutModel(ctx context.Context, tx kv.Tx, m *castiel.AIModel) error {
	key, err := modelKey(m.TenantID, m.ID)
	if err != nil {
		return err
	}
	v, err := marshalModel(m)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(modelBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(key, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// DeleteModel removes a model record.
func (s *Store) DeleteModel(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) error {
	key, err := modelKey(tenantID, id)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(modelBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

func matchModel(m *castiel.AIModel, filter castiel.AIModelFilter) bool {
	if m.TenantID != filter.TenantID {
		return false
	}
	if filter.Kind != nil && m.Kind != *filter.Kind {
		return false
	}
	if filter.Status != nil && m.Status != *filter.Status {
		return false
	}
	if filter.Name != nil && m.Name != *filter.Name {
		return false
	}
	return true
}

// ListModels scans the tenant's key range for models matching filter. The
// second return is the total matched before paging.
func (s *Store) ListModels(ctx context.Context, tx kv.Tx, filter castiel.AIModelFilter, opt ...castiel.FindOptions) ([]*castiel.AIModel, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(modelBucket)
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
	models := []*castiel.AIModel{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		m, err := unmarshalModel(v)
		if err != nil {
			return nil, 0, err
		}
		if !matchModel(m, filter) {
			continue
		}

		matched++
		if o.Offset != 0 && matched <= o.Offset {
			continue
		}
		if o.Limit != 0 && len(models) >= o.Limit {
			continue
		}
		models = append(models, m)
	}

	return models, matched, cursor.Err()
}
