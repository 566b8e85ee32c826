package tenant

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
	tenantBucket = []byte("tenantsv1")
	tenantIndex  = []byte("tenantindexv1")
)

func tenantIndexKey(n string) []byte {
	return []byte(strings.TrimSpace(n))
}

func unmarshalTenant(v []byte) (*castiel.Tenant, error) {
	t := &castiel.Tenant{}
	if err := json.Unmarshal(v, t); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "tenant could not be unmarshalled",
			Err:  err,
		}
	}
	return t, nil
}

func marshalTenant(t *castiel.Tenant) ([]byte, error) {
	v, err := json.Marshal(t)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "tenant could not be marshalled",
			Err:  err,
		}
	}
	return v, nil
}

func (s *Store) uniqueTenantName(ctx context.Context, tx kv.Tx, name string) error {
	key := tenantIndexKey(name)
	if len(key) == 0 {
		return &errors.Error{
			Code: errors.EEmptyValue,
			Msg:  "tenant name cannot be empty",
		}
	}

	idx, err := tx.Bucket(tenantIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}

	_, err = idx.Get(key)
	if kv.IsNotFound(err) {
		return nil
	}
	if err == nil {
		return TenantAlreadyExistsError(name)
	}
	return ErrInternalServiceError(err)
}

// GetTenant retrieves a tenant by id.
func (s *Store) GetTenant(ctx context.Context, tx kv.Tx, id platform.ID) (*castiel.Tenant, error) {
	encodedID, err := id.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	b, err := tx.Bucket(tenantBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(encodedID)
	if kv.IsNotFound(err) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalTenant(v)
}

// GetTenantByName retrieves a tenant through the name index.
func (s *Store) GetTenantByName(ctx context.Context, tx kv.Tx, name string) (*castiel.Tenant, error) {
	idx, err := tx.Bucket(tenantIndex)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	uid, err := idx.Get(tenantIndexKey(name))
	if kv.IsNotFound(err) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	var id platform.ID
	if err := id.Decode(uid); err != nil {
		return nil, ErrCorruptID(err)
	}
	return s.GetTenant(ctx, tx, id)
}

// ListTenants scans the tenant bucket, applying pagination options.
func (s *Store) ListTenants(ctx context.Context, tx kv.Tx, opt ...castiel.FindOptions) ([]*castiel.Tenant, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(tenantBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, nil
		}
		return nil, ErrInternalServiceError(err)
	}

	var opts []kv.CursorOption
	if o.Descending {
		opts = append(opts, kv.WithCursorDirection(kv.CursorDescending))
	}

	cursor, err := b.ForwardCursor(nil, opts...)
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	count := 0
	ts := []*castiel.Tenant{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		if o.Offset != 0 && count < o.Offset {
			count++
			continue
		}

		t, err := unmarshalTenant(v)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)

		if o.Limit != 0 && len(ts) >= o.Limit {
			break
		}
	}

	return ts, cursor.Err()
}

// CountTenants returns the total number of tenants.
func (s *Store) CountTenants(ctx context.Context, tx kv.Tx) (int, error) {
	b, err := tx.Bucket(tenantBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return 0, nil
		}
		return 0, ErrInternalServiceError(err)
	}

	cursor, err := b.ForwardCursor(nil)
	if err != nil {
		return 0, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	n := 0
	for k, _ := cursor.Next(); k != nil; k, _ = cursor.Next() {
		n++
	}
	return n, cursor.Err()
}

// CreateTenant persists a tenant and its name index entry.
func (s *Store) CreateTenant(ctx context.Context, tx kv.Tx, t *castiel.Tenant) error {
	if err := s.uniqueTenantName(ctx, tx, t.Name); err != nil {
		return err
	}
	return s.putTenant(ctx, tx, t)
}

// UpdateTenant applies the changeset, keeping the name index in step with
// renames.
func (s *Store) UpdateTenant(ctx context.Context, tx kv.Tx, id platform.ID, upd castiel.TenantUpdate) (*castiel.Tenant, error) {
	t, err := s.GetTenant(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != t.Name {
		if err := s.uniqueTenantName(ctx, tx, *upd.Name); err != nil {
			return nil, err
		}

		idx, err := tx.Bucket(tenantIndex)
		if err != nil {
			return nil, ErrInternalServiceError(err)
		}
		if err := idx.Delete(tenantIndexKey(t.Name)); err != nil {
			return nil, ErrInternalServiceError(err)
		}
		t.Name = *upd.Name
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	t.SetUpdatedAt(s.TimeGen.Now())

	if err := s.putTenant(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTenant removes the tenant record and its index entry.
func (s *Store) DeleteTenant(ctx context.Context, tx kv.Tx, id platform.ID) error {
	t, err := s.GetTenant(ctx, tx, id)
	if err != nil {
		return err
	}

	encodedID, err := id.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	idx, err := tx.Bucket(tenantIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Delete(tenantIndexKey(t.Name)); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(tenantBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(encodedID); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

func (s *Store) putTenant(ctx context.Context, tx kv.Tx, t *castiel.Tenant) error {
	encodedID, err := t.ID.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	v, err := marshalTenant(t)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(tenantIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Put(tenantIndexKey(t.Name), encodedID); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(tenantBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(encodedID, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}
