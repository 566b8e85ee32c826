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
	roleBucket = []byte("rolesv1")
	roleIndex  = []byte("roleindexv1")
)

// roleIndexKey scopes role name uniqueness to the tenant.
func roleIndexKey(tenantID platform.ID, name string) ([]byte, error) {
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

func unmarshalRole(v []byte) (*castiel.Role, error) {
	r := &castiel.Role{}
	if err := json.Unmarshal(v, r); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "role could not be unmarshalled",
			Err:  err,
		}
	}
	return r, nil
}

func marshalRole(r *castiel.Role) ([]byte, error) {
	v, err := json.Marshal(r)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "role could not be marshalled",
			Err:  err,
		}
	}
	return v, nil
}

func (s *Store) uniqueRoleName(ctx context.Context, tx kv.Tx, tenantID platform.ID, name string) error {
	key, err := roleIndexKey(tenantID, name)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(roleIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}

	_, err = idx.Get(key)
	if kv.IsNotFound(err) {
		return nil
	}
	if err == nil {
		return RoleAlreadyExistsError(name)
	}
	return ErrInternalServiceError(err)
}

// GetRole retrieves a role by id.
func (s *Store) GetRole(ctx context.Context, tx kv.Tx, id platform.ID) (*castiel.Role, error) {
	encodedID, err := id.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	b, err := tx.Bucket(roleBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrRoleNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(encodedID)
	if kv.IsNotFound(err) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalRole(v)
}

// ListRoles scans the role bucket, filtering and paginating in one pass.
func (s *Store) ListRoles(ctx context.Context, tx kv.Tx, filter castiel.RoleFilter, opt ...castiel.FindOptions) ([]*castiel.Role, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(roleBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, 0, nil
		}
		return nil, 0, ErrInternalServiceError(err)
	}

	var opts []kv.CursorOption
	if o.Descending {
		opts = append(opts, kv.WithCursorDirection(kv.CursorDescending))
	}

	cursor, err := b.ForwardCursor(nil, opts...)
	if err != nil {
		return nil, 0, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	matched := 0
	rs := []*castiel.Role{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		r, err := unmarshalRole(v)
		if err != nil {
			return nil, 0, err
		}

		if filter.TenantID != nil && r.TenantID != *filter.TenantID {
			continue
		}
		if filter.Name != nil && r.Name != *filter.Name {
			continue
		}

		matched++
		if o.Offset != 0 && matched <= o.Offset {
			continue
		}
		if o.Limit != 0 && len(rs) >= o.Limit {
			continue
		}
		rs = append(rs, r)
	}

	return rs, matched, cursor.Err()
}

// CreateRole persists a role and its per-tenant name index entry.
func (s *Store) CreateRole(ctx context.Context, tx kv.Tx, r *castiel.Role) error {
	if err := s.uniqueRoleName(ctx, tx, r.TenantID, r.Name); err != nil {
		return err
	}
	return s.putRole(ctx, tx, r)
}

// UpdateRole applies the changeset, keeping the name index in step with
// renames.
func (s *Store) UpdateRole(ctx context.Context, tx kv.Tx, id platform.ID, upd castiel.RoleUpdate) (*castiel.Role, error) {
	r, err := s.GetRole(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != r.Name {
		if err := s.uniqueRoleName(ctx, tx, r.TenantID, *upd.Name); err != nil {
			return nil, err
		}

		oldKey, err := roleIndexKey(r.TenantID, r.Name)
		if err != nil {
			return nil, err
		}
		idx, err := tx.Bucket(roleIndex)
		if err != nil {
			return nil, ErrInternalServiceError(err)
		}
		if err := idx.Delete(oldKey); err != nil {
			return nil, ErrInternalServiceError(err)
		}
		r.Name = *upd.Name
	}
	if upd.Description != nil {
		r.Description = *upd.Description
	}
	if upd.Permissions != nil {
		r.Permissions = upd.Permissions
	}
	r.SetUpdatedAt(s.TimeGen.Now())

	if err := s.putRole(ctx, tx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRole removes the role record and its index entry.
func (s *Store) DeleteRole(ctx context.Context, tx kv.Tx, id platform.ID) error {
	r, err := s.GetRole(ctx, tx, id)
	if err != nil {
		return err
	}

	encodedID, err := id.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	key, err := roleIndexKey(r.TenantID, r.Name)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(roleIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(roleBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(encodedID); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

func (s *Store) putRole(ctx context.Context, tx kv.Tx, r *castiel.Role) error {
	encodedID, err := r.ID.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	key, err := roleIndexKey(r.TenantID, r.Name)
	if err != nil {
		return err
	}

	v, err := marshalRole(r)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(roleIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Put(key, encodedID); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(roleBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(encodedID, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}
