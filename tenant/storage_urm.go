package tenant

import (
	"context"
	"encoding/json"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/kv"
)

var urmBucket = []byte("userresourcemappingsv1")

// urmKey is resourceID + userID so mappings for one resource sit together
// in the bucket and prefix scans by resource are cheap.
func urmKey(resourceID, userID platform.ID) ([]byte, error) {
	encodedResourceID, err := resourceID.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}
	encodedUserID, err := userID.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	k := make([]byte, 0, 2*platform.IDLength)
	k = append(k, encodedResourceID...)
	k = append(k, encodedUserID...)
	return k, nil
}

func unmarshalURM(v []byte) (*castiel.UserResourceMapping, error) {
	m := &castiel.UserResourceMapping{}
	if err := json.Unmarshal(v, m); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "user resource mapping could not be unmarshalled",
			Err:  err,
		}
	}
	return m, nil
}

// CreateURM persists a mapping, rejecting duplicates.
func (s *Store) CreateURM(ctx context.Context, tx kv.Tx, m *castiel.UserResourceMapping) error {
	key, err := urmKey(m.ResourceID, m.UserID)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(urmBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}

	if _, err := b.Get(key); err == nil {
		return ErrMappingExists
	} else if !kv.IsNotFound(err) {
		return ErrInternalServiceError(err)
	}

	v, err := json.Marshal(m)
	if err != nil {
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  "user resource mapping could not be marshalled",
			Err:  err,
		}
	}

	if err := b.Put(key, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// ListURMs scans the mapping bucket, filtering and paginating in one pass.
func (s *Store) ListURMs(ctx context.Context, tx kv.Tx, filter castiel.UserResourceMappingFilter, opt ...castiel.FindOptions) ([]*castiel.UserResourceMapping, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(urmBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, 0, nil
		}
		return nil, 0, ErrInternalServiceError(err)
	}

	var seek []byte
	var opts []kv.CursorOption
	if filter.ResourceID.Valid() {
		prefix, err := filter.ResourceID.Encode()
		if err != nil {
			return nil, 0, ErrCorruptID(err)
		}
		seek = prefix
		opts = append(opts, kv.WithCursorPrefix(prefix))
	}

	cursor, err := b.ForwardCursor(seek, opts...)
	if err != nil {
		return nil, 0, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	matched := 0
	ms := []*castiel.UserResourceMapping{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		m, err := unmarshalURM(v)
		if err != nil {
			return nil, 0, err
		}

		if filter.UserID.Valid() && m.UserID != filter.UserID {
			continue
		}
		if filter.ResourceType != "" && m.ResourceType != filter.ResourceType {
			continue
		}
		if filter.UserType != "" && m.UserType != filter.UserType {
			continue
		}

		matched++
		if o.Offset != 0 && matched <= o.Offset {
			continue
		}
		if o.Limit != 0 && len(ms) >= o.Limit {
			continue
		}
		ms = append(ms, m)
	}

	return ms, matched, cursor.Err()
}

// DeleteURM removes a mapping by its (resource, user) pair.
func (s *Store) DeleteURM(ctx context.Context, tx kv.Tx, resourceID, userID platform.ID) error {
	key, err := urmKey(resourceID, userID)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(urmBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return ErrMappingNotFound
		}
		return ErrInternalServiceError(err)
	}

	if _, err := b.Get(key); kv.IsNotFound(err) {
		return ErrMappingNotFound
	} else if err != nil {
		return ErrInternalServiceError(err)
	}

	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// DeleteURMsForResource drops every mapping attached to a resource, used
// when tenants and roles are removed.
func (s *Store) DeleteURMsForResource(ctx context.Context, tx kv.Tx, resourceID platform.ID) error {
	ms, _, err := s.ListURMs(ctx, tx, castiel.UserResourceMappingFilter{ResourceID: resourceID})
	if err != nil {
		return err
	}
	for _, m := range ms {
		if err := s.DeleteURM(ctx, tx, m.ResourceID, m.UserID); err != nil {
			return err
		}
	}
	return nil
}
