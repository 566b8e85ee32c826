// Package authorization implements API token management over the kv
// store: token records plus a token-to-ID index for bearer lookup.
package authorization

import (
	"context"
	"encoding/json"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/kv"
	"github.com/Edgame2/castiel/rand"
	"github.com/Edgame2/castiel/snowflake"
)

var (
	authBucket      = []byte("authorizationsv1")
	authIndexBucket = []byte("authorizationindexv1")
)

// Store is the kv-backed persistence layer for authorizations. Records are
// keyed by ID; the index maps token bytes to the encoded ID.
type Store struct {
	kvStore  kv.Store
	IDGen    platform.IDGenerator
	TokenGen castiel.TokenGenerator
	TimeGen  castiel.TimeGenerator
}

// NewStore creates a store over the provided kv store.
func NewStore(kvStore kv.Store) *Store {
	return &Store{
		kvStore:  kvStore,
		IDGen:    snowflake.NewIDGenerator(),
		TokenGen: rand.NewTokenGenerator(64),
		TimeGen:  castiel.RealTimeGenerator{},
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

func encodeAuthID(id platform.ID) ([]byte, error) {
	k, err := id.Encode()
	if err != nil {
		return nil, ErrInvalidAuthIDError(err)
	}
	return k, nil
}

func unmarshalAuth(v []byte) (*castiel.Authorization, error) {
	a := &castiel.Authorization{}
	if err := json.Unmarshal(v, a); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "authorization could not be unmarshalled",
			Err:  err,
		}
	}
	return a, nil
}

func marshalAuth(a *castiel.Authorization) ([]byte, error) {
	v, err := json.Marshal(a)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "authorization could not be marshalled",
			Err:  err,
		}
	}
	return v, nil
}

// GetAuthorization retrieves an authorization by ID.
func (s *Store) GetAuthorization(ctx context.Context, tx kv.Tx, id platform.ID) (*castiel.Authorization, error) {
	key, err := encodeAuthID(id)
	if err != nil {
		return nil, err
	}

	b, err := tx.Bucket(authBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrAuthNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(key)
	if kv.IsNotFound(err) {
		return nil, ErrAuthNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalAuth(v)
}

// GetAuthorizationByToken resolves a bearer token through the index.
func (s *Store) GetAuthorizationByToken(ctx context.Context, tx kv.Tx, token string) (*castiel.Authorization, error) {
	idx, err := tx.Bucket(authIndexBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrAuthNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	encodedID, err := idx.Get([]byte(token))
	if kv.IsNotFound(err) {
		return nil, ErrAuthNotFound
	}
	if err != nil {
		return nil, UnexpectedAuthIndexError(err)
	}

	var id platform.ID
	if err := id.Decode(encodedID); err != nil {
		return nil, ErrInvalidAuthID
	}
	return s.GetAuthorization(ctx, tx, id)
}

// PutAuthorization persists an authorization and its token index entry.
func (s *Store) PutAuthorization(ctx context.Context, tx kv.Tx, a *castiel.Authorization) error {
	key, err := encodeAuthID(a.ID)
	if err != nil {
		return err
	}
	v, err := marshalAuth(a)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(authBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(key, v); err != nil {
		return ErrInternalServiceError(err)
	}

	idx, err := tx.Bucket(authIndexBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Put([]byte(a.Token), key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// TokenTaken reports whether the token already indexes an authorization.
func (s *Store) TokenTaken(ctx context.Context, tx kv.Tx, token string) (bool, error) {
	idx, err := tx.Bucket(authIndexBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return false, nil
		}
		return false, ErrInternalServiceError(err)
	}

	_, err = idx.Get([]byte(token))
	if kv.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, UnexpectedAuthIndexError(err)
	}
	return true, nil
}

// DeleteAuthorization removes the record and its index entry.
func (s *Store) DeleteAuthorization(ctx context.Context, tx kv.Tx, a *castiel.Authorization) error {
	key, err := encodeAuthID(a.ID)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(authIndexBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Delete([]byte(a.Token)); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(authBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

func matchAuth(a *castiel.Authorization, filter castiel.AuthorizationFilter) bool {
	if filter.ID != nil && a.ID != *filter.ID {
		return false
	}
	if filter.UserID != nil && a.UserID != *filter.UserID {
		return false
	}
	return true
}

// ListAuthorizations scans the full bucket for records matching filter.
// The second return is the total matched before paging.
func (s *Store) ListAuthorizations(ctx context.Context, tx kv.Tx, filter castiel.AuthorizationFilter, opt ...castiel.FindOptions) ([]*castiel.Authorization, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(authBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, 0, nil
		}
		return nil, 0, ErrInternalServiceError(err)
	}

	cursor, err := b.ForwardCursor(nil)
	if err != nil {
		return nil, 0, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	matched := 0
	auths := []*castiel.Authorization{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		a, err := unmarshalAuth(v)
		if err != nil {
			return nil, 0, err
		}
		if !matchAuth(a, filter) {
			continue
		}

		matched++
		if o.Offset != 0 && matched <= o.Offset {
			continue
		}
		if o.Limit != 0 && len(auths) >= o.Limit {
			continue
		}
		auths = append(auths, a)
	}

	return auths, matched, cursor.Err()
}
