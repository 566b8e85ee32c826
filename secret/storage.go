// Package secret implements tenant-scoped secret storage over the kv
// store. Values go in, keys come out; values never appear in list reads
// or API responses.
package secret

import (
	"context"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

var (
	secretBucket = []byte("secretsv1")
)

// Store is the kv-backed persistence layer for secrets. Keys are
// tenantID + secret key, so a tenant's secrets sit in one prefix range.
type Store struct {
	kvStore kv.Store
}

// NewStore creates a store over the provided kv store.
func NewStore(kvStore kv.Store) *Store {
	return &Store{kvStore: kvStore}
}

// View opens up a transaction that will not write to any data.
func (s *Store) View(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.View(ctx, fn)
}

// Update opens up a transaction that will mutate data.
func (s *Store) Update(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.Update(ctx, fn)
}

func secretKey(tenantID platform.ID, k string) ([]byte, error) {
	encodedTenantID, err := tenantID.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	key := make([]byte, 0, platform.IDLength+len(k))
	key = append(key, encodedTenantID...)
	key = append(key, k...)
	return key, nil
}

// GetSecret retrieves the value stored at (tenantID, k).
func (s *Store) GetSecret(ctx context.Context, tx kv.Tx, tenantID platform.ID, k string) (string, error) {
	key, err := secretKey(tenantID, k)
	if err != nil {
		return "", err
	}

	b, err := tx.Bucket(secretBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return "", ErrSecretNotFound
		}
		return "", ErrInternalServiceError(err)
	}

	v, err := b.Get(key)
	if kv.IsNotFound(err) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", ErrInternalServiceError(err)
	}
	return string(v), nil
}

// PutSecret stores v at (tenantID, k).
func (s *Store) PutSecret(ctx context.Context, tx kv.Tx, tenantID platform.ID, k, v string) error {
	key, err := secretKey(tenantID, k)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(secretBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(key, []byte(v)); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// DeleteSecret removes the value at (tenantID, k).
func (s *Store) DeleteSecret(ctx context.Context, tx kv.Tx, tenantID platform.ID, k string) error {
	key, err := secretKey(tenantID, k)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(secretBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// ListSecretKeys scans the tenant's prefix range and returns the keys only.
func (s *Store) ListSecretKeys(ctx context.Context, tx kv.Tx, tenantID platform.ID) ([]string, error) {
	b, err := tx.Bucket(secretBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return []string{}, nil
		}
		return nil, ErrInternalServiceError(err)
	}

	prefix, err := tenantID.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	cursor, err := b.ForwardCursor(prefix, kv.WithCursorPrefix(prefix))
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	keys := []string{}
	for k, _ := cursor.Next(); k != nil; k, _ = cursor.Next() {
		keys = append(keys, string(k[platform.IDLength:]))
	}
	return keys, cursor.Err()
}
