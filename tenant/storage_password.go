package tenant

import (
	"context"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

// Password hashes live in their own bucket, never on the user record, so
// listing users can never leak credentials.
var passwordBucket = []byte("passwordsv1")

// GetPassword reads the stored bcrypt hash for a user.
func (s *Store) GetPassword(ctx context.Context, tx kv.Tx, id platform.ID) (string, error) {
	encodedID, err := id.Encode()
	if err != nil {
		return "", ErrCorruptID(err)
	}

	b, err := tx.Bucket(passwordBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return "", ErrPasswordNotSet
		}
		return "", ErrInternalServiceError(err)
	}

	v, err := b.Get(encodedID)
	if kv.IsNotFound(err) {
		return "", ErrPasswordNotSet
	}
	if err != nil {
		return "", ErrInternalServiceError(err)
	}
	return string(v), nil
}

// SetPassword stores the bcrypt hash for a user.
func (s *Store) SetPassword(ctx context.Context, tx kv.Tx, id platform.ID, hash string) error {
	encodedID, err := id.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	b, err := tx.Bucket(passwordBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(encodedID, []byte(hash)); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// DeletePassword drops the stored hash for a user.
func (s *Store) DeletePassword(ctx context.Context, tx kv.Tx, id platform.ID) error {
	encodedID, err := id.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	b, err := tx.Bucket(passwordBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil
		}
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(encodedID); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}
