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
	userBucket = []byte("usersv1")
	userIndex  = []byte("userindexv1")
)

func userIndexKey(n string) []byte {
	return []byte(strings.TrimSpace(n))
}

func unmarshalUser(v []byte) (*castiel.User, error) {
	u := &castiel.User{}
	if err := json.Unmarshal(v, u); err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "user could not be unmarshalled",
			Err:  err,
		}
	}
	return u, nil
}

func marshalUser(u *castiel.User) ([]byte, error) {
	v, err := json.Marshal(u)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "user could not be marshalled",
			Err:  err,
		}
	}
	return v, nil
}

func (s *Store) uniqueUserName(ctx context.Context, tx kv.Tx, name string) error {
	key := userIndexKey(name)
	if len(key) == 0 {
		return &errors.Error{
			Code: errors.EEmptyValue,
			Msg:  "user name cannot be empty",
		}
	}

	idx, err := tx.Bucket(userIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}

	_, err = idx.Get(key)
	if kv.IsNotFound(err) {
		return nil
	}
	if err == nil {
		return UserAlreadyExistsError(name)
	}
	return ErrInternalServiceError(err)
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, tx kv.Tx, id platform.ID) (*castiel.User, error) {
	encodedID, err := id.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	b, err := tx.Bucket(userBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(encodedID)
	if kv.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalUser(v)
}

// GetUserByName retrieves a user through the name index.
func (s *Store) GetUserByName(ctx context.Context, tx kv.Tx, name string) (*castiel.User, error) {
	idx, err := tx.Bucket(userIndex)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	uid, err := idx.Get(userIndexKey(name))
	if kv.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	var id platform.ID
	if err := id.Decode(uid); err != nil {
		return nil, ErrCorruptID(err)
	}
	return s.GetUser(ctx, tx, id)
}

// ListUsers scans the user bucket, applying pagination options.
func (s *Store) ListUsers(ctx context.Context, tx kv.Tx, opt ...castiel.FindOptions) ([]*castiel.User, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(userBucket)
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
	us := []*castiel.User{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		if o.Offset != 0 && count < o.Offset {
			count++
			continue
		}

		u, err := unmarshalUser(v)
		if err != nil {
			return nil, err
		}
		us = append(us, u)

		if o.Limit != 0 && len(us) >= o.Limit {
			break
		}
	}

	return us, cursor.Err()
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context, tx kv.Tx) (int, error) {
	b, err := tx.Bucket(userBucket)
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

// CreateUser persists a user and its name index entry.
func (s *Store) CreateUser(ctx context.Context, tx kv.Tx, u *castiel.User) error {
	if err := s.uniqueUserName(ctx, tx, u.Name); err != nil {
		return err
	}
	return s.putUser(ctx, tx, u)
}

// UpdateUser applies the changeset, keeping the name index in step with
// renames.
func (s *Store) UpdateUser(ctx context.Context, tx kv.Tx, id platform.ID, upd castiel.UserUpdate) (*castiel.User, error) {
	u, err := s.GetUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != u.Name {
		if err := s.uniqueUserName(ctx, tx, *upd.Name); err != nil {
			return nil, err
		}

		idx, err := tx.Bucket(userIndex)
		if err != nil {
			return nil, ErrInternalServiceError(err)
		}
		if err := idx.Delete(userIndexKey(u.Name)); err != nil {
			return nil, ErrInternalServiceError(err)
		}
		u.Name = *upd.Name
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	u.SetUpdatedAt(s.TimeGen.Now())

	if err := s.putUser(ctx, tx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes the user record, its index entry and its password.
func (s *Store) DeleteUser(ctx context.Context, tx kv.Tx, id platform.ID) error {
	u, err := s.GetUser(ctx, tx, id)
	if err != nil {
		return err
	}

	encodedID, err := id.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	idx, err := tx.Bucket(userIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Delete(userIndexKey(u.Name)); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(userBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(encodedID); err != nil {
		return ErrInternalServiceError(err)
	}

	return s.DeletePassword(ctx, tx, id)
}

func (s *Store) putUser(ctx context.Context, tx kv.Tx, u *castiel.User) error {
	encodedID, err := u.ID.Encode()
	if err != nil {
		return ErrCorruptID(err)
	}

	v, err := marshalUser(u)
	if err != nil {
		return err
	}

	idx, err := tx.Bucket(userIndex)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := idx.Put(userIndexKey(u.Name), encodedID); err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(userBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(encodedID, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}
