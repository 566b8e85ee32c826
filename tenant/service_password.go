package tenant

import (
	"context"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the shortest password the platform accepts.
const MinPasswordLen = 8

// SetPassword overrides the password of a known user.
func (s *Service) SetPassword(ctx context.Context, userID platform.ID, password string) error {
	if len(password) < MinPasswordLen {
		return ErrShortPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ErrInternalServiceError(err)
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.store.SetPassword(ctx, tx, userID, string(hash))
	})
}

// ComparePassword checks if the password matches the password recorded.
func (s *Service) ComparePassword(ctx context.Context, userID platform.ID, password string) error {
	var hash string
	err := s.store.View(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetUser(ctx, tx, userID); err != nil {
			return err
		}
		h, err := s.store.GetPassword(ctx, tx, userID)
		if err != nil {
			return err
		}
		hash = h
		return nil
	})
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordsDoNotMatch
	}
	return nil
}

// CompareAndSetPassword checks the password and if they match updates to
// the new password.
func (s *Service) CompareAndSetPassword(ctx context.Context, userID platform.ID, old, new string) error {
	if err := s.ComparePassword(ctx, userID, old); err != nil {
		return err
	}
	return s.SetPassword(ctx, userID, new)
}
