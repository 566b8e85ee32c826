package authorization

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

var _ castiel.AuthorizationService = (*Service)(nil)

// Service implements the authorization service over the kv store.
type Service struct {
	store *Store
}

// NewService constructs an authorization service.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// FindAuthorizationByID returns a single authorization by ID.
func (s *Service) FindAuthorizationByID(ctx context.Context, id platform.ID) (*castiel.Authorization, error) {
	var a *castiel.Authorization
	err := s.store.View(ctx, func(tx kv.Tx) error {
		var err error
		a, err = s.store.GetAuthorization(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindAuthorizationByToken returns a single authorization by Token.
func (s *Service) FindAuthorizationByToken(ctx context.Context, t string) (*castiel.Authorization, error) {
	var a *castiel.Authorization
	err := s.store.View(ctx, func(tx kv.Tx) error {
		var err error
		a, err = s.store.GetAuthorizationByToken(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindAuthorizations returns a list of authorizations that match filter and
// the total count of matching authorizations.
func (s *Service) FindAuthorizations(ctx context.Context, filter castiel.AuthorizationFilter, opt ...castiel.FindOptions) ([]*castiel.Authorization, int, error) {
	var (
		auths []*castiel.Authorization
		total int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		var err error
		auths, total, err = s.store.ListAuthorizations(ctx, tx, filter, opt...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return auths, total, nil
}

// CreateAuthorization creates a new authorization and sets a.ID and
// a.Token with the generated values. A caller-provided token is kept when
// not already indexed.
func (s *Service) CreateAuthorization(ctx context.Context, a *castiel.Authorization) error {
	if err := a.Valid(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		if a.Token == "" {
			token, err := s.store.TokenGen.Token()
			if err != nil {
				return ErrInternalServiceError(err)
			}
			a.Token = token
		}

		taken, err := s.store.TokenTaken(ctx, tx, a.Token)
		if err != nil {
			return err
		}
		if taken {
			return ErrTokenAlreadyExistsError
		}

		a.ID = s.store.IDGen.ID()
		if a.Status == "" {
			a.Status = castiel.Active
		}
		now := s.store.TimeGen.Now()
		a.SetCreatedAt(now)
		a.SetUpdatedAt(now)
		return s.store.PutAuthorization(ctx, tx, a)
	})
}

// UpdateAuthorization updates the status and description if available.
func (s *Service) UpdateAuthorization(ctx context.Context, id platform.ID, upd castiel.AuthorizationUpdate) (*castiel.Authorization, error) {
	var a *castiel.Authorization
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		var err error
		a, err = s.store.GetAuthorization(ctx, tx, id)
		if err != nil {
			return err
		}

		if upd.Status != nil {
			if err := upd.Status.Valid(); err != nil {
				return err
			}
			a.Status = *upd.Status
		}
		if upd.Description != nil {
			a.Description = *upd.Description
		}

		a.SetUpdatedAt(s.store.TimeGen.Now())
		return s.store.PutAuthorization(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAuthorization removes an authorization by ID.
func (s *Service) DeleteAuthorization(ctx context.Context, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		a, err := s.store.GetAuthorization(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.store.DeleteAuthorization(ctx, tx, a)
	})
}
