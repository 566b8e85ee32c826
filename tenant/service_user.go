package tenant

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/kv"
)

// FindUserByID returns a single user by ID.
func (s *Service) FindUserByID(ctx context.Context, id platform.ID) (*castiel.User, error) {
	var u *castiel.User
	err := s.store.View(ctx, func(tx kv.Tx) error {
		user, err := s.store.GetUser(ctx, tx, id)
		if err != nil {
			return err
		}
		u = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindUser returns the first user that matches filter.
func (s *Service) FindUser(ctx context.Context, filter castiel.UserFilter) (*castiel.User, error) {
	if filter.ID != nil {
		return s.FindUserByID(ctx, *filter.ID)
	}
	if filter.Name == nil {
		return nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "user filter requires an id or a name",
		}
	}

	var u *castiel.User
	err := s.store.View(ctx, func(tx kv.Tx) error {
		user, err := s.store.GetUserByName(ctx, tx, *filter.Name)
		if err != nil {
			return err
		}
		u = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindUsers returns a list of users that match filter and the total count
// of matching users.
func (s *Service) FindUsers(ctx context.Context, filter castiel.UserFilter, opt ...castiel.FindOptions) ([]*castiel.User, int, error) {
	if filter.ID != nil || filter.Name != nil {
		u, err := s.FindUser(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		return []*castiel.User{u}, 1, nil
	}

	var (
		us    []*castiel.User
		total int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		users, err := s.store.ListUsers(ctx, tx, opt...)
		if err != nil {
			return err
		}
		n, err := s.store.CountUsers(ctx, tx)
		if err != nil {
			return err
		}
		us, total = users, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return us, total, nil
}

// CreateUser creates a new user and sets u.ID with the new identifier.
func (s *Service) CreateUser(ctx context.Context, u *castiel.User) error {
	if u.Name == "" {
		return &errors.Error{
			Code: errors.EEmptyValue,
			Msg:  "user name cannot be empty",
		}
	}
	if u.Status == "" {
		u.Status = castiel.UserActive
	}
	if err := u.Valid(); err != nil {
		return err
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		u.ID = s.store.IDGen.ID()
		now := s.store.TimeGen.Now()
		u.SetCreatedAt(now)
		u.SetUpdatedAt(now)
		return s.store.CreateUser(ctx, tx, u)
	})
}

// UpdateUser updates a single user with changeset and returns the new state.
func (s *Service) UpdateUser(ctx context.Context, id platform.ID, upd castiel.UserUpdate) (*castiel.User, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}

	var u *castiel.User
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		user, err := s.store.UpdateUser(ctx, tx, id, upd)
		if err != nil {
			return err
		}
		u = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes a user by ID, along with the memberships that name it.
func (s *Service) DeleteUser(ctx context.Context, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		ms, _, err := s.store.ListURMs(ctx, tx, castiel.UserResourceMappingFilter{UserID: id})
		if err != nil {
			return err
		}
		for _, m := range ms {
			if err := s.store.DeleteURM(ctx, tx, m.ResourceID, m.UserID); err != nil {
				return err
			}
		}
		return s.store.DeleteUser(ctx, tx, id)
	})
}
