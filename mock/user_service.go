package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.UserService = (*UserService)(nil)

// UserService is a mock implementation of castiel.UserService.
type UserService struct {
	FindUserByIDFn func(ctx context.Context, id platform.ID) (*castiel.User, error)
	FindUserFn     func(ctx context.Context, filter castiel.UserFilter) (*castiel.User, error)
	FindUsersFn    func(ctx context.Context, filter castiel.UserFilter, opt ...castiel.FindOptions) ([]*castiel.User, int, error)
	CreateUserFn   func(ctx context.Context, u *castiel.User) error
	UpdateUserFn   func(ctx context.Context, id platform.ID, upd castiel.UserUpdate) (*castiel.User, error)
	DeleteUserFn   func(ctx context.Context, id platform.ID) error
}

// FindUserByID returns a single user by ID.
func (s *UserService) FindUserByID(ctx context.Context, id platform.ID) (*castiel.User, error) {
	return s.FindUserByIDFn(ctx, id)
}

// FindUser returns the first user that matches filter.
func (s *UserService) FindUser(ctx context.Context, filter castiel.UserFilter) (*castiel.User, error) {
	return s.FindUserFn(ctx, filter)
}

// FindUsers returns a list of users that match filter.
func (s *UserService) FindUsers(ctx context.Context, filter castiel.UserFilter, opt ...castiel.FindOptions) ([]*castiel.User, int, error) {
	return s.FindUsersFn(ctx, filter, opt...)
}

// CreateUser creates a new user.
func (s *UserService) CreateUser(ctx context.Context, u *castiel.User) error {
	return s.CreateUserFn(ctx, u)
}

// UpdateUser updates a single user with changeset.
func (s *UserService) UpdateUser(ctx context.Context, id platform.ID, upd castiel.UserUpdate) (*castiel.User, error) {
	return s.UpdateUserFn(ctx, id, upd)
}

// DeleteUser removes a user by ID.
func (s *UserService) DeleteUser(ctx context.Context, id platform.ID) error {
	return s.DeleteUserFn(ctx, id)
}

var _ castiel.PasswordsService = (*PasswordsService)(nil)

// PasswordsService is a mock implementation of castiel.PasswordsService.
type PasswordsService struct {
	SetPasswordFn           func(ctx context.Context, userID platform.ID, password string) error
	ComparePasswordFn       func(ctx context.Context, userID platform.ID, password string) error
	CompareAndSetPasswordFn func(ctx context.Context, userID platform.ID, old, new string) error
}

// SetPassword overrides the password of a known user.
func (s *PasswordsService) SetPassword(ctx context.Context, userID platform.ID, password string) error {
	return s.SetPasswordFn(ctx, userID, password)
}

// ComparePassword checks if the password matches the password recorded.
func (s *PasswordsService) ComparePassword(ctx context.Context, userID platform.ID, password string) error {
	return s.ComparePasswordFn(ctx, userID, password)
}

// CompareAndSetPassword checks the password and if they match updates to the new password.
func (s *PasswordsService) CompareAndSetPassword(ctx context.Context, userID platform.ID, old, new string) error {
	return s.CompareAndSetPasswordFn(ctx, userID, old, new)
}
