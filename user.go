package castiel

import (
	"context"
	"fmt"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for user errors and user journal events.
const (
	OpFindUserByID = "FindUserByID"
	OpFindUser     = "FindUser"
	OpFindUsers    = "FindUsers"
	OpCreateUser   = "CreateUser"
	OpUpdateUser   = "UpdateUser"
	OpDeleteUser   = "DeleteUser"
)

// UserStatus indicates whether a user is able to log in.
type UserStatus string

const (
	// UserActive is a user free to access the platform.
	UserActive UserStatus = "active"
	// UserInactive is a user whose credentials no longer authenticate.
	UserInactive UserStatus = "inactive"
)

// Valid validates user status.
func (s UserStatus) Valid() error {
	switch s {
	case UserActive, UserInactive:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid user status %q", s),
		}
	}
}

// User is a user. 🎉
type User struct {
	ID     platform.ID `json:"id,omitempty"`
	Name   string      `json:"name"`
	Status UserStatus  `json:"status"`
	CRUDLog
}

// Valid validates user.
func (u User) Valid() error {
	return u.Status.Valid()
}

// UserService represents a service for managing user data.
type UserService interface {
	// Returns a single user by ID.
	FindUserByID(ctx context.Context, id platform.ID) (*User, error)

	// Returns the first user that matches filter.
	FindUser(ctx context.Context, filter UserFilter) (*User, error)

	// Returns a list of users that match filter and the total count of matching users.
	// Additional options provide pagination & sorting.
	FindUsers(ctx context.Context, filter UserFilter, opt ...FindOptions) ([]*User, int, error)

	// Creates a new user and sets u.ID with the new identifier.
	CreateUser(ctx context.Context, u *User) error

	// Updates a single user with changeset.
	// Returns the new user state after update.
	UpdateUser(ctx context.Context, id platform.ID, upd UserUpdate) (*User, error)

	// Removes a user by ID.
	DeleteUser(ctx context.Context, id platform.ID) error
}

// UserFilter represents a set of filter that restrict the returned results.
type UserFilter struct {
	ID   *platform.ID
	Name *string
}

// QueryParams implements PagingFilter.
func (f UserFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.ID != nil {
		qp["id"] = []string{f.ID.String()}
	}
	if f.Name != nil {
		qp["name"] = []string{*f.Name}
	}
	return qp
}

// UserUpdate represents updates to a user.
// Only fields which are set are updated.
type UserUpdate struct {
	Name   *string     `json:"name"`
	Status *UserStatus `json:"status"`
}

// Valid validates UserUpdate.
func (uu UserUpdate) Valid() error {
	if uu.Status == nil {
		return nil
	}
	return uu.Status.Valid()
}

// PasswordsService is the service for managing basic auth passwords.
type PasswordsService interface {
	// SetPassword overrides the password of a known user.
	SetPassword(ctx context.Context, userID platform.ID, password string) error
	// ComparePassword checks if the password matches the password recorded.
	// Passwords that do not match return errors.
	ComparePassword(ctx context.Context, userID platform.ID, password string) error
	// CompareAndSetPassword checks the password and if they match
	// updates to the new password.
	CompareAndSetPassword(ctx context.Context, userID platform.ID, old, new string) error
}
