package tenant

import (
	"fmt"

	"github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrTenantNotFound is used when the tenant is not found.
	ErrTenantNotFound = &errors.Error{
		Msg:  "tenant not found",
		Code: errors.ENotFound,
	}

	// ErrUserNotFound is used when the user is not found.
	ErrUserNotFound = &errors.Error{
		Msg:  "user not found",
		Code: errors.ENotFound,
	}

	// ErrRoleNotFound is used when the role is not found.
	ErrRoleNotFound = &errors.Error{
		Msg:  "role not found",
		Code: errors.ENotFound,
	}

	// ErrMappingNotFound is used when a user resource mapping is not found.
	ErrMappingNotFound = &errors.Error{
		Msg:  "user to resource mapping not found",
		Code: errors.ENotFound,
	}

	// ErrMappingExists is returned when a duplicate mapping is created.
	ErrMappingExists = &errors.Error{
		Msg:  "mapping for user already exists",
		Code: errors.EConflict,
	}

	// ErrPasswordNotSet is returned when comparing against a user that
	// never had a password set.
	ErrPasswordNotSet = &errors.Error{
		Msg:  "no password has been set for this user",
		Code: errors.EForbidden,
	}

	// ErrPasswordsDoNotMatch is returned on a failed password comparison.
	ErrPasswordsDoNotMatch = &errors.Error{
		Msg:  "the provided password does not match",
		Code: errors.EForbidden,
	}

	// ErrShortPassword is returned when a password is below the minimum length.
	ErrShortPassword = &errors.Error{
		Msg:  "passwords must be at least 8 characters long",
		Code: errors.EInvalid,
	}
)

// TenantAlreadyExistsError is used when creating a tenant with a name that
// is already taken.
func TenantAlreadyExistsError(name string) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("tenant with name %s already exists", name),
	}
}

// UserAlreadyExistsError is used when creating a user with a name that is
// already taken.
func UserAlreadyExistsError(name string) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("user with name %s already exists", name),
	}
}

// RoleAlreadyExistsError is used when creating a role with a name that is
// already taken within the tenant.
func RoleAlreadyExistsError(name string) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("role with name %s already exists", name),
	}
}

// ErrCorruptID the ID stored in the Store is corrupt.
func ErrCorruptID(err error) *errors.Error {
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  "corrupt ID provided",
		Err:  err,
	}
}

// ErrInternalServiceError wraps unclassified storage failures.
func ErrInternalServiceError(err error) *errors.Error {
	return &errors.Error{
		Code: errors.EInternal,
		Err:  err,
	}
}
