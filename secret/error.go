package secret

import (
	"github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrSecretNotFound is used when the secret key is not found.
	ErrSecretNotFound = &errors.Error{
		Msg:  "secret not found",
		Code: errors.ENotFound,
	}
)

// ErrCorruptID the tenant ID is corrupt.
func ErrCorruptID(err error) *errors.Error {
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  "corrupt ID provided",
		Err:  err,
	}
}

// ErrInternalServiceError is used when the error comes from an internal system.
func ErrInternalServiceError(err error) *errors.Error {
	return &errors.Error{
		Code: errors.EInternal,
		Err:  err,
	}
}
