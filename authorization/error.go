package authorization

import (
	"errors"
	"fmt"

	perrors "github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrInvalidAuthID is used when the Authorization's ID cannot be encoded
	ErrInvalidAuthID = &perrors.Error{
		Code: perrors.EInvalid,
		Msg:  "authorization ID is invalid",
	}

	// ErrAuthNotFound is used when the specified auth cannot be found
	ErrAuthNotFound = &perrors.Error{
		Code: perrors.ENotFound,
		Msg:  "authorization not found",
	}

	// ErrTokenAlreadyExistsError is used when attempting to create an authorization
	// with a token that already exists
	ErrTokenAlreadyExistsError = &perrors.Error{
		Code: perrors.EConflict,
		Msg:  "token already exists",
	}
)

// ErrInvalidAuthIDError is used when a service was provided an invalid ID.
func ErrInvalidAuthIDError(err error) *perrors.Error {
	return &perrors.Error{
		Code: perrors.EInvalid,
		Msg:  "auth id provided is invalid",
		Err:  err,
	}
}

// ErrInternalServiceError is used when the error comes from an internal system.
func ErrInternalServiceError(err error) *perrors.Error {
	return &perrors.Error{
		Code: perrors.EInternal,
		Err:  err,
	}
}

// UnexpectedAuthIndexError is used when the token index read fails for a
// reason other than not-found.
func UnexpectedAuthIndexError(err error) *perrors.Error {
	var e *perrors.Error
	if !errors.As(err, &e) {
		e = &perrors.Error{
			Msg:  fmt.Sprintf("unexpected error retrieving auth index; Err: %v", err),
			Code: perrors.EInternal,
			Err:  err,
		}
	}
	if e.Code == "" {
		e.Code = perrors.EInternal
	}
	return e
}
