package castiel

import (
	"github.com/Edgame2/castiel/kit/platform/errors"
)

// Error codes, aliased from the kit errors package so resource packages can
// reference them through the root package.
const (
	EInternal            = errors.EInternal
	ENotImplemented      = errors.ENotImplemented
	ENotFound            = errors.ENotFound
	EConflict            = errors.EConflict
	EInvalid             = errors.EInvalid
	EUnprocessableEntity = errors.EUnprocessableEntity
	EEmptyValue          = errors.EEmptyValue
	EUnavailable         = errors.EUnavailable
	EForbidden           = errors.EForbidden
	ETooManyRequests     = errors.ETooManyRequests
	EUnauthorized        = errors.EUnauthorized
	EMethodNotAllowed    = errors.EMethodNotAllowed
	ETooLarge            = errors.ETooLarge
)

// Error is an alias to the platform error type.
type Error = errors.Error

var (
	// ErrorCode returns the code of the error, if available.
	ErrorCode = errors.ErrorCode
	// ErrorMessage returns the human-readable message of the error, if available.
	ErrorMessage = errors.ErrorMessage
	// ErrorOp returns the op of the error, if available.
	ErrorOp = errors.ErrorOp
)
