package aimodel

import (
	"fmt"

	"github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrModelNotFound is used when the model is not found.
	ErrModelNotFound = &errors.Error{
		Msg:  "model not found",
		Code: errors.ENotFound,
	}

	// ErrModelNameTaken is returned when a model name is already registered
	// in the tenant.
	ErrModelNameTaken = &errors.Error{
		Msg:  "model name already in use",
		Code: errors.EConflict,
	}

	// ErrModelNotDraft is returned when deploying a model that is not a draft.
	ErrModelNotDraft = &errors.Error{
		Msg:  "only draft models can be deployed",
		Code: errors.EConflict,
	}

	// ErrModelNotDeployed is returned when retiring or scoring against a
	// model that is not deployed.
	ErrModelNotDeployed = &errors.Error{
		Msg:  "model is not deployed",
		Code: errors.EConflict,
	}
)

// ErrCorruptID the ID stored in the Store is corrupt.
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

// ErrScoringUnavailable is returned when the model endpoint cannot be
// reached or answers with a server error.
func ErrScoringUnavailable(err error) *errors.Error {
	return &errors.Error{
		Code: errors.EUnavailable,
		Msg:  "model endpoint unavailable",
		Err:  err,
	}
}

// ErrScoringBadPayload is returned when the model endpoint answers with a
// shape the kind's scoring contract does not define.
func ErrScoringBadPayload(kind string, err error) *errors.Error {
	return &errors.Error{
		Code: errors.EUnprocessableEntity,
		Msg:  fmt.Sprintf("model endpoint response does not match the %s contract", kind),
		Err:  err,
	}
}

// ErrScoringRejected is returned when the model endpoint refuses the inputs.
func ErrScoringRejected(status int) *errors.Error {
	return &errors.Error{
		Code: errors.EUnprocessableEntity,
		Msg:  fmt.Sprintf("model endpoint rejected scoring request with status %d", status),
	}
}
