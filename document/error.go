package document

import (
	"github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrDocumentNotFound is used when the document is not found.
	ErrDocumentNotFound = &errors.Error{
		Msg:  "document not found",
		Code: errors.ENotFound,
	}

	// ErrContentNotFound is used when the metadata record exists but the
	// content bucket has no bytes for it.
	ErrContentNotFound = &errors.Error{
		Msg:  "document content not found",
		Code: errors.ENotFound,
	}

	// ErrContentCorrupt is used when the stored content fails to decompress.
	ErrContentCorrupt = &errors.Error{
		Msg:  "document content is corrupt",
		Code: errors.EInternal,
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

// ErrInternalServiceError wraps unclassified storage failures.
func ErrInternalServiceError(err error) *errors.Error {
	return &errors.Error{
		Code: errors.EInternal,
		Err:  err,
	}
}
