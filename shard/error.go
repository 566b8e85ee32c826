package shard

import (
	"fmt"

	"github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrShardNotFound is used when the shard is not found.
	ErrShardNotFound = &errors.Error{
		Msg:  "shard not found",
		Code: errors.ENotFound,
	}

	// ErrShardTypeNotFound is used when the shard type is not found.
	ErrShardTypeNotFound = &errors.Error{
		Msg:  "shard type not found",
		Code: errors.ENotFound,
	}

	// ErrSelfLink is returned when a shard is linked to itself.
	ErrSelfLink = &errors.Error{
		Msg:  "a shard cannot link to itself",
		Code: errors.EInvalid,
	}

	// ErrLinkTargetDeleted is returned when the link target is soft deleted.
	ErrLinkTargetDeleted = &errors.Error{
		Msg:  "link target is deleted",
		Code: errors.EConflict,
	}

	// ErrShardNotDeleted is returned when restoring a live shard.
	ErrShardNotDeleted = &errors.Error{
		Msg:  "shard is not deleted",
		Code: errors.EConflict,
	}

	// ErrShardTypeInUse is returned when deleting a type shards still
	// reference.
	ErrShardTypeInUse = &errors.Error{
		Msg:  "shard type is referenced by existing shards",
		Code: errors.EConflict,
	}

	// ErrRelationshipNotFound is returned when unlinking an edge that does
	// not exist.
	ErrRelationshipNotFound = &errors.Error{
		Msg:  "relationship not found",
		Code: errors.ENotFound,
	}
)

// ShardTypeAlreadyExistsError is used when creating a shard type with a
// name already taken within the tenant.
func ShardTypeAlreadyExistsError(name string) error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  fmt.Sprintf("shard type with name %s already exists", name),
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
