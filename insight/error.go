package insight

import (
	"fmt"

	"github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrInsightNotFound is used when the insight is not found.
	ErrInsightNotFound = &errors.Error{
		Msg:  "insight not found",
		Code: errors.ENotFound,
	}

	// ErrCommentNotFound is used when the comment is not found.
	ErrCommentNotFound = &errors.Error{
		Msg:  "insight comment not found",
		Code: errors.ENotFound,
	}

	// ErrShardNotFound is returned when the subject shard does not exist.
	ErrShardNotFound = &errors.Error{
		Msg:  "insight subject shard not found",
		Code: errors.ENotFound,
	}

	// ErrNotCommentAuthor is returned when a comment delete comes from
	// someone other than the author without write permission on insights.
	ErrNotCommentAuthor = &errors.Error{
		Msg:  "only the comment author or an operator may delete a comment",
		Code: errors.EForbidden,
	}
)

// ErrInvalidTransition is returned when a status change is not a legal
// triage step.
func ErrInvalidTransition(from, to string) *errors.Error {
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("insight status cannot move from %q to %q", from, to),
	}
}
