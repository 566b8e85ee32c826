package castiel

import (
	"github.com/Edgame2/castiel/kit/platform"
)

// ID is an alias to platform.ID.
type ID = platform.ID

// IDGenerator is an alias to platform.IDGenerator.
type IDGenerator = platform.IDGenerator

// IDLength is an alias to platform.IDLength.
const IDLength = platform.IDLength

var (
	// ErrInvalidID is an alias to platform.ErrInvalidID.
	ErrInvalidID = platform.ErrInvalidID
	// ErrInvalidIDLength is an alias to platform.ErrInvalidIDLength.
	ErrInvalidIDLength = platform.ErrInvalidIDLength
)

// IDFromString is an alias to platform.IDFromString.
func IDFromString(str string) (*ID, error) {
	return platform.IDFromString(str)
}

// InvalidID is an alias to platform.InvalidID.
func InvalidID() ID {
	return platform.InvalidID()
}
