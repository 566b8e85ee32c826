// Package mock holds function-field test doubles for the platform service
// interfaces. Tests set only the functions they need.
package mock

import (
	"testing"
	"time"

	"github.com/Edgame2/castiel/kit/platform"
)

// IDGenerator is a mock implementation of platform.IDGenerator.
type IDGenerator struct {
	IDFn func() platform.ID
}

// ID generates a new platform.ID from a mock function.
func (g IDGenerator) ID() platform.ID {
	return g.IDFn()
}

// NewIDGenerator is a simple way to create an immutable id generator.
func NewIDGenerator(s string, t *testing.T) IDGenerator {
	t.Helper()

	return IDGenerator{
		IDFn: func() platform.ID {
			id, err := platform.IDFromString(s)
			if err != nil {
				t.Fatal(err)
			}
			return *id
		},
	}
}

// TokenGenerator is a mock implementation of castiel.TokenGenerator.
type TokenGenerator struct {
	TokenFn func() (string, error)
}

// Token generates a new token from a mock function.
func (g TokenGenerator) Token() (string, error) {
	return g.TokenFn()
}

// NewTokenGenerator is a simple way to create an immutable token generator.
func NewTokenGenerator(s string, err error) TokenGenerator {
	return TokenGenerator{
		TokenFn: func() (string, error) {
			return s, err
		},
	}
}

// TimeGenerator stores a fake value of time.
type TimeGenerator struct {
	FakeValue time.Time
}

// Now returns the fake time value.
func (g TimeGenerator) Now() time.Time {
	return g.FakeValue
}
