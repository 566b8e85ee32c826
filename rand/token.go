// Package rand provides a cryptographic token generator.
package rand

import (
	"crypto/rand"
	"encoding/base64"
)

// TokenGenerator generates base64-encoded random tokens.
type TokenGenerator struct {
	size int
}

// NewTokenGenerator creates an instance of an authorization token generator.
// size is the number of random bytes in a token before encoding.
func NewTokenGenerator(size int) *TokenGenerator {
	return &TokenGenerator{
		size: size,
	}
}

// Token returns a new random token.
func (g *TokenGenerator) Token() (string, error) {
	b, err := g.randomBytes(g.size)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (g *TokenGenerator) randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
