// Package tenant implements the administrative resources of the platform:
// tenants, users, roles, memberships, and user credentials.
package tenant

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
	"github.com/Edgame2/castiel/snowflake"
)

// Store is the kv-backed persistence layer shared by the tenant services.
// All methods expect to be called inside a transaction owned by the caller.
type Store struct {
	kvStore kv.Store
	IDGen   platform.IDGenerator
	TimeGen castiel.TimeGenerator
}

// NewStore creates a store over the provided kv store.
func NewStore(kvStore kv.Store) *Store {
	return &Store{
		kvStore: kvStore,
		IDGen:   snowflake.NewIDGenerator(),
		TimeGen: castiel.RealTimeGenerator{},
	}
}

// View opens up a transaction that will not write to any data.
func (s *Store) View(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.View(ctx, fn)
}

// Update opens up a transaction that will mutate data.
func (s *Store) Update(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.Update(ctx, fn)
}
