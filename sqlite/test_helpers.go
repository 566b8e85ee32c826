package sqlite

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel/sqlite/migrations"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewTestStore returns a fully migrated in-memory store for tests.
func NewTestStore(t *testing.T) *SqlStore {
	t.Helper()

	store, err := NewSqlStore(InmemPath, zaptest.NewLogger(t))
	require.NoError(t, err, "unable to open in-memory database")
	t.Cleanup(func() {
		store.Close()
	})

	err = NewMigrator(store, zaptest.NewLogger(t)).Up(context.Background(), migrations.All)
	require.NoError(t, err, "unable to run migrations")

	return store
}
