package sqlite

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel/sqlite/migrations"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMigratorUp(t *testing.T) {
	t.Parallel()

	store, err := NewSqlStore(InmemPath, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	// a new database has a user_version of 0
	v, err := store.userVersion()
	require.NoError(t, err)
	require.Equal(t, 0, v)

	migrator := NewMigrator(store, zaptest.NewLogger(t))
	require.NoError(t, migrator.Up(ctx, migrations.All))

	v, err = store.userVersion()
	require.NoError(t, err)
	require.Equal(t, 3, v)

	tables, err := store.TableNames(ctx)
	require.NoError(t, err)
	require.Contains(t, tables, "audit_log")
	require.Contains(t, tables, "quotas")
	require.Contains(t, tables, "quota_snapshots")
	require.Contains(t, tables, "insights")
	require.Contains(t, tables, "insight_comments")
}

func TestMigratorUpIsIdempotent(t *testing.T) {
	t.Parallel()

	store, err := NewSqlStore(InmemPath, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	migrator := NewMigrator(store, zaptest.NewLogger(t))

	require.NoError(t, migrator.Up(ctx, migrations.All))
	require.NoError(t, migrator.Up(ctx, migrations.All))

	v, err := store.userVersion()
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

func TestScriptVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     int
		wantErr  bool
	}{
		{
			"single digit number",
			"0001_some_file_name.sql",
			1,
			false,
		},
		{
			"larger number",
			"0921_another_file.sql",
			921,
			false,
		},
		{
			"bad name",
			"not_numbered_correctly.sql",
			0,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scriptVersion(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
