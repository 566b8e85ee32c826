package shard_test

import (
	"testing"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateShardType(t *testing.T) {
	svc, ctx := initShardService(t)

	st := &castiel.ShardType{
		TenantID: testTenantID,
		Name:     "account",
		Schema:   map[string]interface{}{"region": "string"},
	}
	require.NoError(t, svc.CreateShardType(ctx, st))
	assert.True(t, st.ID.Valid())

	got, err := svc.FindShardTypeByID(ctx, testTenantID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "account", got.Name)
	assert.Equal(t, "string", got.Schema["region"])
}

func TestCreateShardType_DuplicateName(t *testing.T) {
	svc, ctx := initShardService(t)
	createTestType(t, ctx, svc, "account")

	err := svc.CreateShardType(ctx, &castiel.ShardType{
		TenantID: testTenantID,
		Name:     "account",
	})
	require.Error(t, err)
	assert.Equal(t, errors.EConflict, errors.ErrorCode(err))

	// the same name in another tenant is fine
	require.NoError(t, svc.CreateShardType(ctx, &castiel.ShardType{
		TenantID: testTenantID + 1,
		Name:     "account",
	}))
}

func TestUpdateShardType_Rename(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	createTestType(t, ctx, svc, "contact")

	name := "contact"
	_, err := svc.UpdateShardType(ctx, testTenantID, st.ID, castiel.ShardTypeUpdate{Name: &name})
	require.Error(t, err)
	assert.Equal(t, errors.EConflict, errors.ErrorCode(err))

	name = "customer"
	got, err := svc.UpdateShardType(ctx, testTenantID, st.ID, castiel.ShardTypeUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "customer", got.Name)

	// the old name is free again
	require.NoError(t, svc.CreateShardType(ctx, &castiel.ShardType{
		TenantID: testTenantID,
		Name:     "account",
	}))
}

func TestDeleteShardType(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	err := svc.DeleteShardType(ctx, testTenantID, st.ID)
	assert.ErrorIs(t, err, shard.ErrShardTypeInUse)

	// soft-deleted shards still hold the reference
	require.NoError(t, svc.DeleteShard(ctx, testTenantID, sh.ID))
	err = svc.DeleteShardType(ctx, testTenantID, st.ID)
	assert.ErrorIs(t, err, shard.ErrShardTypeInUse)

	require.NoError(t, svc.HardDeleteShard(ctx, testTenantID, sh.ID))
	require.NoError(t, svc.DeleteShardType(ctx, testTenantID, st.ID))

	_, err = svc.FindShardTypeByID(ctx, testTenantID, st.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestFindShardTypes(t *testing.T) {
	svc, ctx := initShardService(t)
	createTestType(t, ctx, svc, "account")
	createTestType(t, ctx, svc, "contact")

	ts, n, err := svc.FindShardTypes(ctx, castiel.ShardTypeFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Len(t, ts, 2)
	assert.Equal(t, 2, n)

	name := "contact"
	ts, _, err = svc.FindShardTypes(ctx, castiel.ShardTypeFilter{TenantID: testTenantID, Name: &name})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "contact", ts[0].Name)
}
