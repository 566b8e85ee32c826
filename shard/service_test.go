package shard_test

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/inmem"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenantID = platform.ID(10)
	testUserID   = platform.ID(20)
)

func initShardService(t *testing.T) (*shard.Service, context.Context) {
	t.Helper()
	svc := shard.NewService(shard.NewStore(inmem.NewKVStore()))
	ctx := icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		UserID: testUserID,
		Status: castiel.Active,
	})
	return svc, ctx
}

func createTestType(t *testing.T, ctx context.Context, svc *shard.Service, name string) *castiel.ShardType {
	t.Helper()
	st := &castiel.ShardType{
		TenantID: testTenantID,
		Name:     name,
	}
	require.NoError(t, svc.CreateShardType(ctx, st))
	return st
}

func createTestShard(t *testing.T, ctx context.Context, svc *shard.Service, typeID platform.ID, name string) *castiel.Shard {
	t.Helper()
	sh := &castiel.Shard{
		TenantID: testTenantID,
		TypeID:   typeID,
		Name:     name,
	}
	require.NoError(t, svc.CreateShard(ctx, sh))
	return sh
}

func TestCreateShard(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")

	sh := &castiel.Shard{
		TenantID:   testTenantID,
		TypeID:     st.ID,
		Name:       "acme",
		Structured: map[string]interface{}{"region": "emea"},
	}
	require.NoError(t, svc.CreateShard(ctx, sh))

	assert.True(t, sh.ID.Valid())
	assert.Equal(t, castiel.ShardActive, sh.Status)
	assert.False(t, sh.CreatedAt.IsZero())

	// no ACL on the request grants the creator admin
	require.Len(t, sh.ACL, 1)
	assert.Equal(t, castiel.ACLSubjectUser, sh.ACL[0].SubjectType)
	assert.Equal(t, testUserID, sh.ACL[0].SubjectID)
	assert.True(t, sh.ACL[0].Allows(castiel.ACLAdmin))

	got, err := svc.FindShardByID(ctx, testTenantID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)
	assert.Equal(t, "emea", got.Structured["region"])
}

func TestCreateShard_TypeNotFound(t *testing.T) {
	svc, ctx := initShardService(t)

	err := svc.CreateShard(ctx, &castiel.Shard{
		TenantID: testTenantID,
		TypeID:   platform.ID(99),
		Name:     "orphan",
	})
	require.Error(t, err)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestCreateShard_ExplicitACLKept(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")

	acl := []castiel.ACLEntry{{
		SubjectType: castiel.ACLSubjectRole,
		SubjectID:   platform.ID(7),
		Actions:     []castiel.ACLAction{castiel.ACLRead},
	}}
	sh := &castiel.Shard{
		TenantID: testTenantID,
		TypeID:   st.ID,
		Name:     "acme",
		ACL:      acl,
	}
	require.NoError(t, svc.CreateShard(ctx, sh))
	assert.Equal(t, acl, sh.ACL)
}

func TestUpdateShard_StructuredMerge(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	_, err := svc.UpdateShard(ctx, testTenantID, sh.ID, castiel.ShardUpdate{
		Structured: map[string]interface{}{"region": "emea", "tier": "gold"},
	})
	require.NoError(t, err)

	// set keys overwrite, explicit nulls delete, absent keys are kept
	got, err := svc.UpdateShard(ctx, testTenantID, sh.ID, castiel.ShardUpdate{
		Structured: map[string]interface{}{"region": "amer", "tier": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, "amer", got.Structured["region"])
	_, ok := got.Structured["tier"]
	assert.False(t, ok)
}

func TestUpdateShard_DeletedRelationTarget(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")
	target := createTestShard(t, ctx, svc, st.ID, "acme-emea")
	require.NoError(t, svc.DeleteShard(ctx, testTenantID, target.ID))

	// merging relations on update holds the same bar as LinkShards
	_, err := svc.UpdateShard(ctx, testTenantID, sh.ID, castiel.ShardUpdate{
		Internal: []castiel.Relationship{{ShardID: target.ID, Type: "subsidiary"}},
	})
	assert.ErrorIs(t, err, shard.ErrLinkTargetDeleted)
}

func TestUpdateShard_NotFound(t *testing.T) {
	svc, ctx := initShardService(t)

	_, err := svc.UpdateShard(ctx, testTenantID, platform.ID(404), castiel.ShardUpdate{})
	require.Error(t, err)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestUpdateShard_CrossTenantNotFound(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	name := "stolen"
	_, err := svc.UpdateShard(ctx, platform.ID(11), sh.ID, castiel.ShardUpdate{Name: &name})
	require.Error(t, err)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestDeleteShard(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	require.NoError(t, svc.DeleteShard(ctx, testTenantID, sh.ID))

	got, err := svc.FindShardByID(ctx, testTenantID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, castiel.ShardDeleted, got.Status)
	require.NotNil(t, got.DeletedAt)

	// deleting again is idempotent
	require.NoError(t, svc.DeleteShard(ctx, testTenantID, sh.ID))

	// deleted shards are hidden from default finds
	shs, n, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Empty(t, shs)
	assert.Zero(t, n)

	shs, n, err = svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID, IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, shs, 1)
	assert.Equal(t, 1, n)
}

func TestRestoreShard(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	err := svc.RestoreShard(ctx, testTenantID, sh.ID)
	assert.ErrorIs(t, err, shard.ErrShardNotDeleted)

	require.NoError(t, svc.DeleteShard(ctx, testTenantID, sh.ID))
	require.NoError(t, svc.RestoreShard(ctx, testTenantID, sh.ID))

	got, err := svc.FindShardByID(ctx, testTenantID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, castiel.ShardActive, got.Status)
	assert.Nil(t, got.DeletedAt)
}

func TestHardDeleteShard(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	require.NoError(t, svc.HardDeleteShard(ctx, testTenantID, sh.ID))

	_, err := svc.FindShardByID(ctx, testTenantID, sh.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestFindShards_Filters(t *testing.T) {
	svc, ctx := initShardService(t)
	accounts := createTestType(t, ctx, svc, "account")
	contacts := createTestType(t, ctx, svc, "contact")

	createTestShard(t, ctx, svc, accounts.ID, "acme")
	createTestShard(t, ctx, svc, accounts.ID, "acorn")
	createTestShard(t, ctx, svc, contacts.ID, "bob")

	shs, n, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Len(t, shs, 3)
	assert.Equal(t, 3, n)

	shs, _, err = svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID, TypeID: &accounts.ID})
	require.NoError(t, err)
	assert.Len(t, shs, 2)

	prefix := "aco"
	shs, _, err = svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID, NamePrefix: &prefix})
	require.NoError(t, err)
	require.Len(t, shs, 1)
	assert.Equal(t, "acorn", shs[0].Name)

	shs, _, err = svc.FindShards(ctx, castiel.ShardFilter{TenantID: platform.ID(11)})
	require.NoError(t, err)
	assert.Empty(t, shs)
}

func TestFindShards_Pagination(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		createTestShard(t, ctx, svc, st.ID, name)
	}

	shs, n, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID}, castiel.FindOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, shs, 2)
	assert.Equal(t, 5, n)

	shs, _, err = svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID}, castiel.FindOptions{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, shs, 1)
}

func TestFindShards_Descending(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	for _, name := range []string{"a", "b", "c"} {
		createTestShard(t, ctx, svc, st.ID, name)
	}

	asc, _, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID})
	require.NoError(t, err)
	require.Len(t, asc, 3)

	desc, n, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID}, castiel.FindOptions{Descending: true})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, desc, 3)
	for i := range asc {
		assert.Equal(t, asc[len(asc)-1-i].ID, desc[i].ID)
	}
}

func TestPutShardACL(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	acl := []castiel.ACLEntry{
		{SubjectType: castiel.ACLSubjectUser, SubjectID: testUserID, Actions: []castiel.ACLAction{castiel.ACLAdmin}},
		{SubjectType: castiel.ACLSubjectRole, SubjectID: platform.ID(7), Actions: []castiel.ACLAction{castiel.ACLRead}},
	}
	require.NoError(t, svc.PutShardACL(ctx, testTenantID, sh.ID, acl))

	got, err := svc.GetShardACL(ctx, testTenantID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, acl, got)

	err = svc.PutShardACL(ctx, testTenantID, sh.ID, []castiel.ACLEntry{
		{SubjectType: "group", SubjectID: platform.ID(1), Actions: []castiel.ACLAction{castiel.ACLRead}},
	})
	require.Error(t, err)
	assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
}
