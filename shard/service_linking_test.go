package shard_test

import (
	"testing"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkShards(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	parent := createTestShard(t, ctx, svc, st.ID, "acme")
	child := createTestShard(t, ctx, svc, st.ID, "acme-emea")

	got, err := svc.LinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary", map[string]string{"since": "2020"})
	require.NoError(t, err)
	require.Len(t, got.Internal, 1)
	assert.Equal(t, child.ID, got.Internal[0].ShardID)
	assert.Equal(t, "subsidiary", got.Internal[0].Type)
	assert.Equal(t, "2020", got.Internal[0].Metadata["since"])
	assert.False(t, got.Internal[0].CreatedAt.IsZero())
}

func TestLinkShards_RelinkMergesMetadata(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	parent := createTestShard(t, ctx, svc, st.ID, "acme")
	child := createTestShard(t, ctx, svc, st.ID, "acme-emea")

	first, err := svc.LinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary", map[string]string{"since": "2020", "kind": "wholly owned"})
	require.NoError(t, err)
	createdAt := first.Internal[0].CreatedAt

	got, err := svc.LinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary", map[string]string{"since": "2021"})
	require.NoError(t, err)
	require.Len(t, got.Internal, 1)

	// incoming keys win, untouched keys survive, CreatedAt is preserved
	assert.Equal(t, "2021", got.Internal[0].Metadata["since"])
	assert.Equal(t, "wholly owned", got.Internal[0].Metadata["kind"])
	assert.Equal(t, createdAt, got.Internal[0].CreatedAt)
}

func TestLinkShards_DistinctTypesCoexist(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	parent := createTestShard(t, ctx, svc, st.ID, "acme")
	child := createTestShard(t, ctx, svc, st.ID, "acme-emea")

	_, err := svc.LinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary", nil)
	require.NoError(t, err)
	got, err := svc.LinkShards(ctx, testTenantID, parent.ID, child.ID, "partner", nil)
	require.NoError(t, err)
	assert.Len(t, got.Internal, 2)
}

func TestLinkShards_SelfLink(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	_, err := svc.LinkShards(ctx, testTenantID, sh.ID, sh.ID, "subsidiary", nil)
	assert.ErrorIs(t, err, shard.ErrSelfLink)
}

func TestLinkShards_DeletedChild(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	parent := createTestShard(t, ctx, svc, st.ID, "acme")
	child := createTestShard(t, ctx, svc, st.ID, "acme-emea")
	require.NoError(t, svc.DeleteShard(ctx, testTenantID, child.ID))

	_, err := svc.LinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary", nil)
	assert.ErrorIs(t, err, shard.ErrLinkTargetDeleted)
}

func TestLinkShards_MissingChild(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	parent := createTestShard(t, ctx, svc, st.ID, "acme")

	_, err := svc.LinkShards(ctx, testTenantID, parent.ID, platform.ID(404), "subsidiary", nil)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestUnlinkShards(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	parent := createTestShard(t, ctx, svc, st.ID, "acme")
	child := createTestShard(t, ctx, svc, st.ID, "acme-emea")

	_, err := svc.LinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary", nil)
	require.NoError(t, err)

	got, err := svc.UnlinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary")
	require.NoError(t, err)
	assert.Empty(t, got.Internal)

	_, err = svc.UnlinkShards(ctx, testTenantID, parent.ID, child.ID, "subsidiary")
	assert.ErrorIs(t, err, shard.ErrRelationshipNotFound)
}

func TestLinkExternal(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	got, err := svc.LinkExternal(ctx, testTenantID, sh.ID, castiel.ExternalRelationship{
		System:     "crm",
		ExternalID: "0013000001",
		Type:       "account",
		Metadata:   map[string]string{"owner": "jo"},
	})
	require.NoError(t, err)
	require.Len(t, got.External, 1)

	// relinking the same (system, externalID) merges instead of duplicating
	got, err = svc.LinkExternal(ctx, testTenantID, sh.ID, castiel.ExternalRelationship{
		System:     "crm",
		ExternalID: "0013000001",
		Metadata:   map[string]string{"owner": "sam"},
	})
	require.NoError(t, err)
	require.Len(t, got.External, 1)
	assert.Equal(t, "sam", got.External[0].Metadata["owner"])
	assert.Equal(t, "account", got.External[0].Type)

	_, err = svc.LinkExternal(ctx, testTenantID, sh.ID, castiel.ExternalRelationship{System: "crm"})
	assert.Equal(t, errors.EEmptyValue, errors.ErrorCode(err))
}

func TestUnlinkExternal(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	_, err := svc.LinkExternal(ctx, testTenantID, sh.ID, castiel.ExternalRelationship{
		System:     "crm",
		ExternalID: "0013000001",
	})
	require.NoError(t, err)

	got, err := svc.UnlinkExternal(ctx, testTenantID, sh.ID, "crm", "0013000001")
	require.NoError(t, err)
	assert.Empty(t, got.External)

	_, err = svc.UnlinkExternal(ctx, testTenantID, sh.ID, "crm", "0013000001")
	assert.ErrorIs(t, err, shard.ErrRelationshipNotFound)
}

func TestFindRelated(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	parent := createTestShard(t, ctx, svc, st.ID, "acme")
	live := createTestShard(t, ctx, svc, st.ID, "acme-emea")
	doomed := createTestShard(t, ctx, svc, st.ID, "acme-apac")

	_, err := svc.LinkShards(ctx, testTenantID, parent.ID, live.ID, "subsidiary", nil)
	require.NoError(t, err)
	_, err = svc.LinkShards(ctx, testTenantID, parent.ID, doomed.ID, "subsidiary", nil)
	require.NoError(t, err)

	// edges pointing at deleted or missing shards are skipped, not errored
	require.NoError(t, svc.DeleteShard(ctx, testTenantID, doomed.ID))

	related, err := svc.FindRelated(ctx, testTenantID, parent.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, live.ID, related[0].Shard.ID)
	assert.Equal(t, "subsidiary", related[0].Relationship.Type)
}

func TestBulkCreateShards(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")

	shards := []*castiel.Shard{
		{TypeID: st.ID, Name: "one"},
		{TypeID: st.ID, Name: ""}, // invalid
		{TypeID: st.ID, Name: "three"},
	}
	outcomes, err := svc.BulkCreateShards(ctx, testTenantID, shards, castiel.OnErrorContinue)
	require.Error(t, err)
	assert.Equal(t, errors.EUnprocessableEntity, errors.ErrorCode(err))
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Succeeded())
	assert.False(t, outcomes[1].Succeeded())
	assert.True(t, outcomes[2].Succeeded())

	shs, _, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Len(t, shs, 2)
}

func TestBulkCreateShards_Abort(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")

	shards := []*castiel.Shard{
		{TypeID: st.ID, Name: "one"},
		{TypeID: st.ID, Name: ""},
		{TypeID: st.ID, Name: "three"},
	}
	outcomes, err := svc.BulkCreateShards(ctx, testTenantID, shards, castiel.OnErrorAbort)
	require.Error(t, err)
	require.Len(t, outcomes, 2)

	// the item after the failure was never attempted
	shs, _, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID})
	require.NoError(t, err)
	require.Len(t, shs, 1)
	assert.Equal(t, "one", shs[0].Name)
}

func TestBulkUpdateShards(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	one := createTestShard(t, ctx, svc, st.ID, "one")
	two := createTestShard(t, ctx, svc, st.ID, "two")

	renamedOne, renamedTwo := "one-renamed", "two-renamed"
	outcomes, err := svc.BulkUpdateShards(ctx, testTenantID, []castiel.BulkShardUpdate{
		{ID: one.ID, Update: castiel.ShardUpdate{Name: &renamedOne}},
		{ID: platform.ID(404), Update: castiel.ShardUpdate{Name: &renamedTwo}},
		{ID: two.ID, Update: castiel.ShardUpdate{Name: &renamedTwo}},
	}, "")
	require.Error(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Succeeded())
	assert.False(t, outcomes[1].Succeeded())
	assert.True(t, outcomes[2].Succeeded())

	got, err := svc.FindShardByID(ctx, testTenantID, two.ID)
	require.NoError(t, err)
	assert.Equal(t, renamedTwo, got.Name)
}

func TestBulkDeleteShards(t *testing.T) {
	svc, ctx := initShardService(t)
	st := createTestType(t, ctx, svc, "account")
	one := createTestShard(t, ctx, svc, st.ID, "one")
	two := createTestShard(t, ctx, svc, st.ID, "two")

	outcomes, err := svc.BulkDeleteShards(ctx, testTenantID, []platform.ID{one.ID, two.ID}, castiel.OnErrorContinue)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.True(t, o.Succeeded())
	}

	shs, _, err := svc.FindShards(ctx, castiel.ShardFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Empty(t, shs)
}

func TestBulkShards_InvalidPolicy(t *testing.T) {
	svc, ctx := initShardService(t)

	_, err := svc.BulkDeleteShards(ctx, testTenantID, []platform.ID{1}, "explode")
	require.Error(t, err)
	assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
}
