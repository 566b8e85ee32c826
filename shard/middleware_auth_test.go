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
	"github.com/Edgame2/castiel/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initAuthedService(t *testing.T) (*shard.AuthedService, *shard.Service, *tenant.Service) {
	t.Helper()
	kvStore := inmem.NewKVStore()
	svc := shard.NewService(shard.NewStore(kvStore))
	tenantSvc := tenant.NewService(tenant.NewStore(kvStore))
	return shard.NewAuthedService(svc, tenantSvc), svc, tenantSvc
}

func userContext(userID platform.ID) context.Context {
	return icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		UserID:      userID,
		Status:      castiel.Active,
		Permissions: castiel.TenantPermissions(testTenantID),
	})
}

func operatorContext(userID platform.ID) context.Context {
	return icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		UserID:      userID,
		Status:      castiel.Active,
		Permissions: castiel.OperPermissions(),
	})
}

func TestAuthedService_CreatorCanReadAndWrite(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	ctx := userContext(testUserID)

	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")

	got, err := authed.FindShardByID(ctx, testTenantID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, sh.ID, got.ID)

	name := "acme-renamed"
	_, err = authed.UpdateShard(ctx, testTenantID, sh.ID, castiel.ShardUpdate{Name: &name})
	require.NoError(t, err)
}

func TestAuthedService_DeniesUngrantedUser(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	owner := userContext(testUserID)
	stranger := userContext(platform.ID(21))

	st := createTestType(t, owner, svc, "account")
	sh := createTestShard(t, owner, svc, st.ID, "acme")

	_, err := authed.FindShardByID(stranger, testTenantID, sh.ID)
	assert.Equal(t, errors.EForbidden, errors.ErrorCode(err))

	name := "hijacked"
	_, err = authed.UpdateShard(stranger, testTenantID, sh.ID, castiel.ShardUpdate{Name: &name})
	assert.Equal(t, errors.EForbidden, errors.ErrorCode(err))
}

func TestAuthedService_EmptyACLIsTenantVisible(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	// no authorizer on the creating context leaves the ACL empty
	ctx := context.Background()

	st := createTestType(t, ctx, svc, "account")
	sh := createTestShard(t, ctx, svc, st.ID, "acme")
	require.Empty(t, sh.ACL)

	_, err := authed.FindShardByID(userContext(platform.ID(21)), testTenantID, sh.ID)
	require.NoError(t, err)
}

func TestAuthedService_ReadGrantDoesNotWrite(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	owner := userContext(testUserID)
	reader := userContext(platform.ID(21))

	st := createTestType(t, owner, svc, "account")
	sh := createTestShard(t, owner, svc, st.ID, "acme")

	require.NoError(t, svc.PutShardACL(owner, testTenantID, sh.ID, []castiel.ACLEntry{
		{SubjectType: castiel.ACLSubjectUser, SubjectID: testUserID, Actions: []castiel.ACLAction{castiel.ACLAdmin}},
		{SubjectType: castiel.ACLSubjectUser, SubjectID: 21, Actions: []castiel.ACLAction{castiel.ACLRead}},
	}))

	_, err := authed.FindShardByID(reader, testTenantID, sh.ID)
	require.NoError(t, err)

	err = authed.DeleteShard(reader, testTenantID, sh.ID)
	assert.Equal(t, errors.EForbidden, errors.ErrorCode(err))
}

func TestAuthedService_RoleGrant(t *testing.T) {
	authed, svc, tenantSvc := initAuthedService(t)
	owner := userContext(testUserID)
	ctx := context.Background()

	tn := &castiel.Tenant{Name: "acme"}
	require.NoError(t, tenantSvc.CreateTenant(ctx, tn))
	member := &castiel.User{Name: "bob"}
	require.NoError(t, tenantSvc.CreateUser(ctx, member))
	role := &castiel.Role{TenantID: tn.ID, Name: "analysts"}
	require.NoError(t, tenantSvc.CreateRole(ctx, role))
	require.NoError(t, tenantSvc.CreateUserResourceMapping(ctx, &castiel.UserResourceMapping{
		UserID:       member.ID,
		UserType:     castiel.Member,
		ResourceType: castiel.RolesMappableType,
		ResourceID:   role.ID,
	}))

	st := createTestType(t, owner, svc, "account")
	sh := createTestShard(t, owner, svc, st.ID, "acme")
	require.NoError(t, svc.PutShardACL(owner, testTenantID, sh.ID, []castiel.ACLEntry{
		{SubjectType: castiel.ACLSubjectUser, SubjectID: testUserID, Actions: []castiel.ACLAction{castiel.ACLAdmin}},
		{SubjectType: castiel.ACLSubjectRole, SubjectID: role.ID, Actions: []castiel.ACLAction{castiel.ACLRead}},
	}))

	_, err := authed.FindShardByID(userContext(member.ID), testTenantID, sh.ID)
	require.NoError(t, err)

	_, err = authed.FindShardByID(userContext(platform.ID(99)), testTenantID, sh.ID)
	assert.Equal(t, errors.EForbidden, errors.ErrorCode(err))
}

func TestAuthedService_OperatorBypassesACL(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	owner := userContext(testUserID)
	oper := operatorContext(platform.ID(1))

	st := createTestType(t, owner, svc, "account")
	sh := createTestShard(t, owner, svc, st.ID, "acme")

	_, err := authed.FindShardByID(oper, testTenantID, sh.ID)
	require.NoError(t, err)

	require.NoError(t, authed.HardDeleteShard(oper, testTenantID, sh.ID))
}

func TestAuthedService_HardDeleteRequiresOperator(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	owner := userContext(testUserID)

	st := createTestType(t, owner, svc, "account")
	sh := createTestShard(t, owner, svc, st.ID, "acme")

	// even the shard admin cannot hard delete
	err := authed.HardDeleteShard(owner, testTenantID, sh.ID)
	assert.Equal(t, errors.EForbidden, errors.ErrorCode(err))
}

func TestAuthedService_FindShardsFiltersUnreadable(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	owner := userContext(testUserID)
	other := userContext(platform.ID(21))

	st := createTestType(t, owner, svc, "account")
	mine := createTestShard(t, owner, svc, st.ID, "mine")
	createTestShard(t, other, svc, st.ID, "theirs")

	shs, n, err := authed.FindShards(owner, castiel.ShardFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, shs, 1)
	assert.Equal(t, mine.ID, shs[0].ID)
}

func TestAuthedService_FindRelatedSkipsUnreadableChildren(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	owner := userContext(testUserID)
	other := userContext(platform.ID(21))

	st := createTestType(t, owner, svc, "account")
	parent := createTestShard(t, owner, svc, st.ID, "parent")
	visible := createTestShard(t, owner, svc, st.ID, "visible")
	hidden := createTestShard(t, other, svc, st.ID, "hidden")

	_, err := svc.LinkShards(owner, testTenantID, parent.ID, visible.ID, "contains", nil)
	require.NoError(t, err)
	_, err = svc.LinkShards(owner, testTenantID, parent.ID, hidden.ID, "contains", nil)
	require.NoError(t, err)

	related, err := authed.FindRelated(owner, testTenantID, parent.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, visible.ID, related[0].Shard.ID)
}

func TestAuthedService_BulkRequiresTenantWrite(t *testing.T) {
	authed, svc, _ := initAuthedService(t)
	owner := userContext(testUserID)

	st := createTestType(t, owner, svc, "account")

	// a token scoped to another tenant has no write grant here
	foreign := icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		UserID:      platform.ID(31),
		Status:      castiel.Active,
		Permissions: castiel.TenantPermissions(platform.ID(11)),
	})
	_, err := authed.BulkCreateShards(foreign, testTenantID, []*castiel.Shard{
		{TenantID: testTenantID, TypeID: st.ID, Name: "nope"},
	}, castiel.OnErrorContinue)
	require.Error(t, err)

	outcomes, err := authed.BulkCreateShards(owner, testTenantID, []*castiel.Shard{
		{TenantID: testTenantID, TypeID: st.ID, Name: "ok"},
	}, castiel.OnErrorContinue)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].ID.Valid())
}
