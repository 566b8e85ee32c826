package tenant_test

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/inmem"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/Edgame2/castiel/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTenantService(t *testing.T) (*tenant.Service, context.Context) {
	t.Helper()
	return tenant.NewService(tenant.NewStore(inmem.NewKVStore())), context.Background()
}

func createTestTenant(t *testing.T, ctx context.Context, svc *tenant.Service, name string) *castiel.Tenant {
	t.Helper()
	tn := &castiel.Tenant{Name: name}
	require.NoError(t, svc.CreateTenant(ctx, tn))
	return tn
}

func createTestUser(t *testing.T, ctx context.Context, svc *tenant.Service, name string) *castiel.User {
	t.Helper()
	u := &castiel.User{Name: name}
	require.NoError(t, svc.CreateUser(ctx, u))
	return u
}

func TestCreateTenant(t *testing.T) {
	svc, ctx := initTenantService(t)

	tn := createTestTenant(t, ctx, svc, "acme")
	assert.True(t, tn.ID.Valid())
	assert.Equal(t, castiel.TenantActive, tn.Status)
	assert.False(t, tn.CreatedAt.IsZero())

	got, err := svc.FindTenantByID(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, tn.Name, got.Name)
}

func TestCreateTenant_EmptyName(t *testing.T) {
	svc, ctx := initTenantService(t)

	err := svc.CreateTenant(ctx, &castiel.Tenant{})
	require.Error(t, err)
	assert.Equal(t, errors.EEmptyValue, errors.ErrorCode(err))
}

func TestCreateTenant_DuplicateName(t *testing.T) {
	svc, ctx := initTenantService(t)
	createTestTenant(t, ctx, svc, "acme")

	err := svc.CreateTenant(ctx, &castiel.Tenant{Name: "acme"})
	require.Error(t, err)
	assert.Equal(t, errors.EConflict, errors.ErrorCode(err))
}

func TestFindTenant_ByName(t *testing.T) {
	svc, ctx := initTenantService(t)
	tn := createTestTenant(t, ctx, svc, "acme")
	createTestTenant(t, ctx, svc, "globex")

	name := "acme"
	got, err := svc.FindTenant(ctx, castiel.TenantFilter{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, tn.ID, got.ID)

	missing := "initech"
	_, err = svc.FindTenant(ctx, castiel.TenantFilter{Name: &missing})
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestFindTenants(t *testing.T) {
	svc, ctx := initTenantService(t)
	createTestTenant(t, ctx, svc, "acme")
	createTestTenant(t, ctx, svc, "globex")
	createTestTenant(t, ctx, svc, "initech")

	ts, n, err := svc.FindTenants(ctx, castiel.TenantFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, ts, 3)
}

func TestUpdateTenant(t *testing.T) {
	svc, ctx := initTenantService(t)
	tn := createTestTenant(t, ctx, svc, "acme")

	status := castiel.TenantSuspended
	desc := "payment overdue"
	got, err := svc.UpdateTenant(ctx, tn.ID, castiel.TenantUpdate{Status: &status, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, castiel.TenantSuspended, got.Status)
	assert.Equal(t, desc, got.Description)
	assert.Equal(t, "acme", got.Name)
}

func TestUpdateTenant_RenameToTakenName(t *testing.T) {
	svc, ctx := initTenantService(t)
	createTestTenant(t, ctx, svc, "acme")
	tn := createTestTenant(t, ctx, svc, "globex")

	name := "acme"
	_, err := svc.UpdateTenant(ctx, tn.ID, castiel.TenantUpdate{Name: &name})
	require.Error(t, err)
	assert.Equal(t, errors.EConflict, errors.ErrorCode(err))
}

func TestDeleteTenant_Cascades(t *testing.T) {
	svc, ctx := initTenantService(t)
	tn := createTestTenant(t, ctx, svc, "acme")
	u := createTestUser(t, ctx, svc, "alice")

	role := &castiel.Role{TenantID: tn.ID, Name: "viewer"}
	require.NoError(t, svc.CreateRole(ctx, role))
	require.NoError(t, svc.CreateUserResourceMapping(ctx, &castiel.UserResourceMapping{
		UserID:       u.ID,
		UserType:     castiel.Member,
		ResourceType: castiel.TenantsMappableType,
		ResourceID:   tn.ID,
	}))
	require.NoError(t, svc.CreateUserResourceMapping(ctx, &castiel.UserResourceMapping{
		UserID:       u.ID,
		UserType:     castiel.Member,
		ResourceType: castiel.RolesMappableType,
		ResourceID:   role.ID,
	}))

	require.NoError(t, svc.DeleteTenant(ctx, tn.ID))

	_, err := svc.FindTenantByID(ctx, tn.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
	_, err = svc.FindRoleByID(ctx, role.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))

	ms, n, err := svc.FindUserResourceMappings(ctx, castiel.UserResourceMappingFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, ms)

	// the user itself survives the tenant delete
	_, err = svc.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
}

func TestCreateUser(t *testing.T) {
	svc, ctx := initTenantService(t)

	u := createTestUser(t, ctx, svc, "alice")
	assert.True(t, u.ID.Valid())
	assert.Equal(t, castiel.UserActive, u.Status)

	name := "alice"
	got, err := svc.FindUser(ctx, castiel.UserFilter{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestCreateUser_DuplicateName(t *testing.T) {
	svc, ctx := initTenantService(t)
	createTestUser(t, ctx, svc, "alice")

	err := svc.CreateUser(ctx, &castiel.User{Name: "alice"})
	require.Error(t, err)
	assert.Equal(t, errors.EConflict, errors.ErrorCode(err))
}

func TestUpdateUser_Deactivate(t *testing.T) {
	svc, ctx := initTenantService(t)
	u := createTestUser(t, ctx, svc, "alice")

	status := castiel.UserInactive
	got, err := svc.UpdateUser(ctx, u.ID, castiel.UserUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, castiel.UserInactive, got.Status)
}

func TestDeleteUser_DropsMappings(t *testing.T) {
	svc, ctx := initTenantService(t)
	tn := createTestTenant(t, ctx, svc, "acme")
	u := createTestUser(t, ctx, svc, "alice")

	require.NoError(t, svc.CreateUserResourceMapping(ctx, &castiel.UserResourceMapping{
		UserID:       u.ID,
		UserType:     castiel.Owner,
		ResourceType: castiel.TenantsMappableType,
		ResourceID:   tn.ID,
	}))

	require.NoError(t, svc.DeleteUser(ctx, u.ID))

	_, err := svc.FindUserByID(ctx, u.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))

	_, n, err := svc.FindUserResourceMappings(ctx, castiel.UserResourceMappingFilter{ResourceID: tn.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRoles(t *testing.T) {
	svc, ctx := initTenantService(t)
	tn := createTestTenant(t, ctx, svc, "acme")

	r := &castiel.Role{
		TenantID:    tn.ID,
		Name:        "analyst",
		Permissions: castiel.TenantPermissions(tn.ID),
	}
	require.NoError(t, svc.CreateRole(ctx, r))
	assert.True(t, r.ID.Valid())

	rs, n, err := svc.FindRoles(ctx, castiel.RoleFilter{TenantID: &tn.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rs, 1)
	assert.Equal(t, "analyst", rs[0].Name)

	name := "senior-analyst"
	got, err := svc.UpdateRole(ctx, r.ID, castiel.RoleUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)

	require.NoError(t, svc.DeleteRole(ctx, r.ID))
	_, err = svc.FindRoleByID(ctx, r.ID)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestCreateRole_TenantMustExist(t *testing.T) {
	svc, ctx := initTenantService(t)

	err := svc.CreateRole(ctx, &castiel.Role{TenantID: 404, Name: "ghost"})
	require.Error(t, err)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestCreateUserResourceMapping_Duplicate(t *testing.T) {
	svc, ctx := initTenantService(t)
	tn := createTestTenant(t, ctx, svc, "acme")
	u := createTestUser(t, ctx, svc, "alice")

	m := &castiel.UserResourceMapping{
		UserID:       u.ID,
		UserType:     castiel.Member,
		ResourceType: castiel.TenantsMappableType,
		ResourceID:   tn.ID,
	}
	require.NoError(t, svc.CreateUserResourceMapping(ctx, m))

	err := svc.CreateUserResourceMapping(ctx, m)
	require.Error(t, err)
	assert.Equal(t, errors.EConflict, errors.ErrorCode(err))
}

func TestCreateUserResourceMapping_ResourceMustExist(t *testing.T) {
	svc, ctx := initTenantService(t)
	u := createTestUser(t, ctx, svc, "alice")

	err := svc.CreateUserResourceMapping(ctx, &castiel.UserResourceMapping{
		UserID:       u.ID,
		UserType:     castiel.Member,
		ResourceType: castiel.TenantsMappableType,
		ResourceID:   404,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestPasswords(t *testing.T) {
	svc, ctx := initTenantService(t)
	u := createTestUser(t, ctx, svc, "alice")

	require.NoError(t, svc.SetPassword(ctx, u.ID, "hunter22hunter22"))
	require.NoError(t, svc.ComparePassword(ctx, u.ID, "hunter22hunter22"))

	err := svc.ComparePassword(ctx, u.ID, "wrong-password")
	assert.Equal(t, tenant.ErrPasswordsDoNotMatch, err)

	require.NoError(t, svc.CompareAndSetPassword(ctx, u.ID, "hunter22hunter22", "correcthorse"))
	require.NoError(t, svc.ComparePassword(ctx, u.ID, "correcthorse"))
}

func TestSetPassword_TooShort(t *testing.T) {
	svc, ctx := initTenantService(t)
	u := createTestUser(t, ctx, svc, "alice")

	err := svc.SetPassword(ctx, u.ID, "short")
	assert.Equal(t, tenant.ErrShortPassword, err)
}

func TestComparePassword_NeverSet(t *testing.T) {
	svc, ctx := initTenantService(t)
	u := createTestUser(t, ctx, svc, "alice")

	err := svc.ComparePassword(ctx, u.ID, "anything")
	assert.Equal(t, errors.EForbidden, errors.ErrorCode(err))
}
