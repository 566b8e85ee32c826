package authorizer_test

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/authorizer"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenantContext(t *testing.T, tenantID platform.ID) context.Context {
	t.Helper()

	return icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		ID:          platform.ID(1),
		UserID:      platform.ID(2),
		Status:      castiel.Active,
		Permissions: castiel.TenantPermissions(tenantID),
	})
}

func TestAuthorizeReadWrite(t *testing.T) {
	tenantID := platform.ID(10)
	ctx := tenantContext(t, tenantID)

	_, _, err := authorizer.AuthorizeRead(ctx, castiel.ShardsResourceType, tenantID)
	require.NoError(t, err)

	_, _, err = authorizer.AuthorizeWrite(ctx, castiel.QuotasResourceType, tenantID)
	require.NoError(t, err)
}

func TestAuthorize_CrossTenant(t *testing.T) {
	ctx := tenantContext(t, platform.ID(10))

	_, _, err := authorizer.AuthorizeRead(ctx, castiel.ShardsResourceType, platform.ID(11))
	require.Error(t, err)
	assert.Equal(t, castiel.EUnauthorized, castiel.ErrorCode(err))
}

func TestAuthorize_Operator(t *testing.T) {
	ctx := icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		ID:          platform.ID(1),
		UserID:      platform.ID(2),
		Status:      castiel.Active,
		Permissions: castiel.OperPermissions(),
	})

	// Operators may touch any tenant.
	_, _, err := authorizer.AuthorizeWrite(ctx, castiel.TenantsResourceType, platform.ID(99))
	require.NoError(t, err)
}

func TestAuthorize_NoAuthorizer(t *testing.T) {
	_, _, err := authorizer.AuthorizeRead(context.Background(), castiel.ShardsResourceType, platform.ID(10))
	require.Error(t, err)
}

func TestIsAllowedAny(t *testing.T) {
	tenantID := platform.ID(10)
	ctx := tenantContext(t, tenantID)

	read, err := castiel.NewPermission(castiel.ReadAction, castiel.DocumentsResourceType, tenantID)
	require.NoError(t, err)
	foreign, err := castiel.NewPermission(castiel.WriteAction, castiel.DocumentsResourceType, platform.ID(11))
	require.NoError(t, err)

	assert.NoError(t, authorizer.IsAllowedAny(ctx, []castiel.Permission{*foreign, *read}))
	assert.Error(t, authorizer.IsAllowedAny(ctx, []castiel.Permission{*foreign}))
}
