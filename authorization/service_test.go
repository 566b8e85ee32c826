package authorization_test

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/authorization"
	"github.com/Edgame2/castiel/inmem"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenantID = platform.ID(10)
	testUserID   = platform.ID(20)
)

func initAuthService(t *testing.T) *authorization.Service {
	t.Helper()
	return authorization.NewService(authorization.NewStore(inmem.NewKVStore()))
}

func createTestAuth(t *testing.T, svc *authorization.Service) *castiel.Authorization {
	t.Helper()
	a := &castiel.Authorization{
		UserID:      testUserID,
		Description: "ci token",
		Permissions: castiel.TenantPermissions(testTenantID),
	}
	require.NoError(t, svc.CreateAuthorization(context.Background(), a))
	return a
}

func TestCreateAuthorization(t *testing.T) {
	svc := initAuthService(t)
	ctx := context.Background()

	a := createTestAuth(t, svc)
	assert.True(t, a.ID.Valid())
	assert.NotEmpty(t, a.Token)
	assert.Equal(t, castiel.Active, a.Status)

	got, err := svc.FindAuthorizationByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Token, got.Token)
	assert.Equal(t, testUserID, got.UserID)

	t.Run("provided token is kept", func(t *testing.T) {
		a := &castiel.Authorization{
			UserID: testUserID,
			Token:  "fixed-token",
		}
		require.NoError(t, svc.CreateAuthorization(ctx, a))
		assert.Equal(t, "fixed-token", a.Token)
	})

	t.Run("duplicate token refused", func(t *testing.T) {
		err := svc.CreateAuthorization(ctx, &castiel.Authorization{
			UserID: testUserID,
			Token:  "fixed-token",
		})
		require.Error(t, err)
		assert.Equal(t, castiel.EConflict, castiel.ErrorCode(err))
	})
}

func TestFindAuthorizationByToken(t *testing.T) {
	svc := initAuthService(t)
	ctx := context.Background()

	a := createTestAuth(t, svc)

	got, err := svc.FindAuthorizationByToken(ctx, a.Token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.FindAuthorizationByToken(ctx, "no such token")
		require.Error(t, err)
		assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
	})
}

func TestFindAuthorizations(t *testing.T) {
	svc := initAuthService(t)
	ctx := context.Background()

	createTestAuth(t, svc)
	createTestAuth(t, svc)

	other := &castiel.Authorization{UserID: platform.ID(21)}
	require.NoError(t, svc.CreateAuthorization(ctx, other))

	auths, n, err := svc.FindAuthorizations(ctx, castiel.AuthorizationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, auths, 3)

	t.Run("by user", func(t *testing.T) {
		userID := testUserID
		auths, n, err := svc.FindAuthorizations(ctx, castiel.AuthorizationFilter{UserID: &userID})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, auths, 2)
	})
}

func TestUpdateAuthorization(t *testing.T) {
	svc := initAuthService(t)
	ctx := context.Background()

	a := createTestAuth(t, svc)

	inactive := castiel.Inactive
	desc := "revoked pending rotation"
	got, err := svc.UpdateAuthorization(ctx, a.ID, castiel.AuthorizationUpdate{
		Status:      &inactive,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, castiel.Inactive, got.Status)
	assert.Equal(t, desc, got.Description)

	t.Run("inactive tokens hold no permissions", func(t *testing.T) {
		_, err := got.PermissionSet()
		require.Error(t, err)
		assert.Equal(t, castiel.EUnauthorized, castiel.ErrorCode(err))
	})
}

func TestDeleteAuthorization(t *testing.T) {
	svc := initAuthService(t)
	ctx := context.Background()

	a := createTestAuth(t, svc)
	require.NoError(t, svc.DeleteAuthorization(ctx, a.ID))

	_, err := svc.FindAuthorizationByID(ctx, a.ID)
	require.Error(t, err)
	assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))

	// The token index entry goes with the record.
	_, err = svc.FindAuthorizationByToken(ctx, a.Token)
	require.Error(t, err)
	assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
}
