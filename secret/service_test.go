package secret_test

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/inmem"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenantID = platform.ID(10)

func initSecretService(t *testing.T) *secret.Service {
	t.Helper()
	return secret.NewService(secret.NewStore(inmem.NewKVStore()))
}

func TestPutAndLoadSecret(t *testing.T) {
	svc := initSecretService(t)
	ctx := context.Background()

	require.NoError(t, svc.PutSecret(ctx, testTenantID, "scoring-token", "s3cret"))

	v, err := svc.LoadSecret(ctx, testTenantID, "scoring-token")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, svc.PutSecret(ctx, testTenantID, "scoring-token", "rotated"))
		v, err := svc.LoadSecret(ctx, testTenantID, "scoring-token")
		require.NoError(t, err)
		assert.Equal(t, "rotated", v)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := svc.LoadSecret(ctx, testTenantID, "nope")
		require.Error(t, err)
		assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
	})

	t.Run("tenant isolation", func(t *testing.T) {
		_, err := svc.LoadSecret(ctx, platform.ID(11), "scoring-token")
		require.Error(t, err)
		assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
	})
}

func TestGetSecretKeys(t *testing.T) {
	svc := initSecretService(t)
	ctx := context.Background()

	require.NoError(t, svc.PatchSecrets(ctx, testTenantID, map[string]string{
		"alpha": "1",
		"beta":  "2",
	}))
	require.NoError(t, svc.PutSecret(ctx, platform.ID(11), "gamma", "3"))

	ks, err := svc.GetSecretKeys(ctx, testTenantID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, ks)

	t.Run("empty tenant", func(t *testing.T) {
		ks, err := svc.GetSecretKeys(ctx, platform.ID(12))
		require.NoError(t, err)
		assert.Empty(t, ks)
	})
}

func TestDeleteSecret(t *testing.T) {
	svc := initSecretService(t)
	ctx := context.Background()

	require.NoError(t, svc.PatchSecrets(ctx, testTenantID, map[string]string{
		"alpha": "1",
		"beta":  "2",
	}))

	require.NoError(t, svc.DeleteSecret(ctx, testTenantID, "alpha"))

	ks, err := svc.GetSecretKeys(ctx, testTenantID)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, ks)
}
