package secret_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Edgame2/castiel/inmem"
	"github.com/Edgame2/castiel/secret"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSecretServer(t *testing.T) (*secret.Service, *httptest.Server) {
	t.Helper()
	svc := secret.NewService(secret.NewStore(inmem.NewKVStore()))
	handler := secret.NewHTTPSecretHandler(zaptest.NewLogger(t), svc)

	router := chi.NewRouter()
	router.Mount("/api/v1/tenants/{tenantID}/secrets", handler)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return svc, server
}

func TestSecretHandler_GetKeys(t *testing.T) {
	svc, server := newSecretServer(t)
	require.NoError(t, svc.PatchSecrets(context.Background(), testTenantID, map[string]string{
		"alpha": "1",
		"beta":  "2",
	}))

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/tenants/%s/secrets", server.URL, testTenantID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Secrets []string `json:"secrets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.ElementsMatch(t, []string{"alpha", "beta"}, body.Secrets)
}

func TestSecretHandler_PutAndDelete(t *testing.T) {
	svc, server := newSecretServer(t)
	ctx := context.Background()

	url := fmt.Sprintf("%s/api/v1/tenants/%s/secrets/scoring-token", server.URL, testTenantID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBufferString(`{"value":"s3cret"}`))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	v, err := svc.LoadSecret(ctx, testTenantID, "scoring-token")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	req, err = http.NewRequest(http.MethodDelete, url, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = svc.LoadSecret(ctx, testTenantID, "scoring-token")
	require.Error(t, err)
}

func TestSecretHandler_ValuesNeverListed(t *testing.T) {
	svc, server := newSecretServer(t)
	require.NoError(t, svc.PutSecret(context.Background(), testTenantID, "token", "hunter2"))

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/tenants/%s/secrets", server.URL, testTenantID))
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, raw.String(), "hunter2")
}
