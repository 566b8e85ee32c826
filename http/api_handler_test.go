package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/mock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type apiShardService struct {
	*mock.ShardService
	*mock.ShardLinkingService
}

func newTestAPIHandler(t *testing.T) *APIHandler {
	t.Helper()

	shards := &mock.ShardService{
		FindShardsFn: func(context.Context, castiel.ShardFilter, ...castiel.FindOptions) ([]*castiel.Shard, int, error) {
			return nil, 0, nil
		},
	}
	tenants := &mock.TenantService{
		FindTenantsFn: func(context.Context, castiel.TenantFilter, ...castiel.FindOptions) ([]*castiel.Tenant, int, error) {
			return nil, 0, nil
		},
	}

	return NewAPIHandler(&APIBackend{
		Logger:        zaptest.NewLogger(t),
		TenantService: tenants,
		ShardService: apiShardService{
			ShardService:        shards,
			ShardLinkingService: &mock.ShardLinkingService{},
		},
	})
}

func requestAs(method, target string, permissions []castiel.Permission) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	ctx := icontext.SetAuthorizer(r.Context(), &castiel.Authorization{
		ID:          platform.ID(1),
		UserID:      platform.ID(2),
		Status:      castiel.Active,
		Permissions: permissions,
	})
	return r.WithContext(ctx)
}

func TestAPIHandler_TenantIsolation(t *testing.T) {
	h := newTestAPIHandler(t)
	perms := castiel.TenantPermissions(platform.ID(10))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, requestAs(http.MethodGet, "/api/v1/tenants/000000000000000a/shards", perms))
	assert.Equal(t, http.StatusOK, w.Code)

	// Same token against another tenant's path is refused.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, requestAs(http.MethodGet, "/api/v1/tenants/000000000000000b/shards", perms))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIHandler_AdminRequiresOperator(t *testing.T) {
	h := newTestAPIHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, requestAs(http.MethodGet, "/api/admin/tenants", castiel.TenantPermissions(platform.ID(10))))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, requestAs(http.MethodGet, "/api/admin/tenants", castiel.OperPermissions()))
	assert.Equal(t, http.StatusOK, w.Code)
}
