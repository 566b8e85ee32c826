// Package http assembles the public API surface: the tenant-scoped
// /api/v1 routes, the operator /api/admin routes, and the platform
// endpoints (health, ready, metrics, pprof).
package http

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/aimodel"
	"github.com/Edgame2/castiel/audit"
	"github.com/Edgame2/castiel/authorization"
	"github.com/Edgame2/castiel/authorizer"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/document"
	"github.com/Edgame2/castiel/insight"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/Edgame2/castiel/quota"
	"github.com/Edgame2/castiel/secret"
	"github.com/Edgame2/castiel/shard"
	"github.com/Edgame2/castiel/tenant"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// APIBackend is all services and associated parameters required to construct
// an APIHandler.
type APIBackend struct {
	Logger *zap.Logger

	TenantService              castiel.TenantService
	UserService                castiel.UserService
	PasswordsService           castiel.PasswordsService
	RoleService                castiel.RoleService
	UserResourceMappingService castiel.UserResourceMappingService

	ShardService interface {
		castiel.ShardService
		castiel.ShardLinkingService
	}
	ContextAssemblyService castiel.ContextAssemblyService
	ShardTypeService       castiel.ShardTypeService

	DocumentService castiel.DocumentService
	AuditService    castiel.AuditService
	QuotaService    castiel.QuotaService
	InsightService  castiel.InsightService
	AIModelService  castiel.AIModelService
	ScoringService  castiel.ScoringService
	SecretService   castiel.SecretService

	AuthorizationService castiel.AuthorizationService
}

// APIHandler is the root handler of the versioned API.
type APIHandler struct {
	chi.Router
}

// NewAPIHandler constructs all api handlers and mounts them on the
// versioned routes.
func NewAPIHandler(b *APIBackend) *APIHandler {
	h := &APIHandler{}
	log := b.Logger
	api := kithttp.NewAPI(kithttp.WithLog(log))

	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", meHandler(api, b.UserService))
		r.Mount("/users", tenant.NewHTTPUserHandler(log, b.UserService, b.PasswordsService))

		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Use(requireTenantAccess(api))

			r.Mount("/shards", shard.NewHTTPShardHandler(log, b.ShardService, b.ContextAssemblyService))
			r.Mount("/shard-types", shard.NewHTTPShardTypeHandler(log, b.ShardTypeService))
			r.Mount("/documents", document.NewHTTPDocumentHandler(log, b.DocumentService))
			r.Mount("/quotas", quota.NewHTTPQuotaHandler(log, b.QuotaService))
			r.Mount("/insights", insight.NewHTTPInsightHandler(log, b.InsightService))
			r.Mount("/models", aimodel.NewHTTPModelHandler(log, b.AIModelService, b.ScoringService))
			r.Mount("/secrets", secret.NewHTTPSecretHandler(log, b.SecretService))
			r.Mount("/audit", audit.NewHTTPAuditHandler(log, b.AuditService))
			r.Mount("/roles", tenant.NewHTTPRoleHandler(log, b.RoleService, b.UserResourceMappingService))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireOperator(api))

		r.Mount("/tenants", tenant.NewHTTPTenantHandler(log, b.TenantService))
		r.Mount("/users", tenant.NewHTTPUserHandler(log, b.UserService, b.PasswordsService))
		r.Mount("/authorizations", authorization.NewHTTPAuthHandler(log, b.AuthorizationService))
		r.Mount("/audit", audit.NewHTTPAuditAdminHandler(log, b.AuditService))
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Mount("/models", aimodel.NewHTTPModelHandler(log, b.AIModelService, b.ScoringService))
		})
	})

	h.Router = r
	return h
}

// requireTenantAccess refuses requests whose authorizer holds no read
// permission inside the tenant named by the path.
func requireTenantAccess(api *kithttp.API) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, err := platform.IDFromString(chi.URLParam(r, "tenantID"))
			if err != nil {
				api.Err(w, r, err)
				return
			}

			p, err := castiel.NewPermission(castiel.ReadAction, castiel.ShardsResourceType, *tenantID)
			if err != nil {
				api.Err(w, r, err)
				return
			}
			if err := authorizer.IsAllowed(r.Context(), *p); err != nil {
				api.Err(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requireOperator refuses requests whose authorizer lacks global write on
// the tenants resource.
func requireOperator(api *kithttp.API) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := castiel.NewGlobalPermission(castiel.WriteAction, castiel.TenantsResourceType)
			if err != nil {
				api.Err(w, r, err)
				return
			}
			if err := authorizer.IsAllowed(r.Context(), *p); err != nil {
				api.Err(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func meHandler(api *kithttp.API, userService castiel.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := icontext.GetUserID(r.Context())
		if err != nil {
			api.Err(w, r, err)
			return
		}

		u, err := userService.FindUserByID(r.Context(), userID)
		if err != nil {
			api.Err(w, r, err)
			return
		}

		api.Respond(w, r, http.StatusOK, u)
	}
}
