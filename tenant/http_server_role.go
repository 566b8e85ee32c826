package tenant

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// RoleHandler represents an HTTP API handler for the roles and memberships
// of one tenant, mounted under the tenant surface.
type RoleHandler struct {
	chi.Router
	api         *kithttp.API
	log         *zap.Logger
	roleService castiel.RoleService
	urmService  castiel.UserResourceMappingService
}

// NewHTTPRoleHandler constructs a new http server.
func NewHTTPRoleHandler(log *zap.Logger, roleService castiel.RoleService, urmService castiel.UserResourceMappingService) *RoleHandler {
	svr := &RoleHandler{
		api:         kithttp.NewAPI(kithttp.WithLog(log)),
		log:         log,
		roleService: roleService,
		urmService:  urmService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostRole)
		r.Get("/", svr.handleGetRoles)

		r.Route("/{roleID}", func(r chi.Router) {
			r.Get("/", svr.handleGetRole)
			r.Patch("/", svr.handlePatchRole)
			r.Delete("/", svr.handleDeleteRole)

			r.Route("/members", func(r chi.Router) {
				r.Get("/", svr.handleGetMembers)
				r.Post("/", svr.handlePostMember)
				r.Delete("/{userID}", svr.handleDeleteMember)
			})
		})
	})

	svr.Router = r
	return svr
}

func tenantIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "tenantID"))
}

type roleResponse struct {
	castiel.Role
}

type rolesResponse struct {
	Links *castiel.PagingLinks `json:"links"`
	Roles []roleResponse       `json:"roles"`
}

func (h *RoleHandler) handlePostRole(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var role castiel.Role
	if err := h.api.DecodeJSON(r.Body, &role); err != nil {
		h.api.Err(w, r, err)
		return
	}
	role.TenantID = *tenantID

	if err := h.roleService.CreateRole(r.Context(), &role); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, roleResponse{Role: role})
}

func (h *RoleHandler) handleGetRoles(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.RoleFilter{TenantID: tenantID}
	if name := r.URL.Query().Get("name"); name != "" {
		filter.Name = &name
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	roles, _, err := h.roleService.FindRoles(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &rolesResponse{
		Links: castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(roles)),
		Roles: make([]roleResponse, 0, len(roles)),
	}
	for _, role := range roles {
		res.Roles = append(res.Roles, roleResponse{Role: *role})
	}
	h.api.Respond(w, r, http.StatusOK, res)
}

// getRoleForTenant loads the role and checks it belongs to the tenant in
// the path. Cross-tenant reads report not found, never forbidden, so ids
// are not probeable.
func (h *RoleHandler) getRoleForTenant(r *http.Request) (*castiel.Role, error) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		return nil, err
	}
	roleID, err := platform.IDFromString(chi.URLParam(r, "roleID"))
	if err != nil {
		return nil, err
	}

	role, err := h.roleService.FindRoleByID(r.Context(), *roleID)
	if err != nil {
		return nil, err
	}
	if role.TenantID != *tenantID {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func (h *RoleHandler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.getRoleForTenant(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, roleResponse{Role: *role})
}

func (h *RoleHandler) handlePatchRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.getRoleForTenant(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.RoleUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	updated, err := h.roleService.UpdateRole(r.Context(), role.ID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, roleResponse{Role: *updated})
}

func (h *RoleHandler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.getRoleForTenant(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.roleService.DeleteRole(r.Context(), role.ID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

type memberResponse struct {
	UserID   platform.ID      `json:"userID"`
	UserType castiel.UserType `json:"userType"`
}

func (h *RoleHandler) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	role, err := h.getRoleForTenant(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	ms, _, err := h.urmService.FindUserResourceMappings(r.Context(), castiel.UserResourceMappingFilter{
		ResourceID:   role.ID,
		ResourceType: castiel.RolesMappableType,
	})
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := struct {
		Members []memberResponse `json:"members"`
	}{Members: make([]memberResponse, 0, len(ms))}
	for _, m := range ms {
		res.Members = append(res.Members, memberResponse{UserID: m.UserID, UserType: m.UserType})
	}
	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *RoleHandler) handlePostMember(w http.ResponseWriter, r *http.Request) {
	role, err := h.getRoleForTenant(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var body struct {
		UserID   platform.ID      `json:"userID"`
		UserType castiel.UserType `json:"userType"`
	}
	if err := h.api.DecodeJSON(r.Body, &body); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if body.UserType == "" {
		body.UserType = castiel.Member
	}

	m := &castiel.UserResourceMapping{
		UserID:       body.UserID,
		UserType:     body.UserType,
		ResourceType: castiel.RolesMappableType,
		ResourceID:   role.ID,
	}
	if err := h.urmService.CreateUserResourceMapping(r.Context(), m); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, memberResponse{UserID: m.UserID, UserType: m.UserType})
}

func (h *RoleHandler) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	role, err := h.getRoleForTenant(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	userID, err := platform.IDFromString(chi.URLParam(r, "userID"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.urmService.DeleteUserResourceMapping(r.Context(), role.ID, *userID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}
