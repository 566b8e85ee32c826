package tenant

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// TenantHandler represents an HTTP API handler for tenants, mounted on the
// operator surface.
type TenantHandler struct {
	chi.Router
	api           *kithttp.API
	log           *zap.Logger
	tenantService castiel.TenantService
}

const prefixTenants = "/tenants"

// NewHTTPTenantHandler constructs a new http server.
func NewHTTPTenantHandler(log *zap.Logger, tenantService castiel.TenantService) *TenantHandler {
	svr := &TenantHandler{
		api:           kithttp.NewAPI(kithttp.WithLog(log)),
		log:           log,
		tenantService: tenantService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostTenant)
		r.Get("/", svr.handleGetTenants)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", svr.handleGetTenant)
			r.Patch("/", svr.handlePatchTenant)
			r.Delete("/", svr.handleDeleteTenant)
		})
	})

	svr.Router = r
	return svr
}

// Prefix returns the mount path of the handler.
func (h *TenantHandler) Prefix() string {
	return prefixTenants
}

type tenantResponse struct {
	castiel.Tenant
}

func newTenantResponse(t *castiel.Tenant) tenantResponse {
	return tenantResponse{Tenant: *t}
}

type tenantsResponse struct {
	Links   *castiel.PagingLinks `json:"links"`
	Tenants []tenantResponse     `json:"tenants"`
}

func newTenantsResponse(opts castiel.FindOptions, f castiel.TenantFilter, ts []*castiel.Tenant) *tenantsResponse {
	res := &tenantsResponse{
		Links:   castiel.NewPagingLinks(prefixTenants, opts, f, len(ts)),
		Tenants: make([]tenantResponse, 0, len(ts)),
	}
	for _, t := range ts {
		res.Tenants = append(res.Tenants, newTenantResponse(t))
	}
	return res
}

func (h *TenantHandler) handlePostTenant(w http.ResponseWriter, r *http.Request) {
	var t castiel.Tenant
	if err := h.api.DecodeJSON(r.Body, &t); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.tenantService.CreateTenant(r.Context(), &t); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.log.Debug("tenant created", zap.String("tenant", t.Name))

	h.api.Respond(w, r, http.StatusCreated, newTenantResponse(&t))
}

func (h *TenantHandler) handleGetTenants(w http.ResponseWriter, r *http.Request) {
	var filter castiel.TenantFilter
	qp := r.URL.Query()
	if name := qp.Get("name"); name != "" {
		filter.Name = &name
	}
	if rawID := qp.Get("id"); rawID != "" {
		id, err := platform.IDFromString(rawID)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.ID = id
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	ts, _, err := h.tenantService.FindTenants(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newTenantsResponse(*opts, filter, ts))
}

func (h *TenantHandler) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	t, err := h.tenantService.FindTenantByID(r.Context(), *id)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newTenantResponse(t))
}

func (h *TenantHandler) handlePatchTenant(w http.ResponseWriter, r *http.Request) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.TenantUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if upd.Name == nil && upd.Description == nil && upd.Status == nil {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "no fields to update",
		})
		return
	}

	t, err := h.tenantService.UpdateTenant(r.Context(), *id, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newTenantResponse(t))
}

func (h *TenantHandler) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.tenantService.DeleteTenant(r.Context(), *id); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}
