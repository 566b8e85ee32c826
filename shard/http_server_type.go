package shard

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// ShardTypeHandler represents an HTTP API handler for the shard types of
// one tenant, mounted under the tenant surface.
type ShardTypeHandler struct {
	chi.Router
	api         *kithttp.API
	log         *zap.Logger
	typeService castiel.ShardTypeService
}

// NewHTTPShardTypeHandler constructs a new http server.
func NewHTTPShardTypeHandler(log *zap.Logger, typeService castiel.ShardTypeService) *ShardTypeHandler {
	svr := &ShardTypeHandler{
		api:         kithttp.NewAPI(kithttp.WithLog(log)),
		log:         log,
		typeService: typeService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostShardType)
		r.Get("/", svr.handleGetShardTypes)

		r.Route("/{typeID}", func(r chi.Router) {
			r.Get("/", svr.handleGetShardType)
			r.Patch("/", svr.handlePatchShardType)
			r.Delete("/", svr.handleDeleteShardType)
		})
	})

	svr.Router = r
	return svr
}

type shardTypeResponse struct {
	castiel.ShardType
}

type shardTypesResponse struct {
	Links      *castiel.PagingLinks `json:"links"`
	ShardTypes []shardTypeResponse  `json:"shardTypes"`
}

func (h *ShardTypeHandler) handlePostShardType(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var t castiel.ShardType
	if err := h.api.DecodeJSON(r.Body, &t); err != nil {
		h.api.Err(w, r, err)
		return
	}
	t.TenantID = *tenantID

	if err := h.typeService.CreateShardType(r.Context(), &t); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.log.Debug("shard type created", zap.String("type", t.Name))

	h.api.Respond(w, r, http.StatusCreated, shardTypeResponse{ShardType: t})
}

func (h *ShardTypeHandler) handleGetShardTypes(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.ShardTypeFilter{TenantID: *tenantID}
	if name := r.URL.Query().Get("name"); name != "" {
		filter.Name = &name
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	ts, _, err := h.typeService.FindShardTypes(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &shardTypesResponse{
		Links:      castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(ts)),
		ShardTypes: make([]shardTypeResponse, 0, len(ts)),
	}
	for _, t := range ts {
		res.ShardTypes = append(res.ShardTypes, shardTypeResponse{ShardType: *t})
	}

	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *ShardTypeHandler) handleGetShardType(w http.ResponseWriter, r *http.Request) {
	tenantID, typeID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	t, err := h.typeService.FindShardTypeByID(r.Context(), *tenantID, *typeID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, shardTypeResponse{ShardType: *t})
}

func (h *ShardTypeHandler) handlePatchShardType(w http.ResponseWriter, r *http.Request) {
	tenantID, typeID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.ShardTypeUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	t, err := h.typeService.UpdateShardType(r.Context(), *tenantID, *typeID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, shardTypeResponse{ShardType: *t})
}

func (h *ShardTypeHandler) handleDeleteShardType(w http.ResponseWriter, r *http.Request) {
	tenantID, typeID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.typeService.DeleteShardType(r.Context(), *tenantID, *typeID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *ShardTypeHandler) scope(r *http.Request) (*platform.ID, *platform.ID, error) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		return nil, nil, err
	}
	typeID, err := platform.IDFromString(chi.URLParam(r, "typeID"))
	if err != nil {
		return nil, nil, err
	}
	return tenantID, typeID, nil
}
