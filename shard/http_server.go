package shard

import (
	"net/http"
	"strconv"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// ShardHandler represents an HTTP API handler for the shards of one tenant,
// mounted under the tenant surface.
type ShardHandler struct {
	chi.Router
	api            *kithttp.API
	log            *zap.Logger
	shardService   interface {
		castiel.ShardService
		castiel.ShardLinkingService
	}
	contextService castiel.ContextAssemblyService
}

// NewHTTPShardHandler constructs a new http server.
func NewHTTPShardHandler(log *zap.Logger, shardService interface {
	castiel.ShardService
	castiel.ShardLinkingService
}, contextService castiel.ContextAssemblyService) *ShardHandler {
	svr := &ShardHandler{
		api:            kithttp.NewAPI(kithttp.WithLog(log)),
		log:            log,
		shardService:   shardService,
		contextService: contextService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostShard)
		r.Get("/", svr.handleGetShards)

		r.Route("/bulk", func(r chi.Router) {
			r.Post("/", svr.handleBulkCreate)
			r.Patch("/", svr.handleBulkUpdate)
			r.Post("/delete", svr.handleBulkDelete)
		})

		r.Route("/{shardID}", func(r chi.Router) {
			r.Get("/", svr.handleGetShard)
			r.Patch("/", svr.handlePatchShard)
			r.Delete("/", svr.handleDeleteShard)
			r.Post("/restore", svr.handleRestoreShard)
			r.Delete("/hard", svr.handleHardDeleteShard)

			r.Get("/acl", svr.handleGetACL)
			r.Put("/acl", svr.handlePutACL)

			r.Post("/links", svr.handlePostLink)
			r.Delete("/links", svr.handleDeleteLink)
			r.Get("/related", svr.handleGetRelated)

			r.Post("/external-links", svr.handlePostExternalLink)
			r.Delete("/external-links", svr.handleDeleteExternalLink)

			r.Get("/context", svr.handleGetContext)
		})
	})

	svr.Router = r
	return svr
}

func tenantIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "tenantID"))
}

func shardIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "shardID"))
}

type shardResponse struct {
	castiel.Shard
}

func newShardResponse(sh *castiel.Shard) shardResponse {
	return shardResponse{Shard: *sh}
}

type shardsResponse struct {
	Links  *castiel.PagingLinks `json:"links"`
	Total  int                  `json:"total"`
	Shards []shardResponse      `json:"shards"`
}

type bulkRequest struct {
	OnError castiel.OnErrorPolicy     `json:"onError,omitempty"`
	Shards  []*castiel.Shard          `json:"shards,omitempty"`
	Updates []castiel.BulkShardUpdate `json:"updates,omitempty"`
	IDs     []platform.ID             `json:"ids,omitempty"`
}

type bulkResponse struct {
	Outcomes []castiel.BulkOutcome `json:"outcomes"`
	Error    string                `json:"error,omitempty"`
}

func (h *ShardHandler) handlePostShard(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var sh castiel.Shard
	if err := h.api.DecodeJSON(r.Body, &sh); err != nil {
		h.api.Err(w, r, err)
		return
	}
	sh.TenantID = *tenantID

	if err := h.shardService.CreateShard(r.Context(), &sh); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.log.Debug("shard created", zap.String("shard", sh.Name))

	h.api.Respond(w, r, http.StatusCreated, newShardResponse(&sh))
}

func (h *ShardHandler) handleGetShards(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.ShardFilter{TenantID: *tenantID}
	qp := r.URL.Query()
	if raw := qp.Get("typeID"); raw != "" {
		typeID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.TypeID = typeID
	}
	if name := qp.Get("name"); name != "" {
		filter.NamePrefix = &name
	}
	if raw := qp.Get("status"); raw != "" {
		status := castiel.ShardStatus(raw)
		if err := status.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Status = &status
	}
	if raw := qp.Get("includeDeleted"); raw != "" {
		includeDeleted, err := strconv.ParseBool(raw)
		if err != nil {
			h.api.Err(w, r, &errors.Error{
				Code: errors.EInvalid,
				Msg:  "invalid includeDeleted value",
				Err:  err,
			})
			return
		}
		filter.IncludeDeleted = includeDeleted
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	shs, total, err := h.shardService.FindShards(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &shardsResponse{
		Links:  castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(shs)),
		Total:  total,
		Shards: make([]shardResponse, 0, len(shs)),
	}
	for _, sh := range shs {
		res.Shards = append(res.Shards, newShardResponse(sh))
	}

	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *ShardHandler) handleGetShard(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	sh, err := h.shardService.FindShardByID(r.Context(), *tenantID, *shardID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newShardResponse(sh))
}

func (h *ShardHandler) handlePatchShard(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.ShardUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	sh, err := h.shardService.UpdateShard(r.Context(), *tenantID, *shardID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newShardResponse(sh))
}

func (h *ShardHandler) handleDeleteShard(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.shardService.DeleteShard(r.Context(), *tenantID, *shardID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *ShardHandler) handleRestoreShard(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.shardService.RestoreShard(r.Context(), *tenantID, *shardID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	sh, err := h.shardService.FindShardByID(r.Context(), *tenantID, *shardID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newShardResponse(sh))
}

func (h *ShardHandler) handleHardDeleteShard(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.shardService.HardDeleteShard(r.Context(), *tenantID, *shardID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *ShardHandler) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req bulkRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if len(req.Shards) == 0 {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "no shards to create",
		})
		return
	}

	outcomes, err := h.shardService.BulkCreateShards(r.Context(), *tenantID, req.Shards, req.OnError)
	h.respondBulk(w, r, outcomes, err)
}

func (h *ShardHandler) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req bulkRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if len(req.Updates) == 0 {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "no updates to apply",
		})
		return
	}

	outcomes, err := h.shardService.BulkUpdateShards(r.Context(), *tenantID, req.Updates, req.OnError)
	h.respondBulk(w, r, outcomes, err)
}

func (h *ShardHandler) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req bulkRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "no ids to delete",
		})
		return
	}

	outcomes, err := h.shardService.BulkDeleteShards(r.Context(), *tenantID, req.IDs, req.OnError)
	h.respondBulk(w, r, outcomes, err)
}

// respondBulk always reports per-item outcomes. A partial failure is a 207
// with the aggregate message inline; an invalid request is a plain error.
func (h *ShardHandler) respondBulk(w http.ResponseWriter, r *http.Request, outcomes []castiel.BulkOutcome, err error) {
	if err != nil && outcomes == nil {
		h.api.Err(w, r, err)
		return
	}

	res := bulkResponse{Outcomes: outcomes}
	status := http.StatusOK
	if err != nil {
		res.Error = errors.ErrorMessage(err)
		status = http.StatusMultiStatus
	}
	h.api.Respond(w, r, status, res)
}

func (h *ShardHandler) handleGetACL(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	acl, err := h.shardService.GetShardACL(r.Context(), *tenantID, *shardID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, map[string][]castiel.ACLEntry{"acl": acl})
}

func (h *ShardHandler) handlePutACL(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req struct {
		ACL []castiel.ACLEntry `json:"acl"`
	}
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.shardService.PutShardACL(r.Context(), *tenantID, *shardID, req.ACL); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, map[string][]castiel.ACLEntry{"acl": req.ACL})
}

type linkRequest struct {
	ChildID  platform.ID       `json:"childID"`
	Type     string            `json:"type"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *ShardHandler) handlePostLink(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req linkRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	sh, err := h.shardService.LinkShards(r.Context(), *tenantID, *shardID, req.ChildID, req.Type, req.Metadata)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newShardResponse(sh))
}

func (h *ShardHandler) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	qp := r.URL.Query()
	childID, err := platform.IDFromString(qp.Get("childID"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	relType := qp.Get("type")
	if relType == "" {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "relationship type is required",
		})
		return
	}

	sh, err := h.shardService.UnlinkShards(r.Context(), *tenantID, *shardID, *childID, relType)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newShardResponse(sh))
}

func (h *ShardHandler) handleGetRelated(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	related, err := h.shardService.FindRelated(r.Context(), *tenantID, *shardID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, map[string][]castiel.RelatedShard{"related": related})
}

func (h *ShardHandler) handlePostExternalLink(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var rel castiel.ExternalRelationship
	if err := h.api.DecodeJSON(r.Body, &rel); err != nil {
		h.api.Err(w, r, err)
		return
	}

	sh, err := h.shardService.LinkExternal(r.Context(), *tenantID, *shardID, rel)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newShardResponse(sh))
}

func (h *ShardHandler) handleDeleteExternalLink(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	qp := r.URL.Query()
	system, externalID := qp.Get("system"), qp.Get("externalID")
	if system == "" || externalID == "" {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "system and externalID are required",
		})
		return
	}

	sh, err := h.shardService.UnlinkExternal(r.Context(), *tenantID, *shardID, system, externalID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newShardResponse(sh))
}

func (h *ShardHandler) handleGetContext(w http.ResponseWriter, r *http.Request) {
	tenantID, shardID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var opts castiel.ContextAssemblyOptions
	qp := r.URL.Query()
	for raw, dst := range map[string]*int{
		"maxRelated":   &opts.MaxRelated,
		"maxDocuments": &opts.MaxDocuments,
		"maxInsights":  &opts.MaxInsights,
	} {
		if v := qp.Get(raw); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				h.api.Err(w, r, &errors.Error{
					Code: errors.EInvalid,
					Msg:  "invalid " + raw + " value",
				})
				return
			}
			*dst = n
		}
	}
	if v := qp.Get("includeUnstructured"); v != "" {
		includeUnstructured, err := strconv.ParseBool(v)
		if err != nil {
			h.api.Err(w, r, &errors.Error{
				Code: errors.EInvalid,
				Msg:  "invalid includeUnstructured value",
				Err:  err,
			})
			return
		}
		opts.IncludeUnstructured = includeUnstructured
	}

	bundle, err := h.contextService.AssembleContext(r.Context(), *tenantID, *shardID, opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, bundle)
}

func (h *ShardHandler) scope(r *http.Request) (*platform.ID, *platform.ID, error) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		return nil, nil, err
	}
	shardID, err := shardIDFromRequest(r)
	if err != nil {
		return nil, nil, err
	}
	return tenantID, shardID, nil
}
