package aimodel

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// ModelHandler represents an HTTP API handler for the model registry of
// one tenant, mounted under the tenant surface.
type ModelHandler struct {
	chi.Router
	api            *kithttp.API
	log            *zap.Logger
	modelService   castiel.AIModelService
	scoringService castiel.ScoringService
}

// NewHTTPModelHandler constructs a new http server.
func NewHTTPModelHandler(log *zap.Logger, modelService castiel.AIModelService, scoringService castiel.ScoringService) *ModelHandler {
	svr := &ModelHandler{
		api:            kithttp.NewAPI(kithttp.WithLog(log)),
		log:            log,
		modelService:   modelService,
		scoringService: scoringService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostModel)
		r.Get("/", svr.handleGetModels)

		r.Route("/{modelID}", func(r chi.Router) {
			r.Get("/", svr.handleGetModel)
			r.Patch("/", svr.handlePatchModel)
			r.Delete("/", svr.handleDeleteModel)

			r.Post("/deploy", svr.handleDeployModel)
			r.Post("/retire", svr.handleRetireModel)
			r.Post("/score", svr.handleScore)
		})
	})

	svr.Router = r
	return svr
}

func tenantIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "tenantID"))
}

func (h *ModelHandler) scope(r *http.Request) (*platform.ID, *platform.ID, error) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		return nil, nil, err
	}
	modelID, err := platform.IDFromString(chi.URLParam(r, "modelID"))
	if err != nil {
		return nil, nil, err
	}
	return tenantID, modelID, nil
}

type modelResponse struct {
	castiel.AIModel
}

type modelsResponse struct {
	Links  *castiel.PagingLinks `json:"links"`
	Total  int                  `json:"total"`
	Models []modelResponse      `json:"models"`
}

func (h *ModelHandler) handlePostModel(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var m castiel.AIModel
	if err := h.api.DecodeJSON(r.Body, &m); err != nil {
		h.api.Err(w, r, err)
		return
	}
	m.TenantID = *tenantID

	if err := h.modelService.CreateAIModel(r.Context(), &m); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, modelResponse{AIModel: m})
}

func (h *ModelHandler) handleGetModels(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.AIModelFilter{TenantID: *tenantID}
	qp := r.URL.Query()
	if raw := qp.Get("kind"); raw != "" {
		kind := castiel.AIModelKind(raw)
		if err := kind.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Kind = &kind
	}
	if raw := qp.Get("status"); raw != "" {
		status := castiel.AIModelStatus(raw)
		if err := status.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Status = &status
	}
	if name := qp.Get("name"); name != "" {
		filter.Name = &name
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	models, total, err := h.modelService.FindAIModels(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &modelsResponse{
		Links:  castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(models)),
		Total:  total,
		Models: make([]modelResponse, 0, len(models)),
	}
	for _, m := range models {
		res.Models = append(res.Models, modelResponse{AIModel: *m})
	}

	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *ModelHandler) handleGetModel(w http.ResponseWriter, r *http.Request) {
	tenantID, modelID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	m, err := h.modelService.FindAIModelByID(r.Context(), *tenantID, *modelID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, modelResponse{AIModel: *m})
}

func (h *ModelHandler) handlePatchModel(w http.ResponseWriter, r *http.Request) {
	tenantID, modelID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.AIModelUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	m, err := h.modelService.UpdateAIModel(r.Context(), *tenantID, *modelID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, modelResponse{AIModel: *m})
}

func (h *ModelHandler) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	tenantID, modelID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.modelService.DeleteAIModel(r.Context(), *tenantID, *modelID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *ModelHandler) handleDeployModel(w http.ResponseWriter, r *http.Request) {
	tenantID, modelID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	m, err := h.modelService.DeployAIModel(r.Context(), *tenantID, *modelID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, modelResponse{AIModel: *m})
}

func (h *ModelHandler) handleRetireModel(w http.ResponseWriter, r *http.Request) {
	tenantID, modelID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	m, err := h.modelService.RetireAIModel(r.Context(), *tenantID, *modelID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, modelResponse{AIModel: *m})
}

type scoreRequestBody struct {
	Input []castiel.ScoreInput `json:"input"`
}

type scoreResponseBody struct {
	Results []castiel.ScoreResult `json:"results"`
}

func (h *ModelHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	tenantID, modelID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req scoreRequestBody
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	results, err := h.scoringService.Score(r.Context(), *tenantID, *modelID, req.Input)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, scoreResponseBody{Results: results})
}
