package insight

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// InsightHandler represents an HTTP API handler for the insights of one
// tenant, mounted under the tenant surface.
type InsightHandler struct {
	chi.Router
	api            *kithttp.API
	log            *zap.Logger
	insightService castiel.InsightService
}

// NewHTTPInsightHandler constructs a new http server.
func NewHTTPInsightHandler(log *zap.Logger, insightService castiel.InsightService) *InsightHandler {
	svr := &InsightHandler{
		api:            kithttp.NewAPI(kithttp.WithLog(log)),
		log:            log,
		insightService: insightService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostInsight)
		r.Get("/", svr.handleGetInsights)

		r.Route("/{insightID}", func(r chi.Router) {
			r.Get("/", svr.handleGetInsight)
			r.Patch("/", svr.handlePatchInsight)
			r.Delete("/", svr.handleDeleteInsight)

			r.Route("/comments", func(r chi.Router) {
				r.Post("/", svr.handlePostComment)
				r.Get("/", svr.handleGetComments)
				r.Delete("/{commentID}", svr.handleDeleteComment)
			})
		})
	})

	svr.Router = r
	return svr
}

func tenantIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "tenantID"))
}

func (h *InsightHandler) scope(r *http.Request) (*platform.ID, *platform.ID, error) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		return nil, nil, err
	}
	insightID, err := platform.IDFromString(chi.URLParam(r, "insightID"))
	if err != nil {
		return nil, nil, err
	}
	return tenantID, insightID, nil
}

type insightResponse struct {
	castiel.Insight
}

type insightsResponse struct {
	Links    *castiel.PagingLinks `json:"links"`
	Total    int                  `json:"total"`
	Insights []insightResponse    `json:"insights"`
}

func (h *InsightHandler) handlePostInsight(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var i castiel.Insight
	if err := h.api.DecodeJSON(r.Body, &i); err != nil {
		h.api.Err(w, r, err)
		return
	}
	i.TenantID = *tenantID

	if err := h.insightService.CreateInsight(r.Context(), &i); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, insightResponse{Insight: i})
}

func (h *InsightHandler) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.InsightFilter{TenantID: *tenantID}
	qp := r.URL.Query()
	if raw := qp.Get("shardID"); raw != "" {
		shardID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.ShardID = shardID
	}
	if raw := qp.Get("kind"); raw != "" {
		kind := castiel.InsightKind(raw)
		if err := kind.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Kind = &kind
	}
	if raw := qp.Get("status"); raw != "" {
		status := castiel.InsightStatus(raw)
		if err := status.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Status = &status
	}
	if raw := qp.Get("severity"); raw != "" {
		severity := castiel.InsightSeverity(raw)
		if err := severity.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Severity = &severity
	}
	if raw := qp.Get("assigneeID"); raw != "" {
		assigneeID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.AssigneeID = assigneeID
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	insights, total, err := h.insightService.FindInsights(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &insightsResponse{
		Links:    castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(insights)),
		Total:    total,
		Insights: make([]insightResponse, 0, len(insights)),
	}
	for _, i := range insights {
		res.Insights = append(res.Insights, insightResponse{Insight: *i})
	}

	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *InsightHandler) handleGetInsight(w http.ResponseWriter, r *http.Request) {
	tenantID, insightID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	i, err := h.insightService.FindInsightByID(r.Context(), *tenantID, *insightID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, insightResponse{Insight: *i})
}

func (h *InsightHandler) handlePatchInsight(w http.ResponseWriter, r *http.Request) {
	tenantID, insightID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.InsightUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	i, err := h.insightService.UpdateInsight(r.Context(), *tenantID, *insightID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, insightResponse{Insight: *i})
}

func (h *InsightHandler) handleDeleteInsight(w http.ResponseWriter, r *http.Request) {
	tenantID, insightID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.insightService.DeleteInsight(r.Context(), *tenantID, *insightID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

type commentsResponse struct {
	Comments []*castiel.InsightComment `json:"comments"`
}

func (h *InsightHandler) handlePostComment(w http.ResponseWriter, r *http.Request) {
	tenantID, insightID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var c castiel.InsightComment
	if err := h.api.DecodeJSON(r.Body, &c); err != nil {
		h.api.Err(w, r, err)
		return
	}
	c.InsightID = *insightID

	if err := h.insightService.AddInsightComment(r.Context(), *tenantID, &c); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, c)
}

func (h *InsightHandler) handleGetComments(w http.ResponseWriter, r *http.Request) {
	tenantID, insightID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	comments, err := h.insightService.FindInsightComments(r.Context(), *tenantID, *insightID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, commentsResponse{Comments: comments})
}

func (h *InsightHandler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	tenantID, insightID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	commentID, err := platform.IDFromString(chi.URLParam(r, "commentID"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.insightService.DeleteInsightComment(r.Context(), *tenantID, *insightID, *commentID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}
