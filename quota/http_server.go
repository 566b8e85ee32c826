package quota

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuotaHandler represents an HTTP API handler for the quotas of one tenant,
// mounted under the tenant surface.
type QuotaHandler struct {
	chi.Router
	api          *kithttp.API
	log          *zap.Logger
	quotaService castiel.QuotaService
}

// NewHTTPQuotaHandler constructs a new http server.
func NewHTTPQuotaHandler(log *zap.Logger, quotaService castiel.QuotaService) *QuotaHandler {
	svr := &QuotaHandler{
		api:          kithttp.NewAPI(kithttp.WithLog(log)),
		log:          log,
		quotaService: quotaService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostQuota)
		r.Get("/", svr.handleGetQuotas)

		r.Route("/{quotaID}", func(r chi.Router) {
			r.Get("/", svr.handleGetQuota)
			r.Patch("/", svr.handlePatchQuota)
			r.Delete("/", svr.handleDeleteQuota)

			r.Put("/attainment", svr.handlePutAttainment)
			r.Get("/snapshots", svr.handleGetSnapshots)
			r.Get("/rollup", svr.handleGetRollup)
			r.Get("/forecast", svr.handleGetForecast)
		})
	})

	svr.Router = r
	return svr
}

func tenantIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "tenantID"))
}

func (h *QuotaHandler) scope(r *http.Request) (*platform.ID, *platform.ID, error) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		return nil, nil, err
	}
	quotaID, err := platform.IDFromString(chi.URLParam(r, "quotaID"))
	if err != nil {
		return nil, nil, err
	}
	return tenantID, quotaID, nil
}

type quotaResponse struct {
	castiel.Quota
}

type quotasResponse struct {
	Links  *castiel.PagingLinks `json:"links"`
	Total  int                  `json:"total"`
	Quotas []quotaResponse      `json:"quotas"`
}

func (h *QuotaHandler) handlePostQuota(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var q castiel.Quota
	if err := h.api.DecodeJSON(r.Body, &q); err != nil {
		h.api.Err(w, r, err)
		return
	}
	q.TenantID = *tenantID

	if err := h.quotaService.CreateQuota(r.Context(), &q); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, quotaResponse{Quota: q})
}

func (h *QuotaHandler) handleGetQuotas(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.QuotaFilter{TenantID: *tenantID}
	qp := r.URL.Query()
	if raw := qp.Get("ownerID"); raw != "" {
		ownerID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.OwnerID = ownerID
	}
	if raw := qp.Get("parentID"); raw != "" {
		parentID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.ParentID = parentID
	}
	if raw := qp.Get("rootsOnly"); raw != "" {
		rootsOnly, err := strconv.ParseBool(raw)
		if err != nil {
			h.api.Err(w, r, &errors.Error{
				Code: errors.EInvalid,
				Msg:  "invalid rootsOnly value",
				Err:  err,
			})
			return
		}
		filter.RootsOnly = rootsOnly
	}
	if raw := qp.Get("periodAfter"); raw != "" {
		after, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.api.Err(w, r, &errors.Error{
				Code: errors.EInvalid,
				Msg:  "invalid periodAfter value",
				Err:  err,
			})
			return
		}
		filter.PeriodAfter = &after
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	quotas, total, err := h.quotaService.FindQuotas(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &quotasResponse{
		Links:  castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(quotas)),
		Total:  total,
		Quotas: make([]quotaResponse, 0, len(quotas)),
	}
	for _, q := range quotas {
		res.Quotas = append(res.Quotas, quotaResponse{Quota: *q})
	}

	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *QuotaHandler) handleGetQuota(w http.ResponseWriter, r *http.Request) {
	tenantID, quotaID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	q, err := h.quotaService.FindQuotaByID(r.Context(), *tenantID, *quotaID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, quotaResponse{Quota: *q})
}

func (h *QuotaHandler) handlePatchQuota(w http.ResponseWriter, r *http.Request) {
	tenantID, quotaID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.QuotaUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	q, err := h.quotaService.UpdateQuota(r.Context(), *tenantID, *quotaID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, quotaResponse{Quota: *q})
}

func (h *QuotaHandler) handleDeleteQuota(w http.ResponseWriter, r *http.Request) {
	tenantID, quotaID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.quotaService.DeleteQuota(r.Context(), *tenantID, *quotaID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

type attainmentRequest struct {
	Attained decimal.Decimal `json:"attained"`
}

func (h *QuotaHandler) handlePutAttainment(w http.ResponseWriter, r *http.Request) {
	tenantID, quotaID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req attainmentRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	q, err := h.quotaService.SetAttainment(r.Context(), *tenantID, *quotaID, req.Attained)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, quotaResponse{Quota: *q})
}

type snapshotsResponse struct {
	Snapshots []*castiel.QuotaSnapshot `json:"snapshots"`
}

func (h *QuotaHandler) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	tenantID, quotaID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	snaps, err := h.quotaService.FindQuotaSnapshots(r.Context(), *tenantID, *quotaID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, snapshotsResponse{Snapshots: snaps})
}

func (h *QuotaHandler) handleGetRollup(w http.ResponseWriter, r *http.Request) {
	tenantID, quotaID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	rollup, err := h.quotaService.RollupQuota(r.Context(), *tenantID, *quotaID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, rollup)
}

func (h *QuotaHandler) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	tenantID, quotaID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	periods := 1
	if raw := r.URL.Query().Get("periods"); raw != "" {
		periods, err = strconv.Atoi(raw)
		if err != nil {
			h.api.Err(w, r, &errors.Error{
				Code: errors.EInvalid,
				Msg:  "invalid periods value",
				Err:  err,
			})
			return
		}
	}

	forecast, err := h.quotaService.ForecastQuota(r.Context(), *tenantID, *quotaID, periods)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, forecast)
}
