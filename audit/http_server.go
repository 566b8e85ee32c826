package audit

import (
	"net/http"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// AuditHandler represents an HTTP API handler for reading one tenant's
// audit log, mounted under the tenant surface.
type AuditHandler struct {
	chi.Router
	api          *kithttp.API
	log          *zap.Logger
	auditService castiel.AuditService
}

// NewHTTPAuditHandler constructs a new http server.
func NewHTTPAuditHandler(log *zap.Logger, auditService castiel.AuditService) *AuditHandler {
	svr := &AuditHandler{
		api:          kithttp.NewAPI(kithttp.WithLog(log)),
		log:          log,
		auditService: auditService,
	}

	r := chi.NewRouter()
	r.Get("/", svr.handleGetAuditEvents)

	svr.Router = r
	return svr
}

type auditEventsResponse struct {
	Links  *castiel.PagingLinks     `json:"links"`
	Total  int                      `json:"total"`
	Events []*castiel.AuditLogEntry `json:"events"`
}

func (h *AuditHandler) handleGetAuditEvents(w http.ResponseWriter, r *http.Request) {
	tenantID, err := platform.IDFromString(chi.URLParam(r, "tenantID"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.AuditFilter{TenantID: *tenantID}
	qp := r.URL.Query()
	if raw := qp.Get("actor"); raw != "" {
		actor, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Actor = actor
	}
	if raw := qp.Get("resourceType"); raw != "" {
		rt := castiel.ResourceType(raw)
		if err := rt.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.ResourceType = &rt
	}
	if raw := qp.Get("resourceID"); raw != "" {
		resourceID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.ResourceID = resourceID
	}
	if action := qp.Get("action"); action != "" {
		filter.Action = &action
	}
	for name, dst := range map[string]**time.Time{
		"after":  &filter.After,
		"before": &filter.Before,
	} {
		if raw := qp.Get(name); raw != "" {
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				h.api.Err(w, r, &errors.Error{
					Code: errors.EInvalid,
					Msg:  "invalid " + name + " time, expected RFC3339",
					Err:  err,
				})
				return
			}
			*dst = &t
		}
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	events, total, err := h.auditService.FindAuditEvents(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, &auditEventsResponse{
		Links:  castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(events)),
		Total:  total,
		Events: events,
	})
}
