package audit

import (
	"net/http"
	"time"

	"github.com/Edgame2/castiel"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// AdminHandler exposes audit retention controls on the operator surface.
type AdminHandler struct {
	chi.Router
	api          *kithttp.API
	log          *zap.Logger
	auditService castiel.AuditService
}

// NewHTTPAuditAdminHandler constructs a new http server.
func NewHTTPAuditAdminHandler(log *zap.Logger, auditService castiel.AuditService) *AdminHandler {
	svr := &AdminHandler{
		api:          kithttp.NewAPI(kithttp.WithLog(log)),
		log:          log,
		auditService: auditService,
	}

	r := chi.NewRouter()
	r.Post("/purge", svr.handlePurge)

	svr.Router = r
	return svr
}

type purgeRequest struct {
	Before time.Time `json:"before"`
}

type purgeResponse struct {
	Purged int64 `json:"purged"`
}

func (h *AdminHandler) handlePurge(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	n, err := h.auditService.PurgeAuditEvents(r.Context(), req.Before)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, purgeResponse{Purged: n})
}
