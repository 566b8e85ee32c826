package document

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// DocumentHandler represents an HTTP API handler for the documents of one
// tenant, mounted under the tenant surface. Content travels base64-encoded
// inside the JSON envelope on writes and as raw bytes on reads.
type DocumentHandler struct {
	chi.Router
	api             *kithttp.API
	log             *zap.Logger
	documentService castiel.DocumentService
}

// NewHTTPDocumentHandler constructs a new http server.
func NewHTTPDocumentHandler(log *zap.Logger, documentService castiel.DocumentService) *DocumentHandler {
	svr := &DocumentHandler{
		api:             kithttp.NewAPI(kithttp.WithLog(log)),
		log:             log,
		documentService: documentService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostDocument)
		r.Get("/", svr.handleGetDocuments)

		r.Route("/{docID}", func(r chi.Router) {
			r.Get("/", svr.handleGetDocument)
			r.Patch("/", svr.handlePatchDocument)
			r.Delete("/", svr.handleDeleteDocument)
			r.Delete("/hard", svr.handleHardDeleteDocument)
			r.Get("/content", svr.handleGetContent)
		})
	})

	svr.Router = r
	return svr
}

func tenantIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "tenantID"))
}

func (h *DocumentHandler) scope(r *http.Request) (*platform.ID, *platform.ID, error) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		return nil, nil, err
	}
	docID, err := platform.IDFromString(chi.URLParam(r, "docID"))
	if err != nil {
		return nil, nil, err
	}
	return tenantID, docID, nil
}

type documentRequest struct {
	castiel.Document
	Content []byte `json:"content"`
}

type documentResponse struct {
	castiel.Document
}

type documentsResponse struct {
	Links     *castiel.PagingLinks `json:"links"`
	Documents []documentResponse   `json:"documents"`
}

func (h *DocumentHandler) handlePostDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var req documentRequest
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	d := req.Document
	d.TenantID = *tenantID

	if err := h.documentService.CreateDocument(r.Context(), &d, req.Content); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.log.Debug("document created", zap.String("document", d.Name))

	h.api.Respond(w, r, http.StatusCreated, documentResponse{Document: d})
}

func (h *DocumentHandler) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	filter := castiel.DocumentFilter{TenantID: *tenantID}
	qp := r.URL.Query()
	if raw := qp.Get("shardID"); raw != "" {
		shardID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.ShardID = shardID
	}
	if raw := qp.Get("status"); raw != "" {
		status := castiel.DocumentStatus(raw)
		if err := status.Valid(); err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.Status = &status
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	ds, _, err := h.documentService.FindDocuments(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &documentsResponse{
		Links:     castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(ds)),
		Documents: make([]documentResponse, 0, len(ds)),
	}
	for _, d := range ds {
		res.Documents = append(res.Documents, documentResponse{Document: *d})
	}

	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *DocumentHandler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, docID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	d, err := h.documentService.FindDocumentByID(r.Context(), *tenantID, *docID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, documentResponse{Document: *d})
}

func (h *DocumentHandler) handleGetContent(w http.ResponseWriter, r *http.Request) {
	tenantID, docID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	d, err := h.documentService.FindDocumentByID(r.Context(), *tenantID, *docID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	content, err := h.documentService.ReadDocumentContent(r.Context(), *tenantID, *docID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		h.log.Debug("failed to write document content", zap.Error(err))
	}
}

func (h *DocumentHandler) handlePatchDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, docID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.DocumentUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	d, err := h.documentService.UpdateDocument(r.Context(), *tenantID, *docID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, documentResponse{Document: *d})
}

func (h *DocumentHandler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, docID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.documentService.DeleteDocument(r.Context(), *tenantID, *docID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *DocumentHandler) handleHardDeleteDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, docID, err := h.scope(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.documentService.HardDeleteDocument(r.Context(), *tenantID, *docID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}
