package secret

import (
	"fmt"
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// SecretHandler represents an HTTP API handler for the secrets of one
// tenant, mounted under the tenant surface. Secret values are write-only
// through this surface; reads return keys.
type SecretHandler struct {
	chi.Router
	api           *kithttp.API
	log           *zap.Logger
	secretService castiel.SecretService
}

// NewHTTPSecretHandler constructs a new http server.
func NewHTTPSecretHandler(log *zap.Logger, secretService castiel.SecretService) *SecretHandler {
	svr := &SecretHandler{
		api:           kithttp.NewAPI(kithttp.WithLog(log)),
		log:           log,
		secretService: secretService,
	}

	r := chi.NewRouter()
	r.Get("/", svr.handleGetSecretKeys)
	r.Patch("/", svr.handlePatchSecrets)
	r.Put("/{secretKey}", svr.handlePutSecret)
	r.Delete("/{secretKey}", svr.handleDeleteSecret)

	svr.Router = r
	return svr
}

func tenantIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "tenantID"))
}

type secretsResponse struct {
	Links   map[string]string `json:"links"`
	Secrets []string          `json:"secrets"`
}

func newSecretsResponse(tenantID platform.ID, ks []string) *secretsResponse {
	if ks == nil {
		ks = []string{}
	}
	return &secretsResponse{
		Links: map[string]string{
			"tenant": fmt.Sprintf("/api/v1/tenants/%s", tenantID),
			"self":   fmt.Sprintf("/api/v1/tenants/%s/secrets", tenantID),
		},
		Secrets: ks,
	}
}

func (h *SecretHandler) handleGetSecretKeys(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	ks, err := h.secretService.GetSecretKeys(r.Context(), *tenantID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newSecretsResponse(*tenantID, ks))
}

func (h *SecretHandler) handlePatchSecrets(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var secrets map[string]string
	if err := h.api.DecodeJSON(r.Body, &secrets); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.secretService.PatchSecrets(r.Context(), *tenantID, secrets); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

type secretValueBody struct {
	Value string `json:"value"`
}

func (h *SecretHandler) handlePutSecret(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var body secretValueBody
	if err := h.api.DecodeJSON(r.Body, &body); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.secretService.PutSecret(r.Context(), *tenantID, chi.URLParam(r, "secretKey"), body.Value); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *SecretHandler) handleDeleteSecret(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.secretService.DeleteSecret(r.Context(), *tenantID, chi.URLParam(r, "secretKey")); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}
