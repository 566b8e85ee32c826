package authorization

import (
	"net/http"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// AuthHandler represents an HTTP API handler for authorizations, mounted
// on the admin surface. Token values appear only in the create response.
type AuthHandler struct {
	chi.Router
	api         *kithttp.API
	log         *zap.Logger
	authService castiel.AuthorizationService
}

// NewHTTPAuthHandler constructs a new http server.
func NewHTTPAuthHandler(log *zap.Logger, authService castiel.AuthorizationService) *AuthHandler {
	svr := &AuthHandler{
		api:         kithttp.NewAPI(kithttp.WithLog(log)),
		log:         log,
		authService: authService,
	}

	r := chi.NewRouter()
	r.Post("/", svr.handlePostAuthorization)
	r.Get("/", svr.handleGetAuthorizations)
	r.Route("/{authID}", func(r chi.Router) {
		r.Get("/", svr.handleGetAuthorization)
		r.Patch("/", svr.handlePatchAuthorization)
		r.Delete("/", svr.handleDeleteAuthorization)
	})

	svr.Router = r
	return svr
}

func authIDFromRequest(r *http.Request) (*platform.ID, error) {
	return platform.IDFromString(chi.URLParam(r, "authID"))
}

type authResponse struct {
	castiel.Authorization
	// Token is suppressed on read responses.
	Token string `json:"token,omitempty"`
}

func newAuthResponse(a *castiel.Authorization, includeToken bool) authResponse {
	res := authResponse{Authorization: *a}
	if includeToken {
		res.Token = a.Token
	} else {
		res.Authorization.Token = ""
	}
	return res
}

type authsResponse struct {
	Links          *castiel.PagingLinks `json:"links"`
	Total          int                  `json:"total"`
	Authorizations []authResponse       `json:"authorizations"`
}

func (h *AuthHandler) handlePostAuthorization(w http.ResponseWriter, r *http.Request) {
	var a castiel.Authorization
	if err := h.api.DecodeJSON(r.Body, &a); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.authService.CreateAuthorization(r.Context(), &a); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, newAuthResponse(&a, true))
}

func (h *AuthHandler) handleGetAuthorizations(w http.ResponseWriter, r *http.Request) {
	filter := castiel.AuthorizationFilter{}
	qp := r.URL.Query()
	if raw := qp.Get("userID"); raw != "" {
		userID, err := platform.IDFromString(raw)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.UserID = userID
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	auths, total, err := h.authService.FindAuthorizations(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	res := &authsResponse{
		Links:          castiel.NewPagingLinks(r.URL.Path, *opts, filter, len(auths)),
		Total:          total,
		Authorizations: make([]authResponse, 0, len(auths)),
	}
	for _, a := range auths {
		res.Authorizations = append(res.Authorizations, newAuthResponse(a, false))
	}

	h.api.Respond(w, r, http.StatusOK, res)
}

func (h *AuthHandler) handleGetAuthorization(w http.ResponseWriter, r *http.Request) {
	authID, err := authIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	a, err := h.authService.FindAuthorizationByID(r.Context(), *authID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newAuthResponse(a, false))
}

func (h *AuthHandler) handlePatchAuthorization(w http.ResponseWriter, r *http.Request) {
	authID, err := authIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.AuthorizationUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	a, err := h.authService.UpdateAuthorization(r.Context(), *authID, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newAuthResponse(a, false))
}

func (h *AuthHandler) handleDeleteAuthorization(w http.ResponseWriter, r *http.Request) {
	authID, err := authIDFromRequest(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.authService.DeleteAuthorization(r.Context(), *authID); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}
