package tenant

import (
	"net/http"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// UserHandler represents an HTTP API handler for users, mounted on the
// operator surface, plus the /me handler for the tenant surface.
type UserHandler struct {
	chi.Router
	api             *kithttp.API
	log             *zap.Logger
	userService     castiel.UserService
	passwordService castiel.PasswordsService
}

const prefixUsers = "/users"

// NewHTTPUserHandler constructs a new http server.
func NewHTTPUserHandler(log *zap.Logger, userService castiel.UserService, passwordService castiel.PasswordsService) *UserHandler {
	svr := &UserHandler{
		api:             kithttp.NewAPI(kithttp.WithLog(log)),
		log:             log,
		userService:     userService,
		passwordService: passwordService,
	}

	r := chi.NewRouter()
	r.Route("/", func(r chi.Router) {
		r.Post("/", svr.handlePostUser)
		r.Get("/", svr.handleGetUsers)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", svr.handleGetUser)
			r.Patch("/", svr.handlePatchUser)
			r.Delete("/", svr.handleDeleteUser)
			r.Post("/password", svr.handlePostUserPassword)
		})
	})

	svr.Router = r
	return svr
}

// Prefix returns the mount path of the handler.
func (h *UserHandler) Prefix() string {
	return prefixUsers
}

// MeHandler returns the handler serving the authenticated caller's user
// record.
func (h *UserHandler) MeHandler() http.HandlerFunc {
	return h.handleGetMe
}

type userResponse struct {
	castiel.User
}

type usersResponse struct {
	Links *castiel.PagingLinks `json:"links"`
	Users []userResponse       `json:"users"`
}

func newUsersResponse(opts castiel.FindOptions, f castiel.UserFilter, us []*castiel.User) *usersResponse {
	res := &usersResponse{
		Links: castiel.NewPagingLinks(prefixUsers, opts, f, len(us)),
		Users: make([]userResponse, 0, len(us)),
	}
	for _, u := range us {
		res.Users = append(res.Users, userResponse{User: *u})
	}
	return res
}

func (h *UserHandler) handlePostUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		castiel.User
		Password string `json:"password,omitempty"`
	}
	if err := h.api.DecodeJSON(r.Body, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.userService.CreateUser(r.Context(), &req.User); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if req.Password != "" {
		if err := h.passwordService.SetPassword(r.Context(), req.User.ID, req.Password); err != nil {
			h.api.Err(w, r, err)
			return
		}
	}

	h.api.Respond(w, r, http.StatusCreated, userResponse{User: req.User})
}

func (h *UserHandler) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	var filter castiel.UserFilter
	qp := r.URL.Query()
	if name := qp.Get("name"); name != "" {
		filter.Name = &name
	}
	if rawID := qp.Get("id"); rawID != "" {
		id, err := platform.IDFromString(rawID)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		filter.ID = id
	}

	opts, err := castiel.DecodeFindOptions(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	us, _, err := h.userService.FindUsers(r.Context(), filter, *opts)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, newUsersResponse(*opts, filter, us))
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	u, err := h.userService.FindUserByID(r.Context(), *id)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, userResponse{User: *u})
}

func (h *UserHandler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := icontext.GetUserID(r.Context())
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	u, err := h.userService.FindUserByID(r.Context(), userID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, userResponse{User: *u})
}

func (h *UserHandler) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var upd castiel.UserUpdate
	if err := h.api.DecodeJSON(r.Body, &upd); err != nil {
		h.api.Err(w, r, err)
		return
	}

	u, err := h.userService.UpdateUser(r.Context(), *id, upd)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, userResponse{User: *u})
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), *id); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *UserHandler) handlePostUserPassword(w http.ResponseWriter, r *http.Request) {
	id, err := platform.IDFromString(chi.URLParam(r, "id"))
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := h.api.DecodeJSON(r.Body, &body); err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.passwordService.SetPassword(r.Context(), *id, body.Password); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}
