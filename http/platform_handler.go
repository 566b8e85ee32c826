package http

import (
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/Edgame2/castiel/kit/prom"
	"github.com/go-chi/chi"
)

// PlatformHandler ties the API surface to the platform endpoints. Health,
// readiness, metrics and pprof bypass authentication; everything else goes
// through the authentication handler.
type PlatformHandler struct {
	router chi.Router
}

// NewPlatformHandler builds the process-wide http handler.
func NewPlatformHandler(b *APIBackend, registry *prom.Registry, jwtSigningKey []byte) *PlatformHandler {
	api := NewAPIHandler(b)

	auth := NewAuthenticationHandler(b.Logger, b.AuthorizationService, b.UserService)
	auth.Handler = api
	auth.JWTSigningKey = jwtSigningKey

	r := chi.NewRouter()
	r.Get("/health", HealthHandler)
	r.Get("/ready", ReadyHandler)
	if registry != nil {
		r.Handle("/metrics", registry.HTTPHandler())
	}
	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
			pprof.Handler(chi.URLParam(req, "name")).ServeHTTP(w, req)
		})
	})
	r.Mount("/", auth)

	return &PlatformHandler{router: r}
}

// ServeHTTP delegates a request to the appropriate subhandler.
func (h *PlatformHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// HealthHandler reports process liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"name": "castiel", "status": "pass"}`)
}

// ReadyHandler is a default readiness handler. The default behavior is
// always ready.
func ReadyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status": "ready"}`)
}
