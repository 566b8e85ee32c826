package http

import (
	"context"
	"net/http"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	kithttp "github.com/Edgame2/castiel/kit/transport/http"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthenticationHandler is a middleware for authenticating incoming requests.
// API tokens are resolved through the authorization service; signed operator
// JWTs are accepted when a signing key is configured.
type AuthenticationHandler struct {
	log *zap.Logger
	api *kithttp.API

	AuthorizationService castiel.AuthorizationService
	UserService          castiel.UserService

	// JWTSigningKey, when set, lets HMAC-signed operator tokens through
	// with full permissions.
	JWTSigningKey []byte

	noAuthRoutes map[string]map[string]bool

	Handler http.Handler
}

// NewAuthenticationHandler creates an authentication handler.
func NewAuthenticationHandler(log *zap.Logger, authService castiel.AuthorizationService, userService castiel.UserService) *AuthenticationHandler {
	return &AuthenticationHandler{
		log:                  log,
		api:                  kithttp.NewAPI(kithttp.WithLog(log)),
		AuthorizationService: authService,
		UserService:          userService,
		noAuthRoutes:         map[string]map[string]bool{},
		Handler:              http.DefaultServeMux,
	}
}

// RegisterNoAuthRoute excludes an exact method and path from authentication.
func (h *AuthenticationHandler) RegisterNoAuthRoute(method, path string) {
	if h.noAuthRoutes[method] == nil {
		h.noAuthRoutes[method] = map[string]bool{}
	}
	h.noAuthRoutes[method][path] = true
}

// ServeHTTP resolves the request credential to an authorizer, stamps a
// correlation id, and hands off to the wrapped handler.
func (h *AuthenticationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	correlationID := r.Header.Get("X-Correlation-Id")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	w.Header().Set("X-Correlation-Id", correlationID)
	ctx = icontext.SetCorrelationID(ctx, correlationID)

	if h.noAuthRoutes[r.Method][r.URL.Path] {
		h.Handler.ServeHTTP(w, r.WithContext(ctx))
		return
	}

	t, err := GetToken(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	auth, err := h.resolveAuthorizer(ctx, t)
	if err != nil {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EUnauthorized,
			Msg:  "unauthorized access",
			Err:  err,
		})
		return
	}

	if err := h.isUserActive(ctx, auth); err != nil {
		h.api.Err(w, r, err)
		return
	}

	ctx = icontext.SetAuthorizer(ctx, auth)
	h.Handler.ServeHTTP(w, r.WithContext(ctx))
}

func (h *AuthenticationHandler) resolveAuthorizer(ctx context.Context, t string) (castiel.Authorizer, error) {
	a, err := h.AuthorizationService.FindAuthorizationByToken(ctx, t)
	if err == nil {
		return a, nil
	}
	if castiel.ErrorCode(err) != castiel.ENotFound || len(h.JWTSigningKey) == 0 {
		return nil, err
	}
	return h.parseOperatorJWT(t)
}

// parseOperatorJWT accepts an HMAC-signed token whose subject names the
// operator user. JWT holders get full permissions.
func (h *AuthenticationHandler) parseOperatorJWT(t string) (castiel.Authorizer, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(t, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &errors.Error{
				Code: errors.EUnauthorized,
				Msg:  "unexpected jwt signing method",
			}
		}
		return h.JWTSigningKey, nil
	})
	if err != nil {
		return nil, err
	}

	var userID platform.ID
	if claims.Subject != "" {
		id, err := platform.IDFromString(claims.Subject)
		if err != nil {
			return nil, err
		}
		userID = *id
	}

	return &castiel.Authorization{
		UserID:      userID,
		Status:      castiel.Active,
		Permissions: castiel.OperPermissions(),
	}, nil
}

func (h *AuthenticationHandler) isUserActive(ctx context.Context, auth castiel.Authorizer) error {
	// JWT authorizers carry no stored user.
	if h.UserService == nil || !auth.GetUserID().Valid() {
		return nil
	}

	u, err := h.UserService.FindUserByID(ctx, auth.GetUserID())
	if err != nil {
		return err
	}
	if u.Status == castiel.UserInactive {
		return &errors.Error{Code: errors.EForbidden, Msg: "user is inactive"}
	}
	return nil
}
