package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/mock"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newAuthTestHandler(t *testing.T) (*AuthenticationHandler, *http.Request) {
	t.Helper()

	auths := &mock.AuthorizationService{
		FindAuthorizationByTokenFn: func(_ context.Context, tok string) (*castiel.Authorization, error) {
			if tok != "good-token" {
				return nil, &castiel.Error{Code: castiel.ENotFound, Msg: "authorization not found"}
			}
			return &castiel.Authorization{
				ID:          platform.ID(1),
				UserID:      platform.ID(2),
				Status:      castiel.Active,
				Permissions: castiel.TenantPermissions(platform.ID(10)),
			}, nil
		},
	}
	users := &mock.UserService{
		FindUserByIDFn: func(_ context.Context, id platform.ID) (*castiel.User, error) {
			return &castiel.User{ID: id, Name: "ada", Status: castiel.UserActive}, nil
		},
	}

	h := NewAuthenticationHandler(zaptest.NewLogger(t), auths, users)
	return h, httptest.NewRequest(http.MethodGet, "/api/v1/tenants/000000000000000a/shards", nil)
}

func TestAuthenticationHandler_Token(t *testing.T) {
	h, r := newAuthTestHandler(t)

	var sawUserID platform.ID
	h.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := icontext.GetUserID(r.Context())
		require.NoError(t, err)
		sawUserID = id
		w.WriteHeader(http.StatusOK)
	})

	r.Header.Set("Authorization", "Token good-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, platform.ID(2), sawUserID)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-Id"))
}

func TestAuthenticationHandler_MissingToken(t *testing.T) {
	h, r := newAuthTestHandler(t)
	h.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationHandler_UnknownToken(t *testing.T) {
	h, r := newAuthTestHandler(t)
	h.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	r.Header.Set("Authorization", "Token bogus")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationHandler_InactiveUser(t *testing.T) {
	h, r := newAuthTestHandler(t)
	h.UserService = &mock.UserService{
		FindUserByIDFn: func(_ context.Context, id platform.ID) (*castiel.User, error) {
			return &castiel.User{ID: id, Name: "ada", Status: castiel.UserInactive}, nil
		},
	}
	h.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	r.Header.Set("Authorization", "Token good-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticationHandler_OperatorJWT(t *testing.T) {
	h, r := newAuthTestHandler(t)
	h.JWTSigningKey = []byte("operator-key")

	var pset castiel.PermissionSet
	h.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := icontext.GetAuthorizer(r.Context())
		require.NoError(t, err)
		pset, err = a.PermissionSet()
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	})

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Subject: platform.ID(7).String(),
	})
	signed, err := tok.SignedString(h.JWTSigningKey)
	require.NoError(t, err)

	r.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	p, err := castiel.NewPermission(castiel.WriteAction, castiel.TenantsResourceType, platform.ID(99))
	require.NoError(t, err)
	assert.True(t, pset.Allowed(*p))
}

func TestAuthenticationHandler_BadJWTSignature(t *testing.T) {
	h, r := newAuthTestHandler(t)
	h.JWTSigningKey = []byte("operator-key")
	h.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{})
	signed, err := tok.SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	r.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationHandler_NoAuthRoute(t *testing.T) {
	h, _ := newAuthTestHandler(t)
	h.RegisterNoAuthRoute(http.MethodGet, "/open")
	h.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}
