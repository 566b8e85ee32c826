package authorization

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
)

var _ castiel.AuthorizationService = (*AuthMetrics)(nil)

// AuthMetrics records RED metrics for authorization service calls.
type AuthMetrics struct {
	rec         *metric.REDClient
	authService castiel.AuthorizationService
}

// NewAuthMetrics returns a metrics service middleware for the Authorization Service.
func NewAuthMetrics(reg prometheus.Registerer, s castiel.AuthorizationService) *AuthMetrics {
	return &AuthMetrics{
		rec:         metric.New(reg, "authorization"),
		authService: s,
	}
}

func (m *AuthMetrics) FindAuthorizationByID(ctx context.Context, id platform.ID) (*castiel.Authorization, error) {
	rec := m.rec.Record("find_authorization_by_id")
	a, err := m.authService.FindAuthorizationByID(ctx, id)
	return a, rec(err)
}

func (m *AuthMetrics) FindAuthorizationByToken(ctx context.Context, t string) (*castiel.Authorization, error) {
	rec := m.rec.Record("find_authorization_by_token")
	a, err := m.authService.FindAuthorizationByToken(ctx, t)
	return a, rec(err)
}

func (m *AuthMetrics) FindAuthorizations(ctx context.Context, filter castiel.AuthorizationFilter, opt ...castiel.FindOptions) ([]*castiel.Authorization, int, error) {
	rec := m.rec.Record("find_authorizations")
	auths, n, err := m.authService.FindAuthorizations(ctx, filter, opt...)
	return auths, n, rec(err)
}

func (m *AuthMetrics) CreateAuthorization(ctx context.Context, a *castiel.Authorization) error {
	rec := m.rec.Record("create_authorization")
	err := m.authService.CreateAuthorization(ctx, a)
	return rec(err)
}

func (m *AuthMetrics) UpdateAuthorization(ctx context.Context, id platform.ID, upd castiel.AuthorizationUpdate) (*castiel.Authorization, error) {
	rec := m.rec.Record("update_authorization")
	a, err := m.authService.UpdateAuthorization(ctx, id, upd)
	return a, rec(err)
}

func (m *AuthMetrics) DeleteAuthorization(ctx context.Context, id platform.ID) error {
	rec := m.rec.Record("delete_authorization")
	err := m.authService.DeleteAuthorization(ctx, id)
	return rec(err)
}
