package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.AuthorizationService = (*AuthorizationService)(nil)

// AuthorizationService is a mock implementation of castiel.AuthorizationService.
type AuthorizationService struct {
	FindAuthorizationByIDFn    func(ctx context.Context, id platform.ID) (*castiel.Authorization, error)
	FindAuthorizationByTokenFn func(ctx context.Context, t string) (*castiel.Authorization, error)
	FindAuthorizationsFn       func(ctx context.Context, filter castiel.AuthorizationFilter, opt ...castiel.FindOptions) ([]*castiel.Authorization, int, error)
	CreateAuthorizationFn      func(ctx context.Context, a *castiel.Authorization) error
	UpdateAuthorizationFn      func(ctx context.Context, id platform.ID, upd castiel.AuthorizationUpdate) (*castiel.Authorization, error)
	DeleteAuthorizationFn      func(ctx context.Context, id platform.ID) error
}

// FindAuthorizationByID returns a single authorization by ID.
func (s *AuthorizationService) FindAuthorizationByID(ctx context.Context, id platform.ID) (*castiel.Authorization, error) {
	return s.FindAuthorizationByIDFn(ctx, id)
}

// FindAuthorizationByToken returns a single authorization by Token.
func (s *AuthorizationService) FindAuthorizationByToken(ctx context.Context, t string) (*castiel.Authorization, error) {
	return s.FindAuthorizationByTokenFn(ctx, t)
}

// FindAuthorizations returns a list of authorizations that match filter.
func (s *AuthorizationService) FindAuthorizations(ctx context.Context, filter castiel.AuthorizationFilter, opt ...castiel.FindOptions) ([]*castiel.Authorization, int, error) {
	return s.FindAuthorizationsFn(ctx, filter, opt...)
}

// CreateAuthorization creates a new authorization.
func (s *AuthorizationService) CreateAuthorization(ctx context.Context, a *castiel.Authorization) error {
	return s.CreateAuthorizationFn(ctx, a)
}

// UpdateAuthorization updates the status and description if available.
func (s *AuthorizationService) UpdateAuthorization(ctx context.Context, id platform.ID, upd castiel.AuthorizationUpdate) (*castiel.Authorization, error) {
	return s.UpdateAuthorizationFn(ctx, id, upd)
}

// DeleteAuthorization removes an authorization by ID.
func (s *AuthorizationService) DeleteAuthorization(ctx context.Context, id platform.ID) error {
	return s.DeleteAuthorizationFn(ctx, id)
}
