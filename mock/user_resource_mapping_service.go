package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.UserResourceMappingService = (*UserResourceMappingService)(nil)

// UserResourceMappingService is a mock implementation of castiel.UserResourceMappingService.
type UserResourceMappingService struct {
	FindMappingsFn  func(ctx context.Context, filter castiel.UserResourceMappingFilter, opt ...castiel.FindOptions) ([]*castiel.UserResourceMapping, int, error)
	CreateMappingFn func(ctx context.Context, m *castiel.UserResourceMapping) error
	DeleteMappingFn func(ctx context.Context, resourceID, userID platform.ID) error
}

// FindUserResourceMappings returns the mappings that match filter.
func (s *UserResourceMappingService) FindUserResourceMappings(ctx context.Context, filter castiel.UserResourceMappingFilter, opt ...castiel.FindOptions) ([]*castiel.UserResourceMapping, int, error) {
	return s.FindMappingsFn(ctx, filter, opt...)
}

// CreateUserResourceMapping creates a user resource mapping.
func (s *UserResourceMappingService) CreateUserResourceMapping(ctx context.Context, m *castiel.UserResourceMapping) error {
	return s.CreateMappingFn(ctx, m)
}

// DeleteUserResourceMapping deletes a user resource mapping.
func (s *UserResourceMappingService) DeleteUserResourceMapping(ctx context.Context, resourceID, userID platform.ID) error {
	return s.DeleteMappingFn(ctx, resourceID, userID)
}
