package tenant

import (
	"github.com/Edgame2/castiel"
)

// Service implements the tenant, user, role, membership, and password
// service interfaces over one kv store.
type Service struct {
	store *Store
}

var (
	_ castiel.TenantService              = (*Service)(nil)
	_ castiel.UserService                = (*Service)(nil)
	_ castiel.RoleService                = (*Service)(nil)
	_ castiel.UserResourceMappingService = (*Service)(nil)
	_ castiel.PasswordsService           = (*Service)(nil)
)

// NewService creates a new base tenant service.
func NewService(st *Store) *Service {
	return &Service{store: st}
}
