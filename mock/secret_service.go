package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.SecretService = (*SecretService)(nil)

// SecretService is a mock implementation of castiel.SecretService.
type SecretService struct {
	LoadSecretFn    func(ctx context.Context, tenantID platform.ID, k string) (string, error)
	GetSecretKeysFn func(ctx context.Context, tenantID platform.ID) ([]string, error)
	PutSecretFn     func(ctx context.Context, tenantID platform.ID, k, v string) error
	PatchSecretsFn  func(ctx context.Context, tenantID platform.ID, m map[string]string) error
	DeleteSecretFn  func(ctx context.Context, tenantID platform.ID, ks ...string) error
}

// LoadSecret retrieves the secret value v found at key k for tenant.
func (s *SecretService) LoadSecret(ctx context.Context, tenantID platform.ID, k string) (string, error) {
	return s.LoadSecretFn(ctx, tenantID, k)
}

// GetSecretKeys retrieves all secret keys stored for tenant.
func (s *SecretService) GetSecretKeys(ctx context.Context, tenantID platform.ID) ([]string, error) {
	return s.GetSecretKeysFn(ctx, tenantID)
}

// PutSecret stores the secret pair (k,v) for tenant.
func (s *SecretService) PutSecret(ctx context.Context, tenantID platform.ID, k, v string) error {
	return s.PutSecretFn(ctx, tenantID, k, v)
}

// PatchSecrets upserts the provided pairs for tenant.
func (s *SecretService) PatchSecrets(ctx context.Context, tenantID platform.ID, m map[string]string) error {
	return s.PatchSecretsFn(ctx, tenantID, m)
}

// DeleteSecret removes the named keys for tenant.
func (s *SecretService) DeleteSecret(ctx context.Context, tenantID platform.ID, ks ...string) error {
	return s.DeleteSecretFn(ctx, tenantID, ks...)
}
