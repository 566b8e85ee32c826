package secret

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

var _ castiel.SecretService = (*Service)(nil)

// Service implements the secret service over the kv store.
type Service struct {
	store *Store
}

// NewService constructs a secret service.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// LoadSecret retrieves the secret value v found at key k for tenant.
func (s *Service) LoadSecret(ctx context.Context, tenantID platform.ID, k string) (string, error) {
	var v string
	err := s.store.View(ctx, func(tx kv.Tx) error {
		var err error
		v, err = s.store.GetSecret(ctx, tx, tenantID, k)
		return err
	})
	if err != nil {
		return "", err
	}
	return v, nil
}

// GetSecretKeys retrieves all secret keys stored for tenant.
func (s *Service) GetSecretKeys(ctx context.Context, tenantID platform.ID) ([]string, error) {
	var keys []string
	err := s.store.View(ctx, func(tx kv.Tx) error {
		var err error
		keys, err = s.store.ListSecretKeys(ctx, tx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// PutSecret stores the secret pair (k,v) for tenant.
func (s *Service) PutSecret(ctx context.Context, tenantID platform.ID, k, v string) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		return s.store.PutSecret(ctx, tx, tenantID, k, v)
	})
}

// PatchSecrets upserts the provided pairs for tenant.
func (s *Service) PatchSecrets(ctx context.Context, tenantID platform.ID, m map[string]string) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		for k, v := range m {
			if err := s.store.PutSecret(ctx, tx, tenantID, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSecret removes the named keys for tenant.
func (s *Service) DeleteSecret(ctx context.Context, tenantID platform.ID, ks ...string) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		for _, k := range ks {
			if err := s.store.DeleteSecret(ctx, tx, tenantID, k); err != nil {
				return err
			}
		}
		return nil
	})
}
