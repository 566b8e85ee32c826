package castiel

import (
	"context"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for secret errors and secret journal events.
const (
	OpLoadSecret    = "LoadSecret"
	OpGetSecretKeys = "GetSecretKeys"
	OpPutSecret     = "PutSecret"
	OpPatchSecrets  = "PatchSecrets"
	OpDeleteSecret  = "DeleteSecret"
)

// SecretService is a per-tenant credential store. Keys are enumerable over
// the API; values are write-only, readable only by services that need them
// (the scoring client above all).
type SecretService interface {
	// LoadSecret retrieves the secret value v found at key k for tenant.
	LoadSecret(ctx context.Context, tenantID platform.ID, k string) (string, error)

	// GetSecretKeys retrieves all secret keys stored for tenant.
	GetSecretKeys(ctx context.Context, tenantID platform.ID) ([]string, error)

	// PutSecret stores the secret pair (k,v) for tenant.
	PutSecret(ctx context.Context, tenantID platform.ID, k, v string) error

	// PatchSecrets upserts the provided pairs for tenant.
	PatchSecrets(ctx context.Context, tenantID platform.ID, m map[string]string) error

	// DeleteSecret removes the named keys for tenant.
	DeleteSecret(ctx context.Context, tenantID platform.ID, ks ...string) error
}
