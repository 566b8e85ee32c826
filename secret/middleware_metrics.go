package secret

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
)

var _ castiel.SecretService = (*SecretMetrics)(nil)

// SecretMetrics records RED metrics for secret service calls.
type SecretMetrics struct {
	rec           *metric.REDClient
	secretService castiel.SecretService
}

// NewSecretMetrics returns a metrics service middleware for the Secret Service.
func NewSecretMetrics(reg prometheus.Registerer, s castiel.SecretService) *SecretMetrics {
	return &SecretMetrics{
		rec:           metric.New(reg, "secret"),
		secretService: s,
	}
}

func (m *SecretMetrics) LoadSecret(ctx context.Context, tenantID platform.ID, k string) (string, error) {
	rec := m.rec.Record("load_secret")
	v, err := m.secretService.LoadSecret(ctx, tenantID, k)
	return v, rec(err)
}

func (m *SecretMetrics) GetSecretKeys(ctx context.Context, tenantID platform.ID) ([]string, error) {
	rec := m.rec.Record("get_secret_keys")
	keys, err := m.secretService.GetSecretKeys(ctx, tenantID)
	return keys, rec(err)
}

func (m *SecretMetrics) PutSecret(ctx context.Context, tenantID platform.ID, k, v string) error {
	rec := m.rec.Record("put_secret")
	err := m.secretService.PutSecret(ctx, tenantID, k, v)
	return rec(err)
}

func (m *SecretMetrics) PatchSecrets(ctx context.Context, tenantID platform.ID, pairs map[string]string) error {
	rec := m.rec.Record("patch_secrets")
	err := m.secretService.PatchSecrets(ctx, tenantID, pairs)
	return rec(err)
}

func (m *SecretMetrics) DeleteSecret(ctx context.Context, tenantID platform.ID, ks ...string) error {
	rec := m.rec.Record("delete_secret")
	err := m.secretService.DeleteSecret(ctx, tenantID, ks...)
	return rec(err)
}
