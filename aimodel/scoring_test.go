package aimodel_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/aimodel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// staticSecrets serves bearer tokens without a full secret service.
type staticSecrets struct {
	castiel.SecretService
	secrets map[string]string
}

func (s *staticSecrets) LoadSecret(_ context.Context, _ platform.ID, k string) (string, error) {
	v, ok := s.secrets[k]
	if !ok {
		return "", &castiel.Error{Code: castiel.ENotFound, Msg: "secret not found"}
	}
	return v, nil
}

func deployTestModel(t *testing.T, svc *aimodel.Service, name string, kind castiel.AIModelKind, endpoint, secretKey string) *castiel.AIModel {
	t.Helper()
	m := &castiel.AIModel{
		TenantID:  testTenantID,
		Name:      name,
		Kind:      kind,
		Endpoint:  endpoint,
		SecretKey: secretKey,
	}
	require.NoError(t, svc.CreateAIModel(context.Background(), m))
	deployed, err := svc.DeployAIModel(context.Background(), testTenantID, m.ID)
	require.NoError(t, err)
	return deployed
}

func TestScoringClient_Score(t *testing.T) {
	svc := initModelService(t)
	ctx := context.Background()

	var gotAuth string
	// endpoints answer a bare per-kind object, no envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Input []castiel.ScoreInput `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 1)
		assert.Equal(t, "acme", req.Input[0]["account"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"winProbability": 0.73,
			"confidence":     0.9,
		})
	}))
	defer srv.Close()

	m := deployTestModel(t, svc, "win-v1", castiel.WinProbabilityModel, srv.URL, "win-v1-token")
	secrets := &staticSecrets{secrets: map[string]string{"win-v1-token": "s3cret"}}
	client := aimodel.NewScoringClient(zaptest.NewLogger(t), svc, secrets)

	results, err := client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{"account": "acme"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].WinProbability)
	assert.True(t, results[0].WinProbability.Equal(decimal.NewFromFloat(0.73)))
	require.NotNil(t, results[0].Confidence)
	assert.True(t, results[0].Confidence.Equal(decimal.NewFromFloat(0.9)))
	assert.Equal(t, "Bearer s3cret", gotAuth)
}

func TestScoringClient_PerKindContracts(t *testing.T) {
	svc := initModelService(t)
	ctx := context.Background()
	client := aimodel.NewScoringClient(zaptest.NewLogger(t), svc, nil)

	serve := func(body map[string]interface{}) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(body)
		}))
	}

	t.Run("riskScoring", func(t *testing.T) {
		srv := serve(map[string]interface{}{"riskScore": 0.41})
		defer srv.Close()

		m := deployTestModel(t, svc, "risk-v1", castiel.RiskScoringModel, srv.URL, "")
		results, err := client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NotNil(t, results[0].RiskScore)
		assert.True(t, results[0].RiskScore.Equal(decimal.NewFromFloat(0.41)))
	})

	t.Run("forecasting", func(t *testing.T) {
		srv := serve(map[string]interface{}{"p10": 100, "p50": 200, "p90": 300})
		defer srv.Close()

		m := deployTestModel(t, svc, "forecast-v1", castiel.ForecastingModel, srv.URL, "")
		results, err := client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NotNil(t, results[0].P50)
		assert.True(t, results[0].P10.Equal(decimal.NewFromInt(100)))
		assert.True(t, results[0].P50.Equal(decimal.NewFromInt(200)))
		assert.True(t, results[0].P90.Equal(decimal.NewFromInt(300)))
	})

	t.Run("anomalyDetection", func(t *testing.T) {
		srv := serve(map[string]interface{}{"isAnomaly": -1, "anomalyScore": -0.12})
		defer srv.Close()

		m := deployTestModel(t, svc, "anomaly-v1", castiel.AnomalyDetectionModel, srv.URL, "")
		results, err := client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NotNil(t, results[0].IsAnomaly)
		assert.True(t, *results[0].IsAnomaly)
		require.NotNil(t, results[0].AnomalyScore)
	})

	t.Run("normal is not an anomaly", func(t *testing.T) {
		srv := serve(map[string]interface{}{"isAnomaly": 1, "anomalyScore": 0.2})
		defer srv.Close()

		m := &castiel.AIModel{
			TenantID: testTenantID,
			Name:     "anomaly-v2",
			Kind:     castiel.AnomalyDetectionModel,
			Endpoint: srv.URL,
		}
		require.NoError(t, svc.CreateAIModel(ctx, m))
		_, err := svc.DeployAIModel(ctx, testTenantID, m.ID)
		require.NoError(t, err)

		results, err := client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{}})
		require.NoError(t, err)
		require.NotNil(t, results[0].IsAnomaly)
		assert.False(t, *results[0].IsAnomaly)
	})

	t.Run("wrong shape for the kind", func(t *testing.T) {
		srv := serve(map[string]interface{}{"results": []map[string]interface{}{{"riskScore": 0.7}}})
		defer srv.Close()

		m := deployTestModel(t, svc, "risk-v2", castiel.RiskScoringModel, srv.URL, "")
		_, err := client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{}})
		require.Error(t, err)
		assert.Equal(t, castiel.EUnprocessableEntity, castiel.ErrorCode(err))
	})
}

func TestScoringClient_Errors(t *testing.T) {
	svc := initModelService(t)
	ctx := context.Background()
	client := aimodel.NewScoringClient(zaptest.NewLogger(t), svc, nil)

	t.Run("model not deployed", func(t *testing.T) {
		draft := createTestModel(t, svc, "still drafting", castiel.WinProbabilityModel)
		_, err := client.Score(ctx, testTenantID, draft.ID, nil)
		require.Error(t, err)
		assert.Equal(t, castiel.EConflict, castiel.ErrorCode(err))
	})

	t.Run("endpoint rejects inputs", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		m := deployTestModel(t, svc, "win-v2", castiel.WinProbabilityModel, srv.URL, "")
		_, err := client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{}})
		require.Error(t, err)
		assert.Equal(t, castiel.EUnprocessableEntity, castiel.ErrorCode(err))
	})

	t.Run("endpoint down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		m := &castiel.AIModel{
			TenantID: testTenantID,
			Name:     "flaky",
			Kind:     castiel.AnomalyDetectionModel,
			Endpoint: srv.URL,
		}
		require.NoError(t, svc.CreateAIModel(ctx, m))
		_, err := svc.DeployAIModel(ctx, testTenantID, m.ID)
		require.NoError(t, err)

		_, err = client.Score(ctx, testTenantID, m.ID, []castiel.ScoreInput{{}})
		require.Error(t, err)
		assert.Equal(t, castiel.EUnavailable, castiel.ErrorCode(err))
	})
}
