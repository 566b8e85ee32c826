package aimodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultScoringTimeout = 30 * time.Second

var _ castiel.ScoringService = (*ScoringClient)(nil)

// ScoringClient calls the remote endpoint of a deployed model. The bearer
// token, when the model names a SecretKey, is loaded from the secret
// service at call time; it is never persisted on the model record.
type ScoringClient struct {
	log           *zap.Logger
	modelService  castiel.AIModelService
	secretService castiel.SecretService
	client        *http.Client
}

// ScoringClientOption configures a ScoringClient.
type ScoringClientOption func(*ScoringClient)

// WithHTTPClient overrides the underlying http client, primarily for tests.
func WithHTTPClient(c *http.Client) ScoringClientOption {
	return func(s *ScoringClient) {
		s.client = c
	}
}

// NewScoringClient constructs a scoring client.
func NewScoringClient(log *zap.Logger, modelService castiel.AIModelService, secretService castiel.SecretService, opts ...ScoringClientOption) *ScoringClient {
	s := &ScoringClient{
		log:           log,
		modelService:  modelService,
		secretService: secretService,
		client:        &http.Client{Timeout: defaultScoringTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scoreRequest struct {
	Input []castiel.ScoreInput `json:"input"`
}

// Model endpoints answer with one bare object per kind, not a list:
// winProbability {"winProbability","confidence"}, riskScoring
// {"riskScore"}, forecasting {"p10","p50","p90"}, anomalyDetection
// {"isAnomaly": -1|1, "anomalyScore"}.

type winProbabilityResponse struct {
	WinProbability *decimal.Decimal `json:"winProbability"`
	Confidence     *decimal.Decimal `json:"confidence"`
}

type riskScoringResponse struct {
	RiskScore *decimal.Decimal `json:"riskScore"`
}

type forecastingResponse struct {
	P10 *decimal.Decimal `json:"p10"`
	P50 *decimal.Decimal `json:"p50"`
	P90 *decimal.Decimal `json:"p90"`
}

type anomalyDetectionResponse struct {
	// IsAnomaly follows the IsolationForest convention: -1 anomaly, 1 normal.
	IsAnomaly    *int             `json:"isAnomaly"`
	AnomalyScore *decimal.Decimal `json:"anomalyScore"`
}

func decodeScoreResponse(kind castiel.AIModelKind, body io.Reader) (castiel.ScoreResult, error) {
	dec := json.NewDecoder(body)

	var res castiel.ScoreResult
	switch kind {
	case castiel.WinProbabilityModel:
		var out winProbabilityResponse
		if err := dec.Decode(&out); err != nil {
			return res, ErrScoringBadPayload(string(kind), err)
		}
		if out.WinProbability == nil {
			return res, ErrScoringBadPayload(string(kind), nil)
		}
		res.WinProbability = out.WinProbability
		res.Confidence = out.Confidence
	case castiel.RiskScoringModel:
		var out riskScoringResponse
		if err := dec.Decode(&out); err != nil {
			return res, ErrScoringBadPayload(string(kind), err)
		}
		if out.RiskScore == nil {
			return res, ErrScoringBadPayload(string(kind), nil)
		}
		res.RiskScore = out.RiskScore
	case castiel.ForecastingModel:
		var out forecastingResponse
		if err := dec.Decode(&out); err != nil {
			return res, ErrScoringBadPayload(string(kind), err)
		}
		if out.P50 == nil {
			return res, ErrScoringBadPayload(string(kind), nil)
		}
		res.P10 = out.P10
		res.P50 = out.P50
		res.P90 = out.P90
	case castiel.AnomalyDetectionModel:
		var out anomalyDetectionResponse
		if err := dec.Decode(&out); err != nil {
			return res, ErrScoringBadPayload(string(kind), err)
		}
		if out.IsAnomaly == nil {
			return res, ErrScoringBadPayload(string(kind), nil)
		}
		isAnomaly := *out.IsAnomaly == -1
		res.IsAnomaly = &isAnomaly
		res.AnomalyScore = out.AnomalyScore
	default:
		return res, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf("no scoring contract for model kind %q", kind),
		}
	}
	return res, nil
}

// Score submits the feature vectors to the model endpoint and decodes the
// per-kind response. The model must be deployed.
func (s *ScoringClient) Score(ctx context.Context, tenantID, modelID platform.ID, inputs []castiel.ScoreInput) ([]castiel.ScoreResult, error) {
	m, err := s.modelService.FindAIModelByID(ctx, tenantID, modelID)
	if err != nil {
		return nil, err
	}
	if m.Status != castiel.AIModelDeployed {
		return nil, ErrModelNotDeployed
	}

	body, err := json.Marshal(scoreRequest{Input: inputs})
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "scoring request could not be marshalled",
			Err:  err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "invalid model endpoint",
			Err:  err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	if m.SecretKey != "" && s.secretService != nil {
		token, err := s.secretService.LoadSecret(ctx, tenantID, m.SecretKey)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("scoring call failed",
			zap.String("model_id", modelID.String()),
			zap.Error(err))
		return nil, ErrScoringUnavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, ErrScoringUnavailable(&errors.Error{
			Msg: resp.Status,
		})
	case resp.StatusCode >= 400:
		return nil, ErrScoringRejected(resp.StatusCode)
	}

	res, err := decodeScoreResponse(m.Kind, resp.Body)
	if err != nil {
		return nil, err
	}
	return []castiel.ScoreResult{res}, nil
}
