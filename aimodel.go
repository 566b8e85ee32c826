package castiel

import (
	"context"
	"fmt"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
)

// Ops for AI model errors and journal events.
const (
	OpFindAIModelByID = "FindAIModelByID"
	OpFindAIModels    = "FindAIModels"
	OpCreateAIModel   = "CreateAIModel"
	OpUpdateAIModel   = "UpdateAIModel"
	OpDeleteAIModel   = "DeleteAIModel"
	OpDeployAIModel   = "DeployAIModel"
	OpRetireAIModel   = "RetireAIModel"
	OpScore           = "Score"
)

// AIModelKind is the class of predictions a model serves.
type AIModelKind string

const (
	// WinProbabilityModel scores the chance an opportunity closes won.
	WinProbabilityModel AIModelKind = "winProbability"
	// RiskScoringModel scores deal risk.
	RiskScoringModel AIModelKind = "riskScoring"
	// ForecastingModel projects revenue bands from history.
	ForecastingModel AIModelKind = "forecasting"
	// AnomalyDetectionModel flags outlier records.
	AnomalyDetectionModel AIModelKind = "anomalyDetection"
)

// Valid checks the kind is a member of the AIModelKind enum.
func (k AIModelKind) Valid() error {
	switch k {
	case WinProbabilityModel, RiskScoringModel, ForecastingModel, AnomalyDetectionModel:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid model kind %q", k),
		}
	}
}

// AIModelStatus is the deployment state of a model.
type AIModelStatus string

const (
	// AIModelDraft is a registered model not yet serving traffic.
	AIModelDraft AIModelStatus = "draft"
	// AIModelDeployed is a model accepting scoring calls.
	AIModelDeployed AIModelStatus = "deployed"
	// AIModelRetired is a terminal state; retired models never score again.
	AIModelRetired AIModelStatus = "retired"
)

// Valid checks the status is a member of the AIModelStatus enum.
func (s AIModelStatus) Valid() error {
	switch s {
	case AIModelDraft, AIModelDeployed, AIModelRetired:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid model status %q", s),
		}
	}
}

// AIModel is the registration record of a remote scoring endpoint. The
// endpoint credential, when needed, is looked up in the secret service
// under SecretKey; it is never stored on the record.
type AIModel struct {
	ID        platform.ID   `json:"id,omitempty"`
	TenantID  platform.ID   `json:"tenantID"`
	Name      string        `json:"name"`
	Kind      AIModelKind   `json:"kind"`
	Endpoint  string        `json:"endpoint"`
	SecretKey string        `json:"secretKey,omitempty"`
	Status    AIModelStatus `json:"status"`
	Version   int           `json:"version"`
	CRUDLog
}

// Valid validates the model record.
func (m AIModel) Valid() error {
	if m.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "model name cannot be empty",
		}
	}
	if !m.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "model tenant id is invalid",
		}
	}
	if err := m.Kind.Valid(); err != nil {
		return err
	}
	if m.Endpoint == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "model endpoint cannot be empty",
		}
	}
	return nil
}

// AIModelFilter represents a set of filters that restrict the returned results.
type AIModelFilter struct {
	TenantID platform.ID
	Kind     *AIModelKind
	Status   *AIModelStatus
	Name     *string
}

// QueryParams implements PagingFilter.
func (f AIModelFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.Kind != nil {
		qp["kind"] = []string{string(*f.Kind)}
	}
	if f.Status != nil {
		qp["status"] = []string{string(*f.Status)}
	}
	if f.Name != nil {
		qp["name"] = []string{*f.Name}
	}
	return qp
}

// AIModelUpdate is the set of changes to apply to a model. Endpoint changes
// bump the version.
type AIModelUpdate struct {
	Name      *string `json:"name,omitempty"`
	Endpoint  *string `json:"endpoint,omitempty"`
	SecretKey *string `json:"secretKey,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd AIModelUpdate) Valid() error {
	if upd.Name != nil && *upd.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "model name cannot be empty",
		}
	}
	if upd.Endpoint != nil && *upd.Endpoint == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "model endpoint cannot be empty",
		}
	}
	return nil
}

// AIModelService represents a service for managing the model registry.
type AIModelService interface {
	// FindAIModelByID returns a single model by ID.
	FindAIModelByID(ctx context.Context, tenantID, id platform.ID) (*AIModel, error)

	// FindAIModels returns the models matching filter and the total count
	// of matching models.
	FindAIModels(ctx context.Context, filter AIModelFilter, opt ...FindOptions) ([]*AIModel, int, error)

	// CreateAIModel registers a model as a draft and sets m.ID. Names are
	// unique per tenant.
	CreateAIModel(ctx context.Context, m *AIModel) error

	// UpdateAIModel applies the changeset and returns the new state.
	UpdateAIModel(ctx context.Context, tenantID, id platform.ID, upd AIModelUpdate) (*AIModel, error)

	// DeployAIModel moves a draft model to deployed.
	DeployAIModel(ctx context.Context, tenantID, id platform.ID) (*AIModel, error)

	// RetireAIModel moves a deployed model to retired. Retired is terminal.
	RetireAIModel(ctx context.Context, tenantID, id platform.ID) (*AIModel, error)

	// DeleteAIModel removes a model from the registry.
	DeleteAIModel(ctx context.Context, tenantID, id platform.ID) error
}

// ScoreInput is one feature vector submitted for scoring.
type ScoreInput map[string]interface{}

// ScoreResult is the decoded response of one scoring call. Fields are
// populated per model kind, matching the remote scoring contract.
type ScoreResult struct {
	// WinProbability and Confidence answer winProbability models.
	WinProbability *decimal.Decimal `json:"winProbability,omitempty"`
	Confidence     *decimal.Decimal `json:"confidence,omitempty"`

	// RiskScore answers riskScoring models.
	RiskScore *decimal.Decimal `json:"riskScore,omitempty"`

	// P10/P50/P90 answer forecasting models.
	P10 *decimal.Decimal `json:"p10,omitempty"`
	P50 *decimal.Decimal `json:"p50,omitempty"`
	P90 *decimal.Decimal `json:"p90,omitempty"`

	// AnomalyScore and IsAnomaly answer anomalyDetection models.
	AnomalyScore *decimal.Decimal `json:"anomalyScore,omitempty"`
	IsAnomaly    *bool            `json:"isAnomaly,omitempty"`
}

// ScoringService calls a deployed model's remote endpoint.
type ScoringService interface {
	// Score submits the feature vectors to the model endpoint and decodes
	// the per-kind response. The model must be deployed.
	Score(ctx context.Context, tenantID, modelID platform.ID, inputs []ScoreInput) ([]ScoreResult, error)
}
