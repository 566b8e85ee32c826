package castiel

import (
	"context"
	"fmt"
	"time"

	"github.com/Edgame2/castiel/kit/platform"
	"github.com/shopspring/decimal"
)

// Ops for insight errors and insight journal events.
const (
	OpFindInsightByID      = "FindInsightByID"
	OpFindInsights         = "FindInsights"
	OpCreateInsight        = "CreateInsight"
	OpUpdateInsight        = "UpdateInsight"
	OpDeleteInsight        = "DeleteInsight"
	OpAddInsightComment    = "AddInsightComment"
	OpFindInsightComments  = "FindInsightComments"
	OpDeleteInsightComment = "DeleteInsightComment"
)

// InsightKind classifies what an insight is telling the team.
type InsightKind string

const (
	// RiskInsight flags a deal at risk.
	RiskInsight InsightKind = "risk"
	// ForecastInsight carries a projection.
	ForecastInsight InsightKind = "forecast"
	// AnomalyInsight flags an outlier record.
	AnomalyInsight InsightKind = "anomaly"
	// WinProbabilityInsight carries a win likelihood.
	WinProbabilityInsight InsightKind = "winProbability"
	// RecommendationInsight suggests a next action.
	RecommendationInsight InsightKind = "recommendation"
)

// Valid checks the kind is a member of the InsightKind enum.
func (k InsightKind) Valid() error {
	switch k {
	case RiskInsight, ForecastInsight, AnomalyInsight, WinProbabilityInsight, RecommendationInsight:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid insight kind %q", k),
		}
	}
}

// InsightSeverity grades how urgently an insight needs attention.
type InsightSeverity string

const (
	// SeverityInfo is informational.
	SeverityInfo InsightSeverity = "info"
	// SeverityWarning needs a look.
	SeverityWarning InsightSeverity = "warning"
	// SeverityCritical needs action now.
	SeverityCritical InsightSeverity = "critical"
)

// Valid checks the severity is a member of the InsightSeverity enum.
func (s InsightSeverity) Valid() error {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid insight severity %q", s),
		}
	}
}

// InsightStatus is the triage state of an insight.
type InsightStatus string

const (
	// InsightNew has not been looked at.
	InsightNew InsightStatus = "new"
	// InsightAcknowledged is being worked.
	InsightAcknowledged InsightStatus = "acknowledged"
	// InsightDismissed was judged noise.
	InsightDismissed InsightStatus = "dismissed"
	// InsightResolved was acted on.
	InsightResolved InsightStatus = "resolved"
)

// Valid checks the status is a member of the InsightStatus enum.
func (s InsightStatus) Valid() error {
	switch s {
	case InsightNew, InsightAcknowledged, InsightDismissed, InsightResolved:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid insight status %q", s),
		}
	}
}

// CanTransitionTo reports whether moving to next is a legal triage step.
// New insights can be acknowledged or dismissed; acknowledged insights can
// be resolved or dismissed; dismissed and resolved are terminal.
func (s InsightStatus) CanTransitionTo(next InsightStatus) bool {
	switch s {
	case InsightNew:
		return next == InsightAcknowledged || next == InsightDismissed
	case InsightAcknowledged:
		return next == InsightResolved || next == InsightDismissed
	default:
		return false
	}
}

// Insight is a finding attached to a shard, produced by a model or a
// teammate, triaged collaboratively.
type Insight struct {
	ID         platform.ID      `json:"id,omitempty"`
	TenantID   platform.ID      `json:"tenantID"`
	ShardID    platform.ID      `json:"shardID"`
	ModelID    *platform.ID     `json:"modelID,omitempty"`
	Kind       InsightKind      `json:"kind"`
	Severity   InsightSeverity  `json:"severity"`
	Title      string           `json:"title"`
	Body       string           `json:"body,omitempty"`
	Score      *decimal.Decimal `json:"score,omitempty"`
	Status     InsightStatus    `json:"status"`
	AssigneeID *platform.ID     `json:"assigneeID,omitempty"`
	CRUDLog
}

// Valid validates the insight record.
func (i Insight) Valid() error {
	if i.Title == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "insight title cannot be empty",
		}
	}
	if !i.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "insight tenant id is invalid",
		}
	}
	if !i.ShardID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "insight shard id is invalid",
		}
	}
	if err := i.Kind.Valid(); err != nil {
		return err
	}
	return i.Severity.Valid()
}

// InsightComment is one note on an insight's discussion thread.
type InsightComment struct {
	ID        platform.ID `json:"id,omitempty"`
	InsightID platform.ID `json:"insightID"`
	AuthorID  platform.ID `json:"authorID"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Valid validates the comment.
func (c InsightComment) Valid() error {
	if c.Body == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "comment body cannot be empty",
		}
	}
	return nil
}

// InsightFilter represents a set of filters that restrict the returned results.
type InsightFilter struct {
	TenantID   platform.ID
	ShardID    *platform.ID
	Kind       *InsightKind
	Status     *InsightStatus
	Severity   *InsightSeverity
	AssigneeID *platform.ID
}

// QueryParams implements PagingFilter.
func (f InsightFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.ShardID != nil {
		qp["shardID"] = []string{f.ShardID.String()}
	}
	if f.Kind != nil {
		qp["kind"] = []string{string(*f.Kind)}
	}
	if f.Status != nil {
		qp["status"] = []string{string(*f.Status)}
	}
	if f.Severity != nil {
		qp["severity"] = []string{string(*f.Severity)}
	}
	if f.AssigneeID != nil {
		qp["assigneeID"] = []string{f.AssigneeID.String()}
	}
	return qp
}

// InsightUpdate is the set of changes to apply to an insight. Status changes
// must follow the triage transitions.
type InsightUpdate struct {
	Status     *InsightStatus   `json:"status,omitempty"`
	Severity   *InsightSeverity `json:"severity,omitempty"`
	AssigneeID *platform.ID     `json:"assigneeID,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd InsightUpdate) Valid() error {
	if upd.Status != nil {
		if err := upd.Status.Valid(); err != nil {
			return err
		}
	}
	if upd.Severity != nil {
		return upd.Severity.Valid()
	}
	return nil
}

// InsightService represents a service for managing insights and their
// comment threads.
type InsightService interface {
	// FindInsightByID returns a single insight by ID.
	FindInsightByID(ctx context.Context, tenantID, id platform.ID) (*Insight, error)

	// FindInsights returns the insights matching filter, newest first, and
	// the total count of matching insights.
	FindInsights(ctx context.Context, filter InsightFilter, opt ...FindOptions) ([]*Insight, int, error)

	// CreateInsight creates a new insight as status new and sets i.ID. The
	// subject shard must exist.
	CreateInsight(ctx context.Context, i *Insight) error

	// UpdateInsight applies the changeset, enforcing triage transitions,
	// and returns the new state.
	UpdateInsight(ctx context.Context, tenantID, id platform.ID, upd InsightUpdate) (*Insight, error)

	// DeleteInsight removes an insight and its comments.
	DeleteInsight(ctx context.Context, tenantID, id platform.ID) error

	// AddInsightComment appends a comment to the thread and sets c.ID.
	AddInsightComment(ctx context.Context, tenantID platform.ID, c *InsightComment) error

	// FindInsightComments returns the thread in chronological order.
	FindInsightComments(ctx context.Context, tenantID, insightID platform.ID) ([]*InsightComment, error)

	// DeleteInsightComment removes a comment. Only the author or an
	// operator may delete.
	DeleteInsightComment(ctx context.Context, tenantID, insightID, commentID platform.ID) error
}
