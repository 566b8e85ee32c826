package insight

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
)

var _ castiel.InsightService = (*InsightMetrics)(nil)

// InsightMetrics records RED metrics for insight service calls.
type InsightMetrics struct {
	rec            *metric.REDClient
	insightService castiel.InsightService
}

// NewInsightMetrics returns a metrics service middleware for the Insight Service.
func NewInsightMetrics(reg prometheus.Registerer, s castiel.InsightService) *InsightMetrics {
	return &InsightMetrics{
		rec:            metric.New(reg, "insight"),
		insightService: s,
	}
}

func (m *InsightMetrics) FindInsightByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Insight, error) {
	rec := m.rec.Record("find_insight_by_id")
	i, err := m.insightService.FindInsightByID(ctx, tenantID, id)
	return i, rec(err)
}

func (m *InsightMetrics) FindInsights(ctx context.Context, filter castiel.InsightFilter, opt ...castiel.FindOptions) ([]*castiel.Insight, int, error) {
	rec := m.rec.Record("find_insights")
	insights, n, err := m.insightService.FindInsights(ctx, filter, opt...)
	return insights, n, rec(err)
}

func (m *InsightMetrics) CreateInsight(ctx context.Context, i *castiel.Insight) error {
	rec := m.rec.Record("create_insight")
	err := m.insightService.CreateInsight(ctx, i)
	return rec(err)
}

func (m *InsightMetrics) UpdateInsight(ctx context.Context, tenantID, id platform.ID, upd castiel.InsightUpdate) (*castiel.Insight, error) {
	rec := m.rec.Record("update_insight")
	i, err := m.insightService.UpdateInsight(ctx, tenantID, id, upd)
	return i, rec(err)
}

func (m *InsightMetrics) DeleteInsight(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("delete_insight")
	err := m.insightService.DeleteInsight(ctx, tenantID, id)
	return rec(err)
}

func (m *InsightMetrics) AddInsightComment(ctx context.Context, tenantID platform.ID, c *castiel.InsightComment) error {
	rec := m.rec.Record("add_insight_comment")
	err := m.insightService.AddInsightComment(ctx, tenantID, c)
	return rec(err)
}

func (m *InsightMetrics) FindInsightComments(ctx context.Context, tenantID, insightID platform.ID) ([]*castiel.InsightComment, error) {
	rec := m.rec.Record("find_insight_comments")
	comments, err := m.insightService.FindInsightComments(ctx, tenantID, insightID)
	return comments, rec(err)
}

func (m *InsightMetrics) DeleteInsightComment(ctx context.Context, tenantID, insightID, commentID platform.ID) error {
	rec := m.rec.Record("delete_insight_comment")
	err := m.insightService.DeleteInsightComment(ctx, tenantID, insightID, commentID)
	return rec(err)
}
