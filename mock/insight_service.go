package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.InsightService = (*InsightService)(nil)

// InsightService is a mock implementation of castiel.InsightService.
type InsightService struct {
	FindInsightByIDFn      func(ctx context.Context, tenantID, id platform.ID) (*castiel.Insight, error)
	FindInsightsFn         func(ctx context.Context, filter castiel.InsightFilter, opt ...castiel.FindOptions) ([]*castiel.Insight, int, error)
	CreateInsightFn        func(ctx context.Context, i *castiel.Insight) error
	UpdateInsightFn        func(ctx context.Context, tenantID, id platform.ID, upd castiel.InsightUpdate) (*castiel.Insight, error)
	DeleteInsightFn        func(ctx context.Context, tenantID, id platform.ID) error
	AddInsightCommentFn    func(ctx context.Context, tenantID platform.ID, c *castiel.InsightComment) error
	FindInsightCommentsFn  func(ctx context.Context, tenantID, insightID platform.ID) ([]*castiel.InsightComment, error)
	DeleteInsightCommentFn func(ctx context.Context, tenantID, insightID, commentID platform.ID) error
}

// FindInsightByID returns a single insight by ID.
func (s *InsightService) FindInsightByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Insight, error) {
	return s.FindInsightByIDFn(ctx, tenantID, id)
}

// FindInsights returns the insights matching filter, newest first.
func (s *InsightService) FindInsights(ctx context.Context, filter castiel.InsightFilter, opt ...castiel.FindOptions) ([]*castiel.Insight, int, error) {
	return s.FindInsightsFn(ctx, filter, opt...)
}

// CreateInsight creates a new insight.
func (s *InsightService) CreateInsight(ctx context.Context, i *castiel.Insight) error {
	return s.CreateInsightFn(ctx, i)
}

// UpdateInsight applies the changeset to an insight.
func (s *InsightService) UpdateInsight(ctx context.Context, tenantID, id platform.ID, upd castiel.InsightUpdate) (*castiel.Insight, error) {
	return s.UpdateInsightFn(ctx, tenantID, id, upd)
}

// DeleteInsight removes an insight and its comments.
func (s *InsightService) DeleteInsight(ctx context.Context, tenantID, id platform.ID) error {
	return s.DeleteInsightFn(ctx, tenantID, id)
}

// AddInsightComment appends a comment to the thread.
func (s *InsightService) AddInsightComment(ctx context.Context, tenantID platform.ID, c *castiel.InsightComment) error {
	return s.AddInsightCommentFn(ctx, tenantID, c)
}

// FindInsightComments returns the thread in chronological order.
func (s *InsightService) FindInsightComments(ctx context.Context, tenantID, insightID platform.ID) ([]*castiel.InsightComment, error) {
	return s.FindInsightCommentsFn(ctx, tenantID, insightID)
}

// DeleteInsightComment removes a comment.
func (s *InsightService) DeleteInsightComment(ctx context.Context, tenantID, insightID, commentID platform.ID) error {
	return s.DeleteInsightCommentFn(ctx, tenantID, insightID, commentID)
}
