package shard

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

const (
	defaultMaxRelated   = 10
	defaultMaxDocuments = 10
	defaultMaxInsights  = 10
)

// ContextService assembles read-side context bundles from the shard graph
// plus the document and insight stores. Collaborators are the public
// service interfaces so bundles see the same authorization and soft-delete
// rules as direct reads.
type ContextService struct {
	shards    interface {
		castiel.ShardService
		castiel.ShardLinkingService
	}
	documents castiel.DocumentService
	insights  castiel.InsightService
}

var _ castiel.ContextAssemblyService = (*ContextService)(nil)

// NewContextService creates a context assembly service over the given
// collaborators.
func NewContextService(shards interface {
	castiel.ShardService
	castiel.ShardLinkingService
}, documents castiel.DocumentService, insights castiel.InsightService) *ContextService {
	return &ContextService{
		shards:    shards,
		documents: documents,
		insights:  insights,
	}
}

// AssembleContext collects the shard, its readable related shards, its
// published documents and its open insights into one bundle. Limits of
// zero fall back to defaults; document or insight lookups that fail do
// not fail the bundle, the section is simply left empty.
func (s *ContextService) AssembleContext(ctx context.Context, tenantID, shardID platform.ID, opts castiel.ContextAssemblyOptions) (*castiel.ContextBundle, error) {
	sh, err := s.shards.FindShardByID(ctx, tenantID, shardID)
	if err != nil {
		return nil, err
	}
	if !opts.IncludeUnstructured {
		sh.Unstructured = ""
	}

	maxRelated := opts.MaxRelated
	if maxRelated <= 0 {
		maxRelated = defaultMaxRelated
	}
	maxDocuments := opts.MaxDocuments
	if maxDocuments <= 0 {
		maxDocuments = defaultMaxDocuments
	}
	maxInsights := opts.MaxInsights
	if maxInsights <= 0 {
		maxInsights = defaultMaxInsights
	}

	bundle := &castiel.ContextBundle{Shard: sh}

	related, err := s.shards.FindRelated(ctx, tenantID, shardID)
	if err != nil {
		return nil, err
	}
	if len(related) > maxRelated {
		related = related[:maxRelated]
	}
	bundle.Related = related

	if s.documents != nil {
		status := castiel.DocumentPublished
		docs, _, err := s.documents.FindDocuments(ctx, castiel.DocumentFilter{
			TenantID: tenantID,
			ShardID:  &shardID,
			Status:   &status,
		}, castiel.FindOptions{Limit: maxDocuments})
		if err == nil {
			bundle.Documents = docs
		}
	}

	if s.insights != nil {
		bundle.Insights = s.openInsights(ctx, tenantID, shardID, maxInsights)
	}

	return bundle, nil
}

// openInsights returns up to limit insights in the new or acknowledged
// state, newest first.
func (s *ContextService) openInsights(ctx context.Context, tenantID, shardID platform.ID, limit int) []*castiel.Insight {
	var open []*castiel.Insight
	for _, status := range []castiel.InsightStatus{castiel.InsightNew, castiel.InsightAcknowledged} {
		status := status
		ins, _, err := s.insights.FindInsights(ctx, castiel.InsightFilter{
			TenantID: tenantID,
			ShardID:  &shardID,
			Status:   &status,
		}, castiel.FindOptions{Limit: limit})
		if err != nil {
			continue
		}
		open = append(open, ins...)
		if len(open) >= limit {
			return open[:limit]
		}
	}
	return open
}
