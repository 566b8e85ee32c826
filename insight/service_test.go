package insight_test

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/insight"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testTenantID = platform.ID(10)
	testUserID   = platform.ID(20)
	testShardID  = platform.ID(30)
)

// knownShards serves the subject shard check without a full shard service.
type knownShards struct {
	castiel.ShardService
	ids map[platform.ID]bool
}

func (s *knownShards) FindShardByID(_ context.Context, _, id platform.ID) (*castiel.Shard, error) {
	if !s.ids[id] {
		return nil, &castiel.Error{Code: castiel.ENotFound, Msg: "shard not found"}
	}
	return &castiel.Shard{ID: id}, nil
}

func initInsightService(t *testing.T) (*insight.Service, context.Context) {
	t.Helper()
	shards := &knownShards{ids: map[platform.ID]bool{testShardID: true}}
	svc := insight.NewService(zaptest.NewLogger(t), sqlite.NewTestStore(t), shards)
	ctx := icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
		UserID: testUserID,
		Status: castiel.Active,
	})
	return svc, ctx
}

func createTestInsight(t *testing.T, svc *insight.Service, ctx context.Context, title string) *castiel.Insight {
	t.Helper()
	score := decimal.NewFromFloat(0.82)
	i := &castiel.Insight{
		TenantID: testTenantID,
		ShardID:  testShardID,
		Kind:     castiel.RiskInsight,
		Severity: castiel.SeverityWarning,
		Title:    title,
		Score:    &score,
	}
	require.NoError(t, svc.CreateInsight(ctx, i))
	return i
}

func TestCreateInsight(t *testing.T) {
	svc, ctx := initInsightService(t)

	i := createTestInsight(t, svc, ctx, "deal slipping")
	assert.True(t, i.ID.Valid())
	assert.Equal(t, castiel.InsightNew, i.Status)

	got, err := svc.FindInsightByID(ctx, testTenantID, i.ID)
	require.NoError(t, err)
	assert.Equal(t, "deal slipping", got.Title)
	assert.Equal(t, castiel.RiskInsight, got.Kind)
	require.NotNil(t, got.Score)
	assert.True(t, got.Score.Equal(decimal.NewFromFloat(0.82)))

	t.Run("missing shard", func(t *testing.T) {
		err := svc.CreateInsight(ctx, &castiel.Insight{
			TenantID: testTenantID,
			ShardID:  platform.ID(999),
			Kind:     castiel.RiskInsight,
			Severity: castiel.SeverityInfo,
			Title:    "orphan",
		})
		require.Error(t, err)
		assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
	})

	t.Run("status forced to new", func(t *testing.T) {
		i := &castiel.Insight{
			TenantID: testTenantID,
			ShardID:  testShardID,
			Kind:     castiel.AnomalyInsight,
			Severity: castiel.SeverityInfo,
			Title:    "pre-resolved",
			Status:   castiel.InsightResolved,
		}
		require.NoError(t, svc.CreateInsight(ctx, i))
		assert.Equal(t, castiel.InsightNew, i.Status)
	})
}

func TestUpdateInsight_Transitions(t *testing.T) {
	svc, ctx := initInsightService(t)

	i := createTestInsight(t, svc, ctx, "deal slipping")

	ack := castiel.InsightAcknowledged
	got, err := svc.UpdateInsight(ctx, testTenantID, i.ID, castiel.InsightUpdate{Status: &ack})
	require.NoError(t, err)
	assert.Equal(t, castiel.InsightAcknowledged, got.Status)

	resolved := castiel.InsightResolved
	got, err = svc.UpdateInsight(ctx, testTenantID, i.ID, castiel.InsightUpdate{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, castiel.InsightResolved, got.Status)

	t.Run("resolved is terminal", func(t *testing.T) {
		_, err := svc.UpdateInsight(ctx, testTenantID, i.ID, castiel.InsightUpdate{Status: &ack})
		require.Error(t, err)
		assert.Equal(t, castiel.EInvalid, castiel.ErrorCode(err))
	})

	t.Run("new cannot resolve directly", func(t *testing.T) {
		fresh := createTestInsight(t, svc, ctx, "fresh")
		_, err := svc.UpdateInsight(ctx, testTenantID, fresh.ID, castiel.InsightUpdate{Status: &resolved})
		require.Error(t, err)
		assert.Equal(t, castiel.EInvalid, castiel.ErrorCode(err))
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		fresh := createTestInsight(t, svc, ctx, "idempotent")
		status := castiel.InsightNew
		got, err := svc.UpdateInsight(ctx, testTenantID, fresh.ID, castiel.InsightUpdate{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, castiel.InsightNew, got.Status)
	})

	t.Run("assignee and severity", func(t *testing.T) {
		assignee := platform.ID(40)
		sev := castiel.SeverityCritical
		got, err := svc.UpdateInsight(ctx, testTenantID, i.ID, castiel.InsightUpdate{
			Severity:   &sev,
			AssigneeID: &assignee,
		})
		require.NoError(t, err)
		assert.Equal(t, castiel.SeverityCritical, got.Severity)
		require.NotNil(t, got.AssigneeID)
		assert.Equal(t, assignee, *got.AssigneeID)
	})
}

func TestFindInsights(t *testing.T) {
	svc, ctx := initInsightService(t)

	first := createTestInsight(t, svc, ctx, "first")
	second := createTestInsight(t, svc, ctx, "second")

	insights, n, err := svc.FindInsights(ctx, castiel.InsightFilter{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, insights, 2)
	// Newest first.
	assert.Equal(t, second.ID, insights[0].ID)
	assert.Equal(t, first.ID, insights[1].ID)

	t.Run("by status", func(t *testing.T) {
		ack := castiel.InsightAcknowledged
		_, err := svc.UpdateInsight(ctx, testTenantID, first.ID, castiel.InsightUpdate{Status: &ack})
		require.NoError(t, err)

		insights, n, err := svc.FindInsights(ctx, castiel.InsightFilter{TenantID: testTenantID, Status: &ack})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, insights, 1)
		assert.Equal(t, first.ID, insights[0].ID)
	})

	t.Run("cross tenant", func(t *testing.T) {
		_, n, err := svc.FindInsights(ctx, castiel.InsightFilter{TenantID: platform.ID(11)})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestDeleteInsight(t *testing.T) {
	svc, ctx := initInsightService(t)

	i := createTestInsight(t, svc, ctx, "short lived")
	require.NoError(t, svc.AddInsightComment(ctx, testTenantID, &castiel.InsightComment{
		InsightID: i.ID,
		Body:      "looking at it",
	}))

	require.NoError(t, svc.DeleteInsight(ctx, testTenantID, i.ID))

	_, err := svc.FindInsightByID(ctx, testTenantID, i.ID)
	require.Error(t, err)
	assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))

	_, err = svc.FindInsightComments(ctx, testTenantID, i.ID)
	require.Error(t, err)
}

func TestInsightComments(t *testing.T) {
	svc, ctx := initInsightService(t)

	i := createTestInsight(t, svc, ctx, "deal slipping")

	c1 := &castiel.InsightComment{InsightID: i.ID, Body: "first look"}
	require.NoError(t, svc.AddInsightComment(ctx, testTenantID, c1))
	assert.True(t, c1.ID.Valid())
	assert.Equal(t, testUserID, c1.AuthorID, "author defaults to the calling user")

	c2 := &castiel.InsightComment{InsightID: i.ID, Body: "second look"}
	require.NoError(t, svc.AddInsightComment(ctx, testTenantID, c2))

	comments, err := svc.FindInsightComments(ctx, testTenantID, i.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first look", comments[0].Body)
	assert.Equal(t, "second look", comments[1].Body)

	t.Run("empty body", func(t *testing.T) {
		err := svc.AddInsightComment(ctx, testTenantID, &castiel.InsightComment{InsightID: i.ID})
		require.Error(t, err)
		assert.Equal(t, castiel.EEmptyValue, castiel.ErrorCode(err))
	})
}

func TestDeleteInsightComment(t *testing.T) {
	svc, ctx := initInsightService(t)

	i := createTestInsight(t, svc, ctx, "deal slipping")
	c := &castiel.InsightComment{InsightID: i.ID, Body: "noise"}
	require.NoError(t, svc.AddInsightComment(ctx, testTenantID, c))

	t.Run("stranger without permission", func(t *testing.T) {
		stranger := icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
			UserID: platform.ID(99),
			Status: castiel.Active,
		})
		err := svc.DeleteInsightComment(stranger, testTenantID, i.ID, c.ID)
		require.Error(t, err)
		assert.Equal(t, castiel.EForbidden, castiel.ErrorCode(err))
	})

	t.Run("operator", func(t *testing.T) {
		operator := icontext.SetAuthorizer(context.Background(), &castiel.Authorization{
			UserID:      platform.ID(99),
			Status:      castiel.Active,
			Permissions: castiel.OperPermissions(),
		})
		require.NoError(t, svc.DeleteInsightComment(operator, testTenantID, i.ID, c.ID))
	})

	t.Run("author", func(t *testing.T) {
		c := &castiel.InsightComment{InsightID: i.ID, Body: "mine"}
		require.NoError(t, svc.AddInsightComment(ctx, testTenantID, c))
		require.NoError(t, svc.DeleteInsightComment(ctx, testTenantID, i.ID, c.ID))

		err := svc.DeleteInsightComment(ctx, testTenantID, i.ID, c.ID)
		require.Error(t, err)
		assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
	})
}
