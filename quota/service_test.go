package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/mock"
	"github.com/Edgame2/castiel/quota"
	"github.com/Edgame2/castiel/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testTenantID = platform.ID(10)

var (
	periodStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

func initQuotaService(t *testing.T) *quota.Service {
	t.Helper()
	return quota.NewService(zaptest.NewLogger(t), sqlite.NewTestStore(t), nil, nil)
}

func createTestQuota(t *testing.T, svc *quota.Service, name string, target int64, parentID *platform.ID) *castiel.Quota {
	t.Helper()
	q := &castiel.Quota{
		TenantID:    testTenantID,
		OwnerID:     platform.ID(20),
		ParentID:    parentID,
		Name:        name,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Target:      decimal.NewFromInt(target),
	}
	require.NoError(t, svc.CreateQuota(context.Background(), q))
	return q
}

func TestCreateQuota(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	q := createTestQuota(t, svc, "Q1 EMEA", 100000, nil)
	assert.True(t, q.ID.Valid())
	assert.False(t, q.CreatedAt.IsZero())
	assert.True(t, q.Attained.IsZero())

	got, err := svc.FindQuotaByID(ctx, testTenantID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q1 EMEA", got.Name)
	assert.True(t, got.Target.Equal(decimal.NewFromInt(100000)))
	assert.Nil(t, got.ParentID)
}

func TestCreateQuota_Invalid(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		quota castiel.Quota
	}{
		{
			name: "empty name",
			quota: castiel.Quota{
				TenantID:    testTenantID,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
			},
		},
		{
			name: "inverted period",
			quota: castiel.Quota{
				TenantID:    testTenantID,
				Name:        "backwards",
				PeriodStart: periodEnd,
				PeriodEnd:   periodStart,
			},
		},
		{
			name: "negative target",
			quota: castiel.Quota{
				TenantID:    testTenantID,
				Name:        "negative",
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
				Target:      decimal.NewFromInt(-1),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateQuota(ctx, &tt.quota)
			require.Error(t, err)
		})
	}
}

func TestCreateQuota_ParentPeriodContainment(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	parent := createTestQuota(t, svc, "FY2026", 400000, nil)

	child := &castiel.Quota{
		TenantID:    testTenantID,
		ParentID:    &parent.ID,
		Name:        "spills over",
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd.AddDate(0, 1, 0),
		Target:      decimal.NewFromInt(100000),
	}
	err := svc.CreateQuota(ctx, child)
	require.Error(t, err)
	assert.Equal(t, castiel.EInvalid, castiel.ErrorCode(err))

	child.PeriodEnd = periodEnd
	require.NoError(t, svc.CreateQuota(ctx, child))

	t.Run("missing parent", func(t *testing.T) {
		missing := platform.ID(999)
		err := svc.CreateQuota(ctx, &castiel.Quota{
			TenantID:    testTenantID,
			ParentID:    &missing,
			Name:        "orphan",
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
		require.Error(t, err)
		assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
	})
}

func TestUpdateQuota(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	parent := createTestQuota(t, svc, "FY2026", 400000, nil)
	child := createTestQuota(t, svc, "Q1", 100000, &parent.ID)

	name := "Q1 Americas"
	target := decimal.NewFromInt(120000)
	got, err := svc.UpdateQuota(ctx, testTenantID, child.ID, castiel.QuotaUpdate{
		Name:   &name,
		Target: &target,
	})
	require.NoError(t, err)
	assert.Equal(t, "Q1 Americas", got.Name)
	assert.True(t, got.Target.Equal(target))

	t.Run("period change outside parent is refused", func(t *testing.T) {
		end := periodEnd.AddDate(1, 0, 0)
		_, err := svc.UpdateQuota(ctx, testTenantID, child.ID, castiel.QuotaUpdate{
			PeriodEnd: &end,
		})
		require.Error(t, err)
		assert.Equal(t, castiel.EInvalid, castiel.ErrorCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.UpdateQuota(ctx, testTenantID, platform.ID(999), castiel.QuotaUpdate{Name: &name})
		require.Error(t, err)
		assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
	})
}

func TestSetAttainment(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	q := createTestQuota(t, svc, "Q1", 100000, nil)

	got, err := svc.SetAttainment(ctx, testTenantID, q.ID, decimal.NewFromInt(25000))
	require.NoError(t, err)
	assert.True(t, got.Attained.Equal(decimal.NewFromInt(25000)))

	_, err = svc.SetAttainment(ctx, testTenantID, q.ID, decimal.NewFromInt(40000))
	require.NoError(t, err)

	snaps, err := svc.FindQuotaSnapshots(ctx, testTenantID, q.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].Attained.Equal(decimal.NewFromInt(25000)))
	assert.True(t, snaps[1].Attained.Equal(decimal.NewFromInt(40000)))

	t.Run("negative attainment is refused", func(t *testing.T) {
		_, err := svc.SetAttainment(ctx, testTenantID, q.ID, decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.Equal(t, castiel.EInvalid, castiel.ErrorCode(err))
	})
}

func TestDeleteQuota(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	parent := createTestQuota(t, svc, "FY2026", 400000, nil)
	child := createTestQuota(t, svc, "Q1", 100000, &parent.ID)

	err := svc.DeleteQuota(ctx, testTenantID, parent.ID)
	require.Error(t, err)
	assert.Equal(t, castiel.EConflict, castiel.ErrorCode(err))

	require.NoError(t, svc.DeleteQuota(ctx, testTenantID, child.ID))
	require.NoError(t, svc.DeleteQuota(ctx, testTenantID, parent.ID))

	_, err = svc.FindQuotaByID(ctx, testTenantID, parent.ID)
	require.Error(t, err)
	assert.Equal(t, castiel.ENotFound, castiel.ErrorCode(err))
}

func TestFindQuotas(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	parent := createTestQuota(t, svc, "FY2026", 400000, nil)
	createTestQuota(t, svc, "Q1", 100000, &parent.ID)
	createTestQuota(t, svc, "Q2", 100000, &parent.ID)

	other := &castiel.Quota{
		TenantID:    platform.ID(11),
		Name:        "other tenant",
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	require.NoError(t, svc.CreateQuota(ctx, other))

	t.Run("tenant scoped", func(t *testing.T) {
		quotas, n, err := svc.FindQuotas(ctx, castiel.QuotaFilter{TenantID: testTenantID})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Len(t, quotas, 3)
	})

	t.Run("roots only", func(t *testing.T) {
		quotas, n, err := svc.FindQuotas(ctx, castiel.QuotaFilter{TenantID: testTenantID, RootsOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, quotas, 1)
		assert.Equal(t, parent.ID, quotas[0].ID)
	})

	t.Run("by parent", func(t *testing.T) {
		quotas, n, err := svc.FindQuotas(ctx, castiel.QuotaFilter{TenantID: testTenantID, ParentID: &parent.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, quotas, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		quotas, n, err := svc.FindQuotas(ctx, castiel.QuotaFilter{TenantID: testTenantID}, castiel.FindOptions{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Len(t, quotas, 1)
	})
}

func TestRollupQuota(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	parent := createTestQuota(t, svc, "FY2026", 100000, nil)
	q1 := createTestQuota(t, svc, "Q1", 50000, &parent.ID)
	q2 := createTestQuota(t, svc, "Q2", 50000, &parent.ID)
	leaf := createTestQuota(t, svc, "Q1 West", 25000, &q1.ID)

	for id, amount := range map[platform.ID]int64{
		q1.ID:   20000,
		q2.ID:   30000,
		leaf.ID: 10000,
	} {
		_, err := svc.SetAttainment(ctx, testTenantID, id, decimal.NewFromInt(amount))
		require.NoError(t, err)
	}

	r, err := svc.RollupQuota(ctx, testTenantID, parent.ID)
	require.NoError(t, err)
	assert.True(t, r.TargetTotal.Equal(decimal.NewFromInt(225000)), "target total %s", r.TargetTotal)
	assert.True(t, r.AttainedTotal.Equal(decimal.NewFromInt(60000)), "attained total %s", r.AttainedTotal)
	assert.True(t, r.Percent.Equal(decimal.NewFromFloat(26.67)), "percent %s", r.Percent)
	require.Len(t, r.Children, 2)

	t.Run("zero target reports zero percent", func(t *testing.T) {
		q := createTestQuota(t, svc, "stretch", 0, nil)
		r, err := svc.RollupQuota(ctx, testTenantID, q.ID)
		require.NoError(t, err)
		assert.True(t, r.Percent.IsZero())
	})
}

func TestForecastQuota_Linear(t *testing.T) {
	svc := initQuotaService(t)
	ctx := context.Background()

	q := createTestQuota(t, svc, "Q1", 100000, nil)
	for _, amount := range []int64{10000, 20000, 30000} {
		_, err := svc.SetAttainment(ctx, testTenantID, q.ID, decimal.NewFromInt(amount))
		require.NoError(t, err)
	}

	f, err := svc.ForecastQuota(ctx, testTenantID, q.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, castiel.ForecastSourceLinear, f.Source)
	assert.Equal(t, 2, f.Periods)
	// Slope 10000 per step from 30000 over 2 steps.
	assert.True(t, f.P50.Equal(decimal.NewFromInt(50000)), "p50 %s", f.P50)
	assert.True(t, f.P10.LessThan(f.P50))
	assert.True(t, f.P90.GreaterThan(f.P50))

	t.Run("flat without history", func(t *testing.T) {
		frozen := createTestQuota(t, svc, "no history", 100000, nil)
		f, err := svc.ForecastQuota(ctx, testTenantID, frozen.ID, 3)
		require.NoError(t, err)
		assert.True(t, f.P50.IsZero())
	})

	t.Run("invalid periods", func(t *testing.T) {
		_, err := svc.ForecastQuota(ctx, testTenantID, q.ID, 0)
		require.Error(t, err)
		assert.Equal(t, castiel.EInvalid, castiel.ErrorCode(err))
	})
}

func TestForecastQuota_Model(t *testing.T) {
	models := &mock.AIModelService{
		FindAIModelsFn: func(_ context.Context, filter castiel.AIModelFilter, _ ...castiel.FindOptions) ([]*castiel.AIModel, int, error) {
			require.Equal(t, testTenantID, filter.TenantID)
			require.NotNil(t, filter.Kind)
			assert.Equal(t, castiel.ForecastingModel, *filter.Kind)
			return []*castiel.AIModel{{ID: 7, TenantID: testTenantID, Kind: castiel.ForecastingModel, Status: castiel.AIModelDeployed}}, 1, nil
		},
	}

	p10 := decimal.NewFromInt(40000)
	p50 := decimal.NewFromInt(60000)
	p90 := decimal.NewFromInt(80000)
	var scoredModel platform.ID
	scorer := &mock.ScoringService{
		ScoreFn: func(_ context.Context, _, modelID platform.ID, inputs []castiel.ScoreInput) ([]castiel.ScoreResult, error) {
			scoredModel = modelID
			require.Len(t, inputs, 1)
			assert.Equal(t, 4, inputs[0]["periods"])
			return []castiel.ScoreResult{{P10: &p10, P50: &p50, P90: &p90}}, nil
		},
	}

	svc := quota.NewService(zaptest.NewLogger(t), sqlite.NewTestStore(t), models, scorer)
	ctx := context.Background()

	q := createTestQuota(t, svc, "Q1", 100000, nil)
	f, err := svc.ForecastQuota(ctx, testTenantID, q.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, castiel.ForecastSourceModel, f.Source)
	assert.Equal(t, platform.ID(7), scoredModel)
	assert.True(t, f.P10.Equal(p10))
	assert.True(t, f.P50.Equal(p50))
	assert.True(t, f.P90.Equal(p90))
}

func TestForecastQuota_ModelFailureSurfaces(t *testing.T) {
	models := &mock.AIModelService{
		FindAIModelsFn: func(_ context.Context, _ castiel.AIModelFilter, _ ...castiel.FindOptions) ([]*castiel.AIModel, int, error) {
			return []*castiel.AIModel{{ID: 7, TenantID: testTenantID, Kind: castiel.ForecastingModel, Status: castiel.AIModelDeployed}}, 1, nil
		},
	}
	scorer := &mock.ScoringService{
		ScoreFn: func(_ context.Context, _, _ platform.ID, _ []castiel.ScoreInput) ([]castiel.ScoreResult, error) {
			return nil, &castiel.Error{Code: castiel.EUnavailable, Msg: "scoring endpoint unreachable"}
		},
	}

	svc := quota.NewService(zaptest.NewLogger(t), sqlite.NewTestStore(t), models, scorer)
	q := createTestQuota(t, svc, "Q1", 100000, nil)

	_, err := svc.ForecastQuota(context.Background(), testTenantID, q.ID, 2)
	require.Error(t, err)
	assert.Equal(t, castiel.EUnavailable, castiel.ErrorCode(err))
}
