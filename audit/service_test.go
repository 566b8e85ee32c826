package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/audit"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/sqlite"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testTenantID = platform.ID(10)

func initAuditService(t *testing.T) *audit.Service {
	t.Helper()
	return audit.NewService(zaptest.NewLogger(t), sqlite.NewTestStore(t))
}

func recordTestEvent(t *testing.T, svc *audit.Service, action string, at time.Time) *castiel.AuditLogEntry {
	t.Helper()
	e := &castiel.AuditLogEntry{
		TenantID:     testTenantID,
		Actor:        platform.ID(20),
		Action:       action,
		ResourceType: castiel.ShardsResourceType,
		ResourceID:   platform.ID(30),
		Time:         at,
	}
	require.NoError(t, svc.RecordAuditEvent(context.Background(), e))
	return e
}

func TestRecordAuditEvent(t *testing.T) {
	svc := initAuditService(t)
	ctx := context.Background()

	e := &castiel.AuditLogEntry{
		TenantID:      testTenantID,
		Actor:         platform.ID(20),
		Action:        castiel.AuditActionCreate,
		ResourceType:  castiel.ShardsResourceType,
		ResourceID:    platform.ID(30),
		CorrelationID: "req-1",
		Detail:        map[string]interface{}{"name": "acme"},
	}
	require.NoError(t, svc.RecordAuditEvent(ctx, e))
	assert.True(t, e.ID.Valid())
	assert.False(t, e.Time.IsZero())

	got, n, err := svc.FindAuditEvents(ctx, castiel.AuditFilter{TenantID: testTenantID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, n)
	assert.Equal(t, e.ID, got[0].ID)
	assert.Equal(t, platform.ID(20), got[0].Actor)
	assert.Equal(t, "req-1", got[0].CorrelationID)
	assert.Equal(t, "acme", got[0].Detail["name"])
}

func TestRecordAuditEvent_Invalid(t *testing.T) {
	svc := initAuditService(t)

	err := svc.RecordAuditEvent(context.Background(), &castiel.AuditLogEntry{
		TenantID:     testTenantID,
		ResourceType: castiel.ShardsResourceType,
	})
	require.Error(t, err)
}

func TestFindAuditEvents_NewestFirst(t *testing.T) {
	svc := initAuditService(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recordTestEvent(t, svc, castiel.AuditActionCreate, base)
	recordTestEvent(t, svc, castiel.AuditActionUpdate, base.Add(time.Minute))
	recordTestEvent(t, svc, castiel.AuditActionDelete, base.Add(2*time.Minute))

	got, n, err := svc.FindAuditEvents(context.Background(), castiel.AuditFilter{TenantID: testTenantID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3, n)
	assert.Equal(t, castiel.AuditActionDelete, got[0].Action)
	assert.Equal(t, castiel.AuditActionCreate, got[2].Action)
}

func TestFindAuditEvents_Filters(t *testing.T) {
	svc := initAuditService(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recordTestEvent(t, svc, castiel.AuditActionCreate, base)
	recordTestEvent(t, svc, castiel.AuditActionUpdate, base.Add(time.Hour))

	action := castiel.AuditActionCreate
	got, _, err := svc.FindAuditEvents(ctx, castiel.AuditFilter{TenantID: testTenantID, Action: &action})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, castiel.AuditActionCreate, got[0].Action)

	after := base.Add(30 * time.Minute)
	got, _, err = svc.FindAuditEvents(ctx, castiel.AuditFilter{TenantID: testTenantID, After: &after})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, castiel.AuditActionUpdate, got[0].Action)

	got, _, err = svc.FindAuditEvents(ctx, castiel.AuditFilter{TenantID: platform.ID(99)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindAuditEvents_Pagination(t *testing.T) {
	svc := initAuditService(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		recordTestEvent(t, svc, castiel.AuditActionCreate, base.Add(time.Duration(i)*time.Minute))
	}

	got, n, err := svc.FindAuditEvents(context.Background(), castiel.AuditFilter{TenantID: testTenantID}, castiel.FindOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 5, n)
}

func TestPurgeAuditEvents(t *testing.T) {
	svc := initAuditService(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recordTestEvent(t, svc, castiel.AuditActionCreate, base)
	recordTestEvent(t, svc, castiel.AuditActionUpdate, base.Add(time.Hour))

	n, err := svc.PurgeAuditEvents(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _, err := svc.FindAuditEvents(ctx, castiel.AuditFilter{TenantID: testTenantID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, castiel.AuditActionUpdate, got[0].Action)
}

func TestSweeper(t *testing.T) {
	svc := initAuditService(t)
	base := time.Now().Add(-200 * 24 * time.Hour)
	recordTestEvent(t, svc, castiel.AuditActionCreate, base)
	recordTestEvent(t, svc, castiel.AuditActionUpdate, time.Now())

	mock := clock.NewMock()
	mock.Set(time.Now())
	sweeper := audit.NewSweeper(zaptest.NewLogger(t), svc,
		audit.WithClock(mock),
		audit.WithRetention(audit.DefaultRetention),
		audit.WithSweepInterval(time.Minute),
	)
	sweeper.Open(context.Background())
	defer sweeper.Close()

	// let the sweep loop register its ticker before advancing the clock
	time.Sleep(10 * time.Millisecond)
	mock.Add(2 * time.Minute)

	require.Eventually(t, func() bool {
		_, n, err := svc.FindAuditEvents(context.Background(), castiel.AuditFilter{TenantID: testTenantID})
		return err == nil && n == 1
	}, 5*time.Second, 10*time.Millisecond)
}
