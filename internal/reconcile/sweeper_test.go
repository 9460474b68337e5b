package reconcile_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/idempotency"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/reconcile"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type sweeperMocks struct {
	store   *mocks.MockStore
	budget  *mocks.MockEngine
	emitter *mocks.MockEmitter
	clock   *mocks.MockClock
}

func newSweeper(ctrl *gomock.Controller) (reconcile.Sweeper, *sweeperMocks) {
	m := &sweeperMocks{
		store:   mocks.NewMockStore(ctrl),
		budget:  mocks.NewMockEngine(ctrl),
		emitter: mocks.NewMockEmitter(ctrl),
		clock:   mocks.NewMockClock(ctrl),
	}
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	m.clock.EXPECT().Now().Return(now).AnyTimes()
	m.clock.EXPECT().Since(gomock.Any()).Return(time.Second).AnyTimes()

	cfg := &reconcile.Config{
		Interval:            time.Hour,
		WorkerPoolSize:      4,
		StaleReservationAge: 10 * time.Minute,
		StaleIdempotencyAge: 10 * time.Minute,
		ClawbackSLA:         72 * time.Hour,
	}
	guard := idempotency.NewGuard(m.store)
	return reconcile.NewSweeper(cfg, m.store, m.budget, guard, m.emitter, m.clock), m
}

// expectNoRepairs stubs the repair sweeps to find nothing stale or drifted.
func expectNoRepairs(m *sweeperMocks) {
	m.store.EXPECT().ListStaleReservations(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListActiveIdempotencyRecords(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.budget.EXPECT().ResyncCounters(gomock.Any()).Return(0, nil)
}

func decodeChecks(t *testing.T, run *schema.ReconciliationRun) map[string]reconcile.CheckResult {
	t.Helper()
	var checks map[string]reconcile.CheckResult
	require.NoError(t, json.Unmarshal(run.Checks, &checks))
	return checks
}

func TestRunOnce_AllChecksPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)
	expectNoRepairs(m)

	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().GetUnbalancedTransfers(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetImbalancedAccounts(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetOvercommittedTenants(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListUnresolvedClawbacks(gomock.Any(), gomock.Any()).Return(nil, nil)

	var updated *schema.ReconciliationRun
	m.store.EXPECT().UpdateReconciliationRun(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, run *schema.ReconciliationRun) error {
			updated = run
			return nil
		})

	run, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, 0, run.AnomalyCount)
	require.NotNil(t, run.FinishedAt)

	checks := decodeChecks(t, run)
	require.Len(t, checks, 4)
	for name, result := range checks {
		assert.Equal(t, schema.CheckStatusPass, result.Status, name)
		assert.Zero(t, result.Anomalies, name)
	}
}

func TestRunOnce_ImbalancedAccountNeedsAttention(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)
	expectNoRepairs(m)

	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().GetUnbalancedTransfers(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetImbalancedAccounts(gomock.Any()).Return([]store.ImbalancedAccount{
		{
			AccountID:    42,
			EntryBalance: decimal.RequireFromString("10"),
			LotBalance:   decimal.RequireFromString("7.5"),
		},
	}, nil)
	m.store.EXPECT().GetOvercommittedTenants(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListUnresolvedClawbacks(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.store.EXPECT().UpdateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)

	m.emitter.EXPECT().Emit(gomock.Any(), domain.EventCategoryReconcile, domain.EventTypeAnomaly, "", gomock.Any())

	run, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, run.AnomalyCount)
	checks := decodeChecks(t, run)
	assert.Equal(t, schema.CheckStatusNeedsAttention, checks[reconcile.CheckLotBalance].Status)
	assert.Equal(t, 1, checks[reconcile.CheckLotBalance].Anomalies)
	assert.Contains(t, checks[reconcile.CheckLotBalance].Detail, "42")
	assert.Equal(t, schema.CheckStatusPass, checks[reconcile.CheckTransferPairing].Status)
}

// A check whose query fails must report needs_attention, never a pass.
func TestRunOnce_QueryErrorIsNeverAPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)
	expectNoRepairs(m)

	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().GetUnbalancedTransfers(gomock.Any()).Return(nil, errors.New("connection reset"))
	m.store.EXPECT().GetImbalancedAccounts(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetOvercommittedTenants(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListUnresolvedClawbacks(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.store.EXPECT().UpdateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)

	m.emitter.EXPECT().Emit(gomock.Any(), domain.EventCategoryReconcile, domain.EventTypeAnomaly, "", gomock.Any())

	run, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, run.AnomalyCount)
	checks := decodeChecks(t, run)
	assert.Equal(t, schema.CheckStatusNeedsAttention, checks[reconcile.CheckTransferPairing].Status)
	assert.Contains(t, checks[reconcile.CheckTransferPairing].Detail, "connection reset")
}

func TestRunOnce_OvercommittedTenantAndOverdueClawback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)
	expectNoRepairs(m)

	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().GetUnbalancedTransfers(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetImbalancedAccounts(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetOvercommittedTenants(gomock.Any()).Return([]store.OvercommittedTenant{
		{
			TenantID:  "tenant-1",
			Committed: decimal.RequireFromString("9"),
			Reserved:  decimal.RequireFromString("6"),
		},
	}, nil)
	m.store.EXPECT().ListUnresolvedClawbacks(gomock.Any(), gomock.Any()).Return([]schema.ClawbackReceivable{
		{ID: 7, AccountID: 3, ReservationID: "01HXRESV", Amount: decimal.RequireFromString("1.5")},
	}, nil)
	m.store.EXPECT().UpdateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)

	m.emitter.EXPECT().Emit(gomock.Any(), domain.EventCategoryReconcile, domain.EventTypeAnomaly, "", gomock.Any()).Times(2)

	run, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, run.AnomalyCount)
	checks := decodeChecks(t, run)
	assert.Equal(t, schema.CheckStatusNeedsAttention, checks[reconcile.CheckBudgetSoundness].Status)
	assert.Contains(t, checks[reconcile.CheckBudgetSoundness].Detail, "tenant-1")
	assert.Equal(t, schema.CheckStatusNeedsAttention, checks[reconcile.CheckClawbackSLA].Status)
	assert.Contains(t, checks[reconcile.CheckClawbackSLA].Detail, "7")
}

func TestRunOnce_AbortsStaleReservations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)

	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().ListStaleReservations(gomock.Any(), time.Date(2026, 3, 14, 11, 50, 0, 0, time.UTC)).
		Return([]schema.Reservation{
			{ID: "01HXSTALE1", TenantID: "tenant-1"},
			{ID: "01HXSTALE2", TenantID: "tenant-2"},
		}, nil)
	m.budget.EXPECT().Abort(gomock.Any(), "01HXSTALE1").Return(&domain.Settlement{ReservationID: "01HXSTALE1"}, nil)
	m.budget.EXPECT().Abort(gomock.Any(), "01HXSTALE2").Return(nil, errors.New("redis down"))
	m.store.EXPECT().ListActiveIdempotencyRecords(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.budget.EXPECT().ResyncCounters(gomock.Any()).Return(0, nil)

	m.store.EXPECT().GetUnbalancedTransfers(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetImbalancedAccounts(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetOvercommittedTenants(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListUnresolvedClawbacks(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.store.EXPECT().UpdateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)

	// The failed abort is logged and retried next sweep; the run still completes.
	run, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, run.AnomalyCount)
}

func TestRunOnce_MarksAbandonedOperationsResumeLost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)

	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().ListStaleReservations(gomock.Any(), gomock.Any()).Return(nil, nil)

	partial := decimal.RequireFromString("0.25")
	m.store.EXPECT().ListActiveIdempotencyRecords(gomock.Any(), gomock.Any()).
		Return([]schema.IdempotencyRecord{
			{ID: 11, TenantID: "tenant-1", IdempotencyKey: "op-1", State: domain.IdempotencyStateActive, PartialCost: partial},
		}, nil)
	m.store.EXPECT().TransitionIdempotencyRecord(gomock.Any(), int64(11),
		domain.IdempotencyStateActive, domain.IdempotencyStateResumeLost, nil, partial).
		Return(true, nil)
	m.budget.EXPECT().ResyncCounters(gomock.Any()).Return(0, nil)

	m.store.EXPECT().GetUnbalancedTransfers(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetImbalancedAccounts(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetOvercommittedTenants(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListUnresolvedClawbacks(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.store.EXPECT().UpdateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)

	run, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, run.AnomalyCount)
}

func TestRunOnce_ResyncsDriftedBudgetCounters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)

	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().ListStaleReservations(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListActiveIdempotencyRecords(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.budget.EXPECT().ResyncCounters(gomock.Any()).Return(2, nil)

	m.store.EXPECT().GetUnbalancedTransfers(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetImbalancedAccounts(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().GetOvercommittedTenants(gomock.Any()).Return(nil, nil)
	m.store.EXPECT().ListUnresolvedClawbacks(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.store.EXPECT().UpdateReconciliationRun(gomock.Any(), gomock.Any()).Return(nil)

	// Repaired counters are a completed sweep, not an anomaly.
	run, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, run.AnomalyCount)
}

func TestRunOnce_CreateRunFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sweeper, m := newSweeper(ctrl)
	m.store.EXPECT().CreateReconciliationRun(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	run, err := sweeper.RunOnce(context.Background())
	require.Error(t, err)
	assert.Nil(t, run)
}
