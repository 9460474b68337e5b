package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/budget"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/emitter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/idempotency"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// Check names as persisted in a run's checks JSON.
const (
	CheckTransferPairing = "transfer_pairing"
	CheckLotBalance      = "lot_balance"
	CheckBudgetSoundness = "budget_soundness"
	CheckClawbackSLA     = "clawback_sla"
)

// Config holds configuration for the reconciliation sweeper
type Config struct {
	Interval            time.Duration // Time between sweep cycles
	WorkerPoolSize      int           // Concurrent check workers
	StaleReservationAge time.Duration // Open reservations older than this are force-aborted
	StaleIdempotencyAge time.Duration // Active idempotency records older than this are marked resume-lost
	ClawbackSLA         time.Duration // Receivables unresolved past this age are anomalies
}

// CheckResult is one invariant check's outcome within a run.
type CheckResult struct {
	Status    schema.CheckStatus `json:"status"`
	Detail    string             `json:"detail,omitempty"`
	Anomalies int                `json:"anomalies"`
}

// Sweeper periodically verifies cross-store invariants and repairs
// abandoned in-flight state.
type Sweeper interface {
	// Start begins the sweep loop. Blocks until Stop or context cancellation.
	Start(ctx context.Context) error
	// Stop gracefully stops the sweeper
	Stop(ctx context.Context) error
	// RunOnce executes a single sweep immediately and returns the persisted run
	RunOnce(ctx context.Context) (*schema.ReconciliationRun, error)
	// Name returns the sweeper's name
	Name() string
}

type sweeper struct {
	config    *Config
	store     store.Store
	budget    budget.Engine
	guard     *idempotency.Guard
	emitter   emitter.Emitter
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewSweeper creates a new reconciliation sweeper
func NewSweeper(
	config *Config,
	st store.Store,
	budgetEngine budget.Engine,
	guard *idempotency.Guard,
	em emitter.Emitter,
	clock adapter.Clock,
) Sweeper {
	return &sweeper{
		config:    config,
		store:     st,
		budget:    budgetEngine,
		guard:     guard,
		emitter:   em,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *sweeper) Name() string {
	return "reconciliation-sweeper"
}

// Start begins the sweep loop, running one cycle per interval
func (s *sweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting reconciliation sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("clawback_sla", s.config.ClawbackSLA),
	)

	ticker := s.clock.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Reconciliation sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Reconciliation sweeper stop requested")
			return nil
		case <-ticker.Chan():
			if _, err := s.RunOnce(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *sweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping reconciliation sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Reconciliation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Reconciliation sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunOnce executes the repair sweeps and all invariant checks, persisting the
// outcome as a ReconciliationRun. A check that fails to execute is reported
// as needs_attention, never as a pass.
func (s *sweeper) RunOnce(ctx context.Context) (*schema.ReconciliationRun, error) {
	startedAt := s.clock.Now()
	run := &schema.ReconciliationRun{
		ID:        ulid.MustNewDefault(startedAt).String(),
		StartedAt: startedAt,
		Checks:    datatypes.JSON([]byte("{}")),
	}
	if err := s.store.CreateReconciliationRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create reconciliation run: %w", err)
	}

	logger.InfoCtx(ctx, "Starting reconciliation sweep", zap.String("run_id", run.ID))

	// Repairs run before checks so freshly abandoned state doesn't trip
	// the invariants it is about to be cleaned out of. The counter resync
	// runs last so it sees the holds the stale-reservation pass just closed.
	s.abortStaleReservations(ctx)
	s.markLostIdempotencyRecords(ctx)
	s.resyncBudgetCounters(ctx)

	checks := map[string]func(context.Context) CheckResult{
		CheckTransferPairing: s.checkTransferPairing,
		CheckLotBalance:      s.checkLotBalance,
		CheckBudgetSoundness: s.checkBudgetSoundness,
		CheckClawbackSLA:     s.checkClawbackSLA,
	}

	pool := pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(len(checks)),
		pond.WithContext(ctx),
	)

	var mu sync.Mutex
	results := make(map[string]CheckResult, len(checks))
	for name, check := range checks {
		pool.Submit(func() {
			result := check(ctx)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		})
	}
	pool.StopAndWait()

	anomalyCount := 0
	for name, result := range results {
		if result.Status != schema.CheckStatusNeedsAttention {
			continue
		}
		anomalyCount++
		logger.WarnCtx(ctx, "Reconciliation check needs attention",
			zap.String("run_id", run.ID),
			zap.String("check", name),
			zap.String("detail", result.Detail),
			zap.Int("anomalies", result.Anomalies),
		)
		s.emitter.Emit(ctx, domain.EventCategoryReconcile, domain.EventTypeAnomaly, "", map[string]interface{}{
			"run_id":    run.ID,
			"check":     name,
			"detail":    result.Detail,
			"anomalies": result.Anomalies,
		})
	}

	checksJSON, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal check results: %w", err)
	}
	finishedAt := s.clock.Now()
	run.FinishedAt = &finishedAt
	run.Checks = datatypes.JSON(checksJSON)
	run.AnomalyCount = anomalyCount
	if err := s.store.UpdateReconciliationRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to update reconciliation run: %w", err)
	}

	logger.InfoCtx(ctx, "Reconciliation sweep completed",
		zap.String("run_id", run.ID),
		zap.Duration("duration", s.clock.Since(startedAt)),
		zap.Int("anomaly_count", anomalyCount),
	)
	return run, nil
}

// abortStaleReservations force-settles reservations still open past the
// stale age. Abort charges the full ceiling, so an abandoned stream can
// never cost less than the worst case it reserved for.
func (s *sweeper) abortStaleReservations(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.config.StaleReservationAge)
	stale, err := s.store.ListStaleReservations(ctx, cutoff)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to list stale reservations: %w", err))
		return
	}
	for _, resv := range stale {
		if _, err := s.budget.Abort(ctx, resv.ID); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to abort stale reservation: %w", err),
				zap.String("reservation_id", resv.ID),
				zap.String("tenant_id", resv.TenantID),
			)
			continue
		}
		logger.InfoCtx(ctx, "Aborted stale reservation",
			zap.String("reservation_id", resv.ID),
			zap.String("tenant_id", resv.TenantID),
		)
	}
}

// markLostIdempotencyRecords transitions long-active records to resume_lost
// so their clients get a terminal answer instead of an in-flight conflict.
func (s *sweeper) markLostIdempotencyRecords(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.config.StaleIdempotencyAge)
	records, err := s.store.ListActiveIdempotencyRecords(ctx, cutoff)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to list active idempotency records: %w", err))
		return
	}
	for i := range records {
		record := &records[i]
		if err := s.guard.MarkResumeLost(ctx, record, record.PartialCost); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to mark idempotency record resume-lost: %w", err),
				zap.String("tenant_id", record.TenantID),
				zap.String("idempotency_key", record.IdempotencyKey),
			)
			continue
		}
		logger.InfoCtx(ctx, "Marked abandoned operation resume-lost",
			zap.String("tenant_id", record.TenantID),
			zap.String("idempotency_key", record.IdempotencyKey),
		)
	}
}

// resyncBudgetCounters rewrites each tenant's shared budget counters from
// the durable reservation rows. A settlement whose counter move was lost
// after the durable close leaves the shared 'reserved' field permanently
// inflated; this pass is what clears it.
func (s *sweeper) resyncBudgetCounters(ctx context.Context) {
	repaired, err := s.budget.ResyncCounters(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to resync budget counters: %w", err))
		return
	}
	if repaired > 0 {
		logger.InfoCtx(ctx, "Resynced drifted budget counters",
			zap.Int("tenants_repaired", repaired),
		)
	}
}

// checkTransferPairing verifies every transfer's ledger entries net to zero.
func (s *sweeper) checkTransferPairing(ctx context.Context) CheckResult {
	unbalanced, err := s.store.GetUnbalancedTransfers(ctx)
	if err != nil {
		return failedCheck("failed to query transfer pairing", err)
	}
	if len(unbalanced) > 0 {
		ids := make([]string, 0, len(unbalanced))
		for _, t := range unbalanced {
			ids = append(ids, t.TransferID)
		}
		return CheckResult{
			Status:    schema.CheckStatusNeedsAttention,
			Detail:    fmt.Sprintf("transfers with non-zero net entries: %v", ids),
			Anomalies: len(unbalanced),
		}
	}
	return CheckResult{Status: schema.CheckStatusPass}
}

// checkLotBalance verifies entry-derived balances agree with lot remainders.
func (s *sweeper) checkLotBalance(ctx context.Context) CheckResult {
	imbalanced, err := s.store.GetImbalancedAccounts(ctx)
	if err != nil {
		return failedCheck("failed to query lot balances", err)
	}
	if len(imbalanced) > 0 {
		ids := make([]int64, 0, len(imbalanced))
		for _, a := range imbalanced {
			ids = append(ids, a.AccountID)
		}
		return CheckResult{
			Status:    schema.CheckStatusNeedsAttention,
			Detail:    fmt.Sprintf("accounts whose entries disagree with lot remainders: %v", ids),
			Anomalies: len(imbalanced),
		}
	}
	return CheckResult{Status: schema.CheckStatusPass}
}

// checkBudgetSoundness verifies no tenant's finalized spend exceeds its
// cumulative reservations.
func (s *sweeper) checkBudgetSoundness(ctx context.Context) CheckResult {
	overcommitted, err := s.store.GetOvercommittedTenants(ctx)
	if err != nil {
		return failedCheck("failed to query budget soundness", err)
	}
	if len(overcommitted) > 0 {
		ids := make([]string, 0, len(overcommitted))
		for _, t := range overcommitted {
			ids = append(ids, t.TenantID)
		}
		return CheckResult{
			Status:    schema.CheckStatusNeedsAttention,
			Detail:    fmt.Sprintf("tenants with committed spend above total reserved: %v", ids),
			Anomalies: len(overcommitted),
		}
	}
	return CheckResult{Status: schema.CheckStatusPass}
}

// checkClawbackSLA flags receivables left unresolved past the SLA window.
func (s *sweeper) checkClawbackSLA(ctx context.Context) CheckResult {
	cutoff := s.clock.Now().Add(-s.config.ClawbackSLA)
	overdue, err := s.store.ListUnresolvedClawbacks(ctx, cutoff)
	if err != nil {
		return failedCheck("failed to query unresolved clawbacks", err)
	}
	if len(overdue) > 0 {
		ids := make([]int64, 0, len(overdue))
		for _, r := range overdue {
			ids = append(ids, r.ID)
		}
		return CheckResult{
			Status:    schema.CheckStatusNeedsAttention,
			Detail:    fmt.Sprintf("receivables unresolved past SLA: %v", ids),
			Anomalies: len(overdue),
		}
	}
	return CheckResult{Status: schema.CheckStatusPass}
}

func failedCheck(msg string, err error) CheckResult {
	return CheckResult{
		Status:    schema.CheckStatusNeedsAttention,
		Detail:    fmt.Sprintf("%s: %v", msg, err),
		Anomalies: 1,
	}
}
