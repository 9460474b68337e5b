package budget

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/emitter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// CeilingMultiplier bounds the worst-case cost of a single request relative
// to its admission-time estimate.
const CeilingMultiplier = 3

// Counters are held in the shared store as integer micro-credits so that the
// check-and-reserve scripts can use plain integer arithmetic.
const microShift = 6

// reserveScript atomically admits a hold against the tenant's limit. The
// idempotency-key hash is consulted first so a retried reservation returns
// the original hold instead of stacking a second one. Reply is
// {status, "reservationID:amountMicro"}.
const reserveScript = `
local existing = redis.call('HGET', KEYS[2], ARGV[3])
if existing then
  return {'ALREADY_RESERVED', existing}
end
local committed = tonumber(redis.call('HGET', KEYS[1], 'committed') or '0')
local reserved = tonumber(redis.call('HGET', KEYS[1], 'reserved') or '0')
if committed + reserved + tonumber(ARGV[1]) > tonumber(ARGV[2]) then
  return {'BUDGET_EXCEEDED', ''}
end
redis.call('HINCRBY', KEYS[1], 'reserved', ARGV[1])
redis.call('HINCRBY', KEYS[1], 'reserved_total', ARGV[1])
redis.call('HSET', KEYS[2], ARGV[3], ARGV[4] .. ':' .. ARGV[1])
return {'RESERVED', ARGV[4] .. ':' .. ARGV[1]}
`

// finalizeScript moves an amount from reserved to committed in one round
// trip and returns {committed, reserved, reserved_total} for the post-move
// assertion and the durable write-back.
const finalizeScript = `
redis.call('HINCRBY', KEYS[1], 'reserved', -tonumber(ARGV[1]))
redis.call('HINCRBY', KEYS[1], 'committed', ARGV[2])
local committed = tonumber(redis.call('HGET', KEYS[1], 'committed') or '0')
local reserved = tonumber(redis.call('HGET', KEYS[1], 'reserved') or '0')
local total = tonumber(redis.call('HGET', KEYS[1], 'reserved_total') or '0')
return {committed, reserved, total}
`

// releaseScript backs out a hold that could not be durably recorded,
// including its idempotency-key entry.
const releaseScript = `
redis.call('HINCRBY', KEYS[1], 'reserved', -tonumber(ARGV[1]))
redis.call('HINCRBY', KEYS[1], 'reserved_total', -tonumber(ARGV[1]))
redis.call('HDEL', KEYS[2], ARGV[2])
return 1
`

// resyncScript overwrites the shared counters with the durable rollup when
// they disagree. Returns 1 when a rewrite happened, 0 when the counters
// already matched.
const resyncScript = `
local committed = tonumber(redis.call('HGET', KEYS[1], 'committed') or '0')
local reserved = tonumber(redis.call('HGET', KEYS[1], 'reserved') or '0')
local total = tonumber(redis.call('HGET', KEYS[1], 'reserved_total') or '0')
if committed == tonumber(ARGV[1]) and reserved == tonumber(ARGV[2]) and total == tonumber(ARGV[3]) then
  return 0
end
redis.call('HSET', KEYS[1], 'committed', ARGV[1], 'reserved', ARGV[2], 'reserved_total', ARGV[3])
return 1
`

// Engine reserves spend against per-tenant limits and finalizes actual cost
// exactly once per reservation.
//
//go:generate mockgen -source=engine.go -destination=../mocks/budget.go -package=mocks -mock_names=Engine=MockEngine
type Engine interface {
	// Reserve atomically holds estimate against the tenant's limit. A retry
	// carrying the same idempotency key returns the original reservation.
	Reserve(ctx context.Context, tenantID string, estimate decimal.Decimal, idempotencyKey string) (*schema.Reservation, error)
	// Finalize settles a reservation at its actual cost, clamped to the
	// reservation ceiling. A repeat call is a no-op returning the stored
	// settlement.
	Finalize(ctx context.Context, reservationID string, actual decimal.Decimal) (*domain.Settlement, error)
	// Abort settles a reservation whose actual cost is unknown at the full
	// reservation ceiling.
	Abort(ctx context.Context, reservationID string) (*domain.Settlement, error)
	// ResyncCounters rewrites each tenant's shared counters from the durable
	// reservation rows, repairing drift left by a settlement whose counter
	// move failed after the durable close. Returns the number of tenants
	// whose counters were rewritten.
	ResyncCounters(ctx context.Context) (int, error)
}

type engine struct {
	store     store.Store
	rc        adapter.RedisClient
	emitter   emitter.Emitter
	clock     adapter.Clock
	keyPrefix string
}

// NewEngine creates a new budget reservation engine
func NewEngine(st store.Store, rc adapter.RedisClient, em emitter.Emitter, clock adapter.Clock, keyPrefix string) Engine {
	return &engine{
		store:     st,
		rc:        rc,
		emitter:   em,
		clock:     clock,
		keyPrefix: keyPrefix,
	}
}

func (e *engine) budgetKey(tenantID string) string {
	return fmt.Sprintf("%s:budget:%s", e.keyPrefix, tenantID)
}

func (e *engine) reservationKey(tenantID string) string {
	return fmt.Sprintf("%s:budget:resv:%s", e.keyPrefix, tenantID)
}

// toMicro converts credits to integer micro-credits, rounding up so the
// shared counters never under-hold.
func toMicro(d decimal.Decimal) int64 {
	return d.Shift(microShift).Ceil().IntPart()
}

func fromMicro(m int64) decimal.Decimal {
	return decimal.New(m, -microShift)
}

// Reserve atomically holds estimate against the tenant's limit
func (e *engine) Reserve(ctx context.Context, tenantID string, estimate decimal.Decimal, idempotencyKey string) (*schema.Reservation, error) {
	if !estimate.IsPositive() {
		return nil, fmt.Errorf("%w: estimate must be positive", domain.ErrValidation)
	}
	if idempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", domain.ErrValidation)
	}

	budget, err := e.store.GetTenantBudget(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant budget: %w", err)
	}
	if budget == nil {
		return nil, fmt.Errorf("%w: tenant budget not provisioned", domain.ErrNotFound)
	}

	now := e.clock.Now()
	reservationID := ulid.MustNewDefault(now).String()
	estimateMicro := toMicro(estimate)

	reply, err := e.rc.Eval(ctx, reserveScript,
		[]string{e.budgetKey(tenantID), e.reservationKey(tenantID)},
		estimateMicro, toMicro(budget.SpendLimit), idempotencyKey, reservationID)
	if err != nil {
		// The authoritative counters are unreachable; admitting anyway would
		// make the limit unenforceable.
		return nil, fmt.Errorf("%w: budget store unreachable: %v", domain.ErrUpstreamUnavailable, err)
	}

	status, payload, err := parseReserveReply(reply)
	if err != nil {
		return nil, err
	}

	switch status {
	case "BUDGET_EXCEEDED":
		return nil, fmt.Errorf("%w: tenant %s", domain.ErrBudgetExceeded, tenantID)

	case "ALREADY_RESERVED":
		existingID, amountMicro, err := splitHoldPayload(payload)
		if err != nil {
			return nil, err
		}
		return e.recoverReservation(ctx, tenantID, idempotencyKey, existingID, amountMicro, now)

	case "RESERVED":
		reservation := &schema.Reservation{
			ID:             reservationID,
			TenantID:       tenantID,
			IdempotencyKey: idempotencyKey,
			EstimatedCost:  estimate,
			ReservedAmount: estimate,
			State:          domain.ReservationStateReserved,
			CreatedAt:      now,
		}
		persisted, err := e.store.CreateReservation(ctx, reservation)
		if err != nil {
			// Back out the hold so an unrecorded reservation cannot pin the
			// tenant's budget until the stale-reservation sweep.
			if _, relErr := e.rc.Eval(ctx, releaseScript,
				[]string{e.budgetKey(tenantID), e.reservationKey(tenantID)},
				estimateMicro, idempotencyKey); relErr != nil {
				logger.ErrorCtx(ctx, relErr,
					zap.String("tenant_id", tenantID),
					zap.String("reservation_id", reservationID))
			}
			return nil, fmt.Errorf("failed to persist reservation: %w", err)
		}
		return persisted, nil

	default:
		return nil, fmt.Errorf("unexpected reserve reply status %q", status)
	}
}

// recoverReservation returns the durable row behind an existing hold,
// recreating it when the original writer crashed between the hold and the
// durable write.
func (e *engine) recoverReservation(ctx context.Context, tenantID, idempotencyKey, reservationID string, amountMicro int64, now time.Time) (*schema.Reservation, error) {
	existing, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	amount := fromMicro(amountMicro)
	reservation := &schema.Reservation{
		ID:             reservationID,
		TenantID:       tenantID,
		IdempotencyKey: idempotencyKey,
		EstimatedCost:  amount,
		ReservedAmount: amount,
		State:          domain.ReservationStateReserved,
		CreatedAt:      now,
	}
	persisted, err := e.store.CreateReservation(ctx, reservation)
	if err != nil {
		return nil, fmt.Errorf("failed to recreate reservation: %w", err)
	}
	return persisted, nil
}

// Finalize settles a reservation at its actual cost
func (e *engine) Finalize(ctx context.Context, reservationID string, actual decimal.Decimal) (*domain.Settlement, error) {
	if actual.IsNegative() {
		return nil, fmt.Errorf("%w: actual cost must not be negative", domain.ErrValidation)
	}
	return e.settle(ctx, reservationID, actual, false)
}

// Abort settles a reservation at its full ceiling
func (e *engine) Abort(ctx context.Context, reservationID string) (*domain.Settlement, error) {
	return e.settle(ctx, reservationID, decimal.Decimal{}, true)
}

func (e *engine) settle(ctx context.Context, reservationID string, actual decimal.Decimal, abort bool) (*domain.Settlement, error) {
	reservation, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, reservationID)
	}

	ceiling := reservation.EstimatedCost.Mul(decimal.NewFromInt(CeilingMultiplier))

	cost := actual
	state := domain.ReservationStateFinalized
	clamped := false
	if abort || actual.GreaterThan(ceiling) {
		cost = ceiling
		state = domain.ReservationStateAborted
		clamped = true
	}

	now := e.clock.Now()
	closed, err := e.store.CloseReservation(ctx, reservationID, cost, state, now)
	if err != nil {
		return nil, fmt.Errorf("failed to close reservation: %w", err)
	}
	if !closed {
		// Already settled by a concurrent or earlier call; the state
		// transition is the exactly-once guard, so replay the stored outcome
		// without touching the counters again.
		return e.storedSettlement(ctx, reservationID)
	}

	reply, err := e.rc.Eval(ctx, finalizeScript,
		[]string{e.budgetKey(reservation.TenantID)},
		toMicro(reservation.ReservedAmount), toMicro(cost))
	if err != nil {
		// The durable close already happened and the upstream spend is real;
		// failing the caller now would not undo either. The stranded hold is
		// repaired by the next sweep's ResyncCounters pass, which rewrites
		// the counters from the closed reservation rows.
		logger.ErrorCtx(ctx, err,
			zap.String("tenant_id", reservation.TenantID),
			zap.String("reservation_id", reservationID))
	} else {
		e.checkAndMirror(ctx, reservation.TenantID, reply)
	}

	settlement := &domain.Settlement{
		ReservationID: reservationID,
		TenantID:      reservation.TenantID,
		ActualCost:    cost,
		Drift:         actual.Sub(reservation.EstimatedCost),
		ClampedAtCeil: clamped,
		FinalizedAt:   now,
	}
	if abort {
		// No terminal usage frame arrived; the drift measurement would only
		// measure the ceiling policy, not the estimator.
		settlement.Drift = decimal.Decimal{}
	}

	e.emitter.Emit(ctx, domain.EventCategoryBudget, domain.EventTypeSettlement, reservation.TenantID, settlement)
	if !abort {
		e.emitter.Emit(ctx, domain.EventCategoryBudget, domain.EventTypeDrift, reservation.TenantID, map[string]interface{}{
			"reservation_id": reservationID,
			"estimated":      reservation.EstimatedCost,
			"actual":         actual,
			"drift":          settlement.Drift,
		})
		logger.InfoCtx(ctx, "reservation finalized",
			zap.String("tenant_id", reservation.TenantID),
			zap.String("reservation_id", reservationID),
			zap.String("drift", settlement.Drift.String()),
			zap.Bool("clamped_at_ceiling", clamped))
	}

	return settlement, nil
}

// storedSettlement reconstructs the settlement of an already-closed
// reservation for idempotent finalize replays.
func (e *engine) storedSettlement(ctx context.Context, reservationID string) (*domain.Settlement, error) {
	reservation, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if reservation == nil || reservation.ActualCost == nil || reservation.FinalizedAt == nil {
		return nil, fmt.Errorf("%w: reservation %s settled concurrently but not readable", domain.ErrConflict, reservationID)
	}

	return &domain.Settlement{
		ReservationID: reservationID,
		TenantID:      reservation.TenantID,
		ActualCost:    *reservation.ActualCost,
		Drift:         reservation.ActualCost.Sub(reservation.EstimatedCost),
		ClampedAtCeil: reservation.State == domain.ReservationStateAborted,
		FinalizedAt:   *reservation.FinalizedAt,
	}, nil
}

// checkAndMirror runs the post-finalize soundness assertion and writes the
// durable budget mirror. Neither ever fails the caller.
func (e *engine) checkAndMirror(ctx context.Context, tenantID string, reply interface{}) {
	committed, reserved, reservedTotal, err := parseFinalizeReply(reply)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("tenant_id", tenantID))
		return
	}

	if committed > reservedTotal {
		// The estimator or upstream pricing has desynchronized. Alert, never
		// block the response.
		err := fmt.Errorf("budget soundness violation: committed %d exceeds total reserved %d", committed, reservedTotal)
		logger.ErrorCtx(ctx, err, zap.String("tenant_id", tenantID))
		e.emitter.Emit(ctx, domain.EventCategoryBudget, domain.EventTypeBudgetAssertion, tenantID, map[string]interface{}{
			"committed":      fromMicro(committed),
			"reserved_total": fromMicro(reservedTotal),
		})
	}

	budget, err := e.store.GetTenantBudget(ctx, tenantID)
	if err != nil || budget == nil {
		logger.ErrorCtx(ctx, err, zap.String("tenant_id", tenantID))
		return
	}
	budget.Committed = fromMicro(committed)
	budget.Reserved = fromMicro(reserved)
	budget.UpdatedAt = e.clock.Now()
	if err := e.store.UpsertTenantBudget(ctx, budget); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("tenant_id", tenantID))
	}
}

// ResyncCounters rewrites each tenant's shared counters from the durable
// reservation rows. The reservation rows are the source of truth: a closed
// row whose finalize counter move was lost leaves the shared 'reserved'
// field inflated until this pass rewrites it.
func (e *engine) ResyncCounters(ctx context.Context) (int, error) {
	counters, err := e.store.ListReservationCounters(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reservation counters: %w", err)
	}

	repaired := 0
	for _, c := range counters {
		reply, err := e.rc.Eval(ctx, resyncScript,
			[]string{e.budgetKey(c.TenantID)},
			toMicro(c.Committed), toMicro(c.Reserved), toMicro(c.ReservedTotal))
		if err != nil {
			return repaired, fmt.Errorf("failed to resync counters for tenant %s: %w", c.TenantID, err)
		}
		changed, ok := reply.(int64)
		if !ok {
			return repaired, fmt.Errorf("unexpected resync reply %v", reply)
		}
		if changed == 0 {
			continue
		}

		repaired++
		logger.WarnCtx(ctx, "budget counters resynced from durable rows",
			zap.String("tenant_id", c.TenantID),
			zap.String("reserved", c.Reserved.String()),
			zap.String("committed", c.Committed.String()))

		budget, err := e.store.GetTenantBudget(ctx, c.TenantID)
		if err != nil || budget == nil {
			logger.ErrorCtx(ctx, err, zap.String("tenant_id", c.TenantID))
			continue
		}
		budget.Committed = c.Committed
		budget.Reserved = c.Reserved
		budget.UpdatedAt = e.clock.Now()
		if err := e.store.UpsertTenantBudget(ctx, budget); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("tenant_id", c.TenantID))
		}
	}
	return repaired, nil
}

func parseReserveReply(reply interface{}) (status, payload string, err error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) != 2 {
		return "", "", fmt.Errorf("unexpected reserve reply %v", reply)
	}
	status, ok = values[0].(string)
	if !ok {
		return "", "", fmt.Errorf("unexpected reserve reply status %v", values[0])
	}
	payload, ok = values[1].(string)
	if !ok {
		return "", "", fmt.Errorf("unexpected reserve reply payload %v", values[1])
	}
	return status, payload, nil
}

func splitHoldPayload(payload string) (reservationID string, amountMicro int64, err error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed hold payload %q", payload)
	}
	amountMicro, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed hold amount %q: %w", parts[1], err)
	}
	return parts[0], amountMicro, nil
}

func parseFinalizeReply(reply interface{}) (committed, reserved, reservedTotal int64, err error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) != 3 {
		return 0, 0, 0, fmt.Errorf("unexpected finalize reply %v", reply)
	}
	nums := make([]int64, 3)
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return 0, 0, 0, fmt.Errorf("unexpected finalize reply element %v", v)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}
