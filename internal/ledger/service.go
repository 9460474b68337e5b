package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
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

// SettleResult is the ledger outcome of charging a finalized reservation.
// When the account's lots cannot cover the cost, nothing is drained and a
// receivable records the shortfall instead.
type SettleResult struct {
	Consumed   []store.ConsumedLot
	Receivable *schema.ClawbackReceivable
}

// Service exposes the double-entry credit ledger: grants, FIFO consumption,
// peer transfers, and clawback receivables.
//
//go:generate mockgen -source=service.go -destination=../mocks/ledger.go -package=mocks -mock_names=Service=MockLedgerService
type Service interface {
	// Grant credits an account with a new lot
	Grant(ctx context.Context, externalID string, kind schema.AccountKind, source domain.LotSource, amount decimal.Decimal) (*schema.CreditLot, error)
	// Balance returns the sum of an account's lot remainders
	Balance(ctx context.Context, externalID string) (decimal.Decimal, error)
	// Entries returns an account's ledger entries, newest first
	Entries(ctx context.Context, externalID string, limit int, offset uint64) ([]schema.LedgerEntry, uint64, error)
	// Transfer moves credits between two accounts atomically
	Transfer(ctx context.Context, fromExternalID, toExternalID string, amount decimal.Decimal) (*schema.Transfer, error)
	// Settle charges a finalized reservation against the tenant's lots,
	// opening a receivable when the balance cannot cover it
	Settle(ctx context.Context, tenantID, reservationID string, cost decimal.Decimal) (*SettleResult, error)
	// ResolveClawback drains the owed amount and closes the receivable
	ResolveClawback(ctx context.Context, receivableID int64) error
}

type service struct {
	store   store.Store
	emitter emitter.Emitter
	clock   adapter.Clock
}

// NewService creates a new ledger service
func NewService(st store.Store, em emitter.Emitter, clock adapter.Clock) Service {
	return &service{
		store:   st,
		emitter: em,
		clock:   clock,
	}
}

// withContentionRetry retries op with small bounded backoff. Domain errors
// are terminal; anything else is treated as transient lock contention or a
// connection hiccup.
func (s *service) withContentionRetry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 2 * time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrInsufficientBalance) ||
			errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrValidation) ||
			errors.Is(err, domain.ErrConflict) {
			return backoff.Permanent(err)
		}
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Ledger write failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	return backoff.RetryNotify(wrapped, backoff.WithContext(b, ctx), notifyOnError)
}

// Grant credits an account with a new lot
func (s *service) Grant(ctx context.Context, externalID string, kind schema.AccountKind, source domain.LotSource, amount decimal.Decimal) (*schema.CreditLot, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: grant amount must be positive", domain.ErrValidation)
	}

	account, err := s.store.GetOrCreateAccount(ctx, externalID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	lot, err := s.store.CreateCreditGrant(ctx, store.CreditGrantInput{
		AccountID: account.ID,
		Source:    source,
		Amount:    amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credit grant: %w", err)
	}
	return lot, nil
}

// Balance returns the sum of an account's lot remainders
func (s *service) Balance(ctx context.Context, externalID string) (decimal.Decimal, error) {
	account, err := s.store.GetAccountByExternalID(ctx, externalID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, externalID)
	}
	return s.store.GetBalance(ctx, account.ID)
}

// Entries returns an account's ledger entries, newest first
func (s *service) Entries(ctx context.Context, externalID string, limit int, offset uint64) ([]schema.LedgerEntry, uint64, error) {
	account, err := s.store.GetAccountByExternalID(ctx, externalID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, 0, fmt.Errorf("%w: account %s", domain.ErrNotFound, externalID)
	}
	return s.store.GetLedgerEntries(ctx, account.ID, limit, offset)
}

// Transfer moves credits between two accounts atomically
func (s *service) Transfer(ctx context.Context, fromExternalID, toExternalID string, amount decimal.Decimal) (*schema.Transfer, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive", domain.ErrValidation)
	}
	if fromExternalID == toExternalID {
		return nil, fmt.Errorf("%w: cannot transfer to the same account", domain.ErrValidation)
	}

	from, err := s.store.GetAccountByExternalID(ctx, fromExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender account: %w", err)
	}
	if from == nil {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, fromExternalID)
	}
	to, err := s.store.GetAccountByExternalID(ctx, toExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get receiver account: %w", err)
	}
	if to == nil {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, toExternalID)
	}

	input := store.TransferInput{
		ID:            ulid.MustNewDefault(s.clock.Now()).String(),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        amount,
	}

	var transfer *schema.Transfer
	err = s.withContentionRetry(ctx, func() error {
		var opErr error
		transfer, opErr = s.store.CreateTransfer(ctx, input)
		return opErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	s.emitter.Emit(ctx, domain.EventCategoryLedger, domain.EventTypeTransferCompleted, fromExternalID, map[string]interface{}{
		"transfer_id": transfer.ID,
		"from":        fromExternalID,
		"to":          toExternalID,
		"amount":      amount,
	})
	return transfer, nil
}

// Settle charges a finalized reservation against the tenant's lots
func (s *service) Settle(ctx context.Context, tenantID, reservationID string, cost decimal.Decimal) (*SettleResult, error) {
	if cost.IsNegative() {
		return nil, fmt.Errorf("%w: settlement cost must not be negative", domain.ErrValidation)
	}
	if cost.IsZero() {
		return &SettleResult{}, nil
	}

	account, err := s.store.GetOrCreateAccount(ctx, tenantID, schema.AccountKindTenant)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	var consumed []store.ConsumedLot
	err = s.withContentionRetry(ctx, func() error {
		var opErr error
		consumed, opErr = s.store.ConsumeCredits(ctx, store.ConsumeInput{
			AccountID:     account.ID,
			Amount:        cost,
			ReservationID: &reservationID,
		})
		return opErr
	})
	if err == nil {
		return &SettleResult{Consumed: consumed}, nil
	}
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		return nil, fmt.Errorf("failed to consume credits: %w", err)
	}

	// The spend is real even though the lots cannot cover it. Record the
	// debt visibly instead of absorbing it.
	receivable, err := s.store.CreateClawbackReceivable(ctx, account.ID, reservationID, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to create clawback receivable: %w", err)
	}

	s.emitter.Emit(ctx, domain.EventCategoryLedger, domain.EventTypeClawbackOpened, tenantID, map[string]interface{}{
		"receivable_id":  receivable.ID,
		"reservation_id": reservationID,
		"amount":         cost,
	})
	logger.WarnCtx(ctx, "settlement exceeded available credits, receivable opened",
		zap.String("tenant_id", tenantID),
		zap.String("reservation_id", reservationID),
		zap.String("amount", cost.String()))

	return &SettleResult{Receivable: receivable}, nil
}

// ResolveClawback drains the owed amount and closes the receivable
func (s *service) ResolveClawback(ctx context.Context, receivableID int64) error {
	err := s.withContentionRetry(ctx, func() error {
		return s.store.ResolveClawback(ctx, receivableID)
	})
	if err != nil {
		return fmt.Errorf("failed to resolve clawback: %w", err)
	}
	return nil
}
