package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// CreditGrantInput carries everything needed to grant credits to an account:
// a new lot plus the matching credit entry, written in one transaction.
type CreditGrantInput struct {
	AccountID  int64
	Source     domain.LotSource
	Amount     decimal.Decimal
	TransferID *string
}

// ConsumeInput drains an account's lots oldest-first and records one debit
// entry per touched lot.
type ConsumeInput struct {
	AccountID     int64
	Amount        decimal.Decimal
	ReservationID *string
}

// ConsumedLot reports how much was drained from a single lot.
type ConsumedLot struct {
	LotID  int64
	Amount decimal.Decimal
}

// TransferInput moves credits between two accounts in one transaction.
type TransferInput struct {
	ID            string
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
}

// ImbalancedAccount is an account whose entry-derived balance disagrees with
// the sum of its lot remainders.
type ImbalancedAccount struct {
	AccountID    int64           `gorm:"column:account_id"`
	EntryBalance decimal.Decimal `gorm:"column:entry_balance"`
	LotBalance   decimal.Decimal `gorm:"column:lot_balance"`
}

// UnbalancedTransfer is a transfer whose paired ledger entries do not net to
// zero.
type UnbalancedTransfer struct {
	TransferID string          `gorm:"column:transfer_id"`
	Net        decimal.Decimal `gorm:"column:net"`
	EntryCount int             `gorm:"column:entry_count"`
}

// OvercommittedTenant is a tenant whose cumulative finalized cost exceeds
// everything it ever reserved.
type OvercommittedTenant struct {
	TenantID  string          `gorm:"column:tenant_id"`
	Committed decimal.Decimal `gorm:"column:committed"`
	Reserved  decimal.Decimal `gorm:"column:reserved"`
}

// TenantCounters is a tenant's budget rollup derived from its reservation
// rows: open holds, settled spend, and everything ever held.
type TenantCounters struct {
	TenantID      string          `gorm:"column:tenant_id"`
	Reserved      decimal.Decimal `gorm:"column:reserved"`
	Committed     decimal.Decimal `gorm:"column:committed"`
	ReservedTotal decimal.Decimal `gorm:"column:reserved_total"`
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetAccountByExternalID retrieves an account by its external identifier
	GetAccountByExternalID(ctx context.Context, externalID string) (*schema.Account, error)
	// GetAccountByID retrieves an account by its internal ID
	GetAccountByID(ctx context.Context, id int64) (*schema.Account, error)
	// GetOrCreateAccount fetches an account, creating it if absent
	GetOrCreateAccount(ctx context.Context, externalID string, kind schema.AccountKind) (*schema.Account, error)
	// ListAccounts retrieves all accounts
	ListAccounts(ctx context.Context) ([]schema.Account, error)

	// CreateCreditGrant creates a lot and its credit entry atomically
	CreateCreditGrant(ctx context.Context, input CreditGrantInput) (*schema.CreditLot, error)
	// ConsumeCredits drains lots oldest-first with debit entries per lot
	ConsumeCredits(ctx context.Context, input ConsumeInput) ([]ConsumedLot, error)
	// CreateTransfer moves credits between accounts atomically
	CreateTransfer(ctx context.Context, input TransferInput) (*schema.Transfer, error)
	// GetTransferByID retrieves a transfer by its ULID
	GetTransferByID(ctx context.Context, id string) (*schema.Transfer, error)
	// GetBalance returns the sum of an account's lot remainders
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	// GetLedgerEntries retrieves an account's entries, newest first
	GetLedgerEntries(ctx context.Context, accountID int64, limit int, offset uint64) ([]schema.LedgerEntry, uint64, error)
	// GetImbalancedAccounts returns accounts whose entry sums and lot
	// remainders disagree
	GetImbalancedAccounts(ctx context.Context) ([]ImbalancedAccount, error)
	// GetUnbalancedTransfers returns transfers whose entries do not net to
	// zero
	GetUnbalancedTransfers(ctx context.Context) ([]UnbalancedTransfer, error)
	// GetOvercommittedTenants returns tenants whose finalized cost exceeds
	// their cumulative reservations
	GetOvercommittedTenants(ctx context.Context) ([]OvercommittedTenant, error)
	// ListReservationCounters returns every tenant's budget rollup derived
	// from its reservation rows
	ListReservationCounters(ctx context.Context) ([]TenantCounters, error)

	// CreateClawbackReceivable records a detected reversal; idempotent per
	// reservation
	CreateClawbackReceivable(ctx context.Context, accountID int64, reservationID string, amount decimal.Decimal) (*schema.ClawbackReceivable, error)
	// ResolveClawback drains the owed amount from the account's lots and
	// marks the receivable resolved
	ResolveClawback(ctx context.Context, receivableID int64) error
	// ListUnresolvedClawbacks retrieves receivables opened before the cutoff
	ListUnresolvedClawbacks(ctx context.Context, olderThan time.Time) ([]schema.ClawbackReceivable, error)

	// UpsertTenantBudget writes back the durable budget mirror
	UpsertTenantBudget(ctx context.Context, budget *schema.TenantBudget) error
	// GetTenantBudget retrieves a tenant's budget mirror
	GetTenantBudget(ctx context.Context, tenantID string) (*schema.TenantBudget, error)
	// ListTenantBudgets retrieves all budget mirrors
	ListTenantBudgets(ctx context.Context) ([]schema.TenantBudget, error)

	// CreateReservation persists a hold; returns the existing row when the
	// tenant-scoped idempotency key was already used
	CreateReservation(ctx context.Context, reservation *schema.Reservation) (*schema.Reservation, error)
	// GetReservation retrieves a reservation by its ULID
	GetReservation(ctx context.Context, id string) (*schema.Reservation, error)
	// CloseReservation moves a reservation out of the reserved state exactly
	// once; returns false when it was already closed
	CloseReservation(ctx context.Context, id string, actualCost decimal.Decimal, state domain.ReservationState, finalizedAt time.Time) (bool, error)
	// ListStaleReservations retrieves still-open reservations created before
	// the cutoff
	ListStaleReservations(ctx context.Context, olderThan time.Time) ([]schema.Reservation, error)

	// CreateIdempotencyRecord inserts a record in the new state; returns the
	// existing row and created=false when the key was already seen
	CreateIdempotencyRecord(ctx context.Context, record *schema.IdempotencyRecord) (*schema.IdempotencyRecord, bool, error)
	// GetIdempotencyRecord retrieves a record by tenant and key
	GetIdempotencyRecord(ctx context.Context, tenantID, key string) (*schema.IdempotencyRecord, error)
	// TransitionIdempotencyRecord moves a record between states exactly once;
	// returns false when the record was not in the expected state
	TransitionIdempotencyRecord(ctx context.Context, id int64, from, to domain.IdempotencyState, responseBody datatypes.JSON, partialCost decimal.Decimal) (bool, error)
	// ListActiveIdempotencyRecords retrieves in-flight records created before
	// the cutoff
	ListActiveIdempotencyRecords(ctx context.Context, olderThan time.Time) ([]schema.IdempotencyRecord, error)

	// CreateProposal persists a proposal; a duplicate payload from the same
	// proposer returns domain.ErrConflict
	CreateProposal(ctx context.Context, proposal *schema.Proposal) error
	// GetProposal retrieves a proposal by its ULID
	GetProposal(ctx context.Context, id string) (*schema.Proposal, error)
	// ListProposalsByState retrieves proposals in a given state
	ListProposalsByState(ctx context.Context, state schema.ProposalState) ([]schema.Proposal, error)
	// CastVote records a vote and accumulates its weight atomically; a second
	// vote from the same voter returns domain.ErrConflict
	CastVote(ctx context.Context, vote *schema.Vote) (*schema.Proposal, error)
	// TransitionProposal moves a proposal between states exactly once
	TransitionProposal(ctx context.Context, id string, from, to schema.ProposalState, cooldownUntil, activatedAt *time.Time) (bool, error)
	// UpsertDelegation creates or updates a delegation edge
	UpsertDelegation(ctx context.Context, delegation *schema.Delegation) error
	// GetDelegation returns the edge between two accounts, or nil
	GetDelegation(ctx context.Context, delegatorID, delegateID int64) (*schema.Delegation, error)
	// SumDelegatedWeight returns the total weight delegated to an account
	SumDelegatedWeight(ctx context.Context, delegateID int64) (int64, error)
	// SumDelegatedOut returns the total weight an account has delegated away
	SumDelegatedOut(ctx context.Context, delegatorID int64) (int64, error)

	// GetSigningKey retrieves a verification key by kid
	GetSigningKey(ctx context.Context, kid string) (*schema.SigningKey, error)
	// GetActiveSigningKey retrieves the key currently used for minting
	GetActiveSigningKey(ctx context.Context) (*schema.SigningKey, error)
	// RotateSigningKey retires the active key and installs a new one
	RotateSigningKey(ctx context.Context, key *schema.SigningKey) error

	// GetBYOKKeys retrieves a tenant's non-revoked provider keys
	GetBYOKKeys(ctx context.Context, tenantID string) ([]schema.BYOKKey, error)
	// CreateBYOKKey registers a tenant's provider key
	CreateBYOKKey(ctx context.Context, key *schema.BYOKKey) error
	// RevokeBYOKKey excludes a key from routing
	RevokeBYOKKey(ctx context.Context, tenantID string, provider domain.Provider) error

	// CreateReconciliationRun persists a sweep outcome
	CreateReconciliationRun(ctx context.Context, run *schema.ReconciliationRun) error
	// UpdateReconciliationRun finalizes a sweep record
	UpdateReconciliationRun(ctx context.Context, run *schema.ReconciliationRun) error
	// ListReconciliationRuns retrieves recent sweeps, newest first
	ListReconciliationRuns(ctx context.Context, limit int) ([]schema.ReconciliationRun, error)
}
