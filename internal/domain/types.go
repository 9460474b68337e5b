package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tier is the numeric conviction tier resolved for a tenant by the upstream
// tier-resolution service. Higher tiers unlock larger model-access sets.
type Tier int

const (
	// TierRestricted is the floor tier. Resolution failures degrade here,
	// never upward.
	TierRestricted Tier = 0
	TierBasic      Tier = 1
	TierStandard   Tier = 2
	TierElevated   Tier = 3
	TierSovereign  Tier = 4
)

// AccessLevel is the effective capability grade computed from a tenant's tier.
// It is always re-derived server-side; client-supplied values are ignored.
type AccessLevel string

const (
	AccessLevelRestricted AccessLevel = "restricted"
	AccessLevelStandard   AccessLevel = "standard"
	AccessLevelElevated   AccessLevel = "elevated"
	AccessLevelSovereign  AccessLevel = "sovereign"
)

// Provider identifies an upstream inference provider brand.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
)

// CapabilityPool identifies a capability tier of models, not a provider brand.
// Pool identifiers must never be pattern-matched into a Provider.
type CapabilityPool string

const (
	PoolReasoning CapabilityPool = "reasoning"
	PoolGeneral   CapabilityPool = "general"
	PoolFast      CapabilityPool = "fast"
)

// EntryType classifies an immutable ledger entry.
type EntryType string

const (
	EntryTypeDebit       EntryType = "debit"
	EntryTypeCredit      EntryType = "credit"
	EntryTypeTransferOut EntryType = "transfer_out"
	EntryTypeTransferIn  EntryType = "transfer_in"
	EntryTypeClawback    EntryType = "clawback"
)

// LotSource classifies how a credit lot was acquired.
type LotSource string

const (
	LotSourceGrant      LotSource = "grant"
	LotSourceDeposit    LotSource = "deposit"
	LotSourceTransferIn LotSource = "transfer_in"
)

// ReservationState tracks an in-flight budget hold.
type ReservationState string

const (
	ReservationStateReserved  ReservationState = "reserved"
	ReservationStateFinalized ReservationState = "finalized"
	ReservationStateAborted   ReservationState = "aborted"
)

// TransferStatus is terminal once it leaves pending.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusRejected  TransferStatus = "rejected"
)

// IdempotencyState tracks the replay-guard lifecycle of a keyed operation.
// New and Active are transient; the rest are terminal.
type IdempotencyState string

const (
	IdempotencyStateNew        IdempotencyState = "new"
	IdempotencyStateActive     IdempotencyState = "active"
	IdempotencyStateCompleted  IdempotencyState = "completed"
	IdempotencyStateAborted    IdempotencyState = "aborted"
	IdempotencyStateResumeLost IdempotencyState = "resume_lost"
)

// EventCategory groups gateway events into broker subjects.
type EventCategory string

const (
	EventCategoryBudget     EventCategory = "budget"
	EventCategoryLedger     EventCategory = "ledger"
	EventCategoryGovernance EventCategory = "governance"
	EventCategoryReconcile  EventCategory = "reconcile"
)

// EventType identifies a specific gateway event within its category.
type EventType string

const (
	EventTypeSettlement        EventType = "settlement"
	EventTypeDrift             EventType = "drift"
	EventTypeBudgetAssertion   EventType = "budget_assertion"
	EventTypeTransferCompleted EventType = "transfer_completed"
	EventTypeClawbackOpened    EventType = "clawback_opened"
	EventTypeProposalActivated EventType = "proposal_activated"
	EventTypeProposalExpired   EventType = "proposal_expired"
	EventTypeAnomaly           EventType = "anomaly"
)

// GatewayEvent is the envelope published to the message broker for every
// settlement, drift, governance, and reconciliation occurrence.
type GatewayEvent struct {
	ID        string          `json:"id"` // ULID, assigned at emit time
	Category  EventCategory   `json:"category"`
	EventType EventType       `json:"event_type"`
	TenantID  string          `json:"tenant_id,omitempty"`
	AccountID int64           `json:"account_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Reservation is a budget hold returned by the budget engine.
type Reservation struct {
	ID             string
	TenantID       string
	IdempotencyKey string
	EstimatedCost  decimal.Decimal
	ReservedAmount decimal.Decimal
	State          ReservationState
	CreatedAt      time.Time
}

// Settlement is the result of finalizing a reservation.
type Settlement struct {
	ReservationID string
	TenantID      string
	ActualCost    decimal.Decimal
	Drift         decimal.Decimal
	ClampedAtCeil bool
	FinalizedAt   time.Time
}

// Usage is the accounting payload carried by the terminal usage frame of a
// streamed inference response.
type Usage struct {
	InputTokens  int64           `json:"input_tokens"`
	OutputTokens int64           `json:"output_tokens"`
	Cost         decimal.Decimal `json:"cost"`
	Partial      bool            `json:"partial"`
}
