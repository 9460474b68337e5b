package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MintTokenResponse carries a freshly minted access token.
type MintTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BudgetResponse is the admin view of a tenant budget.
type BudgetResponse struct {
	TenantID   string          `json:"tenant_id"`
	SpendLimit decimal.Decimal `json:"spend_limit"`
	Committed  decimal.Decimal `json:"committed"`
	Reserved   decimal.Decimal `json:"reserved"`
}

// BalanceResponse is an account's spendable balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransferResponse reports a completed transfer.
type TransferResponse struct {
	TransferID string          `json:"transfer_id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
}

// ProposalResponse is the external view of a governance proposal.
type ProposalResponse struct {
	ID                string     `json:"id"`
	State             string     `json:"state"`
	AccumulatedWeight int64      `json:"accumulated_weight"`
	ExpiresAt         time.Time  `json:"expires_at"`
	CooldownUntil     *time.Time `json:"cooldown_until,omitempty"`
	ActivatedAt       *time.Time `json:"activated_at,omitempty"`
}

// SigningKeyResponse is the admin view of one verification key.
type SigningKeyResponse struct {
	Kid       string     `json:"kid"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// ReconciliationRunResponse reports one reconciliation sweep.
type ReconciliationRunResponse struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	AnomalyCount int        `json:"anomaly_count"`
	Checks       any        `json:"checks"`
}
