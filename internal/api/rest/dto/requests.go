package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// InferenceRequest is the body of a chat-mediated inference call.
type InferenceRequest struct {
	// Pool is the capability pool identifier, never a provider name
	Pool string `json:"pool" binding:"required"`
	// EstimatedCost is the admission estimate reserved against the tenant
	// budget; actual cost is settled from the upstream usage frame
	EstimatedCost decimal.Decimal `json:"estimated_cost" binding:"required"`
	// Input is forwarded opaque to the resolved provider
	Input json.RawMessage `json:"input" binding:"required"`
}

// MintTokenRequest is sent by a chat-platform adapter that has already
// verified the end user. The gateway trusts the adapter, not the end user.
type MintTokenRequest struct {
	TenantID  string `json:"tenant_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	ChannelID string `json:"channel_id"`
	Tier      int    `json:"tier"`
	// IdempotencyKey and Body bind the token to one keyed request; the
	// gateway later refuses the token for any other payload
	IdempotencyKey string          `json:"idempotency_key" binding:"required"`
	Body           json.RawMessage `json:"body" binding:"required"`
	// LifetimeSeconds is clamped to the configured maximum
	LifetimeSeconds int `json:"lifetime_seconds"`
}

// GrantRequest credits an account with a platform-issued lot.
type GrantRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Kind      string          `json:"kind" binding:"required"`
	Source    string          `json:"source" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// TransferRequest moves credits between two accounts.
type TransferRequest struct {
	From   string          `json:"from" binding:"required"`
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ProposalRequest submits a signed governance proposal.
type ProposalRequest struct {
	ProposerID string          `json:"proposer_id" binding:"required"`
	Payload    json.RawMessage `json:"payload" binding:"required"`
	Signature  string          `json:"signature" binding:"required"`
}

// VoteRequest casts a signed vote on a proposal.
type VoteRequest struct {
	VoterID   string `json:"voter_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// BYOKKeyRequest registers a tenant's provider API key.
type BYOKKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	Key      string `json:"key" binding:"required"`
}

// RotateSigningKeyRequest installs a new active verification key.
type RotateSigningKeyRequest struct {
	Kid          string `json:"kid" binding:"required"`
	PublicKeyPEM string `json:"public_key_pem" binding:"required"`
}

// DelegateRequest assigns part of the delegator's vote weight.
type DelegateRequest struct {
	DelegatorID string `json:"delegator_id" binding:"required"`
	DelegateID  string `json:"delegate_id" binding:"required"`
	Weight      int64  `json:"weight" binding:"required"`
}
