package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ProposalState models the governance lifecycle. Transitions are applied
// only through the governance service; the column never moves backwards.
type ProposalState string

const (
	ProposalStateSubmitted     ProposalState = "submitted"
	ProposalStateQuorumReached ProposalState = "quorum_reached"
	ProposalStateActivated     ProposalState = "activated"
	ProposalStateExpired       ProposalState = "expired"
)

// Proposal represents the governance_proposals table - a proposed
// parameter/action change submitted by an agent account.
type Proposal struct {
	// ID is a ULID assigned at submission
	ID string `gorm:"column:id;primaryKey;type:text"`
	// ProposerID references the submitting agent account
	ProposerID int64 `gorm:"column:proposer_id;not null;uniqueIndex:idx_proposals_proposer_hash,priority:1"`
	// Payload is the proposed change, JCS-canonicalized before hashing
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// PayloadHash deduplicates proposals from the same proposer
	PayloadHash string `gorm:"column:payload_hash;not null;type:text;uniqueIndex:idx_proposals_proposer_hash,priority:2"`
	// AccumulatedWeight is the quorum weight gathered so far
	AccumulatedWeight int64 `gorm:"column:accumulated_weight;not null;default:0"`
	// State is the lifecycle state
	State ProposalState `gorm:"column:state;not null;type:text;index"`
	// CooldownUntil is set when quorum is reached; activation waits for it
	CooldownUntil *time.Time `gorm:"column:cooldown_until;type:timestamptz"`
	// ExpiresAt bounds the time the proposal may gather quorum
	ExpiresAt time.Time `gorm:"column:expires_at;not null;type:timestamptz"`
	// ActivatedAt is set on activation
	ActivatedAt *time.Time `gorm:"column:activated_at;type:timestamptz"`
	// CreatedAt is the submission timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Proposer Account `gorm:"foreignKey:ProposerID"`
	Votes    []Vote  `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Proposal model
func (Proposal) TableName() string {
	return "governance_proposals"
}

// Vote represents the governance_votes table - a weighted endorsement.
// One row per voter per proposal, enforced by unique index.
type Vote struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProposalID references the proposal being endorsed
	ProposalID string `gorm:"column:proposal_id;not null;type:text;uniqueIndex:idx_votes_proposal_voter,priority:1"`
	// VoterID references the voting agent account
	VoterID int64 `gorm:"column:voter_id;not null;uniqueIndex:idx_votes_proposal_voter,priority:2"`
	// Weight is the resolved vote weight (own weight plus delegated)
	Weight int64 `gorm:"column:weight;not null"`
	// Signature is the secp256k1 signature binding the vote to the agent's
	// chain address
	Signature string `gorm:"column:signature;not null;type:text"`
	// CreatedAt is the vote timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Voter Account `gorm:"foreignKey:VoterID"`
}

// TableName specifies the table name for the Vote model
func (Vote) TableName() string {
	return "governance_votes"
}

// Delegation represents the governance_delegations table - a transfer of
// voting weight from one agent to another. Total delegated weight is capped
// per delegating creator.
type Delegation struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// DelegatorID is the account granting its weight
	DelegatorID int64 `gorm:"column:delegator_id;not null;uniqueIndex:idx_delegations_delegator_delegate,priority:1"`
	// DelegateID is the account receiving the weight
	DelegateID int64 `gorm:"column:delegate_id;not null;uniqueIndex:idx_delegations_delegator_delegate,priority:2;index"`
	// Weight is the delegated voting weight
	Weight int64 `gorm:"column:weight;not null"`
	// CreatedAt is the delegation timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Delegator Account `gorm:"foreignKey:DelegatorID"`
	Delegate  Account `gorm:"foreignKey:DelegateID"`
}

// TableName specifies the table name for the Delegation model
func (Delegation) TableName() string {
	return "governance_delegations"
}
