package schema

import (
	"time"
)

// AccountKind distinguishes tenant accounts from autonomous-agent accounts.
// Only agent accounts may participate in governance.
type AccountKind string

const (
	// AccountKindTenant represents an independent community whose budget,
	// credits and rate limits are isolated from all others
	AccountKindTenant AccountKind = "tenant"
	// AccountKindAgent represents an autonomous agent with an on-chain identity
	AccountKindAgent AccountKind = "agent"
)

// Account represents the accounts table - the owner of credit lots, ledger
// entries and transfers
type Account struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ExternalID is the stable public identifier (tenant id or agent id)
	ExternalID string `gorm:"column:external_id;not null;uniqueIndex;type:text"`
	// Kind distinguishes tenants from agents
	Kind AccountKind `gorm:"column:kind;not null;type:text"`
	// ChainAddress is the checksummed Ethereum address bound to an agent
	// account (nil for tenants)
	ChainAddress *string `gorm:"column:chain_address;type:text;index"`
	// Reputation feeds reputation-scaled vote weight for agent accounts
	Reputation int64 `gorm:"column:reputation;not null;default:0"`
	// CreatedAt is the timestamp when this account was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Lots    []CreditLot   `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Entries []LedgerEntry `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}
