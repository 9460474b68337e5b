package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// LedgerEntry represents the ledger_entries table - an immutable
// double-entry record. Rows are append-only; they are never updated or
// deleted. Credit-side entry types (credit, transfer_in) carry positive
// sign in balance derivation; debit-side types (debit, transfer_out,
// clawback) carry negative sign.
type LedgerEntry struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AccountID references the account the entry applies to
	AccountID int64 `gorm:"column:account_id;not null;index:idx_entries_account_created,priority:1"`
	// EntryType classifies the movement. A transfer's incoming side must be
	// transfer_in, never a generic credit, or the reconciliation pairing
	// check cannot match the two sides.
	EntryType domain.EntryType `gorm:"column:entry_type;not null;type:text"`
	// Amount is always positive; sign is derived from EntryType
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(38,9)"`
	// LotID links the entry to the lot it consumed or created
	LotID *int64 `gorm:"column:lot_id;index"`
	// TransferID links the two entries of a paired transfer
	TransferID *string `gorm:"column:transfer_id;type:text;index"`
	// ReservationID links a debit to the budget settlement that produced it
	ReservationID *string `gorm:"column:reservation_id;type:text;index"`
	// CreatedAt is the timestamp the entry was appended
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_entries_account_created,priority:2"`

	// Associations
	Account Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the LedgerEntry model
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// Signed returns the entry amount with the sign implied by its type.
func (e *LedgerEntry) Signed() decimal.Decimal {
	switch e.EntryType {
	case domain.EntryTypeCredit, domain.EntryTypeTransferIn:
		return e.Amount
	default:
		return e.Amount.Neg()
	}
}
