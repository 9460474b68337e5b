package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// CreditLot represents the credit_lots table - a FIFO-ordered unit of
// acquired credit. Lots are append-only except for the remaining-balance
// field, which is decremented as the lot is consumed. A lot is never
// re-opened once its remaining balance reaches zero.
type CreditLot struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AccountID references the owning account
	AccountID int64 `gorm:"column:account_id;not null;index:idx_lots_account_created,priority:1"`
	// Source records how the lot was acquired (grant, deposit, transfer_in)
	Source domain.LotSource `gorm:"column:source;not null;type:text"`
	// OriginalAmount is the amount the lot was created with
	OriginalAmount decimal.Decimal `gorm:"column:original_amount;not null;type:numeric(38,9)"`
	// Remaining is the unconsumed balance
	Remaining decimal.Decimal `gorm:"column:remaining;not null;type:numeric(38,9)"`
	// TransferID links a transfer-in lot back to the transfer that created it
	TransferID *string `gorm:"column:transfer_id;type:text;index"`
	// CreatedAt orders lots for FIFO consumption
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_lots_account_created,priority:2"`

	// Associations
	Account Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the CreditLot model
func (CreditLot) TableName() string {
	return "credit_lots"
}
