package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// Transfer represents the transfers table - one atomic value movement
// between two accounts. Created pending, resolved atomically to completed or
// rejected, terminal thereafter.
type Transfer struct {
	// ID is a ULID assigned at creation
	ID string `gorm:"column:id;primaryKey;type:text"`
	// FromAccountID is the debited account
	FromAccountID int64 `gorm:"column:from_account_id;not null;index"`
	// ToAccountID is the credited account
	ToAccountID int64 `gorm:"column:to_account_id;not null;index"`
	// Amount is the transferred value; the debit and credit sides always
	// carry this exact amount
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(38,9)"`
	// Status is terminal once it leaves pending
	Status domain.TransferStatus `gorm:"column:status;not null;type:text"`
	// CreatedAt is the time the transfer was opened
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// CompletedAt is set when the transfer reaches a terminal status
	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamptz"`

	// Associations
	FromAccount Account `gorm:"foreignKey:FromAccountID"`
	ToAccount   Account `gorm:"foreignKey:ToAccountID"`
}

// TableName specifies the table name for the Transfer model
func (Transfer) TableName() string {
	return "transfers"
}
