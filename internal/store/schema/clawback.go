package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClawbackReceivable represents the clawback_receivables table - a
// previously settled cost later reversed. The receivable persists, visible,
// until explicitly resolved; it is never silently absorbed into the ledger.
type ClawbackReceivable struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AccountID is the account the reversal applies to
	AccountID int64 `gorm:"column:account_id;not null;index"`
	// ReservationID identifies the originating settlement. Unique so a
	// re-detected reversal never creates a second receivable.
	ReservationID string `gorm:"column:reservation_id;not null;type:text;uniqueIndex"`
	// Amount is the reversed value still owed
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(38,9)"`
	// CreatedAt is the reversal-detection timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// ResolvedAt is set when the receivable is explicitly resolved
	ResolvedAt *time.Time `gorm:"column:resolved_at;type:timestamptz;index"`

	// Associations
	Account Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the ClawbackReceivable model
func (ClawbackReceivable) TableName() string {
	return "clawback_receivables"
}
