package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// TenantBudget represents the tenant_budgets table - the durable mirror of a
// tenant's spend counters. The authoritative, atomically-mutated copy lives
// in the shared store; this row exists for reconciliation and inspection and
// is written back on every finalize.
type TenantBudget struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TenantID is the tenant the budget belongs to
	TenantID string `gorm:"column:tenant_id;not null;uniqueIndex;type:text"`
	// SpendLimit is the tenant's total spend limit for the current period
	SpendLimit decimal.Decimal `gorm:"column:spend_limit;not null;type:numeric(38,9)"`
	// Committed is the sum of finalized costs
	Committed decimal.Decimal `gorm:"column:committed;not null;default:0;type:numeric(38,9)"`
	// Reserved is the sum of in-flight holds
	Reserved decimal.Decimal `gorm:"column:reserved;not null;default:0;type:numeric(38,9)"`
	// UpdatedAt is the timestamp of the last write-back
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TenantBudget model
func (TenantBudget) TableName() string {
	return "tenant_budgets"
}

// Reservation represents the budget_reservations table - an in-flight hold
// against a tenant's spend limit, closed exactly once on finalize or
// timeout-driven abort.
type Reservation struct {
	// ID is a ULID assigned at reservation time
	ID string `gorm:"column:id;primaryKey;type:text"`
	// TenantID is the tenant the hold applies to
	TenantID string `gorm:"column:tenant_id;not null;type:text;uniqueIndex:idx_reservations_tenant_idem,priority:1"`
	// IdempotencyKey deduplicates retried reservation attempts, scoped per tenant
	IdempotencyKey string `gorm:"column:idempotency_key;not null;type:text;uniqueIndex:idx_reservations_tenant_idem,priority:2"`
	// EstimatedCost is the caller's estimate at admission time
	EstimatedCost decimal.Decimal `gorm:"column:estimated_cost;not null;type:numeric(38,9)"`
	// ReservedAmount is the amount actually held (ceiling-bounded)
	ReservedAmount decimal.Decimal `gorm:"column:reserved_amount;not null;type:numeric(38,9)"`
	// ActualCost is recorded at finalize
	ActualCost *decimal.Decimal `gorm:"column:actual_cost;type:numeric(38,9)"`
	// State transitions reserved -> finalized | aborted, exactly once
	State domain.ReservationState `gorm:"column:state;not null;type:text"`
	// CreatedAt is the admission timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// FinalizedAt is set when the reservation leaves the reserved state
	FinalizedAt *time.Time `gorm:"column:finalized_at;type:timestamptz"`
}

// TableName specifies the table name for the Reservation model
func (Reservation) TableName() string {
	return "budget_reservations"
}
