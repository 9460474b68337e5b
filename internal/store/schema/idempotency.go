package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// IdempotencyRecord represents the idempotency_records table. Keys are
// scoped per tenant; a retry with the same key but a different body hash
// is rejected as a conflict.
type IdempotencyRecord struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TenantID is the owning tenant's external identifier
	TenantID string `gorm:"column:tenant_id;not null;type:text;uniqueIndex:idx_idempotency_tenant_key,priority:1"`
	// IdempotencyKey is the caller-supplied key
	IdempotencyKey string `gorm:"column:idempotency_key;not null;type:text;uniqueIndex:idx_idempotency_tenant_key,priority:2"`
	// BodyHash is the JCS-canonical SHA-256 of the request payload
	BodyHash string `gorm:"column:body_hash;not null;type:text"`
	// State is the record lifecycle state
	State domain.IdempotencyState `gorm:"column:state;not null;type:text"`
	// ResponseBody is the stored terminal response for replay
	ResponseBody datatypes.JSON `gorm:"column:response_body;type:jsonb"`
	// PartialCost records the cost finalized when the operation was
	// interrupted and resumed as lost
	PartialCost decimal.Decimal `gorm:"column:partial_cost;not null;default:0;type:numeric(38,9)"`
	// CreatedAt is the first-seen timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// CompletedAt is set when the record reaches a terminal state
	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamptz"`
}

// TableName specifies the table name for the IdempotencyRecord model
func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
