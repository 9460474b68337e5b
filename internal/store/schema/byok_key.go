package schema

import (
	"time"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// BYOKKey represents the byok_keys table - a tenant-supplied provider API
// key. Routing resolves the provider from the stored row, never from the
// requested pool name. One key per tenant per provider.
type BYOKKey struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TenantID is the owning tenant's external identifier
	TenantID string `gorm:"column:tenant_id;not null;type:text;uniqueIndex:idx_byok_tenant_provider,priority:1"`
	// Provider is the upstream brand this key authenticates against
	Provider domain.Provider `gorm:"column:provider;not null;type:text;uniqueIndex:idx_byok_tenant_provider,priority:2"`
	// Fingerprint is a SHA-256 digest of the key material, used for audit
	// logging without exposing the key
	Fingerprint string `gorm:"column:fingerprint;not null;type:text"`
	// Ciphertext is the encrypted key material
	Ciphertext []byte `gorm:"column:ciphertext;not null;type:bytea"`
	// Revoked keys are excluded from routing but kept for audit
	Revoked bool `gorm:"column:revoked;not null;default:false"`
	// CreatedAt is the registration timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BYOKKey model
func (BYOKKey) TableName() string {
	return "byok_keys"
}
