package schema

import "time"

// SigningKey represents the signing_keys table - the public halves of the
// ES256 keys trusted for gateway token verification. Rotation inserts a new
// active row and retires the old one; retired keys stay resolvable until
// every token signed by them has expired.
type SigningKey struct {
	// KID is the key identifier carried in token headers
	KID string `gorm:"column:kid;primaryKey;type:text"`
	// PublicKeyPEM is the PEM-encoded ECDSA public key
	PublicKeyPEM string `gorm:"column:public_key_pem;not null;type:text"`
	// Active marks the key currently used for minting
	Active bool `gorm:"column:active;not null;default:false;index"`
	// CreatedAt is the key creation timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// RetiredAt is set when the key stops being used for minting
	RetiredAt *time.Time `gorm:"column:retired_at;type:timestamptz"`
}

// TableName specifies the table name for the SigningKey model
func (SigningKey) TableName() string {
	return "signing_keys"
}
