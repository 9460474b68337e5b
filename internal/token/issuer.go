package token

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// MintInput carries the identity and request binding a token is minted for
type MintInput struct {
	TenantID  string
	UserID    string
	ChannelID string
	Tier      domain.Tier
	// IdempotencyKey is the key of the one operation this token may admit
	IdempotencyKey string
	// BodyHash is the canonical hash of the payload this token may admit
	BodyHash string
	// Lifetime is clamped to the configured maximum
	Lifetime time.Duration
}

// Issuer mints short-lived ES256 access tokens tagged with the active kid
type Issuer struct {
	cfg        config.TokenConfig
	clock      adapter.Clock
	kid        string
	privateKey *ecdsa.PrivateKey
}

// NewIssuer creates a token issuer signing with the given key
func NewIssuer(cfg config.TokenConfig, clock adapter.Clock, kid string, privateKey *ecdsa.PrivateKey) *Issuer {
	return &Issuer{
		cfg:        cfg,
		clock:      clock,
		kid:        kid,
		privateKey: privateKey,
	}
}

// Mint issues a signed token for the given identity
func (i *Issuer) Mint(input MintInput) (string, error) {
	signed, _, err := i.MintWithExpiry(input)
	return signed, err
}

// MintWithExpiry issues a signed token and reports when it expires
func (i *Issuer) MintWithExpiry(input MintInput) (string, time.Time, error) {
	if input.TenantID == "" || input.UserID == "" {
		return "", time.Time{}, fmt.Errorf("tenant and user are required: %w", domain.ErrValidation)
	}
	if input.IdempotencyKey == "" || input.BodyHash == "" {
		return "", time.Time{}, fmt.Errorf("idempotency key and body hash are required: %w", domain.ErrValidation)
	}

	lifetime := input.Lifetime
	if lifetime <= 0 || lifetime > i.cfg.MaxLifetime {
		lifetime = i.cfg.MaxLifetime
	}

	now := i.clock.Now()
	expiresAt := now.Add(lifetime)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			Subject:   input.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID:       input.TenantID,
		UserID:         input.UserID,
		ChannelID:      input.ChannelID,
		Tier:           input.Tier,
		IdempotencyKey: input.IdempotencyKey,
		BodyHash:       input.BodyHash,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = i.kid

	signed, err := tok.SignedString(i.privateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// GenerateSigningKey creates a fresh P-256 key pair for rotation, returning
// the new kid, the private key, and the PEM-encoded public half.
func GenerateSigningKey() (string, *ecdsa.PrivateKey, string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", nil, "", fmt.Errorf("failed to generate signing key: %w", err)
	}

	publicPEM, err := EncodeECPublicKey(&key.PublicKey)
	if err != nil {
		return "", nil, "", err
	}

	return uuid.NewString(), key, publicPEM, nil
}

// ParseECPrivateKey parses a PEM-encoded ECDSA private key in either SEC1 or
// PKCS#8 form.
func ParseECPrivateKey(privateKeyPEM string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing private key")
	}

	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	ecKey, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an ECDSA key")
	}
	return ecKey, nil
}
