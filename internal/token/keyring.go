package token

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
)

// Keyring defines the interface for verification key resolution
//
//go:generate mockgen -source=keyring.go -destination=../mocks/keyring.go -package=mocks -mock_names=Keyring=MockKeyring
type Keyring interface {
	// VerificationKey resolves the public key for a kid. Unknown kids are
	// remembered briefly so a flood of bad tokens cannot hammer the store.
	VerificationKey(ctx context.Context, kid string) (*ecdsa.PublicKey, error)
}

// retireGraceFactor scales the maximum token lifetime into the window a
// retired key keeps verifying, so every token minted under it expires many
// times over before lookups start failing.
const retireGraceFactor = 1000

type cacheEntry struct {
	key       *ecdsa.PublicKey
	expiresAt time.Time
}

// storeKeyring resolves verification keys from the signing-key table with a
// short positive cache and a shorter negative cache. Concurrent misses for
// the same kid collapse into one store query.
type storeKeyring struct {
	store       store.Store
	clock       adapter.Clock
	ttl         time.Duration
	negativeTTL time.Duration
	retireGrace time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// NewKeyring creates a store-backed keyring. maxLifetime is the longest
// token lifetime the issuer mints; it sets how long retired keys remain
// resolvable.
func NewKeyring(s store.Store, clock adapter.Clock, ttl, negativeTTL, maxLifetime time.Duration) Keyring {
	return &storeKeyring{
		store:       s,
		clock:       clock,
		ttl:         ttl,
		negativeTTL: negativeTTL,
		retireGrace: retireGraceFactor * maxLifetime,
		cache:       make(map[string]cacheEntry),
	}
}

// VerificationKey resolves the public key for a kid
func (k *storeKeyring) VerificationKey(ctx context.Context, kid string) (*ecdsa.PublicKey, error) {
	k.mu.RLock()
	entry, ok := k.cache[kid]
	k.mu.RUnlock()

	if ok && k.clock.Now().Before(entry.expiresAt) {
		if entry.key == nil {
			return nil, fmt.Errorf("unknown signing key %q: %w", kid, domain.ErrAuth)
		}
		return entry.key, nil
	}

	result, err, _ := k.group.Do(kid, func() (interface{}, error) {
		record, err := k.store.GetSigningKey(ctx, kid)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}

		if record == nil {
			k.remember(kid, nil, k.negativeTTL)
			return nil, fmt.Errorf("unknown signing key %q: %w", kid, domain.ErrAuth)
		}

		if record.RetiredAt != nil && k.clock.Now().After(record.RetiredAt.Add(k.retireGrace)) {
			k.remember(kid, nil, k.negativeTTL)
			return nil, fmt.Errorf("signing key %q retired: %w", kid, domain.ErrAuth)
		}

		key, err := ParseECPublicKey(record.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse signing key %q: %w", kid, err)
		}

		k.remember(kid, key, k.ttl)
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*ecdsa.PublicKey), nil
}

func (k *storeKeyring) remember(kid string, key *ecdsa.PublicKey, ttl time.Duration) {
	k.mu.Lock()
	k.cache[kid] = cacheEntry{key: key, expiresAt: k.clock.Now().Add(ttl)}
	k.mu.Unlock()
}

// ParseECPublicKey parses a PEM-encoded ECDSA public key
func ParseECPublicKey(publicKeyPEM string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ecKey, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an ECDSA key")
	}

	return ecKey, nil
}

// EncodeECPublicKey encodes an ECDSA public key to PEM
func EncodeECPublicKey(key *ecdsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}
