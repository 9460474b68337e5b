package token

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/registry"
)

// Verifier is the gateway's trust boundary for inbound tokens. Every check
// that fails rejects the request; nothing downstream re-examines the token.
type Verifier struct {
	cfg       config.TokenConfig
	keyring   Keyring
	tiers     registry.TierRegistry
	redis     adapter.RedisClient
	clock     adapter.Clock
	keyPrefix string
}

// NewVerifier creates a token verifier
func NewVerifier(cfg config.TokenConfig, keyring Keyring, tiers registry.TierRegistry, redis adapter.RedisClient, clock adapter.Clock, keyPrefix string) *Verifier {
	return &Verifier{
		cfg:       cfg,
		keyring:   keyring,
		tiers:     tiers,
		redis:     redis,
		clock:     clock,
		keyPrefix: keyPrefix,
	}
}

// Verify validates a token end to end and consumes its jti. A replayed jti
// is rejected even when every other check passes.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// The accepted algorithm is pinned; "none" and algorithm-confusion
		// tokens never reach key resolution
		if _, ok := t.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}

		return v.keyring.VerificationKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithLeeway(v.cfg.ClockSkew),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %v: %w", err, domain.ErrAuth)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrAuth)
	}

	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("token missing iat or exp: %w", domain.ErrAuth)
	}
	if claims.ExpiresAt.Sub(claims.IssuedAt.Time) > v.cfg.MaxLifetime {
		return nil, fmt.Errorf("token lifetime exceeds maximum: %w", domain.ErrAuth)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token missing jti: %w", domain.ErrAuth)
	}
	if claims.TenantID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("token missing identity claims: %w", domain.ErrAuth)
	}
	if claims.IdempotencyKey == "" || claims.BodyHash == "" {
		return nil, fmt.Errorf("token missing request binding claims: %w", domain.ErrAuth)
	}

	// Access is recomputed from the tier table; the token never decides it
	access := v.tiers.AccessLevelForTier(claims.Tier)
	if claims.AssertedAccess != "" && !v.tiers.Satisfies(access, claims.AssertedAccess) {
		return nil, fmt.Errorf("asserted access %q exceeds computed %q: %w",
			claims.AssertedAccess, access, domain.ErrPolicyEscalation)
	}

	// Consume the jti. The marker outlives the token by the skew window so a
	// replay near expiry still collides.
	ttl := claims.ExpiresAt.Sub(v.clock.Now()) + v.cfg.ClockSkew
	if ttl <= 0 {
		return nil, fmt.Errorf("token already expired: %w", domain.ErrAuth)
	}

	ok, err := v.redis.SetNX(ctx, v.jtiKey(claims.ID), "1", ttl)
	if err != nil {
		// Fail closed: if the replay set is unreachable the token is not
		// accepted
		return nil, fmt.Errorf("failed to check token replay: %w", domain.ErrUpstreamUnavailable)
	}
	if !ok {
		return nil, fmt.Errorf("token replayed: %w", domain.ErrConflict)
	}

	return &Identity{
		TokenID:        claims.ID,
		TenantID:       claims.TenantID,
		UserID:         claims.UserID,
		ChannelID:      claims.ChannelID,
		Tier:           claims.Tier,
		AccessLevel:    access,
		IdempotencyKey: claims.IdempotencyKey,
		BodyHash:       claims.BodyHash,
	}, nil
}

func (v *Verifier) jtiKey(jti string) string {
	return fmt.Sprintf("%s:jti:%s", v.keyPrefix, jti)
}
