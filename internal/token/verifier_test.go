package token_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/token"
)

const testKID = "test-kid"

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{
		Issuer:      "freeside-gateway",
		Audience:    "freeside-inference",
		MaxLifetime: 60 * time.Second,
		ClockSkew:   30 * time.Second,
	}
}

type verifierFixture struct {
	issuer   *token.Issuer
	verifier *token.Verifier
	keyring  *mocks.MockKeyring
	tiers    *mocks.MockTierRegistry
	redis    *mocks.MockRedisClient
	key      *ecdsa.PrivateKey
}

func newVerifierFixture(t *testing.T, ctrl *gomock.Controller) *verifierFixture {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	cfg := testTokenConfig()
	clock := adapter.NewClock()

	keyring := mocks.NewMockKeyring(ctrl)
	tiers := mocks.NewMockTierRegistry(ctrl)
	redis := mocks.NewMockRedisClient(ctrl)

	return &verifierFixture{
		issuer:   token.NewIssuer(cfg, clock, testKID, key),
		verifier: token.NewVerifier(cfg, keyring, tiers, redis, clock, "freeside"),
		keyring:  keyring,
		tiers:    tiers,
		redis:    redis,
		key:      key,
	}
}

func (f *verifierFixture) expectKey() {
	f.keyring.EXPECT().
		VerificationKey(gomock.Any(), testKID).
		Return(&f.key.PublicKey, nil).
		AnyTimes()
}

func TestVerifier_Verify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.expectKey()
	f.tiers.EXPECT().AccessLevelForTier(domain.TierElevated).Return(domain.AccessLevelElevated)
	f.redis.EXPECT().SetNX(gomock.Any(), gomock.Any(), "1", gomock.Any()).Return(true, nil)

	signed, err := f.issuer.Mint(token.MintInput{
		TenantID:       "tenant-1",
		UserID:         "user-1",
		ChannelID:      "channel-1",
		Tier:           domain.TierElevated,
		IdempotencyKey: "op-key-1",
		BodyHash:       "feedface",
	})
	require.NoError(t, err)

	identity, err := f.verifier.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", identity.TenantID)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "channel-1", identity.ChannelID)
	assert.Equal(t, domain.TierElevated, identity.Tier)
	assert.Equal(t, domain.AccessLevelElevated, identity.AccessLevel)
	assert.Equal(t, "op-key-1", identity.IdempotencyKey)
	assert.Equal(t, "feedface", identity.BodyHash)
	assert.NotEmpty(t, identity.TokenID)
}

func TestVerifier_Verify_Replay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.expectKey()
	f.tiers.EXPECT().AccessLevelForTier(gomock.Any()).Return(domain.AccessLevelStandard).Times(2)

	gomock.InOrder(
		f.redis.EXPECT().SetNX(gomock.Any(), gomock.Any(), "1", gomock.Any()).Return(true, nil),
		f.redis.EXPECT().SetNX(gomock.Any(), gomock.Any(), "1", gomock.Any()).Return(false, nil),
	)

	signed, err := f.issuer.Mint(token.MintInput{
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Tier:           domain.TierStandard,
		IdempotencyKey: "op-key-1",
		BodyHash:       "feedface",
	})
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	require.NoError(t, err)

	// Second presentation of the same token is a replay
	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestVerifier_Verify_ReplayStoreDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.expectKey()
	f.tiers.EXPECT().AccessLevelForTier(gomock.Any()).Return(domain.AccessLevelStandard)
	f.redis.EXPECT().SetNX(gomock.Any(), gomock.Any(), "1", gomock.Any()).
		Return(false, errors.New("connection refused"))

	signed, err := f.issuer.Mint(token.MintInput{
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Tier:           domain.TierStandard,
		IdempotencyKey: "op-key-1",
		BodyHash:       "feedface",
	})
	require.NoError(t, err)

	// Fail closed when the replay set is unreachable
	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestVerifier_Verify_WrongAlgorithm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)

	// A symmetric token must be rejected before any key lookup succeeds
	now := time.Now()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Issuer:    "freeside-gateway",
			Audience:  jwt.ClaimStrings{"freeside-inference"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		TenantID: "tenant-1",
		UserID:   "user-1",
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = testKID
	signed, err := tok.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestVerifier_Verify_UnknownKID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.keyring.EXPECT().
		VerificationKey(gomock.Any(), testKID).
		Return(nil, domain.ErrAuth)

	signed, err := f.issuer.Mint(token.MintInput{
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Tier:           domain.TierStandard,
		IdempotencyKey: "op-key-1",
		BodyHash:       "feedface",
	})
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestVerifier_Verify_LifetimeExceedsMax(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.expectKey()

	// Hand-roll a token whose exp-iat window is longer than the maximum,
	// signed with the right key
	now := time.Now()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-long",
			Issuer:    "freeside-gateway",
			Audience:  jwt.ClaimStrings{"freeside-inference"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
		TenantID: "tenant-1",
		UserID:   "user-1",
		Tier:     domain.TierStandard,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = testKID
	signed, err := tok.SignedString(f.key)
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestVerifier_Verify_AssertedAccessEscalation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.expectKey()
	f.tiers.EXPECT().AccessLevelForTier(domain.TierBasic).Return(domain.AccessLevelRestricted)
	f.tiers.EXPECT().
		Satisfies(domain.AccessLevelRestricted, domain.AccessLevelSovereign).
		Return(false)

	now := time.Now()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-esc",
			Issuer:    "freeside-gateway",
			Audience:  jwt.ClaimStrings{"freeside-inference"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Second)),
		},
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Tier:           domain.TierBasic,
		AssertedAccess: domain.AccessLevelSovereign,
		IdempotencyKey: "op-key-1",
		BodyHash:       "feedface",
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = testKID
	signed, err := tok.SignedString(f.key)
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPolicyEscalation))
}

func TestVerifier_Verify_Expired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.expectKey()

	// Expired beyond the skew window
	now := time.Now().Add(-5 * time.Minute)
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-old",
			Issuer:    "freeside-gateway",
			Audience:  jwt.ClaimStrings{"freeside-inference"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Second)),
		},
		TenantID: "tenant-1",
		UserID:   "user-1",
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = testKID
	signed, err := tok.SignedString(f.key)
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestVerifier_Verify_MissingBindingClaims(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)
	f.expectKey()

	// A token without the idempotency-key and body-hash claims could be
	// spent on any payload; it never crosses the boundary
	now := time.Now()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-unbound",
			Issuer:    "freeside-gateway",
			Audience:  jwt.ClaimStrings{"freeside-inference"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Second)),
		},
		TenantID: "tenant-1",
		UserID:   "user-1",
		Tier:     domain.TierStandard,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = testKID
	signed, err := tok.SignedString(f.key)
	require.NoError(t, err)

	_, err = f.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestVerifier_Verify_Garbage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newVerifierFixture(t, ctrl)

	_, err := f.verifier.Verify(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
}

func TestIssuer_Mint_ClampsLifetime(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	issuer := token.NewIssuer(testTokenConfig(), adapter.NewClock(), testKID, key)
	signed, err := issuer.Mint(token.MintInput{
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Tier:           domain.TierStandard,
		IdempotencyKey: "op-key-1",
		BodyHash:       "feedface",
		Lifetime:       24 * time.Hour,
	})
	require.NoError(t, err)

	claims := &token.Claims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(signed, claims)
	require.NoError(t, err)
	assert.Equal(t, testKID, parsed.Header["kid"])
	assert.LessOrEqual(t,
		claims.ExpiresAt.Sub(claims.IssuedAt.Time),
		testTokenConfig().MaxLifetime)
}

func TestIssuer_Mint_RequiresIdentity(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	issuer := token.NewIssuer(testTokenConfig(), adapter.NewClock(), testKID, key)
	_, err = issuer.Mint(token.MintInput{UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestIssuer_Mint_RequiresRequestBinding(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	issuer := token.NewIssuer(testTokenConfig(), adapter.NewClock(), testKID, key)
	_, err = issuer.Mint(token.MintInput{
		TenantID: "tenant-1",
		UserID:   "user-1",
		Tier:     domain.TierStandard,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
