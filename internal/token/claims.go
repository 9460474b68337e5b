package token

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// Claims is the payload of a gateway access token. The token carries the
// caller's identity and conviction tier; it never carries an authoritative
// access level. Access is recomputed server-side on every request, so a
// client-asserted level can only be rejected, never honored.
type Claims struct {
	jwt.RegisteredClaims

	// TenantID is the community the caller belongs to
	TenantID string `json:"tid"`
	// UserID is the end user within the tenant
	UserID string `json:"uid"`
	// ChannelID is the originating chat channel
	ChannelID string `json:"cid,omitempty"`
	// Tier is the conviction tier resolved at mint time
	Tier domain.Tier `json:"tier"`
	// AssertedAccess is an optional client-side hint. It is never trusted;
	// a hint above the recomputed level fails verification outright.
	AssertedAccess domain.AccessLevel `json:"acc,omitempty"`
	// IdempotencyKey binds the token to exactly one keyed operation
	IdempotencyKey string `json:"ik"`
	// BodyHash is the canonical hash of the request payload the token was
	// minted for. A token intercepted within its validity window cannot be
	// spent on any other payload.
	BodyHash string `json:"bh"`
}

// Identity is the verified caller identity attached to a request after the
// trust boundary has been crossed.
type Identity struct {
	TokenID        string
	TenantID       string
	UserID         string
	ChannelID      string
	Tier           domain.Tier
	AccessLevel    domain.AccessLevel
	IdempotencyKey string
	BodyHash       string
}
