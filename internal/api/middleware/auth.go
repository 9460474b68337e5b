package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/0xHoneyJar/loa-freeside-sub004/internal/api/shared/errors"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/token"
)

const identityKey = "gateway_identity"

var tokenMissingErr = fmt.Errorf("missing or malformed bearer token: %w", domain.ErrAuth)

// TokenAuth verifies the gateway access token and attaches the verified
// identity to the request context. Everything downstream trusts only that
// identity, never raw claims.
func TokenAuth(verifier *token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			status, code, msg := apierrors.Classify(tokenMissingErr)
			c.AbortWithStatusJSON(status, apierrors.NewResponse(code, msg))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), raw)
		if err != nil {
			status, code, msg := apierrors.Classify(err)
			logger.WarnCtx(c.Request.Context(), "Token rejected",
				zap.String("code", string(code)),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(status, apierrors.NewResponse(code, msg))
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// SetIdentity attaches a verified identity to the request context.
func SetIdentity(c *gin.Context, identity *token.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the verified identity attached by TokenAuth.
func IdentityFrom(c *gin.Context) (*token.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*token.Identity)
	return identity, ok
}

// APIKeyAuth guards the admin and mint surfaces with operator API keys.
func APIKeyAuth(keys []string) gin.HandlerFunc {
	keyMap := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			keyMap[key] = true
		}
	}

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || !keyMap[raw] {
			status, code, msg := apierrors.Classify(tokenMissingErr)
			c.AbortWithStatusJSON(status, apierrors.NewResponse(code, msg))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
