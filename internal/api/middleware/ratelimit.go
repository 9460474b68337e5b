package middleware

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	apierrors "github.com/0xHoneyJar/loa-freeside-sub004/internal/api/shared/errors"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/ratelimit"
)

// RateLimit admits or rejects the request on every limited dimension.
// Must run after TokenAuth: tenant, user and channel come from the verified
// identity.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := ratelimit.Request{IP: c.ClientIP()}
		if identity, ok := IdentityFrom(c); ok {
			req.TenantID = identity.TenantID
			req.UserID = identity.UserID
			req.ChannelID = identity.ChannelID
		}

		if err := limiter.Allow(c.Request.Context(), req); err != nil {
			var exceeded *ratelimit.LimitExceededError
			if errors.As(err, &exceeded) {
				c.Header("Retry-After", fmt.Sprintf("%d", int(exceeded.RetryAfter.Seconds())+1))
			}
			status, code, msg := apierrors.Classify(err)
			c.AbortWithStatusJSON(status, apierrors.NewResponse(code, msg))
			return
		}
		c.Next()
	}
}
