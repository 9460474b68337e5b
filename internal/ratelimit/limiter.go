package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
)

// Request identifies one admission attempt across every limited dimension.
// Empty dimensions are skipped.
type Request struct {
	IP        string
	TenantID  string
	UserID    string
	ChannelID string
}

// LimitExceededError reports which dimension rejected the request and when a
// retry may succeed.
type LimitExceededError struct {
	Dimension  string
	RetryAfter time.Duration
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded on %s, retry after %s", e.Dimension, e.RetryAfter)
}

func (e *LimitExceededError) Unwrap() error {
	return domain.ErrRateLimited
}

// Limiter defines the interface for request admission
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit_limiter.go -package=mocks -mock_names=Limiter=MockLimiter
type Limiter interface {
	// Allow admits or rejects a request. Every limited dimension is checked
	// against the shared store; a store failure rejects the request.
	Allow(ctx context.Context, req Request) error
}

// limiter enforces per-IP, per-tenant, per-user and per-channel windows plus
// a short per-tenant burst window. The shared store is authoritative for
// every decision; the local pre-filter only sheds abusive load before it
// reaches the store and can never admit more than the store would.
type limiter struct {
	cfg         config.RateLimitConfig
	distributed adapter.RedisRateLimiter
	preFilter   *rate.Limiter
	keyPrefix   string
}

// NewLimiter creates an admission limiter backed by the given Redis client
func NewLimiter(cfg config.RateLimitConfig, rc adapter.RedisClient, keyPrefix string) Limiter {
	localRPS := cfg.LocalRPS
	if localRPS <= 0 {
		localRPS = 1
	}
	localBurst := cfg.LocalBurst
	if localBurst <= 0 {
		localBurst = 1
	}

	return &limiter{
		cfg:         cfg,
		distributed: rc.NewRateLimiter(),
		preFilter:   rate.NewLimiter(rate.Limit(localRPS), localBurst),
		keyPrefix:   keyPrefix,
	}
}

type dimensionCheck struct {
	name  string
	id    string
	limit redis_rate.Limit
}

// Allow admits or rejects a request
func (l *limiter) Allow(ctx context.Context, req Request) error {
	// Local pre-filter: a saturated instance rejects before touching the
	// store. This is load shedding, not the decision of record.
	if !l.preFilter.Allow() {
		return &LimitExceededError{Dimension: "instance", RetryAfter: time.Second}
	}

	checks := []dimensionCheck{
		{name: "ip", id: req.IP, limit: redis_rate.PerMinute(l.cfg.PerIPPerMinute)},
		{name: "tenant", id: req.TenantID, limit: redis_rate.PerMinute(l.cfg.PerTenantPerMinute)},
		{name: "user", id: l.scoped(req.TenantID, req.UserID), limit: redis_rate.PerMinute(l.cfg.PerUserPerMinute)},
		{name: "channel", id: l.scoped(req.TenantID, req.ChannelID), limit: redis_rate.PerMinute(l.cfg.PerChannelPerMinute)},
		{name: "burst", id: req.TenantID, limit: redis_rate.PerSecond(l.cfg.BurstPerSecond)},
	}

	for _, check := range checks {
		if check.id == "" || check.limit.Rate <= 0 {
			continue
		}

		key := fmt.Sprintf("%s:rl:%s:%s", l.keyPrefix, check.name, check.id)
		res, err := l.distributed.Allow(ctx, key, check.limit)
		if err != nil {
			// Fail closed: an unreachable limit store admits nothing
			logger.WarnCtx(ctx, "Rate limit store unavailable, rejecting",
				zap.String("dimension", check.name),
				zap.Error(err),
			)
			return fmt.Errorf("rate limit store unavailable: %w", domain.ErrUpstreamUnavailable)
		}

		if res.Allowed == 0 {
			logger.DebugCtx(ctx, "Rate limit exceeded",
				zap.String("dimension", check.name),
				zap.Duration("retry_after", res.RetryAfter),
				zap.Int("remaining", res.Remaining),
			)
			return &LimitExceededError{Dimension: check.name, RetryAfter: res.RetryAfter}
		}
	}

	return nil
}

// scoped prefixes a user or channel id with its tenant so identical ids in
// different tenants never share a window
func (l *limiter) scoped(tenantID, id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", tenantID, id)
}
