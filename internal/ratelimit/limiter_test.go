package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/ratelimit"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func testRateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		PerIPPerMinute:      60,
		PerTenantPerMinute:  120,
		PerUserPerMinute:    30,
		PerChannelPerMinute: 90,
		BurstPerSecond:      5,
		LocalRPS:            1000,
		LocalBurst:          1000,
	}
}

func testRequest() ratelimit.Request {
	return ratelimit.Request{
		IP:        "203.0.113.7",
		TenantID:  "tenant-1",
		UserID:    "user-1",
		ChannelID: "channel-1",
	}
}

func newLimiterFixture(ctrl *gomock.Controller, cfg config.RateLimitConfig) (ratelimit.Limiter, *mocks.MockRedisRateLimiter) {
	distributed := mocks.NewMockRedisRateLimiter(ctrl)
	rc := mocks.NewMockRedisClient(ctrl)
	rc.EXPECT().NewRateLimiter().Return(distributed)
	return ratelimit.NewLimiter(cfg, rc, "freeside"), distributed
}

func allowed() *redis_rate.Result {
	return &redis_rate.Result{Allowed: 1, Remaining: 10}
}

func TestLimiter_Allow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, distributed := newLimiterFixture(ctrl, testRateLimitConfig())

	// All five dimensions consulted
	distributed.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(allowed(), nil).
		Times(5)

	require.NoError(t, l.Allow(context.Background(), testRequest()))
}

func TestLimiter_Allow_SkipsEmptyDimensions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, distributed := newLimiterFixture(ctrl, testRateLimitConfig())

	// No channel: ip, tenant, user, burst
	distributed.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(allowed(), nil).
		Times(4)

	req := testRequest()
	req.ChannelID = ""
	require.NoError(t, l.Allow(context.Background(), req))
}

func TestLimiter_Allow_DimensionExceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, distributed := newLimiterFixture(ctrl, testRateLimitConfig())

	gomock.InOrder(
		distributed.EXPECT().
			Allow(gomock.Any(), "freeside:rl:ip:203.0.113.7", gomock.Any()).
			Return(allowed(), nil),
		distributed.EXPECT().
			Allow(gomock.Any(), "freeside:rl:tenant:tenant-1", gomock.Any()).
			Return(&redis_rate.Result{Allowed: 0, RetryAfter: 3 * time.Second}, nil),
	)

	err := l.Allow(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))

	var exceeded *ratelimit.LimitExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, "tenant", exceeded.Dimension)
	assert.Equal(t, 3*time.Second, exceeded.RetryAfter)
}

func TestLimiter_Allow_UserScopedToTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, distributed := newLimiterFixture(ctrl, testRateLimitConfig())

	distributed.EXPECT().
		Allow(gomock.Any(), "freeside:rl:ip:203.0.113.7", gomock.Any()).
		Return(allowed(), nil)
	distributed.EXPECT().
		Allow(gomock.Any(), "freeside:rl:tenant:tenant-1", gomock.Any()).
		Return(allowed(), nil)
	// Same user id in another tenant must land on a different key
	distributed.EXPECT().
		Allow(gomock.Any(), "freeside:rl:user:tenant-1:user-1", gomock.Any()).
		Return(allowed(), nil)
	distributed.EXPECT().
		Allow(gomock.Any(), "freeside:rl:channel:tenant-1:channel-1", gomock.Any()).
		Return(allowed(), nil)
	distributed.EXPECT().
		Allow(gomock.Any(), "freeside:rl:burst:tenant-1", gomock.Any()).
		Return(allowed(), nil)

	require.NoError(t, l.Allow(context.Background(), testRequest()))
}

func TestLimiter_Allow_FailsClosedOnStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, distributed := newLimiterFixture(ctrl, testRateLimitConfig())

	distributed.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	err := l.Allow(context.Background(), testRequest())
	require.Error(t, err)
	// A store failure is never an admission
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
	assert.False(t, errors.Is(err, domain.ErrRateLimited))
}

func TestLimiter_Allow_LocalPreFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testRateLimitConfig()
	cfg.LocalRPS = 1
	cfg.LocalBurst = 1

	l, distributed := newLimiterFixture(ctrl, cfg)
	distributed.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(allowed(), nil).
		Times(5)

	// First request passes the pre-filter and consults the store
	require.NoError(t, l.Allow(context.Background(), testRequest()))

	// Second immediate request is shed locally without a store round trip
	err := l.Allow(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}
