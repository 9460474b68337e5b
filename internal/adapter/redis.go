package adapter

import (
	"context"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RedisClient defines the interface for Redis operations to enable mocking.
// All mutable shared state (budget counters, rate windows, the jti replay
// set, BYOK quota counters) goes through this interface; nothing mutable is
// cached in-process.
//
//go:generate mockgen -source=redis.go -destination=../mocks/redis.go -package=mocks -mock_names=RedisClient=MockRedisClient,RedisRateLimiter=MockRedisRateLimiter
type RedisClient interface {
	// Ping checks if Redis is reachable
	Ping(ctx context.Context) error

	// SetNX sets key to value with a TTL only if the key does not exist.
	// Returns true if the key was set.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	// Get returns the value of key, or redis.Nil-wrapped error when absent
	Get(ctx context.Context, key string) (string, error)

	// Del removes the given keys
	Del(ctx context.Context, keys ...string) error

	// Eval runs a Lua script with the given keys and arguments in a single
	// round trip
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)

	// NewRateLimiter creates a new sliding-window rate limiter backed by
	// this client
	NewRateLimiter() RedisRateLimiter

	// Close closes the Redis connection
	Close() error
}

// RealRedisClient wraps the actual Redis client
type RealRedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) RedisClient {
	return &RealRedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping checks if Redis is reachable
func (r *RealRedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// SetNX sets key to value with a TTL only if the key does not exist
func (r *RealRedisClient) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

// Get returns the value of key
func (r *RealRedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Del removes the given keys
func (r *RealRedisClient) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Eval runs a Lua script in a single round trip
func (r *RealRedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return r.client.Eval(ctx, script, keys, args...).Result()
}

// NewRateLimiter creates a new rate limiter using this Redis client
func (r *RealRedisClient) NewRateLimiter() RedisRateLimiter {
	return NewRateLimiter(redis_rate.NewLimiter(r.client))
}

// Close closes the Redis connection
func (r *RealRedisClient) Close() error {
	return r.client.Close()
}

// IsNil reports whether err is the Redis "key does not exist" reply
func IsNil(err error) bool {
	return err == redis.Nil
}

// RedisRateLimiter defines the interface for distributed rate limiting operations
type RedisRateLimiter interface {
	// Allow checks if a request is allowed based on the rate limit
	// Returns the result containing allowed status and retry information
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RealRateLimiter wraps the redis_rate.Limiter
type RealRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRateLimiter creates a new rate limiter from a redis_rate.Limiter
func NewRateLimiter(limiter *redis_rate.Limiter) RedisRateLimiter {
	return &RealRateLimiter{
		limiter: limiter,
	}
}

// Allow checks if a request is allowed based on the rate limit
func (r *RealRateLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	return r.limiter.Allow(ctx, key, limit)
}
