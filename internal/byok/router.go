package byok

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/registry"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

// DefaultDailyQuota is the number of BYOK-forwarded requests a tenant may
// make per 24-hour window.
const DefaultDailyQuota = 10000

const quotaWindow = 24 * time.Hour

// quotaScript increments the tenant's daily counter and compares against
// the quota in the same round trip, so concurrent requests cannot jointly
// overshoot. The window TTL is set only when the counter is created.
const quotaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
if count > tonumber(ARGV[2]) then
  return {count, 0}
end
return {count, 1}
`

// Resolution is the routing outcome for one BYOK-forwarded request.
type Resolution struct {
	Provider domain.Provider
	BaseURL  string
	Key      *schema.BYOKKey
}

// Router resolves which upstream provider a tenant's stored key targets and
// enforces the per-tenant daily quota.
//
//go:generate mockgen -source=router.go -destination=../mocks/byok.go -package=mocks -mock_names=Router=MockRouter
type Router interface {
	// Resolve picks the provider for the requested capability pool from the
	// tenant's stored keys and charges one unit of daily quota.
	Resolve(ctx context.Context, tenantID string, pool domain.CapabilityPool) (*Resolution, error)
}

type router struct {
	store      store.Store
	rc         adapter.RedisClient
	pools      registry.PoolRegistry
	hosts      registry.HostRegistry
	keyPrefix  string
	dailyQuota int64
}

// NewRouter creates a new BYOK provider router
func NewRouter(st store.Store, rc adapter.RedisClient, pools registry.PoolRegistry, hosts registry.HostRegistry, keyPrefix string, dailyQuota int64) Router {
	if dailyQuota <= 0 {
		dailyQuota = DefaultDailyQuota
	}
	return &router{
		store:      st,
		rc:         rc,
		pools:      pools,
		hosts:      hosts,
		keyPrefix:  keyPrefix,
		dailyQuota: dailyQuota,
	}
}

// Resolve picks the provider for the requested capability pool
func (r *router) Resolve(ctx context.Context, tenantID string, pool domain.CapabilityPool) (*Resolution, error) {
	if !r.pools.IsKnownPool(pool) {
		return nil, fmt.Errorf("%w: unknown capability pool %q", domain.ErrValidation, pool)
	}

	keys, err := r.store.GetBYOKKeys(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: tenant %s holds no provider keys", domain.ErrNotFound, tenantID)
	}

	// The provider comes from the keys the tenant actually holds. Pool
	// identifiers encode a capability tier, not a brand; matching on them
	// would route all traffic to one provider.
	held := make(map[domain.Provider]*schema.BYOKKey, len(keys))
	for i := range keys {
		held[keys[i].Provider] = &keys[i]
	}

	var key *schema.BYOKKey
	for _, provider := range r.pools.ProviderPreference(pool) {
		if k, ok := held[provider]; ok {
			key = k
			break
		}
	}
	if key == nil {
		return nil, fmt.Errorf("%w: no key for any provider serving pool %q", domain.ErrNotFound, pool)
	}

	if err := r.chargeQuota(ctx, tenantID); err != nil {
		return nil, err
	}

	baseURL, ok := r.hosts.BaseURL(key.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: provider %s has no allow-listed endpoint", domain.ErrForbidden, key.Provider)
	}
	if err := r.checkEgress(key.Provider, baseURL); err != nil {
		return nil, err
	}

	return &Resolution{
		Provider: key.Provider,
		BaseURL:  baseURL,
		Key:      key,
	}, nil
}

func (r *router) chargeQuota(ctx context.Context, tenantID string) error {
	quotaKey := fmt.Sprintf("%s:byok:quota:%s", r.keyPrefix, tenantID)

	reply, err := r.rc.Eval(ctx, quotaScript, []string{quotaKey},
		int64(quotaWindow.Seconds()), r.dailyQuota)
	if err != nil {
		return fmt.Errorf("%w: quota store unreachable: %v", domain.ErrUpstreamUnavailable, err)
	}

	values, ok := reply.([]interface{})
	if !ok || len(values) != 2 {
		return fmt.Errorf("unexpected quota reply %v", reply)
	}
	allowed, ok := values[1].(int64)
	if !ok {
		return fmt.Errorf("unexpected quota reply element %v", values[1])
	}
	if allowed == 0 {
		return fmt.Errorf("%w: tenant %s exhausted daily key quota", domain.ErrQuotaExceeded, tenantID)
	}
	return nil
}

// checkEgress pins outbound BYOK traffic to allow-listed provider hosts.
func (r *router) checkEgress(provider domain.Provider, baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse provider endpoint: %w", err)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("%w: provider endpoint %s is not https", domain.ErrForbidden, baseURL)
	}
	host := strings.ToLower(parsed.Hostname())
	if !r.hosts.IsAllowedHost(provider, host) {
		return fmt.Errorf("%w: host %s is not an allow-listed %s endpoint", domain.ErrForbidden, host, provider)
	}
	return nil
}
