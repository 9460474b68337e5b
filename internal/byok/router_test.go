package byok_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/byok"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/mocks"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

type routerMocks struct {
	store *mocks.MockStore
	redis *mocks.MockRedisClient
	pools *mocks.MockPoolRegistry
	hosts *mocks.MockHostRegistry
}

func newRouter(ctrl *gomock.Controller, quota int64) (byok.Router, *routerMocks) {
	m := &routerMocks{
		store: mocks.NewMockStore(ctrl),
		redis: mocks.NewMockRedisClient(ctrl),
		pools: mocks.NewMockPoolRegistry(ctrl),
		hosts: mocks.NewMockHostRegistry(ctrl),
	}
	return byok.NewRouter(m.store, m.redis, m.pools, m.hosts, "freeside", quota), m
}

func anthropicKey() schema.BYOKKey {
	return schema.BYOKKey{
		ID:          1,
		TenantID:    "tenant-1",
		Provider:    domain.ProviderAnthropic,
		Fingerprint: "fp-a",
	}
}

func openAIKey() schema.BYOKKey {
	return schema.BYOKKey{
		ID:          2,
		TenantID:    "tenant-1",
		Provider:    domain.ProviderOpenAI,
		Fingerprint: "fp-o",
	}
}

func TestResolve_PicksProviderFromStoredKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, m := newRouter(ctrl, 10000)

	m.pools.EXPECT().IsKnownPool(domain.PoolReasoning).Return(true)
	// Tenant holds only an OpenAI key; preference order must not matter more
	// than actual key possession.
	m.store.EXPECT().GetBYOKKeys(gomock.Any(), "tenant-1").Return([]schema.BYOKKey{openAIKey()}, nil)
	m.pools.EXPECT().ProviderPreference(domain.PoolReasoning).
		Return([]domain.Provider{domain.ProviderAnthropic, domain.ProviderOpenAI, domain.ProviderOpenRouter})
	m.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), []string{"freeside:byok:quota:tenant-1"}, int64(86400), int64(10000)).
		Return([]interface{}{int64(1), int64(1)}, nil)
	m.hosts.EXPECT().BaseURL(domain.ProviderOpenAI).Return("https://api.openai.com/v1", true)
	m.hosts.EXPECT().IsAllowedHost(domain.ProviderOpenAI, "api.openai.com").Return(true)

	resolution, err := router.Resolve(context.Background(), "tenant-1", domain.PoolReasoning)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderOpenAI, resolution.Provider)
	assert.Equal(t, "https://api.openai.com/v1", resolution.BaseURL)
	assert.Equal(t, "fp-o", resolution.Key.Fingerprint)
}

func TestResolve_PreferenceBreaksTie(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, m := newRouter(ctrl, 10000)

	m.pools.EXPECT().IsKnownPool(domain.PoolReasoning).Return(true)
	m.store.EXPECT().GetBYOKKeys(gomock.Any(), "tenant-1").
		Return([]schema.BYOKKey{openAIKey(), anthropicKey()}, nil)
	m.pools.EXPECT().ProviderPreference(domain.PoolReasoning).
		Return([]domain.Provider{domain.ProviderAnthropic, domain.ProviderOpenAI})
	m.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]interface{}{int64(2), int64(1)}, nil)
	m.hosts.EXPECT().BaseURL(domain.ProviderAnthropic).Return("https://api.anthropic.com", true)
	m.hosts.EXPECT().IsAllowedHost(domain.ProviderAnthropic, "api.anthropic.com").Return(true)

	resolution, err := router.Resolve(context.Background(), "tenant-1", domain.PoolReasoning)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderAnthropic, resolution.Provider)
}

func TestResolve_UnknownPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, m := newRouter(ctrl, 10000)

	m.pools.EXPECT().IsKnownPool(domain.CapabilityPool("gpt-pool")).Return(false)

	_, err := router.Resolve(context.Background(), "tenant-1", domain.CapabilityPool("gpt-pool"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestResolve_NoKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, m := newRouter(ctrl, 10000)

	m.pools.EXPECT().IsKnownPool(domain.PoolFast).Return(true)
	m.store.EXPECT().GetBYOKKeys(gomock.Any(), "tenant-1").Return(nil, nil)

	_, err := router.Resolve(context.Background(), "tenant-1", domain.PoolFast)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResolve_NoKeyForPoolProviders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, m := newRouter(ctrl, 10000)

	m.pools.EXPECT().IsKnownPool(domain.PoolFast).Return(true)
	m.store.EXPECT().GetBYOKKeys(gomock.Any(), "tenant-1").Return([]schema.BYOKKey{anthropicKey()}, nil)
	m.pools.EXPECT().ProviderPreference(domain.PoolFast).Return([]domain.Provider{domain.ProviderOpenRouter})

	_, err := router.Resolve(context.Background(), "tenant-1", domain.PoolFast)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResolve_QuotaBoundary(t *testing.T) {
	tests := []struct {
		name    string
		reply   []interface{}
		wantErr bool
	}{
		{
			name:  "request 10000 of 10000 admitted",
			reply: []interface{}{int64(10000), int64(1)},
		},
		{
			name:    "request 10001 rejected",
			reply:   []interface{}{int64(10001), int64(0)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			router, m := newRouter(ctrl, 10000)

			m.pools.EXPECT().IsKnownPool(domain.PoolGeneral).Return(true)
			m.store.EXPECT().GetBYOKKeys(gomock.Any(), "tenant-1").Return([]schema.BYOKKey{anthropicKey()}, nil)
			m.pools.EXPECT().ProviderPreference(domain.PoolGeneral).Return([]domain.Provider{domain.ProviderAnthropic})
			m.redis.EXPECT().
				Eval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(tt.reply, nil)

			if !tt.wantErr {
				m.hosts.EXPECT().BaseURL(domain.ProviderAnthropic).Return("https://api.anthropic.com", true)
				m.hosts.EXPECT().IsAllowedHost(domain.ProviderAnthropic, "api.anthropic.com").Return(true)
			}

			_, err := router.Resolve(context.Background(), "tenant-1", domain.PoolGeneral)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestResolve_QuotaStoreUnreachableFailsClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, m := newRouter(ctrl, 10000)

	m.pools.EXPECT().IsKnownPool(domain.PoolGeneral).Return(true)
	m.store.EXPECT().GetBYOKKeys(gomock.Any(), "tenant-1").Return([]schema.BYOKKey{anthropicKey()}, nil)
	m.pools.EXPECT().ProviderPreference(domain.PoolGeneral).Return([]domain.Provider{domain.ProviderAnthropic})
	m.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := router.Resolve(context.Background(), "tenant-1", domain.PoolGeneral)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestResolve_RejectsNonAllowListedHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, m := newRouter(ctrl, 10000)

	m.pools.EXPECT().IsKnownPool(domain.PoolGeneral).Return(true)
	m.store.EXPECT().GetBYOKKeys(gomock.Any(), "tenant-1").Return([]schema.BYOKKey{anthropicKey()}, nil)
	m.pools.EXPECT().ProviderPreference(domain.PoolGeneral).Return([]domain.Provider{domain.ProviderAnthropic})
	m.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]interface{}{int64(1), int64(1)}, nil)
	m.hosts.EXPECT().BaseURL(domain.ProviderAnthropic).Return("https://evil.example.com", true)
	m.hosts.EXPECT().IsAllowedHost(domain.ProviderAnthropic, "evil.example.com").Return(false)

	_, err := router.Resolve(context.Background(), "tenant-1", domain.PoolGeneral)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
