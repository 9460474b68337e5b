package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/registry"
)

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPools(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		expectedErr  string
		validateFunc func(t *testing.T, reg registry.PoolRegistry)
	}{
		{
			name: "successful load with valid JSON",
			content: `{
				"version": 1,
				"pools": {
					"reasoning": {"preference": ["anthropic", "openai"], "min_access": "elevated"},
					"general":   {"preference": ["openai", "anthropic", "openrouter"], "min_access": "standard"},
					"fast":      {"preference": ["openrouter"], "min_access": "restricted"}
				}
			}`,
			validateFunc: func(t *testing.T, reg registry.PoolRegistry) {
				assert.True(t, reg.IsKnownPool(domain.PoolReasoning))
				assert.False(t, reg.IsKnownPool(domain.CapabilityPool("anthropic-direct")))

				pref := reg.ProviderPreference(domain.PoolReasoning)
				require.Len(t, pref, 2)
				assert.Equal(t, domain.ProviderAnthropic, pref[0])
				assert.Equal(t, domain.ProviderOpenAI, pref[1])

				level, ok := reg.MinAccessLevel(domain.PoolReasoning)
				require.True(t, ok)
				assert.Equal(t, domain.AccessLevelElevated, level)
			},
		},
		{
			name:    "empty registry",
			content: `{"version": 1, "pools": {}}`,
			validateFunc: func(t *testing.T, reg registry.PoolRegistry) {
				assert.False(t, reg.IsKnownPool(domain.PoolGeneral))
				assert.Nil(t, reg.ProviderPreference(domain.PoolGeneral))
			},
		},
		{
			name:        "invalid JSON",
			content:     `{not json`,
			expectedErr: "failed to parse pool registry JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempJSON(t, "pools.json", tt.content)
			reg, err := registry.LoadPools(path)

			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}

			require.NoError(t, err)
			tt.validateFunc(t, reg)
		})
	}
}

func TestLoadPools_MissingFile(t *testing.T) {
	_, err := registry.LoadPools(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read pool registry file")
}

func TestLoadTiers(t *testing.T) {
	path := writeTempJSON(t, "tiers.json", `{
		"version": 1,
		"tiers": {
			"0": "restricted",
			"1": "restricted",
			"2": "standard",
			"3": "elevated",
			"4": "sovereign"
		}
	}`)

	reg, err := registry.LoadTiers(path)
	require.NoError(t, err)

	assert.Equal(t, domain.AccessLevelRestricted, reg.AccessLevelForTier(domain.TierRestricted))
	assert.Equal(t, domain.AccessLevelStandard, reg.AccessLevelForTier(domain.TierStandard))
	assert.Equal(t, domain.AccessLevelSovereign, reg.AccessLevelForTier(domain.TierSovereign))

	// Unknown tiers resolve to the floor, never upward
	assert.Equal(t, domain.AccessLevelRestricted, reg.AccessLevelForTier(domain.Tier(99)))
	assert.Equal(t, domain.AccessLevelRestricted, reg.AccessLevelForTier(domain.Tier(-1)))
}

func TestLoadTiers_UnknownAccessLevel(t *testing.T) {
	path := writeTempJSON(t, "tiers.json", `{"version": 1, "tiers": {"2": "supreme"}}`)
	_, err := registry.LoadTiers(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown access level")
}

func TestTierRegistry_Satisfies(t *testing.T) {
	path := writeTempJSON(t, "tiers.json", `{"version": 1, "tiers": {"0": "restricted"}}`)
	reg, err := registry.LoadTiers(path)
	require.NoError(t, err)

	assert.True(t, reg.Satisfies(domain.AccessLevelSovereign, domain.AccessLevelStandard))
	assert.True(t, reg.Satisfies(domain.AccessLevelStandard, domain.AccessLevelStandard))
	assert.False(t, reg.Satisfies(domain.AccessLevelRestricted, domain.AccessLevelStandard))
	assert.False(t, reg.Satisfies(domain.AccessLevelElevated, domain.AccessLevelSovereign))
}

func TestLoadHosts(t *testing.T) {
	path := writeTempJSON(t, "hosts.json", `{
		"version": 1,
		"providers": {
			"anthropic":  {"base_url": "https://api.anthropic.com", "allowed": ["api.anthropic.com"]},
			"openai":     {"base_url": "https://api.openai.com", "allowed": ["api.openai.com"]},
			"openrouter": {"base_url": "https://openrouter.ai/api", "allowed": ["openrouter.ai"]}
		}
	}`)

	reg, err := registry.LoadHosts(path)
	require.NoError(t, err)

	assert.True(t, reg.IsAllowedHost(domain.ProviderAnthropic, "api.anthropic.com"))
	assert.True(t, reg.IsAllowedHost(domain.ProviderAnthropic, "API.ANTHROPIC.COM"))
	assert.False(t, reg.IsAllowedHost(domain.ProviderAnthropic, "api.openai.com"))
	assert.False(t, reg.IsAllowedHost(domain.ProviderOpenAI, "evil.example.com"))

	url, ok := reg.BaseURL(domain.ProviderOpenRouter)
	require.True(t, ok)
	assert.Equal(t, "https://openrouter.ai/api", url)

	_, ok = reg.BaseURL(domain.Provider("unknown"))
	assert.False(t, ok)
}
