package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// PoolRegistry defines the interface for capability-pool lookups
//
//go:generate mockgen -source=pools.go -destination=../mocks/pool_registry.go -package=mocks -mock_names=PoolRegistry=MockPoolRegistry
type PoolRegistry interface {
	// ProviderPreference returns the ordered provider tie-break list for a
	// pool. The order decides which of a tenant's stored keys wins when more
	// than one provider can serve the pool; pool names themselves carry no
	// provider meaning.
	ProviderPreference(pool domain.CapabilityPool) []domain.Provider

	// IsKnownPool checks whether a pool identifier is registered
	IsKnownPool(pool domain.CapabilityPool) bool

	// MinAccessLevel returns the access level a tenant needs to use a pool
	MinAccessLevel(pool domain.CapabilityPool) (domain.AccessLevel, bool)
}

// PoolEntry represents one pool in the registry JSON file
type PoolEntry struct {
	Preference []string `json:"preference"`
	MinAccess  string   `json:"min_access"`
}

// PoolRegistryData represents the structure of the pools.json file
type PoolRegistryData struct {
	Version int                  `json:"version"`
	Pools   map[string]PoolEntry `json:"pools"`
}

// poolRegistry is the internal implementation of PoolRegistry interface
type poolRegistry struct {
	preference map[domain.CapabilityPool][]domain.Provider
	minAccess  map[domain.CapabilityPool]domain.AccessLevel
}

// LoadPools loads the pool registry from a JSON file
func LoadPools(filePath string) (PoolRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read pool registry file: %w", err)
	}

	var registryData PoolRegistryData
	if err := json.Unmarshal(data, &registryData); err != nil {
		return nil, fmt.Errorf("failed to parse pool registry JSON: %w", err)
	}

	reg := &poolRegistry{
		preference: make(map[domain.CapabilityPool][]domain.Provider),
		minAccess:  make(map[domain.CapabilityPool]domain.AccessLevel),
	}

	for name, entry := range registryData.Pools {
		pool := domain.CapabilityPool(strings.ToLower(name))

		providers := make([]domain.Provider, 0, len(entry.Preference))
		for _, p := range entry.Preference {
			providers = append(providers, domain.Provider(strings.ToLower(p)))
		}
		reg.preference[pool] = providers

		if entry.MinAccess != "" {
			reg.minAccess[pool] = domain.AccessLevel(strings.ToLower(entry.MinAccess))
		}
	}

	return reg, nil
}

// ProviderPreference returns the ordered provider tie-break list for a pool
func (r *poolRegistry) ProviderPreference(pool domain.CapabilityPool) []domain.Provider {
	if r == nil {
		return nil
	}
	return r.preference[pool]
}

// IsKnownPool checks whether a pool identifier is registered
func (r *poolRegistry) IsKnownPool(pool domain.CapabilityPool) bool {
	if r == nil {
		return false
	}
	_, ok := r.preference[pool]
	return ok
}

// MinAccessLevel returns the access level a tenant needs to use a pool
func (r *poolRegistry) MinAccessLevel(pool domain.CapabilityPool) (domain.AccessLevel, bool) {
	if r == nil {
		return "", false
	}
	level, ok := r.minAccess[pool]
	return level, ok
}
