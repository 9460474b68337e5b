package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// TierRegistry defines the interface for tier-to-access resolution
//
//go:generate mockgen -source=tiers.go -destination=../mocks/tier_registry.go -package=mocks -mock_names=TierRegistry=MockTierRegistry
type TierRegistry interface {
	// AccessLevelForTier maps a conviction tier to its access level. Unknown
	// tiers resolve to the restricted floor, never upward.
	AccessLevelForTier(tier domain.Tier) domain.AccessLevel

	// Satisfies reports whether an access level meets a required minimum
	Satisfies(level, required domain.AccessLevel) bool
}

// TierRegistryData represents the structure of the tiers.json file.
// Keys are numeric tier values as strings.
type TierRegistryData struct {
	Version int               `json:"version"`
	Tiers   map[string]string `json:"tiers"`
}

// accessRank orders access levels for minimum checks
var accessRank = map[domain.AccessLevel]int{
	domain.AccessLevelRestricted: 0,
	domain.AccessLevelStandard:   1,
	domain.AccessLevelElevated:   2,
	domain.AccessLevelSovereign:  3,
}

// tierRegistry is the internal implementation of TierRegistry interface
type tierRegistry struct {
	levels map[domain.Tier]domain.AccessLevel
}

// LoadTiers loads the tier registry from a JSON file
func LoadTiers(filePath string) (TierRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read tier registry file: %w", err)
	}

	var registryData TierRegistryData
	if err := json.Unmarshal(data, &registryData); err != nil {
		return nil, fmt.Errorf("failed to parse tier registry JSON: %w", err)
	}

	reg := &tierRegistry{
		levels: make(map[domain.Tier]domain.AccessLevel),
	}

	for tierStr, levelStr := range registryData.Tiers {
		tier, err := strconv.Atoi(tierStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tier %q: %w", tierStr, err)
		}

		level := domain.AccessLevel(levelStr)
		if _, ok := accessRank[level]; !ok {
			return nil, fmt.Errorf("unknown access level %q for tier %d", levelStr, tier)
		}

		reg.levels[domain.Tier(tier)] = level
	}

	return reg, nil
}

// AccessLevelForTier maps a conviction tier to its access level
func (r *tierRegistry) AccessLevelForTier(tier domain.Tier) domain.AccessLevel {
	if r == nil {
		return domain.AccessLevelRestricted
	}
	level, ok := r.levels[tier]
	if !ok {
		return domain.AccessLevelRestricted
	}
	return level
}

// Satisfies reports whether an access level meets a required minimum
func (r *tierRegistry) Satisfies(level, required domain.AccessLevel) bool {
	return accessRank[level] >= accessRank[required]
}
