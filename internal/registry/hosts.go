package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// HostRegistry defines the interface for provider host allow-list lookups
//
//go:generate mockgen -source=hosts.go -destination=../mocks/host_registry.go -package=mocks -mock_names=HostRegistry=MockHostRegistry
type HostRegistry interface {
	// IsAllowedHost checks if a host is on the allow-list for a provider.
	// Requests are only ever dispatched to allow-listed hosts.
	IsAllowedHost(provider domain.Provider, host string) bool

	// BaseURL returns the canonical API base URL for a provider
	BaseURL(provider domain.Provider) (string, bool)
}

// HostEntry represents one provider in the hosts.json file
type HostEntry struct {
	BaseURL string   `json:"base_url"`
	Allowed []string `json:"allowed"`
}

// HostRegistryData represents the structure of the hosts.json file
type HostRegistryData struct {
	Version   int                  `json:"version"`
	Providers map[string]HostEntry `json:"providers"`
}

// hostRegistry is the internal implementation of HostRegistry interface
type hostRegistry struct {
	baseURLs map[domain.Provider]string
	// Fast lookup map: "provider:host" -> true
	allowed map[string]bool
}

// LoadHosts loads the host registry from a JSON file
func LoadHosts(filePath string) (HostRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read host registry file: %w", err)
	}

	var registryData HostRegistryData
	if err := json.Unmarshal(data, &registryData); err != nil {
		return nil, fmt.Errorf("failed to parse host registry JSON: %w", err)
	}

	reg := &hostRegistry{
		baseURLs: make(map[domain.Provider]string),
		allowed:  make(map[string]bool),
	}

	for name, entry := range registryData.Providers {
		provider := domain.Provider(strings.ToLower(name))
		reg.baseURLs[provider] = entry.BaseURL

		for _, host := range entry.Allowed {
			key := fmt.Sprintf("%s:%s", provider, strings.ToLower(host))
			reg.allowed[key] = true
		}
	}

	return reg, nil
}

// IsAllowedHost checks if a host is on the allow-list for a provider
func (r *hostRegistry) IsAllowedHost(provider domain.Provider, host string) bool {
	if r == nil {
		return false
	}
	key := fmt.Sprintf("%s:%s", provider, strings.ToLower(host))
	return r.allowed[key]
}

// BaseURL returns the canonical API base URL for a provider
func (r *hostRegistry) BaseURL(provider domain.Provider) (string, bool) {
	if r == nil {
		return "", false
	}
	url, ok := r.baseURLs[provider]
	return url, ok
}
