// Package capabilities is the embedded catalogue of known models per provider.
package capabilities

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry is the read-only model catalogue. It is built once at startup.
type Registry struct {
	providers map[string]ProviderCapabilities
}

// NewRegistry reads every embedded config/<provider>.yaml
func NewRegistry() (*Registry, error) {
	entries, err := configFiles.ReadDir("config")
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	r := &Registry{providers: make(map[string]ProviderCapabilities, len(entries))}
	for _, entry := range entries {
		data, err := configFiles.ReadFile(path.Join("config", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if err := r.load(strings.TrimSuffix(entry.Name(), ".yaml"), data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) load(provider string, data []byte) error {
	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("parse %s catalogue: %w", provider, err)
	}
	r.providers[provider] = caps
	return nil
}

// GetModelCapabilities returns the catalogue entry for model
func (r *Registry) GetModelCapabilities(provider, model string) (*ModelCapabilities, error) {
	caps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	for _, m := range caps.Models {
		if m.ID == model {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("unknown model %s for provider %s", model, provider)
}

// ListProviderModels returns a provider's models in file order
func (r *Registry) ListProviderModels(provider string) ([]ModelCapabilities, error) {
	caps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	return append([]ModelCapabilities(nil), caps.Models...), nil
}

// ToolModels names the provider's models that can call tools
func (r *Registry) ToolModels(provider string) []string {
	var ids []string
	for _, m := range r.providers[provider].Models {
		if m.SupportsTools {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Providers returns the catalogued provider names, sorted
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
