package pricing

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed pricing.yaml
var defaultPricing []byte

// Registry maps lower-cased provider names to model names to pricing
// entries. It is loaded once per invocation and read-only afterwards.
type Registry struct {
	providers map[string]map[string]Entry
}

// Load reads a YAML pricing file holding the two-level
// provider -> model -> entry mapping.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("read pricing file %s: %w", path, err)
	}
	reg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("pricing file %s: %w", path, err)
	}
	return reg, nil
}

// LoadFromBytes parses YAML pricing data from raw bytes.
func LoadFromBytes(data []byte) (*Registry, error) {
	var raw map[string]map[string]Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no providers defined", ErrConfigMalformed)
	}

	providers := make(map[string]map[string]Entry, len(raw))
	for provider, models := range raw {
		if len(models) == 0 {
			return nil, fmt.Errorf("%w: provider %q has no models", ErrConfigMalformed, provider)
		}
		normalized := make(map[string]Entry, len(models))
		for model, entry := range models {
			if entry.InputCostPerMillion < 0 || entry.OutputCostPerMillion < 0 {
				return nil, fmt.Errorf("%w: negative price for %s/%s", ErrConfigMalformed, provider, model)
			}
			normalized[model] = entry
		}
		providers[strings.ToLower(provider)] = normalized
	}

	return &Registry{providers: providers}, nil
}

// Default returns a registry built from the embedded pricing table.
func Default() (*Registry, error) {
	return LoadFromBytes(defaultPricing)
}

// Lookup returns the pricing entry for a (provider, model) pair.
// The provider key is lower-cased; the model key is matched exactly.
func (r *Registry) Lookup(provider, model string) (Entry, bool) {
	models, ok := r.providers[strings.ToLower(provider)]
	if !ok {
		return Entry{}, false
	}
	entry, ok := models[model]
	return entry, ok
}

// IsKnown reports whether the pair is priced. It is the admission gate
// run before any prompt is built or any network call is attempted.
func (r *Registry) IsKnown(provider, model string) bool {
	_, ok := r.Lookup(provider, model)
	return ok
}

// Resolve looks up the pair and classifies it as remote or local based
// on its input price.
func (r *Registry) Resolve(provider, model string) (Model, bool) {
	entry, ok := r.Lookup(provider, model)
	if !ok {
		return Model{}, false
	}
	kind := KindRemote
	if entry.Free() {
		kind = KindLocal
	}
	return Model{
		Provider: strings.ToLower(provider),
		Name:     model,
		Pricing:  entry,
		Kind:     kind,
	}, true
}

// Providers returns the provider names in the registry.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Models returns the model names priced for a provider.
func (r *Registry) Models(provider string) []string {
	models, ok := r.providers[strings.ToLower(provider)]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	return names
}
