package dex

import (
	"fmt"
	"sort"
	"strings"
)

// Factory constructs an Aggregator for a registered provider
type Factory func() (Aggregator, error)

// Registry maps provider names to aggregator factories. Providers are
// registered and validated at startup; lookups never hit configuration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a provider factory under a case-insensitive name
func (r *Registry) Register(name string, factory Factory) {
	r.factories[strings.ToLower(name)] = factory
}

// Build constructs the aggregator for the named provider
func (r *Registry) Build(name string) (Aggregator, error) {
	factory, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown DEX aggregator provider %q (registered: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return factory()
}

// Names returns the registered provider names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
