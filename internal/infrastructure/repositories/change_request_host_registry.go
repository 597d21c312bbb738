package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/pbot/internal/domain/repositories"
)

// HostFactory creates a change-request host given an auth token and an optional API base URL.
type HostFactory func(token, baseURL string) domainRepos.ChangeRequestHostRepository

// ChangeRequestHostRegistry maps provider types to host factories.
type ChangeRequestHostRegistry struct {
	hosts map[string]HostFactory
}

// NewChangeRequestHostRegistry creates an empty host registry.
func NewChangeRequestHostRegistry() *ChangeRequestHostRegistry {
	return &ChangeRequestHostRegistry{hosts: make(map[string]HostFactory)}
}

// Register adds a host factory under the given provider type (e.g. "github").
func (r *ChangeRequestHostRegistry) Register(name string, factory HostFactory) {
	r.hosts[name] = factory
}

// Get returns a configured host for the given provider type.
func (r *ChangeRequestHostRegistry) Get(name, token, baseURL string) (domainRepos.ChangeRequestHostRepository, error) {
	factory, ok := r.hosts[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %q", name)
	}
	return factory(token, baseURL), nil
}

// Names returns the registered provider types, sorted.
func (r *ChangeRequestHostRegistry) Names() []string {
	names := make([]string, 0, len(r.hosts))
	for name := range r.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
