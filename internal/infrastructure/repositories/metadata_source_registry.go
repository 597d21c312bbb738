package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	domainRepos "github.com/rios0rios0/pbot/internal/domain/repositories"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/breaker"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/httpclient"
)

// SourceFactory creates a metadata source for one configured feed.
type SourceFactory func(name, url string, client *httpclient.Client) domainRepos.MetadataSourceRepository

// MetadataSourceRegistry maps source types to factories. Every source it builds
// shares one HTTP client and sits behind its own circuit breaker.
type MetadataSourceRegistry struct {
	factories map[string]SourceFactory
	client    *httpclient.Client
}

// NewMetadataSourceRegistry creates an empty source registry using client for all requests.
func NewMetadataSourceRegistry(client *httpclient.Client) *MetadataSourceRegistry {
	return &MetadataSourceRegistry{factories: make(map[string]SourceFactory), client: client}
}

// Register adds a source factory under the given type (e.g. "nuget").
func (r *MetadataSourceRegistry) Register(sourceType string, factory SourceFactory) {
	r.factories[sourceType] = factory
}

// Build creates a source for each configuration entry.
func (r *MetadataSourceRegistry) Build(configs []entities.SourceConfig) ([]domainRepos.MetadataSourceRepository, error) {
	sources := make([]domainRepos.MetadataSourceRepository, 0, len(configs))
	for _, cfg := range configs {
		factory, ok := r.factories[cfg.Type]
		if !ok {
			return nil, fmt.Errorf("unknown source type %q for source %q", cfg.Type, cfg.Name)
		}
		sources = append(sources, breaker.NewSourceRepository(factory(cfg.Name, cfg.URL, r.client)))
	}
	return sources, nil
}

// Types returns the registered source types, sorted.
func (r *MetadataSourceRegistry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
