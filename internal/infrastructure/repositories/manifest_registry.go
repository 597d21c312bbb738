package repositories

import (
	"github.com/rios0rios0/pbot/internal/domain/entities"
	domainRepos "github.com/rios0rios0/pbot/internal/domain/repositories"
)

// ManifestRegistry holds one manifest repository per declaration kind.
type ManifestRegistry struct {
	manifests []domainRepos.ManifestRepository
}

// NewManifestRegistry creates an empty manifest registry.
func NewManifestRegistry() *ManifestRegistry {
	return &ManifestRegistry{}
}

// Register adds a manifest repository, replacing any previous one of the same kind.
func (r *ManifestRegistry) Register(m domainRepos.ManifestRepository) {
	for i, existing := range r.manifests {
		if existing.Kind() == m.Kind() {
			r.manifests[i] = m
			return
		}
	}
	r.manifests = append(r.manifests, m)
}

// Get returns the manifest repository for kind, or nil if none is registered.
func (r *ManifestRegistry) Get(kind entities.DeclarationKind) domainRepos.ManifestRepository {
	for _, m := range r.manifests {
		if m.Kind() == kind {
			return m
		}
	}
	return nil
}

// All returns every registered manifest repository in registration order.
func (r *ManifestRegistry) All() []domainRepos.ManifestRepository {
	result := make([]domainRepos.ManifestRepository, len(r.manifests))
	copy(result, r.manifests)
	return result
}
