//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"
	"sync"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

// StubMetadataSourceRepository implements repositories.MetadataSourceRepository with
// canned answers keyed by lowercased package name.
type StubMetadataSourceRepository struct {
	mu sync.Mutex

	SourceName      string
	SourceEcosystem string
	Versions        map[string][]entities.PackageVersion
	QueryErr        error
	// spy: names queried
	Queried []string
}

var _ repositories.MetadataSourceRepository = (*StubMetadataSourceRepository)(nil)

func (s *StubMetadataSourceRepository) Name() string { return s.SourceName }

func (s *StubMetadataSourceRepository) Ecosystem() string {
	if s.SourceEcosystem == "" {
		return entities.EcosystemNuGet
	}
	return s.SourceEcosystem
}

func (s *StubMetadataSourceRepository) Query(
	_ context.Context,
	name string,
	includePrerelease bool,
) ([]entities.PackageVersion, error) {
	s.mu.Lock()
	s.Queried = append(s.Queried, name)
	s.mu.Unlock()

	if s.QueryErr != nil {
		return nil, s.QueryErr
	}

	var result []entities.PackageVersion
	for _, v := range s.Versions[strings.ToLower(name)] {
		if v.Version.IsPrerelease() && !includePrerelease {
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

// NewStubSource builds a stub source answering name with the given version strings.
func NewStubSource(sourceName, name, projectURL string, versions ...string) *StubMetadataSourceRepository {
	pkgs := make([]entities.PackageVersion, 0, len(versions))
	for _, v := range versions {
		pkgs = append(pkgs, entities.PackageVersion{Version: entities.MustParseVersion(v), ProjectURL: projectURL})
	}
	return &StubMetadataSourceRepository{
		SourceName: sourceName,
		Versions:   map[string][]entities.PackageVersion{strings.ToLower(name): pkgs},
	}
}
