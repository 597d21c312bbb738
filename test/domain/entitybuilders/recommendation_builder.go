//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/pbot/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// RecommendationBuilder helps create upgrade recommendations with a fluent interface.
type RecommendationBuilder struct {
	*testkit.BaseBuilder
	dependency *DependencyBuilder
	version    string
	projectURL string
	sources    []string
}

// NewRecommendationBuilder creates a recommendation builder upgrading Test.Package to 2.0.0.
func NewRecommendationBuilder() *RecommendationBuilder {
	return &RecommendationBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		dependency:  NewDependencyBuilder(),
		version:     "2.0.0",
		sources:     []string{"nuget.org"},
	}
}

// WithDependency replaces the dependency being upgraded.
func (b *RecommendationBuilder) WithDependency(dependency *DependencyBuilder) *RecommendationBuilder {
	b.dependency = dependency
	return b
}

// WithName sets the name of the dependency being upgraded.
func (b *RecommendationBuilder) WithName(name string) *RecommendationBuilder {
	b.dependency.WithName(name)
	return b
}

// WithProjectFile adds a project-file location to the dependency.
func (b *RecommendationBuilder) WithProjectFile(path, version string) *RecommendationBuilder {
	b.dependency.WithProjectFile(path, version)
	return b
}

// WithVersion sets the recommended version.
func (b *RecommendationBuilder) WithVersion(version string) *RecommendationBuilder {
	b.version = version
	return b
}

// WithProjectURL sets the recommended candidate's project URL.
func (b *RecommendationBuilder) WithProjectURL(url string) *RecommendationBuilder {
	b.projectURL = url
	return b
}

// Build creates the recommendation (satisfies testkit.Builder interface).
func (b *RecommendationBuilder) Build() interface{} {
	return b.BuildRecommendation()
}

// BuildRecommendation creates the recommendation with a concrete return type.
func (b *RecommendationBuilder) BuildRecommendation() entities.UpgradeRecommendation {
	return entities.UpgradeRecommendation{
		Dependency: b.dependency.BuildDependency(),
		Recommended: &entities.CandidateVersion{
			Version:    entities.MustParseVersion(b.version),
			Sources:    append([]string(nil), b.sources...),
			ProjectURL: b.projectURL,
		},
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RecommendationBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.dependency = NewDependencyBuilder()
	b.version = "2.0.0"
	b.projectURL = ""
	b.sources = []string{"nuget.org"}
	return b
}

// Clone creates a deep copy of the RecommendationBuilder.
func (b *RecommendationBuilder) Clone() testkit.Builder {
	return &RecommendationBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		dependency:  b.dependency.Clone().(*DependencyBuilder),
		version:     b.version,
		projectURL:  b.projectURL,
		sources:     append([]string(nil), b.sources...),
	}
}
