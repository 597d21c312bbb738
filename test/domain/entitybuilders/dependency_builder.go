//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/pbot/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

type locationSpec struct {
	filePath string
	kind     entities.DeclarationKind
	version  string
}

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name      string
	locations []locationSpec
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "Test.Package",
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithProjectFile adds a project-file location.
func (b *DependencyBuilder) WithProjectFile(path, version string) *DependencyBuilder {
	b.locations = append(b.locations, locationSpec{filePath: path, kind: entities.KindProjectFile, version: version})
	return b
}

// WithTerraformModule adds a terraform-module location.
func (b *DependencyBuilder) WithTerraformModule(path, version string) *DependencyBuilder {
	b.locations = append(b.locations, locationSpec{filePath: path, kind: entities.KindTerraformModule, version: version})
	return b
}

// WithLocation adds a location of an arbitrary kind.
func (b *DependencyBuilder) WithLocation(path string, kind entities.DeclarationKind, version string) *DependencyBuilder {
	b.locations = append(b.locations, locationSpec{filePath: path, kind: kind, version: version})
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
// Without explicit locations, a single src/App.csproj at 1.0.0 is used.
func (b *DependencyBuilder) BuildDependency() entities.Dependency {
	specs := b.locations
	if len(specs) == 0 {
		specs = []locationSpec{{filePath: "src/App.csproj", kind: entities.KindProjectFile, version: "1.0.0"}}
	}

	locations := make([]entities.DependencyLocation, 0, len(specs))
	for _, s := range specs {
		locations = append(locations, entities.DependencyLocation{
			FilePath: s.filePath,
			Kind:     s.kind,
			Version:  entities.MustParseVersion(s.version),
		})
	}

	dep, err := entities.NewDependency(b.name, locations)
	if err != nil {
		panic(err)
	}
	return dep
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "Test.Package"
	b.locations = nil
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	locations := make([]locationSpec, len(b.locations))
	copy(locations, b.locations)
	return &DependencyBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		locations:   locations,
	}
}
