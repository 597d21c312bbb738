package entities

import (
	"fmt"
	"sort"
	"strings"
)

// DeclarationKind tags how a dependency is declared in a file.
type DeclarationKind string

const (
	// KindProjectFile is a package reference inside an MSBuild project, props or targets file.
	KindProjectFile DeclarationKind = "project-file"
	// KindTerraformModule is a registry module block inside a Terraform configuration.
	KindTerraformModule DeclarationKind = "terraform-module"
)

const (
	EcosystemNuGet     = "nuget"
	EcosystemTerraform = "terraform"
)

// Ecosystem returns the package ecosystem a declaration kind resolves against.
func (k DeclarationKind) Ecosystem() string {
	switch k {
	case KindProjectFile:
		return EcosystemNuGet
	case KindTerraformModule:
		return EcosystemTerraform
	default:
		return ""
	}
}

// DependencyLocation is one place where a dependency is declared.
type DependencyLocation struct {
	FilePath string
	Kind     DeclarationKind
	Version  Version
}

// DeclaredPackage is a single name/location pair reported by a manifest scan.
type DeclaredPackage struct {
	Name     string
	Location DependencyLocation
}

// Dependency is a named external package referenced from one or more locations.
// Names compare case-insensitively.
type Dependency struct {
	Name      string
	Locations []DependencyLocation
}

// NewDependency folds locations sharing a name into a Dependency.
// Locations are ordered by file path.
func NewDependency(name string, locations []DependencyLocation) (Dependency, error) {
	if len(locations) == 0 {
		return Dependency{}, fmt.Errorf("%s: %w", name, ErrNoLocations)
	}

	sorted := make([]DependencyLocation, len(locations))
	copy(sorted, locations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FilePath < sorted[j].FilePath
	})

	return Dependency{Name: name, Locations: sorted}, nil
}

// Key is the case-insensitive identity of the dependency.
func (d Dependency) Key() string { return strings.ToLower(d.Name) }

// Baseline is the highest declared version across all locations.
func (d Dependency) Baseline() Version {
	highest := d.Locations[0].Version
	for _, loc := range d.Locations[1:] {
		highest = MaxVersion(highest, loc.Version)
	}
	return highest
}

// LowestVersion is the lowest declared version across all locations.
func (d Dependency) LowestVersion() Version {
	lowest := d.Locations[0].Version
	for _, loc := range d.Locations[1:] {
		if loc.Version.LessThan(lowest) {
			lowest = loc.Version
		}
	}
	return lowest
}

// ExistingVersionsString renders the distinct declared versions, e.g. "1.0.0" or "(1.0.0, 1.1.0)".
func (d Dependency) ExistingVersionsString() string {
	seen := make(map[string]bool)
	var distinct []Version
	for _, loc := range d.Locations {
		key := loc.Version.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		distinct = append(distinct, loc.Version)
	}

	if len(distinct) == 1 {
		return distinct[0].String()
	}

	sort.SliceStable(distinct, func(i, j int) bool { return distinct[i].LessThan(distinct[j]) })
	parts := make([]string, len(distinct))
	for i, v := range distinct {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Ecosystem returns the ecosystem of the dependency's declarations.
func (d Dependency) Ecosystem() string {
	return d.Locations[0].Kind.Ecosystem()
}
