//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	builders "github.com/rios0rios0/pbot/test/domain/entitybuilders"
)

func TestNewDependency(t *testing.T) {
	t.Parallel()

	t.Run("should reject a dependency without locations", func(t *testing.T) {
		t.Parallel()
		// given
		var locations []entities.DependencyLocation

		// when
		_, err := entities.NewDependency("A", locations)

		// then
		require.ErrorIs(t, err, entities.ErrNoLocations)
	})

	t.Run("should order locations by file path", func(t *testing.T) {
		t.Parallel()
		// given
		dep := builders.NewDependencyBuilder().
			WithProjectFile("z/Z.csproj", "1.0.0").
			WithProjectFile("a/A.csproj", "1.0.0").
			BuildDependency()

		// when
		first := dep.Locations[0].FilePath

		// then
		assert.Equal(t, "a/A.csproj", first)
	})
}

func TestDependencyVersions(t *testing.T) {
	t.Parallel()

	t.Run("should use the highest declared version as baseline", func(t *testing.T) {
		t.Parallel()
		// given
		dep := builders.NewDependencyBuilder().
			WithProjectFile("a.csproj", "1.0.0").
			WithProjectFile("b.csproj", "1.10.0").
			WithProjectFile("c.csproj", "1.9.0").
			BuildDependency()

		// when / then
		assert.Equal(t, "1.10.0", dep.Baseline().String())
		assert.Equal(t, "1.0.0", dep.LowestVersion().String())
	})

	t.Run("should render distinct versions in ascending order", func(t *testing.T) {
		t.Parallel()
		// given
		dep := builders.NewDependencyBuilder().
			WithProjectFile("a.csproj", "2.0.0").
			WithProjectFile("b.csproj", "1.0.0").
			WithProjectFile("c.csproj", "2.0.0").
			BuildDependency()

		// when
		got := dep.ExistingVersionsString()

		// then
		assert.Equal(t, "(1.0.0, 2.0.0)", got)
	})

	t.Run("should render a single version without parentheses", func(t *testing.T) {
		t.Parallel()
		// given
		dep := builders.NewDependencyBuilder().
			WithProjectFile("a.csproj", "1.0.0").
			WithProjectFile("b.csproj", "1.0.0").
			BuildDependency()

		// when / then
		assert.Equal(t, "1.0.0", dep.ExistingVersionsString())
	})

	t.Run("should derive the ecosystem from the declaration kind", func(t *testing.T) {
		t.Parallel()
		// given
		nuget := builders.NewDependencyBuilder().WithProjectFile("a.csproj", "1.0.0").BuildDependency()
		module := builders.NewDependencyBuilder().WithTerraformModule("main.tf", "1.0.0").BuildDependency()

		// when / then
		assert.Equal(t, entities.EcosystemNuGet, nuget.Ecosystem())
		assert.Equal(t, entities.EcosystemTerraform, module.Ecosystem())
		assert.Empty(t, entities.DeclarationKind("unknown").Ecosystem())
	})
}

func TestExclusionPolicy(t *testing.T) {
	t.Parallel()

	t.Run("should block the built-in exclusions case-insensitively", func(t *testing.T) {
		t.Parallel()
		// given
		policy := entities.NewExclusionPolicy(nil)

		// when
		reason, excluded := policy.Excludes("particular.analyzers")

		// then
		assert.True(t, excluded)
		assert.Equal(t, "Distributed via RepoStandards", reason)
	})

	t.Run("should let configured entries extend and override the defaults", func(t *testing.T) {
		t.Parallel()
		// given
		policy := entities.NewExclusionPolicy(map[string]string{
			"Microsoft.CodeAnalysis.CSharp": "pinned by the build",
			"Legacy.Lib":                    "frozen",
		})

		// when
		roslyn, _ := policy.Excludes("Microsoft.CodeAnalysis.CSharp")
		legacy, ok := policy.Excludes("legacy.lib")
		_, other := policy.Excludes("Newtonsoft.Json")

		// then
		assert.Equal(t, "pinned by the build", roslyn)
		assert.True(t, ok)
		assert.Equal(t, "frozen", legacy)
		assert.False(t, other)
	})
}

func TestUpgradeRecommendationString(t *testing.T) {
	t.Parallel()

	t.Run("should describe both outcomes", func(t *testing.T) {
		t.Parallel()
		// given
		upgrade := builders.NewRecommendationBuilder().WithName("A").
			WithProjectFile("a.csproj", "1.0.0").WithVersion("1.2.0").BuildRecommendation()
		none := entities.UpgradeRecommendation{Dependency: upgrade.Dependency}

		// when / then
		assert.Equal(t, "A: upgrade 1.0.0 to 1.2.0", upgrade.String())
		assert.Equal(t, "A: no upgrade required", none.String())
	})
}
