//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	builders "github.com/rios0rios0/pbot/test/domain/entitybuilders"
)

func TestFoldUpdateGroups(t *testing.T) {
	t.Parallel()

	t.Run("should bundle family members and keep first-seen order", func(t *testing.T) {
		t.Parallel()
		// given
		recs := []entities.UpgradeRecommendation{
			builders.NewRecommendationBuilder().WithName("Newtonsoft.Json").BuildRecommendation(),
			builders.NewRecommendationBuilder().WithName("AWSSDK.S3").BuildRecommendation(),
			builders.NewRecommendationBuilder().WithName("Serilog").BuildRecommendation(),
			builders.NewRecommendationBuilder().WithName("AWSSDK.Core").BuildRecommendation(),
		}

		// when
		groups := entities.FoldUpdateGroups(entities.DefaultGrouping(), recs)

		// then
		require.Len(t, groups, 3)
		assert.Equal(t, "Newtonsoft.Json", groups[0].Key.GroupName)
		assert.Equal(t, "AWSSDK", groups[1].Key.GroupName)
		assert.Len(t, groups[1].Recommendations, 2)
		assert.Equal(t, "Serilog", groups[2].Key.GroupName)
	})

	t.Run("should drop recommendations without an upgrade", func(t *testing.T) {
		t.Parallel()
		// given
		recs := []entities.UpgradeRecommendation{
			{Dependency: builders.NewDependencyBuilder().WithName("A").BuildDependency()},
		}

		// when
		groups := entities.FoldUpdateGroups(entities.DefaultGrouping(), recs)

		// then
		assert.Empty(t, groups)
	})
}

func TestUpdateGroupChangeSetIdentity(t *testing.T) {
	t.Parallel()

	t.Run("should hash the lower-cased name and version of a single dependency", func(t *testing.T) {
		t.Parallel()
		// given
		rec := builders.NewRecommendationBuilder().
			WithName("PackageA").
			WithProjectFile("a/A.csproj", "1.0.0").
			WithVersion("1.2.0").
			BuildRecommendation()
		groups := entities.FoldUpdateGroups(entities.DefaultGrouping(), []entities.UpgradeRecommendation{rec})
		require.Len(t, groups, 1)

		// when
		identity := groups[0].ChangeSetIdentity()
		branch := groups[0].BranchName("pbot")

		// then
		assert.Equal(t, "5defb4208e8b4cac", identity)
		assert.Equal(t, "pbot/packagea/5defb4208e8b4cac", branch)
	})

	t.Run("should not depend on recommendation order", func(t *testing.T) {
		t.Parallel()
		// given
		core := builders.NewRecommendationBuilder().WithName("AWSSDK.Core").WithVersion("3.7.400").BuildRecommendation()
		s3 := builders.NewRecommendationBuilder().WithName("AWSSDK.S3").WithVersion("3.7.401").BuildRecommendation()
		key := entities.DefaultGrouping().GroupOf("AWSSDK.Core")

		forward := entities.UpdateGroup{Key: key, Recommendations: []entities.UpgradeRecommendation{core, s3}}
		reverse := entities.UpdateGroup{Key: key, Recommendations: []entities.UpgradeRecommendation{s3, core}}

		// when
		a := forward.ChangeSetIdentity()
		b := reverse.ChangeSetIdentity()

		// then
		assert.Equal(t, a, b)
		assert.Equal(t, "25be82bf54ac53e3", a)
		assert.Equal(t, "pbot/awssdk/25be82bf54ac53e3", forward.BranchName("pbot"))
	})

	t.Run("should change when a recommended version changes", func(t *testing.T) {
		t.Parallel()
		// given
		a := builders.NewRecommendationBuilder().WithName("PackageA").WithVersion("1.2.0").BuildRecommendation()
		b := builders.NewRecommendationBuilder().WithName("PackageA").WithVersion("1.3.0").BuildRecommendation()
		key := entities.GroupingKey{GroupName: "PackageA", TitleName: "PackageA"}

		// when
		first := entities.UpdateGroup{Key: key, Recommendations: []entities.UpgradeRecommendation{a}}.ChangeSetIdentity()
		second := entities.UpdateGroup{Key: key, Recommendations: []entities.UpgradeRecommendation{b}}.ChangeSetIdentity()

		// then
		assert.NotEqual(t, first, second)
	})

	t.Run("should ignore name casing", func(t *testing.T) {
		t.Parallel()
		// given
		upper := builders.NewRecommendationBuilder().WithName("PACKAGEA").WithVersion("1.2.0").BuildRecommendation()
		lower := builders.NewRecommendationBuilder().WithName("packagea").WithVersion("1.2.0").BuildRecommendation()
		key := entities.GroupingKey{GroupName: "PackageA"}

		// when
		first := entities.UpdateGroup{Key: key, Recommendations: []entities.UpgradeRecommendation{upper}}.ChangeSetIdentity()
		second := entities.UpdateGroup{Key: key, Recommendations: []entities.UpgradeRecommendation{lower}}.ChangeSetIdentity()

		// then
		assert.Equal(t, first, second)
	})
}
