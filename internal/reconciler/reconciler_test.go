//go:build unit

package reconciler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
	"github.com/rios0rios0/pbot/internal/reconciler"
	builders "github.com/rios0rios0/pbot/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/pbot/test/infrastructure/repositorydoubles"
)

type fixture struct {
	vcs      *doubles.SpyVersionControlRepository
	host     *doubles.SpyChangeRequestHostRepository
	manifest *doubles.SpyManifestRepository
}

func newFixture() *fixture {
	return &fixture{
		vcs:      &doubles.SpyVersionControlRepository{Branch: "main"},
		host:     &doubles.SpyChangeRequestHostRepository{ProviderName: "github"},
		manifest: &doubles.SpyManifestRepository{ManifestKind: entities.KindProjectFile},
	}
}

func (f *fixture) reconciler(opts reconciler.Options) *reconciler.Reconciler {
	return reconciler.New(
		f.vcs,
		f.host,
		[]repositories.ManifestRepository{f.manifest},
		entities.Repository{Organization: "acme", Name: "app"},
		entities.DefaultGrouping(),
		opts,
	)
}

func packageA() entities.UpgradeRecommendation {
	return builders.NewRecommendationBuilder().
		WithName("PackageA").
		WithProjectFile("a/A.csproj", "1.0.0").
		WithProjectFile("b/B.csproj", "1.0.0").
		WithVersion("1.2.0").
		BuildRecommendation()
}

func TestReconcilerReconcile(t *testing.T) {
	t.Parallel()

	t.Run("should create branch, rewrite every location, commit, push and open a change request", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		r := f.reconciler(reconciler.Options{Signature: repositories.CommitSignature{Name: "bot", Email: "bot@x"}})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Equal(t, entities.StateChangeRequestOpened, outcomes[0].State)
		assert.Equal(t, "pbot/packagea/5defb4208e8b4cac", outcomes[0].Branch)

		require.Len(t, f.manifest.UpdateCalls, 2)
		assert.Equal(t, "a/A.csproj", f.manifest.UpdateCalls[0].Path)
		assert.Equal(t, "b/B.csproj", f.manifest.UpdateCalls[1].Path)
		assert.Equal(t, "1.2.0", f.manifest.UpdateCalls[0].Version)

		require.Len(t, f.vcs.Commits, 1)
		assert.Contains(t, f.vcs.Commits[0], "Bump PackageA from 1.0.0 to 1.2.0")
		assert.Equal(t, "bot", f.vcs.Signatures[0].Name)
		assert.Equal(t, []string{"pbot/packagea/5defb4208e8b4cac"}, f.vcs.Pushed)

		require.Len(t, f.host.PRInputs, 1)
		assert.Equal(t, "Bump PackageA from 1.0.0 to 1.2.0", f.host.PRInputs[0].Title)
		assert.Equal(t, "refs/heads/pbot/packagea/5defb4208e8b4cac", f.host.PRInputs[0].SourceBranch)
		assert.Equal(t, "refs/heads/main", f.host.PRInputs[0].TargetBranch)
	})

	t.Run("should skip a group whose remote branch already exists", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		f.vcs.RemoteBranches = []string{"PBOT/PackageA/5defb4208e8b4cac"}
		f.host.PRExistsResult = true
		r := f.reconciler(reconciler.Options{})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.True(t, outcomes[0].Skipped())
		assert.Empty(t, f.manifest.UpdateCalls)
		assert.Empty(t, f.vcs.Commits)
		assert.Empty(t, f.host.PRInputs)
		assert.Equal(t, []string{"pbot/packagea/5defb4208e8b4cac"}, f.host.PRExistsBranches)
	})

	t.Run("should still skip when the existing branch has no open change request", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		f.vcs.RemoteBranches = []string{"pbot/packagea/5defb4208e8b4cac"}
		f.host.PRExistsErr = errors.New("api down")
		r := f.reconciler(reconciler.Options{})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.StateSkippedExisting, outcomes[0].State)
	})

	t.Run("should be idempotent across two runs", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		recs := []entities.UpgradeRecommendation{
			packageA(),
			builders.NewRecommendationBuilder().WithName("AWSSDK.S3").WithVersion("3.7.401").BuildRecommendation(),
			builders.NewRecommendationBuilder().WithName("AWSSDK.Core").WithVersion("3.7.400").BuildRecommendation(),
		}
		r := f.reconciler(reconciler.Options{})

		// when
		first, err := r.Reconcile(context.Background(), recs)
		require.NoError(t, err)
		second, err := r.Reconcile(context.Background(), recs)
		require.NoError(t, err)

		// then
		require.Len(t, first, 2)
		require.Len(t, second, 2)
		for i := range first {
			assert.Equal(t, first[i].Branch, second[i].Branch)
			assert.Equal(t, entities.StateChangeRequestOpened, first[i].State)
			assert.Equal(t, entities.StateSkippedExisting, second[i].State)
		}
		assert.Len(t, f.host.PRInputs, 2)
		assert.Equal(t, "Bump the AWSSDK group with 2 updates", f.host.PRInputs[1].Title)
	})

	t.Run("should continue with the next group after a failure and restore the base branch", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		first := packageA()
		second := builders.NewRecommendationBuilder().WithName("PackageB").WithVersion("3.0.0").BuildRecommendation()
		groups := entities.FoldUpdateGroups(entities.DefaultGrouping(), []entities.UpgradeRecommendation{first})
		f.vcs.PushErrFor = map[string]error{groups[0].BranchName("pbot"): errors.New("rejected")}
		r := f.reconciler(reconciler.Options{})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{first, second})

		// then
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.True(t, outcomes[0].Failed())
		assert.Equal(t, entities.StateCommitted, outcomes[0].LastState)
		require.Error(t, outcomes[0].Err)
		assert.Contains(t, outcomes[0].Err.Error(), "push")
		assert.Equal(t, entities.StateChangeRequestOpened, outcomes[1].State)
		assert.Equal(t, "ResetToBranch:main", f.vcs.Calls[len(f.vcs.Calls)-1])
	})

	t.Run("should stop after committing in dry-run mode", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		r := f.reconciler(reconciler.Options{DryRun: true})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.StateCommitted, outcomes[0].State)
		assert.Len(t, f.vcs.Commits, 1)
		assert.Empty(t, f.vcs.Pushed)
		assert.Empty(t, f.host.PRInputs)
	})

	t.Run("should fail the group for an unsupported location kind", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		rec := builders.NewRecommendationBuilder().
			WithDependency(builders.NewDependencyBuilder().WithName("Mod").
				WithLocation("main.tf", entities.KindTerraformModule, "1.0.0")).
			WithVersion("2.0.0").
			BuildRecommendation()
		r := f.reconciler(reconciler.Options{})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{rec})

		// then
		require.NoError(t, err)
		assert.True(t, outcomes[0].Failed())
		require.ErrorIs(t, outcomes[0].Err, entities.ErrUnsupportedLocationKind)
		assert.Empty(t, f.vcs.Commits)
	})

	t.Run("should leave locations already at the target version untouched", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		rec := builders.NewRecommendationBuilder().
			WithName("PackageA").
			WithProjectFile("a/A.csproj", "1.0.0").
			WithProjectFile("b/B.csproj", "1.2.0").
			WithVersion("1.2.0").
			BuildRecommendation()
		r := f.reconciler(reconciler.Options{DryRun: true})

		// when
		_, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{rec})

		// then
		require.NoError(t, err)
		require.Len(t, f.manifest.UpdateCalls, 1)
		assert.Equal(t, "a/A.csproj", f.manifest.UpdateCalls[0].Path)
	})

	t.Run("should cap the number of groups per run", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		recs := []entities.UpgradeRecommendation{
			builders.NewRecommendationBuilder().WithName("A").BuildRecommendation(),
			builders.NewRecommendationBuilder().WithName("B").BuildRecommendation(),
			builders.NewRecommendationBuilder().WithName("C").BuildRecommendation(),
		}
		r := f.reconciler(reconciler.Options{MaxGroups: 2})

		// when
		outcomes, err := r.Reconcile(context.Background(), recs)

		// then
		require.NoError(t, err)
		assert.Len(t, outcomes, 2)
	})

	t.Run("should report a replaced stale local branch", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		f.vcs.LocalBranches = []string{"pbot/packagea/5defb4208e8b4cac"}
		r := f.reconciler(reconciler.Options{DryRun: true})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.StateCommitted, outcomes[0].State)
		assert.Contains(t, f.vcs.Calls, "CreateBranch:pbot/packagea/5defb4208e8b4cac@main")
	})

	t.Run("should warn but continue when fetching fails", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		f.vcs.FetchErr = errors.New("offline")
		r := f.reconciler(reconciler.Options{DryRun: true})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.StateCommitted, outcomes[0].State)
	})

	t.Run("should fail when no change request host is configured", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		r := reconciler.New(f.vcs, nil, []repositories.ManifestRepository{f.manifest},
			entities.Repository{}, entities.DefaultGrouping(), reconciler.Options{})

		// when
		outcomes, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		assert.True(t, outcomes[0].Failed())
		assert.Equal(t, entities.StatePushed, outcomes[0].LastState)
	})

	t.Run("should use the configured base branch", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		r := f.reconciler(reconciler.Options{BaseBranch: "develop"})

		// when
		_, err := r.Reconcile(context.Background(), []entities.UpgradeRecommendation{packageA()})

		// then
		require.NoError(t, err)
		assert.NotContains(t, f.vcs.Calls, "CurrentBranch:")
		assert.Equal(t, "refs/heads/develop", f.host.PRInputs[0].TargetBranch)
	})

	t.Run("should do nothing without recommendations", func(t *testing.T) {
		t.Parallel()
		// given
		f := newFixture()
		r := f.reconciler(reconciler.Options{})

		// when
		outcomes, err := r.Reconcile(context.Background(), nil)

		// then
		require.NoError(t, err)
		assert.Empty(t, outcomes)
		assert.Empty(t, f.vcs.Calls)
	})
}
