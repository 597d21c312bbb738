package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/pbot/internal/infrastructure/repositories"
	gitRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/gitrepo"
	nugetRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/nuget"
	"github.com/rios0rios0/pbot/internal/reconciler"
	"github.com/rios0rios0/pbot/internal/resolver"
	"github.com/rios0rios0/pbot/internal/scanner"
	"github.com/rios0rios0/pbot/internal/upgrader"
)

// Update is the interface for the update command.
type Update interface {
	Execute(ctx context.Context, settings *entities.Settings, opts UpdateOptions) (*Summary, error)
}

// UpdateOptions holds runtime options for a single update run.
type UpdateOptions struct {
	DryRun  bool
	Verbose bool
	// Token authenticates pushes and change-request calls. Empty means dry-run only.
	Token string
}

// Summary counts what one run did.
type Summary struct {
	Dependencies     int
	Recommendations  int
	ResolutionErrors int
	Outcomes         []entities.GroupOutcome
}

// Created returns how many groups reached a pushed branch or further.
func (s *Summary) Created() int {
	count := 0
	for _, o := range s.Outcomes {
		if !o.Failed() && !o.Skipped() {
			count++
		}
	}
	return count
}

// Skipped returns how many groups were skipped because their branch already existed.
func (s *Summary) Skipped() int {
	count := 0
	for _, o := range s.Outcomes {
		if o.Skipped() {
			count++
		}
	}
	return count
}

// Failed returns how many groups ended in an error.
func (s *Summary) Failed() int {
	count := 0
	for _, o := range s.Outcomes {
		if o.Failed() {
			count++
		}
	}
	return count
}

// UpdateCommand runs the full pipeline for one working tree:
// scan -> resolve -> decide -> group -> reconcile.
type UpdateCommand struct {
	hostRegistry     *infraRepos.ChangeRequestHostRegistry
	manifestRegistry *infraRepos.ManifestRegistry
	sourceRegistry   *infraRepos.MetadataSourceRegistry
	ignoreRepository repositories.IgnoreConditionRepository
	openRepository   gitRepo.Factory
}

// NewUpdateCommand creates a new UpdateCommand with the given registries.
func NewUpdateCommand(
	hostRegistry *infraRepos.ChangeRequestHostRegistry,
	manifestRegistry *infraRepos.ManifestRegistry,
	sourceRegistry *infraRepos.MetadataSourceRegistry,
	ignoreRepository repositories.IgnoreConditionRepository,
	openRepository gitRepo.Factory,
) *UpdateCommand {
	return &UpdateCommand{
		hostRegistry:     hostRegistry,
		manifestRegistry: manifestRegistry,
		sourceRegistry:   sourceRegistry,
		ignoreRepository: ignoreRepository,
		openRepository:   openRepository,
	}
}

// Execute runs one update cycle against the working tree described by settings.
func (it *UpdateCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts UpdateOptions,
) (*Summary, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	dryRun := opts.DryRun || settings.DryRun
	if dryRun {
		logger.Info("[DRY RUN] No branches will be pushed and no change requests opened")
	}

	repo, vcs, err := it.openWorkingTree(ctx, settings, opts.Token)
	if err != nil {
		return nil, err
	}
	logger.Infof("Updating %s/%s (%s) at %s", repo.Organization, repo.Name, repo.ProviderName, vcs.Root())

	summary := &Summary{}

	deps, err := scanner.New(it.manifestRegistry.All(), settings.Concurrency).Scan(ctx, vcs.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", vcs.Root(), err)
	}
	summary.Dependencies = len(deps)
	logger.Infof("Found %d dependencies", len(deps))
	for _, dep := range deps {
		logger.Debugf("  %s %s in %d locations", dep.Name, dep.ExistingVersionsString(), len(dep.Locations))
	}

	ignores, err := it.ignoreRepository.Load(ctx, ignoreRoot(settings, vcs.Root()), repo.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore conditions: %w", err)
	}
	for _, cond := range ignores.All() {
		logger.Infof("Ignoring %s %s (%s)", cond.PackageName, cond, cond.Source)
	}

	sources, err := it.buildSources(settings, vcs.Root())
	if err != nil {
		return nil, err
	}

	results := resolver.New(sources, settings.ExclusionPolicy(), settings.Concurrency).ResolveAll(ctx, deps)
	for _, result := range results {
		switch {
		case result.Err != nil:
			summary.ResolutionErrors++
			logger.Errorf("Could not resolve %s: %v", result.Dependency.Name, result.Err)
		case result.Excluded():
			logger.Infof("Skipping %s: %s", result.Dependency.Name, result.ExclusionReason)
		default:
			logger.Debugf("Found %d candidate versions of %s", len(result.Candidates), result.Dependency.Name)
		}
	}

	var recommendations []entities.UpgradeRecommendation
	for i, rec := range upgrader.DecideAll(results, ignores) {
		if results[i].Err != nil || results[i].Excluded() {
			continue
		}
		logger.Info(rec.String())
		if rec.HasUpgrade() {
			recommendations = append(recommendations, rec)
		}
	}
	summary.Recommendations = len(recommendations)

	host := it.buildHost(settings, repo.ProviderName, opts.Token, dryRun)

	rec := reconciler.New(vcs, host, it.manifestRegistry.All(), repo, settings.Grouping(), reconciler.Options{
		BranchPrefix: settings.BranchPrefix,
		BaseBranch:   settings.Repository.BaseBranch,
		MaxGroups:    settings.MaxGroups,
		DryRun:       dryRun,
		Signature:    repositories.CommitSignature{Name: settings.Commit.Name, Email: settings.Commit.Email},
	})
	outcomes, err := rec.Reconcile(ctx, recommendations)
	summary.Outcomes = outcomes
	logOutcomes(summary)
	if err != nil {
		return summary, fmt.Errorf("failed to reconcile update groups: %w", err)
	}

	return summary, nil
}

// openWorkingTree reads the remote URL, derives the hosting coordinates, then
// reopens the tree with push credentials.
func (it *UpdateCommand) openWorkingTree(
	ctx context.Context,
	settings *entities.Settings,
	token string,
) (entities.Repository, repositories.VersionControlRepository, error) {
	probe, err := it.openRepository(gitRepo.Options{Path: settings.Repository.Path, Remote: settings.Repository.Remote})
	if err != nil {
		return entities.Repository{}, nil, err
	}

	repo := entities.Repository{
		Organization: settings.Repository.Owner,
		Name:         settings.Repository.Name,
		ProviderName: settings.Provider.Type,
	}

	remoteURL, urlErr := probe.RemoteURL(ctx)
	if urlErr != nil {
		logger.Warnf("Could not read remote URL: %v", urlErr)
	} else {
		repo.RemoteURL = remoteURL
		info, parseErr := parseRemoteURL(remoteURL, settings.Provider.Type)
		if parseErr != nil {
			logger.Warnf("Could not parse remote URL: %v", parseErr)
		} else {
			repo = mergeRemoteInfo(repo, info)
		}
	}

	if repo.Name == "" {
		repo.Name = filepath.Base(probe.Root())
	}
	repo.ID = repo.Organization + "/" + repo.Name
	repo.DefaultBranch = settings.Repository.BaseBranch

	if token == "" {
		return repo, probe, nil
	}

	vcs, err := it.openRepository(gitRepo.Options{
		Path:     settings.Repository.Path,
		Remote:   settings.Repository.Remote,
		Username: pushUsername(repo.ProviderName),
		Token:    token,
	})
	if err != nil {
		return entities.Repository{}, nil, err
	}
	return repo, vcs, nil
}

// buildSources uses the configured feeds, or the tree's nuget.config feeds plus the
// public Terraform registry when none are configured.
func (it *UpdateCommand) buildSources(
	settings *entities.Settings,
	root string,
) ([]repositories.MetadataSourceRepository, error) {
	configs := settings.Sources
	if len(configs) == 0 {
		nugetSources, err := nugetRepo.PackageSources(root)
		if err != nil {
			return nil, err
		}
		configs = append(nugetSources, entities.SourceConfig{
			Name: "registry.terraform.io",
			Type: entities.SourceTypeTerraform,
			URL:  entities.DefaultTerraformURL,
		})
	}

	names := make([]string, 0, len(configs))
	for _, cfg := range configs {
		names = append(names, cfg.Name)
	}
	logger.Infof("Using metadata sources: %s", strings.Join(names, ", "))

	sources, err := it.sourceRegistry.Build(configs)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata sources: %w", err)
	}
	return sources, nil
}

func (it *UpdateCommand) buildHost(
	settings *entities.Settings,
	providerType, token string,
	dryRun bool,
) repositories.ChangeRequestHostRepository {
	if token == "" {
		if !dryRun {
			logger.Warnf("No token available for %q; set %s or pass --token", providerType, tokenEnvHint(providerType))
		}
		return nil
	}

	host, err := it.hostRegistry.Get(providerType, token, settings.Provider.BaseURL)
	if err != nil {
		logger.Errorf("Failed to initialize provider %q: %v", providerType, err)
		return nil
	}
	return host
}

func mergeRemoteInfo(repo entities.Repository, info *remoteInfo) entities.Repository {
	if repo.Organization == "" {
		repo.Organization = info.Org
	}
	if repo.Name == "" {
		repo.Name = info.RepoName
	}
	if repo.ProviderName == "" {
		repo.ProviderName = info.ProviderType
	}
	return repo
}

func ignoreRoot(settings *entities.Settings, root string) string {
	if filepath.IsAbs(settings.IgnoreConditions) {
		return settings.IgnoreConditions
	}
	return filepath.Join(root, settings.IgnoreConditions)
}

func logOutcomes(summary *Summary) {
	for _, o := range summary.Outcomes {
		switch {
		case o.Failed():
			logger.Errorf("  %s: failed after %s: %v", o.Branch, o.LastState, o.Err)
		case o.PullRequest != nil:
			logger.Infof("  %s: %s (%s)", o.Branch, o.State, o.PullRequest.URL)
		default:
			logger.Infof("  %s: %s", o.Branch, o.State)
		}
	}

	logger.Infof(
		"Run complete: %d dependencies, %d recommendations, %d groups (%d created, %d skipped, %d failed), %d resolution errors",
		summary.Dependencies, summary.Recommendations, len(summary.Outcomes),
		summary.Created(), summary.Skipped(), summary.Failed(), summary.ResolutionErrors,
	)
}

// tokenEnvHint returns a human-readable hint for which env vars to set.
func tokenEnvHint(providerType string) string {
	switch providerType {
	case providerGitHub:
		return "GITHUB_TOKEN or GH_TOKEN"
	case providerGitLab:
		return "GITLAB_TOKEN or GL_TOKEN"
	case providerAzureDevOps:
		return "AZURE_DEVOPS_PAT"
	default:
		return "the provider token"
	}
}
