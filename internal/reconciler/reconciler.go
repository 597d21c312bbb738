package reconciler

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

var errNoChangeRequestHost = errors.New("no change request host configured")

// Options controls how update groups become branches and change requests.
type Options struct {
	BranchPrefix string
	// BaseBranch defaults to the branch checked out when reconciliation starts.
	BaseBranch string
	// MaxGroups caps how many groups one run handles; zero means no cap.
	MaxGroups int
	DryRun    bool
	Signature repositories.CommitSignature
}

// Reconciler turns update groups into pushed branches and change requests, skipping
// groups whose branch already exists on the remote. It owns the working tree for
// the duration of Reconcile and must never run concurrently with itself.
type Reconciler struct {
	vcs       repositories.VersionControlRepository
	host      repositories.ChangeRequestHostRepository
	manifests map[entities.DeclarationKind]repositories.ManifestRepository
	repo      entities.Repository
	grouping  entities.Grouping
	opts      Options
}

// New creates a Reconciler. host may be nil when only dry runs are performed.
func New(
	vcs repositories.VersionControlRepository,
	host repositories.ChangeRequestHostRepository,
	manifests []repositories.ManifestRepository,
	repo entities.Repository,
	grouping entities.Grouping,
	opts Options,
) *Reconciler {
	byKind := make(map[entities.DeclarationKind]repositories.ManifestRepository, len(manifests))
	for _, m := range manifests {
		byKind[m.Kind()] = m
	}
	if opts.BranchPrefix == "" {
		opts.BranchPrefix = entities.DefaultBranchPrefix
	}
	return &Reconciler{
		vcs:       vcs,
		host:      host,
		manifests: byKind,
		repo:      repo,
		grouping:  grouping,
		opts:      opts,
	}
}

// Reconcile processes the groups folded from recommendations one at a time, in the
// order they are discovered. A failing group does not stop the next one. The base
// branch is checked out again before returning, whatever happened.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	recommendations []entities.UpgradeRecommendation,
) ([]entities.GroupOutcome, error) {
	groups := entities.FoldUpdateGroups(r.grouping, recommendations)
	logger.Infof("[reconciler] %d update groups", len(groups))

	if r.opts.MaxGroups > 0 && len(groups) > r.opts.MaxGroups {
		logger.Infof("[reconciler] Limiting this run to the first %d groups", r.opts.MaxGroups)
		groups = groups[:r.opts.MaxGroups]
	}
	if len(groups) == 0 {
		return nil, nil
	}

	base := r.opts.BaseBranch
	if base == "" {
		current, err := r.vcs.CurrentBranch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to detect base branch: %w", err)
		}
		base = current
	}
	logger.Infof("[reconciler] Base branch is %q", base)

	defer r.restore(ctx, base)

	if err := r.vcs.Fetch(ctx); err != nil {
		logger.Warnf("[reconciler] Could not refresh remote branches: %v", err)
	}

	outcomes := make([]entities.GroupOutcome, 0, len(groups))
	for _, group := range groups {
		outcomes = append(outcomes, r.reconcileGroup(ctx, base, group))
	}

	return outcomes, nil
}

func (r *Reconciler) reconcileGroup(
	ctx context.Context,
	base string,
	group entities.UpdateGroup,
) entities.GroupOutcome {
	outcome := entities.GroupOutcome{
		Group:  group,
		Branch: group.BranchName(r.opts.BranchPrefix),
		State:  entities.StatePlanned,
	}
	logger.Infof("[reconciler] Update for %s on branch %s", group.Key.GroupName, outcome.Branch)

	fail := func(step string, err error) entities.GroupOutcome {
		outcome.LastState = outcome.State
		outcome.State = entities.StateFailed
		outcome.Err = fmt.Errorf("%s: %w", step, err)
		logger.Errorf("[reconciler] %s failed: %v", group.Key.GroupName, outcome.Err)
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail("cancelled", err)
	}

	exists, err := r.vcs.RemoteBranchExists(ctx, outcome.Branch)
	if err != nil {
		return fail("check remote branch", err)
	}
	outcome.State = entities.StateBranchChecked

	if exists {
		logger.Infof("[reconciler] Remote branch %s already exists, skipping", outcome.Branch)
		r.reportExistingChangeRequest(ctx, outcome.Branch)
		outcome.State = entities.StateSkippedExisting
		return outcome
	}

	defer r.restore(ctx, base)

	if resetErr := r.vcs.ResetToBranch(ctx, base); resetErr != nil {
		return fail("reset to base branch", resetErr)
	}

	replaced, err := r.vcs.CreateBranch(ctx, outcome.Branch, base)
	if err != nil {
		return fail("create branch", err)
	}
	outcome.State = entities.StateCreated
	if replaced {
		logger.Infof("[reconciler] Replaced stale local branch %s", outcome.Branch)
		outcome.State = entities.StateReused
	}

	for _, rec := range group.Recommendations {
		if applyErr := r.applyUpdate(ctx, rec); applyErr != nil {
			return fail("apply update", applyErr)
		}
	}

	description := entities.NewPullRequestDescription(group)

	if stageErr := r.vcs.StageAll(ctx); stageErr != nil {
		return fail("stage changes", stageErr)
	}
	hash, err := r.vcs.Commit(ctx, description.CommitMessage, r.opts.Signature)
	if err != nil {
		return fail("commit", err)
	}
	outcome.State = entities.StateCommitted
	logger.Infof("[reconciler] Committed %s", hash)

	if r.opts.DryRun {
		logger.Infof("[reconciler] [DRY RUN] Would push %s and open %q", outcome.Branch, description.Title)
		return outcome
	}

	if pushErr := r.vcs.Push(ctx, outcome.Branch); pushErr != nil {
		return fail("push", pushErr)
	}
	outcome.State = entities.StatePushed

	if r.host == nil {
		return fail("open change request", errNoChangeRequestHost)
	}
	pr, err := r.host.CreatePullRequest(ctx, r.repo, entities.PullRequestInput{
		SourceBranch: "refs/heads/" + outcome.Branch,
		TargetBranch: "refs/heads/" + base,
		Title:        description.Title,
		Description:  description.Body,
	})
	if err != nil {
		return fail("open change request", err)
	}
	outcome.State = entities.StateChangeRequestOpened
	outcome.PullRequest = pr
	logger.Infof("[reconciler] Opened change request #%d at %s", pr.ID, pr.URL)

	return outcome
}

// applyUpdate rewrites every location of rec that is not already at the recommended version.
func (r *Reconciler) applyUpdate(ctx context.Context, rec entities.UpgradeRecommendation) error {
	target := rec.Recommended.Version
	done := make(map[string]bool)

	for _, loc := range rec.Dependency.Locations {
		if loc.Version.Equal(target) || done[loc.FilePath] {
			continue
		}

		manifest, ok := r.manifests[loc.Kind]
		if !ok {
			return fmt.Errorf("%s in %s (%s): %w", rec.Dependency.Name, loc.FilePath, loc.Kind,
				entities.ErrUnsupportedLocationKind)
		}

		changed, err := manifest.Update(ctx, loc.FilePath, rec.Dependency.Name, target)
		if err != nil {
			return fmt.Errorf("%s in %s: %w", rec.Dependency.Name, loc.FilePath, err)
		}
		done[loc.FilePath] = true
		logger.Debugf("[reconciler] %s: %d declarations of %s set to %s", loc.FilePath, changed,
			rec.Dependency.Name, target)
	}

	return nil
}

func (r *Reconciler) reportExistingChangeRequest(ctx context.Context, branch string) {
	if r.host == nil {
		return
	}
	open, err := r.host.PullRequestExists(ctx, r.repo, branch)
	switch {
	case err != nil:
		logger.Warnf("[reconciler] Could not look up change requests for %s: %v", branch, err)
	case open:
		logger.Infof("[reconciler] An open change request already uses %s", branch)
	default:
		logger.Infof("[reconciler] No open change request uses %s; it was likely closed by hand", branch)
	}
}

// restore checks out the base branch even when ctx has been cancelled.
func (r *Reconciler) restore(ctx context.Context, base string) {
	if err := r.vcs.ResetToBranch(context.WithoutCancel(ctx), base); err != nil {
		logger.Errorf("[reconciler] Failed to restore base branch %q: %v", base, err)
	}
}
