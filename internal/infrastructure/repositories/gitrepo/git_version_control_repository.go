package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

var errDetachedHead = errors.New("HEAD is not on a branch")

// Options locates the working tree and the credentials used against its remote.
type Options struct {
	Path   string
	Remote string
	// Username is the basic-auth user paired with Token ("x-access-token" on GitHub, "oauth2" on GitLab).
	Username string
	Token    string
}

// GitVersionControlRepository implements repositories.VersionControlRepository with go-git.
type GitVersionControlRepository struct {
	repo     *git.Repository
	worktree *git.Worktree
	remote   string
	auth     transport.AuthMethod
}

// Factory opens a working tree.
type Factory func(opts Options) (repositories.VersionControlRepository, error)

// NewVersionControlRepository opens the repository containing opts.Path.
func NewVersionControlRepository(opts Options) (repositories.VersionControlRepository, error) {
	repo, err := git.PlainOpenWithOptions(opts.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", opts.Path, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	var auth transport.AuthMethod
	if opts.Token != "" {
		username := opts.Username
		if username == "" {
			username = "x-access-token"
		}
		auth = &http.BasicAuth{Username: username, Password: opts.Token}
	}

	remote := opts.Remote
	if remote == "" {
		remote = git.DefaultRemoteName
	}

	return &GitVersionControlRepository{repo: repo, worktree: worktree, remote: remote, auth: auth}, nil
}

func (g *GitVersionControlRepository) Root() string { return g.worktree.Filesystem.Root() }

func (g *GitVersionControlRepository) CurrentBranch(_ context.Context) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", errDetachedHead
	}
	return head.Name().Short(), nil
}

func (g *GitVersionControlRepository) RemoteURL(_ context.Context) (string, error) {
	remote, err := g.repo.Remote(g.remote)
	if err != nil {
		return "", fmt.Errorf("failed to read remote %q: %w", g.remote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", g.remote)
	}
	return urls[0], nil
}

func (g *GitVersionControlRepository) Fetch(ctx context.Context) error {
	err := g.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: g.remote,
		RefSpecs: []config.RefSpec{
			config.RefSpec("+refs/heads/*:refs/remotes/" + g.remote + "/*"),
		},
		Auth:  g.auth,
		Prune: true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch %s: %w", g.remote, err)
	}
	return nil
}

func (g *GitVersionControlRepository) RemoteBranchExists(_ context.Context, branch string) (bool, error) {
	target := plumbing.NewRemoteReferenceName(g.remote, branch).String()

	refs, err := g.repo.References()
	if err != nil {
		return false, fmt.Errorf("failed to list references: %w", err)
	}
	defer refs.Close()

	found := false
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsRemote() && strings.EqualFold(ref.Name().String(), target) {
			found = true
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to iterate references: %w", err)
	}
	return found, nil
}

func (g *GitVersionControlRepository) ResetToBranch(_ context.Context, branch string) error {
	name := plumbing.NewBranchReferenceName(branch)
	if err := g.worktree.Checkout(&git.CheckoutOptions{Branch: name, Force: true}); err != nil {
		return fmt.Errorf("failed to check out %s: %w", branch, err)
	}

	ref, err := g.repo.Reference(name, true)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", branch, err)
	}
	if resetErr := g.worktree.Reset(&git.ResetOptions{Commit: ref.Hash(), Mode: git.HardReset}); resetErr != nil {
		return fmt.Errorf("failed to reset to %s: %w", branch, resetErr)
	}
	return nil
}

func (g *GitVersionControlRepository) CreateBranch(_ context.Context, branch, base string) (bool, error) {
	baseRef, err := g.repo.Reference(plumbing.NewBranchReferenceName(base), true)
	if err != nil {
		return false, fmt.Errorf("failed to resolve base branch %s: %w", base, err)
	}

	name := plumbing.NewBranchReferenceName(branch)
	_, lookupErr := g.repo.Reference(name, false)
	replaced := lookupErr == nil

	if setErr := g.repo.Storer.SetReference(plumbing.NewHashReference(name, baseRef.Hash())); setErr != nil {
		return false, fmt.Errorf("failed to create branch %s: %w", branch, setErr)
	}
	if checkoutErr := g.worktree.Checkout(&git.CheckoutOptions{Branch: name, Force: true}); checkoutErr != nil {
		return replaced, fmt.Errorf("failed to check out %s: %w", branch, checkoutErr)
	}
	return replaced, nil
}

func (g *GitVersionControlRepository) StageAll(_ context.Context) error {
	if err := g.worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

func (g *GitVersionControlRepository) Commit(
	_ context.Context,
	message string,
	signature repositories.CommitSignature,
) (string, error) {
	sig := &object.Signature{Name: signature.Name, Email: signature.Email, When: time.Now()}
	hash, err := g.worktree.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

func (g *GitVersionControlRepository) Push(ctx context.Context, branch string) error {
	ref := "refs/heads/" + branch
	err := g.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: g.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Auth:       g.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %s: %w", branch, err)
	}
	return nil
}
