package repositories

import (
	"context"
)

// CommitSignature identifies the author of generated commits.
type CommitSignature struct {
	Name  string
	Email string
}

// VersionControlRepository operates on the single working tree of a run.
// Implementations are not safe for concurrent use.
type VersionControlRepository interface {
	// CurrentBranch returns the short name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)

	// RemoteURL returns the first URL configured for the remote.
	RemoteURL(ctx context.Context) (string, error)

	// Fetch refreshes the remote-tracking branches.
	Fetch(ctx context.Context) error

	// RemoteBranchExists reports whether a remote-tracking branch named
	// branch exists, compared case-insensitively.
	RemoteBranchExists(ctx context.Context, branch string) (bool, error)

	// ResetToBranch checks out branch, discarding local modifications.
	ResetToBranch(ctx context.Context, branch string) error

	// CreateBranch points branch at the tip of base and checks it out. A stale
	// local branch of the same name is overwritten; replaced reports that case.
	CreateBranch(ctx context.Context, branch, base string) (bool, error)

	// StageAll stages every modification in the working tree.
	StageAll(ctx context.Context) error

	// Commit records the staged changes and returns the commit hash.
	Commit(ctx context.Context, message string, signature CommitSignature) (string, error)

	// Push publishes branch to the remote.
	Push(ctx context.Context, branch string) error

	// Root returns the working tree directory.
	Root() string
}
