package repositories

import (
	"context"

	"github.com/rios0rios0/pbot/internal/domain/entities"
)

// ChangeRequestHostRepository opens pull or merge requests on a Git hosting service.
type ChangeRequestHostRepository interface {
	// Name returns the provider identifier (e.g. "github").
	Name() string

	// CreatePullRequest opens a change request from input.SourceBranch into input.TargetBranch.
	CreatePullRequest(
		ctx context.Context,
		repo entities.Repository,
		input entities.PullRequestInput,
	) (*entities.PullRequest, error)

	// PullRequestExists reports whether an open change request already uses sourceBranch.
	PullRequestExists(ctx context.Context, repo entities.Repository, sourceBranch string) (bool, error)
}
