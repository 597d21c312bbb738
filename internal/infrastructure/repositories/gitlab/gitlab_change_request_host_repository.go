package gitlab

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/httpclient"
)

const providerName = "gitlab"

var errClientNotInitialized = errors.New("gitlab client not initialized")

// GitLabChangeRequestHostRepository opens merge requests on GitLab.
type GitLabChangeRequestHostRepository struct {
	client *gl.Client
}

// NewChangeRequestHostRepository creates a GitLab host authenticated with token.
// A non-empty baseURL targets a self-managed instance.
func NewChangeRequestHostRepository(token, baseURL string) repositories.ChangeRequestHostRepository {
	opts := []gl.ClientOptionFunc{gl.WithHTTPClient(httpclient.NewHTTPClient())}
	if baseURL != "" {
		opts = append(opts, gl.WithBaseURL(baseURL))
	}
	client, err := gl.NewClient(token, opts...)
	if err != nil {
		// fails on use instead of at construction
		logger.Warnf("[gitlab] Failed to create client: %v", err)
		return &GitLabChangeRequestHostRepository{}
	}
	return &GitLabChangeRequestHostRepository{client: client}
}

// NewChangeRequestHostRepositoryWithClient wraps an existing GitLab client.
func NewChangeRequestHostRepositoryWithClient(client *gl.Client) repositories.ChangeRequestHostRepository {
	return &GitLabChangeRequestHostRepository{client: client}
}

func (p *GitLabChangeRequestHostRepository) Name() string { return providerName }

func (p *GitLabChangeRequestHostRepository) CreatePullRequest(
	ctx context.Context,
	repo entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	mr, _, err := p.client.MergeRequests.CreateMergeRequest(
		projectID(repo),
		&gl.CreateMergeRequestOptions{
			Title:              gl.Ptr(input.Title),
			Description:        gl.Ptr(input.Description),
			SourceBranch:       gl.Ptr(strings.TrimPrefix(input.SourceBranch, "refs/heads/")),
			TargetBranch:       gl.Ptr(strings.TrimPrefix(input.TargetBranch, "refs/heads/")),
			RemoveSourceBranch: gl.Ptr(true),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create merge request: %w", err)
	}

	return &entities.PullRequest{
		ID:     int(mr.IID),
		Title:  mr.Title,
		URL:    mr.WebURL,
		Status: mr.State,
	}, nil
}

func (p *GitLabChangeRequestHostRepository) PullRequestExists(
	ctx context.Context,
	repo entities.Repository,
	sourceBranch string,
) (bool, error) {
	if p.client == nil {
		return false, errClientNotInitialized
	}

	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(
		projectID(repo),
		&gl.ListProjectMergeRequestsOptions{
			SourceBranch: gl.Ptr(strings.TrimPrefix(sourceBranch, "refs/heads/")),
			State:        gl.Ptr("opened"),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to list merge requests: %w", err)
	}

	return len(mrs) > 0, nil
}

func projectID(repo entities.Repository) string {
	return repo.Organization + "/" + repo.Name
}
