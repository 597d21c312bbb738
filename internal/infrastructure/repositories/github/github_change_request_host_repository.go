package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/httpclient"
)

const providerName = "github"

// GitHubChangeRequestHostRepository opens pull requests on GitHub.
type GitHubChangeRequestHostRepository struct {
	client *gh.Client
}

// NewChangeRequestHostRepository creates a GitHub host authenticated with token.
// A non-empty baseURL targets a GitHub Enterprise Server instance.
func NewChangeRequestHostRepository(token, baseURL string) repositories.ChangeRequestHostRepository {
	client := gh.NewClient(httpclient.NewHTTPClient()).WithAuthToken(token)
	if baseURL != "" {
		enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			logger.Warnf("[github] Ignoring invalid base URL %q: %v", baseURL, err)
		} else {
			client = enterprise
		}
	}
	return &GitHubChangeRequestHostRepository{client: client}
}

// NewChangeRequestHostRepositoryWithClient wraps an existing go-github client.
func NewChangeRequestHostRepositoryWithClient(client *gh.Client) repositories.ChangeRequestHostRepository {
	return &GitHubChangeRequestHostRepository{client: client}
}

func (p *GitHubChangeRequestHostRepository) Name() string { return providerName }

func (p *GitHubChangeRequestHostRepository) CreatePullRequest(
	ctx context.Context,
	repo entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	sourceBranch := strings.TrimPrefix(input.SourceBranch, "refs/heads/")
	targetBranch := strings.TrimPrefix(input.TargetBranch, "refs/heads/")

	maintainerCanModify := true
	pr, _, err := p.client.PullRequests.Create(
		ctx, repo.Organization, repo.Name,
		&gh.NewPullRequest{
			Title:               &input.Title,
			Head:                &sourceBranch,
			Base:                &targetBranch,
			Body:                &input.Description,
			MaintainerCanModify: &maintainerCanModify,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &entities.PullRequest{
		ID:     pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Status: pr.GetState(),
	}, nil
}

func (p *GitHubChangeRequestHostRepository) PullRequestExists(
	ctx context.Context,
	repo entities.Repository,
	sourceBranch string,
) (bool, error) {
	prs, _, err := p.client.PullRequests.List(
		ctx, repo.Organization, repo.Name,
		&gh.PullRequestListOptions{
			Head:  repo.Organization + ":" + strings.TrimPrefix(sourceBranch, "refs/heads/"),
			State: "open",
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to list pull requests: %w", err)
	}

	return len(prs) > 0, nil
}
