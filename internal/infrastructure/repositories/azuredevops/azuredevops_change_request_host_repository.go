package azuredevops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/httpclient"
)

const (
	providerName   = "azuredevops"
	defaultBaseURL = "https://dev.azure.com"
	apiVersion     = "7.0"
)

var errInvalidOrganization = errors.New("azure devops repositories need an \"organization/project\" owner")

type pullRequest struct {
	ID     int    `json:"pullRequestId"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type pullRequestList struct {
	Count int           `json:"count"`
	Value []pullRequest `json:"value"`
}

// AzureDevOpsChangeRequestHostRepository opens pull requests on Azure DevOps Services
// or Server. Repository.Organization carries "organization/project".
type AzureDevOpsChangeRequestHostRepository struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewChangeRequestHostRepository creates an Azure DevOps host authenticated with a PAT.
func NewChangeRequestHostRepository(token, baseURL string) repositories.ChangeRequestHostRepository {
	return NewChangeRequestHostRepositoryWithClient(token, baseURL, httpclient.NewHTTPClient())
}

// NewChangeRequestHostRepositoryWithClient uses the given HTTP client.
func NewChangeRequestHostRepositoryWithClient(
	token, baseURL string,
	client *http.Client,
) repositories.ChangeRequestHostRepository {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &AzureDevOpsChangeRequestHostRepository{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: client,
	}
}

func (p *AzureDevOpsChangeRequestHostRepository) Name() string { return providerName }

func (p *AzureDevOpsChangeRequestHostRepository) CreatePullRequest(
	ctx context.Context,
	repo entities.Repository,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	base, err := p.repositoryURL(repo)
	if err != nil {
		return nil, err
	}

	body := map[string]string{
		"sourceRefName": refName(input.SourceBranch),
		"targetRefName": refName(input.TargetBranch),
		"title":         input.Title,
		"description":   input.Description,
	}

	var pr pullRequest
	if reqErr := p.do(ctx, http.MethodPost, base+"/pullrequests?api-version="+apiVersion, body, &pr); reqErr != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", reqErr)
	}

	org, project, _ := strings.Cut(repo.Organization, "/")
	return &entities.PullRequest{
		ID:    pr.ID,
		Title: pr.Title,
		URL: fmt.Sprintf("%s/%s/%s/_git/%s/pullrequest/%d",
			p.baseURL, url.PathEscape(org), url.PathEscape(project), url.PathEscape(repo.Name), pr.ID),
		Status: pr.Status,
	}, nil
}

func (p *AzureDevOpsChangeRequestHostRepository) PullRequestExists(
	ctx context.Context,
	repo entities.Repository,
	sourceBranch string,
) (bool, error) {
	base, err := p.repositoryURL(repo)
	if err != nil {
		return false, err
	}

	query := url.Values{}
	query.Set("searchCriteria.sourceRefName", refName(sourceBranch))
	query.Set("searchCriteria.status", "active")
	query.Set("api-version", apiVersion)

	var list pullRequestList
	if reqErr := p.do(ctx, http.MethodGet, base+"/pullrequests?"+query.Encode(), nil, &list); reqErr != nil {
		return false, fmt.Errorf("failed to list pull requests: %w", reqErr)
	}
	return len(list.Value) > 0, nil
}

func (p *AzureDevOpsChangeRequestHostRepository) repositoryURL(repo entities.Repository) (string, error) {
	org, project, ok := strings.Cut(repo.Organization, "/")
	if !ok || org == "" || project == "" {
		return "", fmt.Errorf("%w: %q", errInvalidOrganization, repo.Organization)
	}
	return fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s",
		p.baseURL, url.PathEscape(org), url.PathEscape(project), url.PathEscape(repo.Name)), nil
}

func (p *AzureDevOpsChangeRequestHostRepository) do(
	ctx context.Context,
	method, endpoint string,
	body, out any,
) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+p.token)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err = json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func refName(branch string) string {
	if strings.HasPrefix(branch, "refs/") {
		return branch
	}
	return "refs/heads/" + branch
}
