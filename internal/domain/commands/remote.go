package commands

import (
	"fmt"
	"strings"
)

const (
	providerGitHub      = "github"
	providerGitLab      = "gitlab"
	providerAzureDevOps = "azuredevops"

	gitHubPushUser      = "x-access-token"
	gitLabPushUser      = "oauth2"
	azureDevOpsPushUser = "pat"
)

// remoteInfo holds the parsed components of a Git remote URL.
type remoteInfo struct {
	ProviderType string
	Org          string
	RepoName     string
}

// parseRemoteURL extracts provider, owner and repository from a remote URL.
// providerHint is used for hosts other than github.com and gitlab.com.
func parseRemoteURL(rawURL, providerHint string) (*remoteInfo, error) {
	cleaned := strings.TrimSuffix(strings.TrimSuffix(rawURL, "/"), ".git")

	if strings.Contains(cleaned, "dev.azure.com") {
		return parseAzureDevOpsURL(cleaned)
	}

	provider := providerHint
	switch {
	case strings.Contains(cleaned, "github.com"):
		provider = providerGitHub
	case strings.Contains(cleaned, "gitlab.com"):
		provider = providerGitLab
	}
	if provider == "" {
		return nil, fmt.Errorf("unsupported git remote URL: %s", rawURL)
	}

	org, repo, err := parseStandardGitURL(cleaned)
	if err != nil {
		return nil, err
	}
	return &remoteInfo{ProviderType: provider, Org: org, RepoName: repo}, nil
}

// parseAzureDevOpsURL keeps "{org}/{project}" together as the owner.
//
//	HTTPS: https://dev.azure.com/{org}/{project}/_git/{repo}
//	SSH:   git@ssh.dev.azure.com:v3/{org}/{project}/{repo}
func parseAzureDevOpsURL(url string) (*remoteInfo, error) {
	if _, pathPart, ok := strings.Cut(url, ":v3/"); ok {
		parts := strings.Split(pathPart, "/")
		if len(parts) != 3 { //nolint:mnd // org/project/repo
			return nil, fmt.Errorf("invalid Azure DevOps SSH URL: %s", url)
		}
		return &remoteInfo{ProviderType: providerAzureDevOps, Org: parts[0] + "/" + parts[1], RepoName: parts[2]}, nil
	}

	parts := strings.Split(url, "/")
	for i, p := range parts {
		if p == "_git" && i >= 2 && i+1 < len(parts) {
			return &remoteInfo{
				ProviderType: providerAzureDevOps,
				Org:          parts[i-2] + "/" + parts[i-1],
				RepoName:     parts[i+1],
			}, nil
		}
	}
	return nil, fmt.Errorf("invalid Azure DevOps URL: %s", url)
}

// parseStandardGitURL accepts scp-like SSH ("git@host:org/repo"), ssh:// and http(s)://
// forms. Nested GitLab groups stay in the org part.
func parseStandardGitURL(url string) (string, string, error) {
	var pathPart string

	switch {
	case strings.Contains(url, "://"):
		_, rest, _ := strings.Cut(url, "://")
		_, after, ok := strings.Cut(rest, "/")
		if !ok {
			return "", "", fmt.Errorf("no repository path in URL: %s", url)
		}
		pathPart = after
	case strings.Contains(url, "@") && strings.Contains(url, ":"):
		parts := strings.SplitN(url, ":", 2) //nolint:mnd // host:path
		pathPart = parts[1]
	default:
		return "", "", fmt.Errorf("invalid git URL: %s", url)
	}

	pathPart = strings.Trim(pathPart, "/")
	idx := strings.LastIndex(pathPart, "/")
	if idx <= 0 || idx == len(pathPart)-1 {
		return "", "", fmt.Errorf("cannot extract org/repo from URL: %s", url)
	}

	return pathPart[:idx], pathPart[idx+1:], nil
}

// pushUsername is the basic-auth user paired with an access token when pushing.
func pushUsername(providerType string) string {
	switch providerType {
	case providerGitLab:
		return gitLabPushUser
	case providerAzureDevOps:
		return azureDevOpsPushUser
	default:
		return gitHubPushUser
	}
}
