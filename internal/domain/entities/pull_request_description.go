package entities

import (
	"fmt"
	"regexp"
	"strings"
)

var gitHubProjectPattern = regexp.MustCompile(`(?i)https://github\.com/([^/]+)/([^/?#]+)`)

// PullRequestDescription is the rendered text for one update group.
type PullRequestDescription struct {
	Title         string
	Body          string
	CommitMessage string
}

// NewPullRequestDescription renders the title, body and commit message for a group.
func NewPullRequestDescription(group UpdateGroup) PullRequestDescription {
	var body, commit strings.Builder
	both := func(line string) {
		body.WriteString(line + "\n")
		commit.WriteString(line + "\n")
	}

	recs := group.Recommendations
	var title string

	if group.Key.IsGroup {
		title = fmt.Sprintf("Bump %s with %d updates", group.Key.TitleName, len(recs))
		commit.WriteString(title + "\n\n")

		body.WriteString(fmt.Sprintf("Bumps %s with %d updates:\n", group.Key.TitleName, len(recs)))
		for _, rec := range recs {
			body.WriteString("* " + markdownLink(rec.Dependency.Name, rec.Recommended.ProjectURL) + "\n")
		}
	} else {
		rec := recs[0]
		title = fmt.Sprintf(
			"Bump %s from %s to %s",
			group.Key.TitleName, rec.Dependency.ExistingVersionsString(), rec.Recommended.Version,
		)
		commit.WriteString(title + "\n\n")

		both(fmt.Sprintf(
			"Bumps %s from %s to %s",
			markdownLink(rec.Dependency.Name, rec.Recommended.ProjectURL),
			rec.Dependency.ExistingVersionsString(), rec.Recommended.Version,
		))
	}

	both("")

	for _, rec := range recs {
		if group.Key.IsGroup {
			both(fmt.Sprintf(
				"Updates `%s` from %s to %s",
				rec.Dependency.Name, rec.Dependency.ExistingVersionsString(), rec.Recommended.Version,
			))
		}

		projectURL := rec.Recommended.ProjectURL
		if projectURL == "" {
			continue
		}
		body.WriteString(fmt.Sprintf("- [Project Site](%s)\n", projectURL))

		owner, repo, ok := gitHubRepository(projectURL)
		if !ok {
			continue
		}
		base := "https://github.com/" + owner + "/" + repo
		lowest := rec.Dependency.LowestVersion()
		both(fmt.Sprintf("- [Release notes](%s/releases)", base))
		both(fmt.Sprintf("- [Commits](%s/compare/%s...%s)", base, lowest, rec.Recommended.Version))
		body.WriteString(fmt.Sprintf("- [Diff View](%s/compare/%s..%s)\n", base, lowest, rec.Recommended.Version))
	}

	return PullRequestDescription{
		Title:         title,
		Body:          body.String(),
		CommitMessage: strings.TrimRight(commit.String(), "\n") + "\n",
	}
}

func markdownLink(text, url string) string {
	if url == "" {
		return text
	}
	return "[" + text + "](" + url + ")"
}

func gitHubRepository(projectURL string) (string, string, bool) {
	match := gitHubProjectPattern.FindStringSubmatch(projectURL)
	if match == nil {
		return "", "", false
	}
	repo := strings.TrimSuffix(match[2], ".git")
	if repo == "" {
		return "", "", false
	}
	return match[1], repo, true
}
