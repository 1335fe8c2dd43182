package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
)

// GitHubNotifier posts notifications as comments on a GitHub issue or
// pull request.
type GitHubNotifier struct {
	client *github.Client
	owner  string
	repo   string
	number int
}

var _ Notifier = (*GitHubNotifier)(nil)

// NewGitHubNotifier creates a notifier that comments on owner/repo#number.
// baseURL can be empty for github.com or a custom URL for GitHub Enterprise.
func NewGitHubNotifier(repo string, number int, token, baseURL string) (*GitHubNotifier, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repo must be owner/repo, got %q", repo)
	}

	client := github.NewClient(nil).WithAuthToken(token)
	if baseURL != "" {
		var err error
		client, err = github.NewClient(nil).WithAuthToken(token).WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("create github enterprise client: %w", err)
		}
	}

	return &GitHubNotifier{
		client: client,
		owner:  owner,
		repo:   name,
		number: number,
	}, nil
}

// Notify posts a comment on the configured issue/PR.
func (g *GitHubNotifier) Notify(ctx context.Context, message string) error {
	comment := &github.IssueComment{
		Body: github.String(fmt.Sprintf("**[gantry]** %s", message)),
	}
	_, _, err := g.client.Issues.CreateComment(ctx, g.owner, g.repo, g.number, comment)
	if err != nil {
		return fmt.Errorf("post comment on #%d: %w", g.number, err)
	}
	return nil
}
