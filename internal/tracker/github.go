package tracker

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/nomadicsynth/orp/pkg/models"
)

// GitHubConfig holds the settings for the GitHub-backed work-item store.
// The token never lives in a config file; all settings come from the
// environment.
type GitHubConfig struct {
	// Token authenticates API calls.
	Token string `env:"GITHUB_TOKEN,required"`
	// Repository is the owner/repo the experiment issues live in.
	Repository string `env:"GITHUB_REPOSITORY" envDefault:"nomadicsynth/open-research-pipeline"`
	// BaseURL points at a GitHub Enterprise API root when set.
	BaseURL string `env:"GITHUB_API_URL"`
}

// Split returns the owner and repository name.
func (c *GitHubConfig) Split() (owner, name string, err error) {
	parts := strings.SplitN(c.Repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("GITHUB_REPOSITORY must be in owner/repo form, got %q", c.Repository)
	}
	return parts[0], parts[1], nil
}

// GitHubConfigFromEnv reads the tracker settings from the environment.
func GitHubConfigFromEnv() (*GitHubConfig, error) {
	cfg, err := env.ParseAs[GitHubConfig]()
	if err != nil {
		return nil, fmt.Errorf("read tracker settings: %w", err)
	}
	return &cfg, nil
}

// GitHubStore implements WorkItemStore over the GitHub issues API.
type GitHubStore struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubStore creates a store for the configured repository.
func NewGitHubStore(ctx context.Context, cfg *GitHubConfig) (*GitHubStore, error) {
	owner, repo, err := cfg.Split()
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	))
	client := github.NewClient(httpClient)
	if cfg.BaseURL != "" {
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configure enterprise URL: %w", err)
		}
	}

	return &GitHubStore{client: client, owner: owner, repo: repo}, nil
}

// GetItem fetches an issue as a work-item snapshot.
func (s *GitHubStore) GetItem(ctx context.Context, id int) (*models.WorkItem, error) {
	issue, _, err := s.client.Issues.Get(ctx, s.owner, s.repo, id)
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	return itemFromIssue(issue), nil
}

// ListItems returns issues in the given state carrying all of the given
// labels, following pagination.
func (s *GitHubStore) ListItems(ctx context.Context, state string, labels []string) ([]*models.WorkItem, error) {
	opts := &github.IssueListByRepoOptions{
		State:       state,
		Labels:      labels,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var items []*models.WorkItem
	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues: %w", err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			items = append(items, itemFromIssue(issue))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return items, nil
}

// Assign sets the issue's assignee.
func (s *GitHubStore) Assign(ctx context.Context, id int, login string) error {
	_, _, err := s.client.Issues.AddAssignees(ctx, s.owner, s.repo, id, []string{login})
	if err != nil {
		return fmt.Errorf("assign issue %d to %s: %w", id, login, err)
	}
	return nil
}

// Unassign removes the login from the issue's assignees.
func (s *GitHubStore) Unassign(ctx context.Context, id int, login string) error {
	_, _, err := s.client.Issues.RemoveAssignees(ctx, s.owner, s.repo, id, []string{login})
	if err != nil {
		return fmt.Errorf("unassign issue %d from %s: %w", id, login, err)
	}
	return nil
}

// EnsureLabel creates the label with the given color if absent.
func (s *GitHubStore) EnsureLabel(ctx context.Context, name, color string) error {
	_, resp, err := s.client.Issues.GetLabel(ctx, s.owner, s.repo, name)
	if err == nil {
		return nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("get label %s: %w", name, err)
	}

	_, _, err = s.client.Issues.CreateLabel(ctx, s.owner, s.repo, &github.Label{
		Name:  github.Ptr(name),
		Color: github.Ptr(color),
	})
	if err != nil {
		return fmt.Errorf("create label %s: %w", name, err)
	}
	return nil
}

// AddLabel attaches a label to the issue.
func (s *GitHubStore) AddLabel(ctx context.Context, id int, name string) error {
	_, _, err := s.client.Issues.AddLabelsToIssue(ctx, s.owner, s.repo, id, []string{name})
	if err != nil {
		return fmt.Errorf("add label %s to issue %d: %w", name, id, err)
	}
	return nil
}

// RemoveLabel detaches a label from the issue.
func (s *GitHubStore) RemoveLabel(ctx context.Context, id int, name string) error {
	_, err := s.client.Issues.RemoveLabelForIssue(ctx, s.owner, s.repo, id, name)
	if err != nil {
		return fmt.Errorf("remove label %s from issue %d: %w", name, id, err)
	}
	return nil
}

// Comment appends a comment to the issue.
func (s *GitHubStore) Comment(ctx context.Context, id int, body string) error {
	_, _, err := s.client.Issues.CreateComment(ctx, s.owner, s.repo, id, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("comment on issue %d: %w", id, err)
	}
	return nil
}

// itemFromIssue converts a GitHub issue into a work-item snapshot.
func itemFromIssue(issue *github.Issue) *models.WorkItem {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	return &models.WorkItem{
		ID:       issue.GetNumber(),
		Title:    issue.GetTitle(),
		Body:     issue.GetBody(),
		Labels:   labels,
		Assignee: issue.GetAssignee().GetLogin(),
		State:    issue.GetState(),
	}
}

// Verify GitHubStore implements WorkItemStore at compile time.
var _ WorkItemStore = (*GitHubStore)(nil)
