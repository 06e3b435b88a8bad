// Package github imports repository issues as work items, so projects
// tracked on a Git host can flow through the same cache and analytics
// pipeline as tracker-managed ones.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Config identifies the repository to import from.
type Config struct {
	Owner string
	Repo  string
	// Token is optional; unauthenticated clients work for public
	// repositories at a reduced rate limit.
	Token string
}

// Importer maps repository issues to work items. Open issues become New
// items, closed ones Closed; an issue labeled bug becomes a Bug, everything
// else a Task.
type Importer struct {
	client *gh.Client
	owner  string
	repo   string
}

// NewImporter creates an importer for one repository.
func NewImporter(ctx context.Context, cfg Config) (*Importer, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, src)
	}
	return &Importer{client: gh.NewClient(httpClient), owner: cfg.Owner, repo: cfg.Repo}, nil
}

// NewImporterWithHTTPClient creates an importer against a custom endpoint.
// Tests use it with httptest servers.
func NewImporterWithHTTPClient(httpClient *http.Client, baseURL, owner, repo string) (*Importer, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set base URL: %w", err)
		}
	}
	return &Importer{client: client, owner: owner, repo: repo}, nil
}

// Import fetches issues updated since the given time and maps them to work
// items. Pull requests are skipped. A zero since imports everything.
func (i *Importer) Import(ctx context.Context, since time.Time) ([]workitem.WorkItem, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	if !since.IsZero() {
		opts.Since = since
	}

	var items []workitem.WorkItem
	for {
		issues, resp, err := i.client.Issues.ListByRepo(ctx, i.owner, i.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for %s/%s: %w", i.owner, i.repo, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			items = append(items, mapIssue(issue))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return items, nil
}

// Priority labels recognized on issues, mirroring common triage schemes.
var priorityLabels = map[string]int{
	"p1": 1,
	"p2": 2,
	"p3": 3,
	"p4": 4,
}

func mapIssue(issue *gh.Issue) workitem.WorkItem {
	item := workitem.WorkItem{
		ID:          issue.GetNumber(),
		Title:       issue.GetTitle(),
		Type:        workitem.TypeTask,
		State:       workitem.StateNew,
		URL:         issue.GetHTMLURL(),
		CreatedDate: issue.GetCreatedAt().Time,
		ChangedDate: issue.GetUpdatedAt().Time,
	}
	if issue.GetState() == "closed" {
		item.State = workitem.StateClosed
	}
	if assignee := issue.GetAssignee(); assignee != nil {
		item.Assignee = assignee.GetLogin()
	}
	if milestone := issue.GetMilestone(); milestone != nil {
		item.IterationPath = milestone.GetTitle()
	}
	for _, label := range issue.Labels {
		name := label.GetName()
		item.Tags = append(item.Tags, name)
		if strings.EqualFold(name, "bug") {
			item.Type = workitem.TypeBug
		}
		if p, ok := priorityLabels[strings.ToLower(name)]; ok {
			item.Priority = p
		}
	}
	return item
}
