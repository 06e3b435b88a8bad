package azure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
	"github.com/felixgeelhaar/sprintkit/pkg/tracker"
)

// Config holds the connection settings for one Azure DevOps project.
type Config struct {
	// Organization is the organization name or a full base URL.
	Organization string
	// Project is the project name.
	Project string
	// Team optionally names the team whose iterations resolve the current
	// sprint. Empty uses the project default team.
	Team string
	// PAT is the personal access token.
	PAT string
}

// Client talks to the Azure DevOps REST API. It performs no retries; wrap it
// in tracker.NewResilient for per-call timeouts.
type Client struct {
	project    string
	team       string
	pat        string
	baseURL    string
	httpClient *http.Client
}

// NewClient validates the credentials all-present-or-fail and returns a
// ready client. No network call happens here.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Organization == "" || cfg.Project == "" || cfg.PAT == "" {
		return nil, fmt.Errorf("organization, project, and access token are required: %w", workitem.ErrMissingCredentials)
	}

	baseURL := cfg.Organization
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = fmt.Sprintf("https://dev.azure.com/%s", baseURL)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		project: cfg.Project,
		team:    cfg.Team,
		pat:     cfg.PAT,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}, nil
}

// Query runs a WIQL query and returns the matching item references.
func (c *Client) Query(ctx context.Context, wiql string) ([]tracker.ItemRef, error) {
	path := fmt.Sprintf("/%s/_apis/wit/wiql", url.PathEscape(c.project))
	respBody, err := c.doRequest(ctx, http.MethodPost, path, wiqlRequest{Query: wiql})
	if err != nil {
		return nil, fmt.Errorf("WIQL query failed: %w", err)
	}

	var resp wiqlResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse WIQL response: %w", err)
	}

	refs := make([]tracker.ItemRef, len(resp.WorkItems))
	for i, ref := range resp.WorkItems {
		refs[i] = tracker.ItemRef{ID: ref.ID, URL: ref.URL}
	}
	return refs, nil
}

// GetItem fetches one work item with its relations expanded.
func (c *Client) GetItem(ctx context.Context, id int) (*workitem.WorkItem, error) {
	resp, err := c.fetchItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapWorkItem(resp), nil
}

// Relations fetches the link set of one work item.
func (c *Client) Relations(ctx context.Context, id int) ([]workitem.Relation, error) {
	resp, err := c.fetchItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapRelations(resp.Relations), nil
}

// CurrentSprint resolves the team's current iteration. It implements the
// optional tracker.SprintResolver capability.
func (c *Client) CurrentSprint(ctx context.Context) (*workitem.Sprint, error) {
	teamSegment := ""
	if c.team != "" {
		teamSegment = "/" + url.PathEscape(c.team)
	}
	path := fmt.Sprintf("/%s%s/_apis/work/teamsettings/iterations?$timeframe=current",
		url.PathEscape(c.project), teamSegment)

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current iteration: %w", err)
	}

	var resp iterationsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse iterations response: %w", err)
	}
	if len(resp.Value) == 0 {
		return nil, fmt.Errorf("no current iteration: %w", workitem.ErrNotFound)
	}

	it := resp.Value[0]
	return &workitem.Sprint{
		Name:      it.Name,
		Path:      it.Path,
		StartDate: parseTime(it.Attributes.StartDate),
		EndDate:   parseTime(it.Attributes.FinishDate),
	}, nil
}

func (c *Client) fetchItem(ctx context.Context, id int) (workItemResponse, error) {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/%d?$expand=relations", url.PathEscape(c.project), id)
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return workItemResponse{}, fmt.Errorf("failed to fetch work item %d: %w", id, err)
	}

	var resp workItemResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return workItemResponse{}, fmt.Errorf("failed to parse work item %d: %w", id, err)
	}
	return resp, nil
}

// doRequest performs an authenticated request and returns the raw body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	reqURL := c.baseURL + path + separator + "api-version=" + apiVersion

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Basic auth with empty username and the PAT as password.
	auth := base64.StdEncoding.EncodeToString([]byte(":" + c.pat))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("API error %d: %w", resp.StatusCode, workitem.ErrAuthFailed)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("API error %d: %w", resp.StatusCode, workitem.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func mapWorkItem(resp workItemResponse) *workitem.WorkItem {
	f := resp.Fields
	item := &workitem.WorkItem{
		ID:               resp.ID,
		Title:            f.Title,
		Type:             workitem.Type(f.WorkItemType),
		State:            workitem.State(f.State),
		Priority:         f.Priority,
		StoryPoints:      f.StoryPoints,
		RemainingWork:    f.RemainingWork,
		CompletedWork:    f.CompletedWork,
		OriginalEstimate: f.OriginalEstimate,
		Tags:             workitem.ParseTags(f.Tags),
		IterationPath:    f.IterationPath,
		URL:              resp.URL,
		CreatedDate:      parseTime(f.CreatedDate),
		ChangedDate:      parseTime(f.ChangedDate),
	}
	if f.AssignedTo != nil {
		item.Assignee = f.AssignedTo.DisplayName
	}
	return item
}

var relationKinds = map[string]workitem.RelationKind{
	relPredecessor: workitem.RelationPredecessor,
	relSuccessor:   workitem.RelationSuccessor,
	relParent:      workitem.RelationParent,
	relChild:       workitem.RelationChild,
	relRelated:     workitem.RelationRelated,
}

func mapRelations(rels []relation) []workitem.Relation {
	var out []workitem.Relation
	for _, r := range rels {
		kind, ok := relationKinds[r.Rel]
		if !ok {
			continue
		}
		id, ok := trailingID(r.URL)
		if !ok {
			continue
		}
		out = append(out, workitem.Relation{Kind: kind, TargetID: id})
	}
	return out
}

// trailingID extracts the numeric work-item id from the end of an API URL.
func trailingID(u string) (int, bool) {
	idx := strings.LastIndex(u, "/")
	if idx == -1 || idx == len(u)-1 {
		return 0, false
	}
	id, err := strconv.Atoi(u[idx+1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseTime reads the tracker's ISO8601 timestamps, tolerating absent or
// malformed values as the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
