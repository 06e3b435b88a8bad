// Package azure implements the tracker interfaces against the Azure DevOps
// REST API.
package azure

import "time"

const (
	// DefaultTimeout bounds the underlying HTTP client.
	DefaultTimeout = 30 * time.Second

	apiVersion = "7.0"
)

// Relation reference names used by the tracker's link types.
const (
	relPredecessor = "System.LinkTypes.Dependency-Reverse"
	relSuccessor   = "System.LinkTypes.Dependency-Forward"
	relParent      = "System.LinkTypes.Hierarchy-Reverse"
	relChild       = "System.LinkTypes.Hierarchy-Forward"
	relRelated     = "System.LinkTypes.Related"
)

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	QueryType string    `json:"queryType"`
	AsOf      string    `json:"asOf"`
	WorkItems []itemRef `json:"workItems"`
}

type itemRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type workItemResponse struct {
	ID        int            `json:"id"`
	Rev       int            `json:"rev"`
	URL       string         `json:"url"`
	Fields    workItemFields `json:"fields"`
	Relations []relation     `json:"relations,omitempty"`
}

type workItemFields struct {
	Title            string    `json:"System.Title"`
	State            string    `json:"System.State"`
	WorkItemType     string    `json:"System.WorkItemType"`
	Priority         int       `json:"Microsoft.VSTS.Common.Priority,omitempty"`
	AssignedTo       *identity `json:"System.AssignedTo,omitempty"`
	StoryPoints      float64   `json:"Microsoft.VSTS.Scheduling.StoryPoints,omitempty"`
	RemainingWork    float64   `json:"Microsoft.VSTS.Scheduling.RemainingWork,omitempty"`
	CompletedWork    float64   `json:"Microsoft.VSTS.Scheduling.CompletedWork,omitempty"`
	OriginalEstimate float64   `json:"Microsoft.VSTS.Scheduling.OriginalEstimate,omitempty"`
	Tags             string    `json:"System.Tags,omitempty"` // Semicolon-separated
	IterationPath    string    `json:"System.IterationPath"`
	CreatedDate      string    `json:"System.CreatedDate"`
	ChangedDate      string    `json:"System.ChangedDate"`
}

type identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

type relation struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type iterationsResponse struct {
	Count int         `json:"count"`
	Value []iteration `json:"value"`
}

type iteration struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Path       string              `json:"path"`
	Attributes iterationAttributes `json:"attributes"`
}

type iterationAttributes struct {
	StartDate  string `json:"startDate"`
	FinishDate string `json:"finishDate"`
	TimeFrame  string `json:"timeFrame"`
}
