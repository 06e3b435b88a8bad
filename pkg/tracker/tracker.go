// Package tracker defines the remote work-item tracker boundary. The sync
// and recommendation layers speak only to these interfaces; concrete
// implementations live in subpackages.
package tracker

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// ErrNotSupported indicates an optional tracker capability is not available
// on this implementation.
var ErrNotSupported = errors.New("tracker does not support this operation")

// ItemRef is a work-item reference returned by a query. Queries return
// references only; full payloads come from GetItem.
type ItemRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Tracker is the remote work-item tracker. Implementations perform no
// retries; failure policy belongs to the caller.
type Tracker interface {
	// Query runs a WIQL query and returns matching item references.
	Query(ctx context.Context, wiql string) ([]ItemRef, error)
	// GetItem fetches the full payload for one work item.
	GetItem(ctx context.Context, id int) (*workitem.WorkItem, error)
	// Relations fetches the link set for one work item.
	Relations(ctx context.Context, id int) ([]workitem.Relation, error)
}

// SprintResolver is an optional capability: resolving the team's current
// iteration with its date bounds.
type SprintResolver interface {
	CurrentSprint(ctx context.Context) (*workitem.Sprint, error)
}
