package tracker

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// DefaultTimeout bounds a single remote call when the caller does not choose
// a limit.
const DefaultTimeout = 30 * time.Second

// Resilient wraps a Tracker with a per-call timeout. Calls are never
// retried: a timed-out call surfaces as a plain error and the sync loop's
// per-item failure handling takes over.
type Resilient struct {
	inner Tracker
	limit time.Duration
}

// NewResilient decorates a tracker with a per-call time limit. A
// non-positive limit falls back to DefaultTimeout.
func NewResilient(inner Tracker, limit time.Duration) *Resilient {
	if limit <= 0 {
		limit = DefaultTimeout
	}
	return &Resilient{inner: inner, limit: limit}
}

func (r *Resilient) Query(ctx context.Context, wiql string) ([]ItemRef, error) {
	t := timeout.New[[]ItemRef](timeout.Config{DefaultTimeout: r.limit})
	return t.Execute(ctx, r.limit, func(ctx context.Context) ([]ItemRef, error) {
		return r.inner.Query(ctx, wiql)
	})
}

func (r *Resilient) GetItem(ctx context.Context, id int) (*workitem.WorkItem, error) {
	t := timeout.New[*workitem.WorkItem](timeout.Config{DefaultTimeout: r.limit})
	return t.Execute(ctx, r.limit, func(ctx context.Context) (*workitem.WorkItem, error) {
		return r.inner.GetItem(ctx, id)
	})
}

func (r *Resilient) Relations(ctx context.Context, id int) ([]workitem.Relation, error) {
	t := timeout.New[[]workitem.Relation](timeout.Config{DefaultTimeout: r.limit})
	return t.Execute(ctx, r.limit, func(ctx context.Context) ([]workitem.Relation, error) {
		return r.inner.Relations(ctx, id)
	})
}

// CurrentSprint delegates to the inner tracker when it can resolve sprints,
// so the decorator preserves the optional capability.
func (r *Resilient) CurrentSprint(ctx context.Context) (*workitem.Sprint, error) {
	resolver, ok := r.inner.(SprintResolver)
	if !ok {
		return nil, ErrNotSupported
	}
	t := timeout.New[*workitem.Sprint](timeout.Config{DefaultTimeout: r.limit})
	return t.Execute(ctx, r.limit, func(ctx context.Context) (*workitem.Sprint, error) {
		return resolver.CurrentSprint(ctx)
	})
}
