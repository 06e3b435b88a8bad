// Package wiql builds work-item queries in the tracker's SQL-like query
// language. Queries are assembled through a fluent builder and rendered to
// the exact textual form the tracker's query endpoint consumes.
package wiql

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/sprintkit/pkg/domain/workitem"
)

// Field reference names recognized by the tracker.
const (
	FieldID            = "System.Id"
	FieldTitle         = "System.Title"
	FieldState         = "System.State"
	FieldWorkItemType  = "System.WorkItemType"
	FieldAssignedTo    = "System.AssignedTo"
	FieldTags          = "System.Tags"
	FieldIterationPath = "System.IterationPath"
	FieldChangedDate   = "System.ChangedDate"
	FieldCreatedDate   = "System.CreatedDate"
	FieldPriority      = "Microsoft.VSTS.Common.Priority"
)

// Me is the assignment token the tracker resolves to the authenticated
// identity.
const Me = "@Me"

const dateLayout = "2006-01-02"

// Query accumulates select fields, predicates, and an optional sort order.
// The zero value is not usable; construct with New.
type Query struct {
	fields  []string
	where   []string
	orderBy string
}

// New creates a query selecting the given fields. With no fields it selects
// [System.Id], which is all the query endpoint returns references for anyway.
func New(fields ...string) *Query {
	if len(fields) == 0 {
		fields = []string{FieldID}
	}
	return &Query{fields: fields}
}

// WhereType restricts results to the given work-item types.
func (q *Query) WhereType(types ...workitem.Type) *Query {
	if len(types) == 0 {
		return q
	}
	values := make([]string, len(types))
	for i, t := range types {
		values[i] = string(t)
	}
	return q.whereIn(FieldWorkItemType, values)
}

// WhereState restricts results to the given states.
func (q *Query) WhereState(states ...workitem.State) *Query {
	if len(states) == 0 {
		return q
	}
	values := make([]string, len(states))
	for i, s := range states {
		values[i] = string(s)
	}
	return q.whereIn(FieldState, values)
}

// WhereIteration restricts results to one iteration path.
func (q *Query) WhereIteration(path string) *Query {
	q.where = append(q.where, fmt.Sprintf("[%s] = %s", FieldIterationPath, quote(path)))
	return q
}

// WhereChangedSince restricts results to items changed on or after the given
// day. The tracker compares dates, so the predicate renders date-only.
func (q *Query) WhereChangedSince(t time.Time) *Query {
	q.where = append(q.where, fmt.Sprintf("[%s] >= '%s'", FieldChangedDate, t.Format(dateLayout)))
	return q
}

// WhereAssignedTo restricts results by assignment. The @Me token passes
// through unquoted; any other value, including the empty string for
// unassigned items, is quoted.
func (q *Query) WhereAssignedTo(who string) *Query {
	value := quote(who)
	if who == Me {
		value = who
	}
	q.where = append(q.where, fmt.Sprintf("[%s] = %s", FieldAssignedTo, value))
	return q
}

// WhereTagContains restricts results to items whose tag list contains the
// given token.
func (q *Query) WhereTagContains(token string) *Query {
	q.where = append(q.where, fmt.Sprintf("[%s] CONTAINS %s", FieldTags, quote(token)))
	return q
}

// OrderByAsc sorts results ascending by the given field.
func (q *Query) OrderByAsc(field string) *Query {
	q.orderBy = fmt.Sprintf("[%s] ASC", field)
	return q
}

// OrderByDesc sorts results descending by the given field.
func (q *Query) OrderByDesc(field string) *Query {
	q.orderBy = fmt.Sprintf("[%s] DESC", field)
	return q
}

// String renders the query text.
func (q *Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, f := range q.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "[%s]", f)
	}
	b.WriteString(" FROM WorkItems")
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	return b.String()
}

func (q *Query) whereIn(field string, values []string) *Query {
	if len(values) == 1 {
		q.where = append(q.where, fmt.Sprintf("[%s] = %s", field, quote(values[0])))
		return q
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	q.where = append(q.where, fmt.Sprintf("[%s] IN (%s)", field, strings.Join(quoted, ", ")))
	return q
}

// quote wraps a value in single quotes, doubling any embedded quote so
// iteration paths like "Team's Sprint" cannot break the query text.
func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
