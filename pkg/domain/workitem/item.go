// Package workitem defines the core work-item model shared by the sync,
// analytics, and recommendation layers.
package workitem

import (
	"time"
)

// Type categorizes a work item in the remote tracker.
type Type string

const (
	TypeEpic      Type = "Epic"
	TypeFeature   Type = "Feature"
	TypeUserStory Type = "User Story"
	TypeTask      Type = "Task"
	TypeBug       Type = "Bug"
)

// SyncedTypes returns the work-item types the sync engine pulls from the
// tracker. Epics are intentionally excluded: they are planning containers,
// not sprint-level work.
func SyncedTypes() []Type {
	return []Type{TypeFeature, TypeUserStory, TypeTask, TypeBug}
}

// IsValid checks if the type is a recognized value.
func (t Type) IsValid() bool {
	switch t {
	case TypeEpic, TypeFeature, TypeUserStory, TypeTask, TypeBug:
		return true
	}
	return false
}

// String returns the tracker-facing display string of the type.
func (t Type) String() string {
	return string(t)
}

// State is the workflow state of a work item. Tracker process templates may
// define additional states; those pass through under their literal label.
type State string

const (
	StateNew        State = "New"
	StateToDo       State = "To Do"
	StateReady      State = "Ready"
	StateActive     State = "Active"
	StateInProgress State = "In Progress"
	StateResolved   State = "Resolved"
	StateDone       State = "Done"
	StateClosed     State = "Closed"
	StateRemoved    State = "Removed"
)

// OpenStates are the states from which a work item can be picked up as the
// next task.
func OpenStates() []State {
	return []State{StateNew, StateToDo, StateReady}
}

// IsCompleted returns true for states that count toward completion metrics.
func (s State) IsCompleted() bool {
	switch s {
	case StateDone, StateClosed, StateResolved:
		return true
	}
	return false
}

// IsTerminal returns true for states past which an item no longer
// participates in blocker detection.
func (s State) IsTerminal() bool {
	switch s {
	case StateDone, StateClosed, StateResolved, StateRemoved:
		return true
	}
	return false
}

// String returns the tracker-facing display string of the state.
func (s State) String() string {
	return string(s)
}

// DefaultPriority is assumed when the tracker reports no priority.
const DefaultPriority = 3

// Unassigned is the display name used when an item has no assignee.
const Unassigned = "Unassigned"

// WorkItem is a unit of trackable work pulled from the remote tracker.
// RemainingWork, CompletedWork, and OriginalEstimate are hours; the tracker
// does not enforce remaining+completed == original, and no consumer may
// assume it does.
type WorkItem struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Type             Type      `json:"type"`
	State            State     `json:"state"`
	Assignee         string    `json:"assignee,omitempty"`
	Priority         int       `json:"priority,omitempty"`
	StoryPoints      float64   `json:"story_points,omitempty"`
	RemainingWork    float64   `json:"remaining_work,omitempty"`
	CompletedWork    float64   `json:"completed_work,omitempty"`
	OriginalEstimate float64   `json:"original_estimate,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	IterationPath    string    `json:"iteration_path,omitempty"`
	URL              string    `json:"url,omitempty"`
	CreatedDate      time.Time `json:"created_date"`
	ChangedDate      time.Time `json:"changed_date"`
}

// DisplayAssignee returns the assignee display name, or Unassigned when the
// item has none.
func (w WorkItem) DisplayAssignee() string {
	if w.Assignee == "" {
		return Unassigned
	}
	return w.Assignee
}

// EffectivePriority returns the item priority, falling back to
// DefaultPriority when the tracker reported none.
func (w WorkItem) EffectivePriority() int {
	if w.Priority <= 0 {
		return DefaultPriority
	}
	return w.Priority
}

// IsCompleted reports whether the item counts as completed work.
func (w WorkItem) IsCompleted() bool {
	return w.State.IsCompleted()
}

// Category is a cache partition. Bugs share the task partition.
type Category string

const (
	CategoryFeatures Category = "features"
	CategoryStories  Category = "stories"
	CategoryTasks    Category = "tasks"
)

// AllCategories returns every cache partition in stable order.
func AllCategories() []Category {
	return []Category{CategoryFeatures, CategoryStories, CategoryTasks}
}

// IsValid checks if the category is a recognized partition.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFeatures, CategoryStories, CategoryTasks:
		return true
	}
	return false
}

// String returns the directory name of the partition.
func (c Category) String() string {
	return string(c)
}

// CategoryFor maps a work-item type to its cache partition. The boolean is
// false for types that are not cached (epics, unknown types).
func CategoryFor(t Type) (Category, bool) {
	switch t {
	case TypeFeature:
		return CategoryFeatures, true
	case TypeUserStory:
		return CategoryStories, true
	case TypeTask, TypeBug:
		return CategoryTasks, true
	}
	return "", false
}
