package workitem

// RelationKind classifies a link between two work items.
type RelationKind string

const (
	RelationPredecessor RelationKind = "predecessor"
	RelationSuccessor   RelationKind = "successor"
	RelationParent      RelationKind = "parent"
	RelationChild       RelationKind = "child"
	RelationRelated     RelationKind = "related"
)

// Relation is a directed link from one work item to another.
type Relation struct {
	Kind     RelationKind `json:"kind"`
	TargetID int          `json:"target_id"`
}

// Predecessors filters a relation set down to predecessor links.
func Predecessors(relations []Relation) []Relation {
	var preds []Relation
	for _, r := range relations {
		if r.Kind == RelationPredecessor {
			preds = append(preds, r)
		}
	}
	return preds
}
