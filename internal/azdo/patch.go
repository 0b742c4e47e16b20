package azdo

import (
	"fmt"
	"strings"
)

// Field reference names used in patch documents and the mapper's field table.
const (
	fieldTitle         = "System.Title"
	fieldDescription   = "System.Description"
	fieldState         = "System.State"
	fieldAssignedTo    = "System.AssignedTo"
	fieldWorkItemType  = "System.WorkItemType"
	fieldTags          = "System.Tags"
	fieldTeamProject   = "System.TeamProject"
	fieldCreatedDate   = "System.CreatedDate"
	fieldChangedDate   = "System.ChangedDate"
	fieldStoryPoints   = "Microsoft.VSTS.Scheduling.StoryPoints"
	fieldRemainingWork = "Microsoft.VSTS.Scheduling.RemainingWork"
)

// hierarchyReverseRel marks the current item as the child of the referenced
// item. The forward kind would invert the hierarchy, so it is never emitted.
const hierarchyReverseRel = "System.LinkTypes.Hierarchy-Reverse"

// Operation is a single entry in a JSON Patch document. The tracker applies
// the whole document atomically.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// relationValue is the value payload of a relation-add operation.
type relationValue struct {
	Rel string `json:"rel"`
	URL string `json:"url"`
}

func fieldOp(op, refName string, value any) Operation {
	return Operation{Op: op, Path: "/fields/" + refName, Value: value}
}

// parentRelationOp builds the relation-add operation that makes the item
// being patched a child of parentID.
func parentRelationOp(orgURL string, parentID int) Operation {
	return Operation{
		Op:   "add",
		Path: "/relations/-",
		Value: relationValue{
			Rel: hierarchyReverseRel,
			URL: fmt.Sprintf("%s/_apis/wit/workItems/%d", strings.TrimRight(orgURL, "/"), parentID),
		},
	}
}

// BuildCreateDocument translates a field bag into the ordered patch document
// for a create. Title comes first and is mandatory; optional fields are
// emitted only when set, never as explicit nulls; tags are joined with ";";
// a parent link, when requested, is appended last.
func BuildCreateDocument(f CreateFields, parentID *int, orgURL string) ([]Operation, error) {
	if strings.TrimSpace(f.Title) == "" {
		return nil, ErrTitleRequired
	}

	ops := []Operation{fieldOp("add", fieldTitle, f.Title)}
	if f.Description != "" {
		ops = append(ops, fieldOp("add", fieldDescription, f.Description))
	}
	if f.AssignedTo != "" {
		ops = append(ops, fieldOp("add", fieldAssignedTo, f.AssignedTo))
	}
	if f.StoryPoints != nil {
		ops = append(ops, fieldOp("add", fieldStoryPoints, *f.StoryPoints))
	}
	if f.RemainingWork != nil {
		ops = append(ops, fieldOp("add", fieldRemainingWork, *f.RemainingWork))
	}
	if tags := joinTags(f.Tags); tags != "" {
		ops = append(ops, fieldOp("add", fieldTags, tags))
	}
	if parentID != nil {
		ops = append(ops, parentRelationOp(orgURL, *parentID))
	}
	return ops, nil
}

// FieldChanges describes an update. Nil pointers leave a field untouched.
type FieldChanges struct {
	Title         *string
	Description   *string
	State         *string
	AssignedTo    *string
	StoryPoints   *float64
	RemainingWork *float64
	Tags          []string
}

// BuildUpdateDocument translates a change set into replace operations in the
// same fixed field order as creation. An empty document is a valid no-op
// input for the tracker but callers usually treat it as "nothing to do".
func BuildUpdateDocument(c FieldChanges) []Operation {
	var ops []Operation
	if c.Title != nil {
		ops = append(ops, fieldOp("replace", fieldTitle, *c.Title))
	}
	if c.Description != nil {
		ops = append(ops, fieldOp("replace", fieldDescription, *c.Description))
	}
	if c.State != nil {
		ops = append(ops, fieldOp("replace", fieldState, *c.State))
	}
	if c.AssignedTo != nil {
		ops = append(ops, fieldOp("replace", fieldAssignedTo, *c.AssignedTo))
	}
	if c.StoryPoints != nil {
		ops = append(ops, fieldOp("replace", fieldStoryPoints, *c.StoryPoints))
	}
	if c.RemainingWork != nil {
		ops = append(ops, fieldOp("replace", fieldRemainingWork, *c.RemainingWork))
	}
	if tags := joinTags(c.Tags); tags != "" {
		ops = append(ops, fieldOp("replace", fieldTags, tags))
	}
	return ops
}

// joinTags renders a tag list as the tracker's semicolon-joined form,
// dropping empty entries.
func joinTags(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "; ")
}
