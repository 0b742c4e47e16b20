package azdo

import "time"

// WorkItem is the canonical domain record for a trackable unit (story, task,
// bug, test case, ...). Type and State are open strings: both are tracker-
// and organization-defined and are never validated locally. Fields retains
// the raw field bag for round-tripping into detail views.
type WorkItem struct {
	ID            int            `json:"id" yaml:"id"`
	Type          string         `json:"type" yaml:"type"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	State         string         `json:"state,omitempty" yaml:"state,omitempty"`
	AssignedTo    string         `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
	StoryPoints   *float64       `json:"storyPoints,omitempty" yaml:"storyPoints,omitempty"`
	RemainingWork *float64       `json:"remainingWork,omitempty" yaml:"remainingWork,omitempty"`
	ParentID      *int           `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Tags          []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedDate   time.Time      `json:"createdDate,omitempty" yaml:"createdDate,omitempty"`
	ChangedDate   time.Time      `json:"changedDate,omitempty" yaml:"changedDate,omitempty"`
	ProjectID     string         `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	Fields        map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// CreateFields is the field bag accepted by the create operation. Title is
// mandatory; everything else is emitted into the patch document only when set.
type CreateFields struct {
	Title         string
	Description   string
	AssignedTo    string
	StoryPoints   *float64
	RemainingWork *float64
	Tags          []string
}

// Hierarchy is the derived parent/child view over a flat fetch. It is rebuilt
// from scratch on every refresh; there is no incremental update. Child groups
// whose parent id matches no root are orphaned; deciding how to surface them
// is a front-end responsibility.
type Hierarchy struct {
	Roots              []WorkItem
	ChildrenByParentID map[int][]WorkItem
}
