package azdo

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxResults is the result cap applied when a filter does not set one.
	DefaultMaxResults = 50
	// MaxResultsCap is the hard upper bound on results per list call.
	MaxResultsCap = 200
)

// Filter describes a work item query. Zero-valued fields are omitted from the
// generated WIQL. SearchText is not expressible in WIQL and is applied by the
// gateway as a post-fetch substring filter over title and description.
type Filter struct {
	Type       string
	State      string
	AssignedTo string
	SearchText string
	MaxResults int
}

// EffectiveMaxResults returns the filter's max results, defaulted and clamped.
func (f Filter) EffectiveMaxResults() int {
	if f.MaxResults <= 0 {
		return DefaultMaxResults
	}
	if f.MaxResults > MaxResultsCap {
		return MaxResultsCap
	}
	return f.MaxResults
}

// escapeWIQL doubles single quotes so filter values cannot break out of their
// string literal.
func escapeWIQL(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// BuildWIQL renders a filter as a WIQL query scoped to the given project.
// Results are ordered by id descending; ordering is not configurable.
func BuildWIQL(project string, f Filter) string {
	var b strings.Builder
	b.WriteString("SELECT [System.Id], [System.Title], [System.WorkItemType], [System.State], [System.AssignedTo] ")
	b.WriteString("FROM WorkItems ")
	fmt.Fprintf(&b, "WHERE [System.TeamProject] = '%s'", escapeWIQL(project))
	if f.Type != "" {
		fmt.Fprintf(&b, " AND [System.WorkItemType] = '%s'", escapeWIQL(f.Type))
	}
	if f.State != "" {
		fmt.Fprintf(&b, " AND [System.State] = '%s'", escapeWIQL(f.State))
	}
	if f.AssignedTo != "" {
		fmt.Fprintf(&b, " AND [System.AssignedTo] = '%s'", escapeWIQL(f.AssignedTo))
	}
	b.WriteString(" ORDER BY [System.Id] DESC")
	return b.String()
}
