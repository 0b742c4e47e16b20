package azdo

import "sort"

// BuildHierarchy partitions a flat work item list into root items and child
// groups keyed by parent id. The pass is type-agnostic and N-tier: only the
// presence of a parent id matters, never the type name. Children whose parent
// is absent from the list stay grouped under that parent id; they never
// become roots here.
//
// Roots and every child group are sorted by id, so any permutation of the
// same input produces an identical Hierarchy. Front-ends may issue multiple
// concurrent list calls and merge results in arbitrary arrival order.
func BuildHierarchy(items []WorkItem) Hierarchy {
	h := Hierarchy{
		Roots:              make([]WorkItem, 0, len(items)),
		ChildrenByParentID: make(map[int][]WorkItem),
	}
	for _, item := range items {
		if item.ParentID == nil {
			h.Roots = append(h.Roots, item)
			continue
		}
		parent := *item.ParentID
		h.ChildrenByParentID[parent] = append(h.ChildrenByParentID[parent], item)
	}

	sort.Slice(h.Roots, func(i, j int) bool { return h.Roots[i].ID < h.Roots[j].ID })
	for parent := range h.ChildrenByParentID {
		group := h.ChildrenByParentID[parent]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}
	return h
}

// OrphanParentIDs returns the parent ids of child groups whose parent does
// not appear anywhere in the hierarchy, sorted ascending. Rendering decisions
// for orphans belong to the front-end.
func (h Hierarchy) OrphanParentIDs() []int {
	known := make(map[int]struct{}, len(h.Roots))
	for _, root := range h.Roots {
		known[root.ID] = struct{}{}
	}
	for _, group := range h.ChildrenByParentID {
		for _, child := range group {
			known[child.ID] = struct{}{}
		}
	}

	var orphans []int
	for parent := range h.ChildrenByParentID {
		if _, ok := known[parent]; !ok {
			orphans = append(orphans, parent)
		}
	}
	sort.Ints(orphans)
	return orphans
}
