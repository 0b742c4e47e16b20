package azdo

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// mappedFieldNames lists the tracker fields lifted into typed WorkItem
// attributes. Everything else stays verbatim in the Fields bag.
var mappedFieldNames = map[string]struct{}{
	fieldTitle:         {},
	fieldDescription:   {},
	fieldState:         {},
	fieldAssignedTo:    {},
	fieldWorkItemType:  {},
	fieldTags:          {},
	fieldTeamProject:   {},
	fieldCreatedDate:   {},
	fieldChangedDate:   {},
	fieldStoryPoints:   {},
	fieldRemainingWork: {},
}

// mapWorkItem converts a raw tracker item into the domain record. Mapping is
// best-effort: a field of an unexpected shape or a malformed relation
// degrades to the zero value for that attribute rather than failing the item.
func mapWorkItem(raw rawWorkItem) WorkItem {
	item := WorkItem{
		ID:            raw.ID,
		Type:          stringField(raw.Fields, fieldWorkItemType),
		Title:         stringField(raw.Fields, fieldTitle),
		Description:   stringField(raw.Fields, fieldDescription),
		State:         stringField(raw.Fields, fieldState),
		AssignedTo:    identityField(raw.Fields, fieldAssignedTo),
		StoryPoints:   numberField(raw.Fields, fieldStoryPoints),
		RemainingWork: numberField(raw.Fields, fieldRemainingWork),
		Tags:          parseTags(stringField(raw.Fields, fieldTags)),
		CreatedDate:   timeField(raw.Fields, fieldCreatedDate),
		ChangedDate:   timeField(raw.Fields, fieldChangedDate),
		ProjectID:     stringField(raw.Fields, fieldTeamProject),
		ParentID:      parentFromRelations(raw.Relations),
	}

	if len(raw.Fields) > 0 {
		item.Fields = make(map[string]any, len(raw.Fields))
		for name, value := range raw.Fields {
			item.Fields[name] = value
		}
	}
	return item
}

// parseTags splits the tracker's semicolon-joined tag field, trimming each
// entry and dropping empties.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// parentFromRelations scans for a reverse-hierarchy relation and extracts the
// parent id from the trailing numeric segment of its URL. An unexpected URL
// shape yields no parent; a single malformed relation must not abort mapping
// of an otherwise-valid item.
func parentFromRelations(relations []rawRelation) *int {
	for _, rel := range relations {
		if rel.Rel != hierarchyReverseRel {
			continue
		}
		trimmed := strings.TrimRight(rel.URL, "/")
		idx := strings.LastIndex(trimmed, "/")
		if idx < 0 {
			log.Warn().Str("url", rel.URL).Msg("Unexpected parent relation URL shape, treating as no parent")
			return nil
		}
		id, err := strconv.Atoi(trimmed[idx+1:])
		if err != nil || id <= 0 {
			log.Warn().Str("url", rel.URL).Msg("Parent relation URL has no numeric id segment, treating as no parent")
			return nil
		}
		return &id
	}
	return nil
}

func stringField(fields map[string]any, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}

// identityField reads an assignee value, which the tracker returns either as
// a plain display-name string or as an identity object.
func identityField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["displayName"].(string); ok {
			return name
		}
		if name, ok := v["uniqueName"].(string); ok {
			return name
		}
	}
	return ""
}

func numberField(fields map[string]any, name string) *float64 {
	switch v := fields[name].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func timeField(fields map[string]any, name string) time.Time {
	raw, ok := fields[name].(string)
	if !ok || raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	log.Debug().Str("field", name).Str("value", raw).Msg("Could not parse timestamp field")
	return time.Time{}
}
