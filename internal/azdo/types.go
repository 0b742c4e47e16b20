package azdo

// Wire types for the Azure DevOps work item tracking REST API (api-version 7.0).

// wiqlRequest is the body POSTed to the wiql endpoint.
type wiqlRequest struct {
	Query string `json:"query"`
}

// workItemReference is a single entry in a WIQL result: just the id and a URL.
type workItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// wiqlResponse is the result of executing a WIQL query. Only flat queries are
// issued here, so workItemRelations is never populated.
type wiqlResponse struct {
	QueryType string              `json:"queryType"`
	WorkItems []workItemReference `json:"workItems"`
}

// rawRelation is a relation entry on a raw work item. Rel carries the link
// type reference name (e.g. System.LinkTypes.Hierarchy-Reverse) and URL
// points at the related item.
type rawRelation struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// rawWorkItem is a work item as the tracker returns it: an id plus a
// schema-extensible field bag and optional relations.
type rawWorkItem struct {
	ID        int            `json:"id"`
	Rev       int            `json:"rev,omitempty"`
	Fields    map[string]any `json:"fields"`
	Relations []rawRelation  `json:"relations,omitempty"`
	URL       string         `json:"url,omitempty"`
}

// batchResponse is the result of a batch work item fetch.
type batchResponse struct {
	Count int           `json:"count"`
	Value []rawWorkItem `json:"value"`
}
