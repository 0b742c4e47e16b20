package azdo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	apiVersion       = "7.0"
	contentTypeJSON  = "application/json"
	contentTypePatch = "application/json-patch+json"

	// createMaxAttempts caps create retries at one. Creates carry no
	// idempotency key, so a retry after an ambiguous failure can duplicate
	// the item; callers accept that risk for a single retry only.
	createMaxAttempts = 2
)

// Client is the work item gateway: it turns typed requests into WIQL and
// JSON Patch, maps tracker responses back into WorkItem records, and applies
// the transport's retry policy. One long-lived Client is shared per session;
// all methods are safe for concurrent use.
type Client struct {
	creds     Credentials
	transport *Transport
}

// New validates the credentials and builds a gateway with the default
// transport. Only the URL shape is checked up front; token validity is
// established by the first call that uses it.
func New(creds Credentials) (*Client, error) {
	if !creds.IsValid() {
		return nil, ErrNotConfigured
	}
	if err := creds.ValidateURL(); err != nil {
		return nil, err
	}
	return &Client{creds: creds, transport: NewTransport(creds)}, nil
}

// NewWithTransport builds a gateway over a caller-supplied transport.
func NewWithTransport(creds Credentials, t *Transport) (*Client, error) {
	c, err := New(creds)
	if err != nil {
		return nil, err
	}
	c.transport = t
	return c, nil
}

func (c *Client) projectURL(format string, args ...any) string {
	prefix := fmt.Sprintf("%s/%s/_apis/wit", c.creds.baseURL(), url.PathEscape(c.creds.Project))
	return prefix + fmt.Sprintf(format, args...)
}

// Create builds the patch document and POSTs it to the type-scoped creation
// endpoint. When a parent is requested the relation is embedded in the same
// document; if the tracker rejects the embedded relation with a non-transient
// 4xx, the create is re-issued without it and the link is made by a separate
// PATCH. A link failure after a successful create surfaces as
// *PartialSuccessError so the caller can remediate manually.
func (c *Client) Create(ctx context.Context, workItemType string, fields CreateFields, parentID *int) (*WorkItem, error) {
	doc, err := BuildCreateDocument(fields, parentID, c.creds.baseURL())
	if err != nil {
		return nil, err
	}
	item, err := c.postCreate(ctx, workItemType, doc)
	if err != nil {
		var transportErr *TransportError
		rejected := errors.As(err, &transportErr) &&
			transportErr.Status >= 400 && transportErr.Status < 500 &&
			transportErr.Status != http.StatusTooManyRequests
		if parentID == nil || !rejected {
			return nil, err
		}
		log.Warn().Int("status_code", transportErr.Status).Msg("Tracker rejected embedded parent relation, falling back to create-then-link")
		return c.createThenLink(ctx, workItemType, fields, *parentID)
	}
	return item, nil
}

func (c *Client) postCreate(ctx context.Context, workItemType string, doc []Operation) (*WorkItem, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestCreate, err)
	}
	createURL := c.projectURL("/workitems/$%s?api-version=%s", url.PathEscape(workItemType), apiVersion)
	respBody, err := c.transport.SendLimited(ctx, http.MethodPost, createURL, contentTypePatch, body, createMaxAttempts)
	if err != nil {
		return nil, err
	}
	return decodeWorkItem(respBody)
}

func (c *Client) createThenLink(ctx context.Context, workItemType string, fields CreateFields, parentID int) (*WorkItem, error) {
	doc, err := BuildCreateDocument(fields, nil, c.creds.baseURL())
	if err != nil {
		return nil, err
	}
	item, err := c.postCreate(ctx, workItemType, doc)
	if err != nil {
		return nil, err
	}

	linked, err := c.Update(ctx, item.ID, []Operation{parentRelationOp(c.creds.baseURL(), parentID)})
	if err != nil {
		log.Error().Err(err).Int("id", item.ID).Int("parent_id", parentID).Msg("Work item created but parent link failed")
		return item, &PartialSuccessError{ID: item.ID, ParentID: parentID, Err: err}
	}
	return linked, nil
}

// ParentRelationOp returns the relation-add operation that links the patched
// item under parentID, resolved against this client's organization URL. It is
// meant to be appended to an Update document.
func (c *Client) ParentRelationOp(parentID int) Operation {
	return parentRelationOp(c.creds.baseURL(), parentID)
}

// Update PATCHes the given operations verbatim and returns the re-mapped
// result. No local optimistic mutation is performed; every change round-trips
// through the tracker.
func (c *Client) Update(ctx context.Context, id int, ops []Operation) (*WorkItem, error) {
	body, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestCreate, err)
	}
	updateURL := c.projectURL("/workitems/%d?api-version=%s", id, apiVersion)
	respBody, err := c.transport.Send(ctx, http.MethodPatch, updateURL, contentTypePatch, body)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return decodeWorkItem(respBody)
}

// Get fetches and maps a single work item, relations included.
func (c *Client) Get(ctx context.Context, id int) (*WorkItem, error) {
	getURL := c.projectURL("/workitems/%d?$expand=relations&api-version=%s", id, apiVersion)
	respBody, err := c.transport.Send(ctx, http.MethodGet, getURL, "", nil)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return decodeWorkItem(respBody)
}

// List executes the filter's WIQL query, batch-fetches the matching ids up to
// the filter's max results, and maps each item. An empty candidate set
// short-circuits to an empty list: the tracker rejects a batch fetch with
// zero ids. SearchText, when set, is applied as a case-insensitive substring
// filter over title and description after the fetch.
func (c *Client) List(ctx context.Context, f Filter) ([]WorkItem, error) {
	query := wiqlRequest{Query: BuildWIQL(c.creds.Project, f)}
	queryBody, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestCreate, err)
	}
	wiqlURL := c.projectURL("/wiql?api-version=%s", apiVersion)
	respBody, err := c.transport.Send(ctx, http.MethodPost, wiqlURL, contentTypeJSON, queryBody)
	if err != nil {
		return nil, err
	}

	var result wiqlResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseDecode, err)
	}

	limit := f.EffectiveMaxResults()
	ids := make([]string, 0, limit)
	for _, ref := range result.WorkItems {
		if len(ids) == limit {
			break
		}
		ids = append(ids, strconv.Itoa(ref.ID))
	}
	if len(ids) == 0 {
		log.Debug().Msg("WIQL query matched no work items")
		return []WorkItem{}, nil
	}

	batchURL := c.projectURL("/workitems?ids=%s&$expand=relations&api-version=%s", strings.Join(ids, ","), apiVersion)
	batchBody, err := c.transport.Send(ctx, http.MethodGet, batchURL, "", nil)
	if err != nil {
		return nil, err
	}
	var batch batchResponse
	if err := json.Unmarshal(batchBody, &batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseDecode, err)
	}

	items := make([]WorkItem, 0, len(batch.Value))
	for _, raw := range batch.Value {
		items = append(items, mapWorkItem(raw))
	}
	if f.SearchText != "" {
		items = filterBySearchText(items, f.SearchText)
	}
	log.Debug().Int("count", len(items)).Msg("Listed work items")
	return items, nil
}

// filterBySearchText keeps items whose title or description contains the
// needle, case-insensitively. WIQL has no free-text clause in this design, so
// the filter runs post-fetch.
func filterBySearchText(items []WorkItem, needle string) []WorkItem {
	lowered := strings.ToLower(needle)
	kept := make([]WorkItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), lowered) ||
			strings.Contains(strings.ToLower(item.Description), lowered) {
			kept = append(kept, item)
		}
	}
	return kept
}

func decodeWorkItem(body []byte) (*WorkItem, error) {
	var raw rawWorkItem
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseDecode, err)
	}
	item := mapWorkItem(raw)
	return &item, nil
}

func notFoundOr(err error, id int) error {
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: id %d", ErrWorkItemNotFound, id)
	}
	return err
}
