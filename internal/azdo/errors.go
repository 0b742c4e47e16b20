package azdo

import (
	"errors"
	"fmt"
)

// Sentinel errors for Azure DevOps gateway operations.

// ErrNotConfigured indicates the credentials are incomplete (organization URL,
// project, or PAT missing). Callers must configure before calling.
var ErrNotConfigured = errors.New("Azure DevOps connection is not configured")

// ErrOrganizationURL indicates the organization URL does not match a known
// Azure DevOps URL shape.
var ErrOrganizationURL = errors.New("organization URL is not a valid Azure DevOps URL")

// ErrTitleRequired indicates a create was attempted without a title. This is a
// caller contract violation and is raised before any network call.
var ErrTitleRequired = errors.New("work item title is required")

// ErrWorkItemNotFound indicates the tracker returned 404 for a single-item fetch.
var ErrWorkItemNotFound = errors.New("work item not found")

// ErrRequestCreate indicates an error occurred while creating the HTTP request.
var ErrRequestCreate = errors.New("failed to create HTTP request")

// ErrRequestExecute indicates an error occurred while executing the HTTP request.
var ErrRequestExecute = errors.New("failed to execute HTTP request")

// ErrResponseDecode indicates the response body could not be decoded into the
// expected shape.
var ErrResponseDecode = errors.New("failed to decode response body")

// TransportError is returned when the tracker answers with a non-2xx status
// after the retry budget is exhausted (or immediately for non-retryable
// statuses). Body carries the tracker-provided message text for display.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("Azure DevOps returned status %d", e.Status)
	}
	return fmt.Sprintf("Azure DevOps returned status %d: %s", e.Status, e.Body)
}

// PartialSuccessError reports that a work item was created but the follow-up
// parent link failed. The caller must be able to distinguish "nothing
// happened" from "something happened, fix it manually", so this is never
// folded into a plain failure.
type PartialSuccessError struct {
	ID       int
	ParentID int
	Err      error
}

func (e *PartialSuccessError) Error() string {
	return fmt.Sprintf("work item %d was created but linking to parent %d failed: %v", e.ID, e.ParentID, e.Err)
}

func (e *PartialSuccessError) Unwrap() error {
	return e.Err
}
