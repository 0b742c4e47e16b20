package cmd

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/workitron/internal/azdo"
)

func newGetTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().StringP("output", "o", "text", "")
	return cmd
}

func TestGetRunE_Success(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	parent := 12
	points := 3.0
	item := &azdo.WorkItem{
		ID:          42,
		Type:        "User Story",
		Title:       "Add SSO login",
		State:       "Active",
		AssignedTo:  "Jamie Doe",
		ParentID:    &parent,
		StoryPoints: &points,
		Tags:        []string{"auth", "frontend"},
		Description: "Support single sign-on",
	}
	mockGateway.On("Get", mock.Anything, 42).Return(item, nil)

	cmd := newGetTestCmd()
	var out bytes.Buffer
	err := getRunE(mockGateway, &out, cmd, []string{"42"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "#42 [User Story] Add SSO login")
	assert.Contains(t, out.String(), "State:       Active")
	assert.Contains(t, out.String(), "Parent:      #12")
	assert.Contains(t, out.String(), "Tags:        auth, frontend")
	mockGateway.AssertExpectations(t)
}

func TestGetRunE_JSONOutput(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	item := &azdo.WorkItem{ID: 42, Type: "Bug", Title: "Fix login"}
	mockGateway.On("Get", mock.Anything, 42).Return(item, nil)

	cmd := newGetTestCmd()
	require.NoError(t, cmd.Flags().Set("output", "json"))

	var out bytes.Buffer
	err := getRunE(mockGateway, &out, cmd, []string{"42"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), `"id": 42`)
	assert.Contains(t, out.String(), `"title": "Fix login"`)
}

func TestGetRunE_NotFound(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	mockGateway.On("Get", mock.Anything, 999).
		Return((*azdo.WorkItem)(nil), fmt.Errorf("%w: id 999", azdo.ErrWorkItemNotFound))

	cmd := newGetTestCmd()
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	var out bytes.Buffer
	err := getRunE(mockGateway, &out, cmd, []string{"999"})

	assert.ErrorIs(t, err, azdo.ErrWorkItemNotFound)
	assert.Contains(t, errOut.String(), "#999 was not found")
}

func TestGetRunE_NonNumericID(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	cmd := newGetTestCmd()

	var out bytes.Buffer
	err := getRunE(mockGateway, &out, cmd, []string{"abc"})

	assert.Error(t, err)
	mockGateway.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetRunE_NilGateway(t *testing.T) {
	Log = zerolog.Nop()

	cmd := newGetTestCmd()
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	var out bytes.Buffer
	err := getRunE(nil, &out, cmd, []string{"1"})

	assert.Error(t, err)
	assert.Contains(t, errOut.String(), "not configured")
}
