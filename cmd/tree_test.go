package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/workitron/internal/azdo"
)

func newTreeTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().StringP("type", "t", "", "")
	cmd.Flags().StringP("state", "s", "", "")
	cmd.Flags().StringP("assignee", "a", "", "")
	cmd.Flags().String("search", "", "")
	cmd.Flags().Int("max-results", azdo.DefaultMaxResults, "")
	cmd.Flags().StringP("output", "o", "text", "")
	return cmd
}

func treeItem(id int, parentID *int, typ, title string) azdo.WorkItem {
	return azdo.WorkItem{ID: id, Type: typ, Title: title, ParentID: parentID}
}

func intPtr(v int) *int { return &v }

func TestTreeRunE_RendersHierarchy(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	items := []azdo.WorkItem{
		treeItem(1, nil, "User Story", "Login flow"),
		treeItem(10, intPtr(1), "Task", "Backend"),
		treeItem(11, intPtr(1), "Task", "Frontend"),
		treeItem(2, nil, "User Story", "Billing"),
	}
	mockGateway.On("List", mock.Anything, mock.Anything).Return(items, nil)

	cmd := newTreeTestCmd()
	var out bytes.Buffer
	err := treeRunE(mockGateway, &out, cmd, nil)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "- #1 [User Story] Login flow", lines[0])
	assert.Equal(t, "  - #10 [Task] Backend", lines[1])
	assert.Equal(t, "  - #11 [Task] Frontend", lines[2])
	assert.Equal(t, "- #2 [User Story] Billing", lines[3])
}

func TestTreeRunE_NestedChildren(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	items := []azdo.WorkItem{
		treeItem(1, nil, "Epic", "Platform"),
		treeItem(2, intPtr(1), "Feature", "Auth"),
		treeItem(3, intPtr(2), "User Story", "SSO"),
	}
	mockGateway.On("List", mock.Anything, mock.Anything).Return(items, nil)

	cmd := newTreeTestCmd()
	var out bytes.Buffer
	err := treeRunE(mockGateway, &out, cmd, nil)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "    - #3 [User Story] SSO")
}

func TestTreeRunE_OrphansListedSeparately(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	items := []azdo.WorkItem{
		treeItem(1, nil, "User Story", "Visible root"),
		treeItem(20, intPtr(999), "Task", "Orphaned child"),
	}
	mockGateway.On("List", mock.Anything, mock.Anything).Return(items, nil)

	cmd := newTreeTestCmd()
	var out bytes.Buffer
	err := treeRunE(mockGateway, &out, cmd, nil)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "parent #999 (not fetched)")
	assert.Contains(t, out.String(), "- #20 [Task] Orphaned child")
}

func TestTreeRunE_EmptyResult(t *testing.T) {
	Log = zerolog.Nop()

	mockGateway := new(MockGateway)
	mockGateway.On("List", mock.Anything, mock.Anything).Return([]azdo.WorkItem{}, nil)

	cmd := newTreeTestCmd()
	var out bytes.Buffer
	err := treeRunE(mockGateway, &out, cmd, nil)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "No work items found.")
}
