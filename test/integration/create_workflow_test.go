//go:build integration

package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/workitron/cmd"
	"github.com/karolswdev/workitron/internal/azdo"
	"github.com/karolswdev/workitron/internal/config"
	"github.com/karolswdev/workitron/internal/llm"
)

// TestCreateWorkflow exercises the end-to-end creation flow:
// 1. config init
// 2. create without a configured tracker (setup hint path)
// 3. create with LLM drafting (mocked LLM and tracker gateway)
func TestCreateWorkflow(t *testing.T) {
	tempDir := setupTestEnvironment(t, "", "")

	t.Run("config init", func(t *testing.T) {
		stdout, stderr, err := executeWitCommand(t, "config", "init")
		require.NoError(t, err, "config init failed. Stderr:\n%s", stderr)
		assert.Contains(t, stdout, "Configuration directory and default files ensured.")

		for _, name := range []string{
			config.DefaultConfigFileName,
			config.DefaultPromptFileName,
			config.DefaultContextFileName,
		} {
			_, err := os.Stat(filepath.Join(tempDir, name))
			require.NoError(t, err, "%s not found after init", name)
		}
	})

	t.Run("config locate", func(t *testing.T) {
		stdout, _, err := executeWitCommand(t, "config", "locate")
		require.NoError(t, err)
		assert.Contains(t, stdout, tempDir)
		assert.Contains(t, stdout, config.DefaultConfigFileName)
	})

	t.Run("create without tracker configured", func(t *testing.T) {
		_, stderr, err := executeWitCommand(t, "create", "--title", "Standalone task")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gateway not initialized")
		assert.Contains(t, stderr, "Azure DevOps connection not configured.")
	})

	t.Run("create with drafted details", func(t *testing.T) {
		mockLLM := new(cmd.MockLLMClient)
		mockGateway := new(cmd.MockGateway)
		configProvider := &cmd.DefaultConfigProvider{}

		suggestion := llm.Suggestion{
			WorkItemType: "User Story",
			Title:        "Add API rate limiting",
			Description:  "Protect the public API with per-client rate limits.",
			Tags:         []string{"api", "reliability"},
		}
		mockLLM.On("GenerateWorkItemDetails",
			mock.Anything,
			"Add rate limiting to the API",
			mock.Anything, // system prompt loaded from the temp config dir
			mock.Anything, // context data loaded from the temp config dir
		).Return(suggestion, nil)

		created := &azdo.WorkItem{ID: 101, Type: "User Story", Title: "Add API rate limiting"}
		mockGateway.On("Create",
			mock.Anything,
			"User Story",
			mock.MatchedBy(func(f azdo.CreateFields) bool {
				return f.Title == "Add API rate limiting" &&
					f.Description == "Protect the public API with per-client rate limits."
			}),
			mock.Anything,
		).Return(created, nil)

		var out bytes.Buffer
		createCmd := cmd.NewCreateCmdForTest(configProvider, mockGateway, mockLLM, &out)
		createCmd.SetErr(&out)
		createCmd.SetArgs([]string{"Add", "rate", "limiting", "to", "the", "API"})

		err := createCmd.Execute()
		require.NoError(t, err, "create failed. Output:\n%s", out.String())

		assert.Contains(t, out.String(), "Successfully created work item:")
		assert.Contains(t, out.String(), "ID:    101")
		assert.Contains(t, out.String(), "Type:  User Story")

		mockLLM.AssertExpectations(t)
		mockGateway.AssertExpectations(t)
	})
}
