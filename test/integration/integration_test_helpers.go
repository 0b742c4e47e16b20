//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/karolswdev/workitron/cmd"
	"github.com/karolswdev/workitron/internal/config"
)

// setupTestEnvironment creates a temporary configuration directory, writes a
// config.yaml with the given tracker settings, and points WORKITRON_CONFIG_DIR
// at it for the duration of the test. Leave orgURL and project empty to
// simulate an unconfigured tracker connection.
func setupTestEnvironment(t *testing.T, orgURL, project string) string {
	t.Helper()
	tempDir := t.TempDir()

	configContent := fmt.Sprintf(`
azure_devops:
  organization_url: "%s"
  project: "%s"
  default_type: "Task"

llm:
  provider: "openai"
  openai:
    model_name: "test-model"
`, orgURL, project)

	configPath := filepath.Join(tempDir, config.DefaultConfigFileName)
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("Failed to write temp config file: %v", err)
	}

	t.Setenv(config.ConfigDirEnvVar, tempDir)
	return tempDir
}

// executeWitCommand runs the workitron root command with the given arguments
// in-process and captures stdout and stderr. WORKITRON_CONFIG_DIR must be set
// before calling (e.g., by setupTestEnvironment).
func executeWitCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	originalLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	var outBuf, errBuf bytes.Buffer

	rootCmd := cmd.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)

	execErr := rootCmd.ExecuteContext(context.Background())

	return outBuf.String(), errBuf.String(), execErr
}
