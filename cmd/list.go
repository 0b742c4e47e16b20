package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karolswdev/workitron/internal/azdo"
)

// buildFilter assembles the query filter from the list/tree flag set.
func buildFilter(cmd *cobra.Command) azdo.Filter {
	typeFlag, _ := cmd.Flags().GetString("type")
	stateFlag, _ := cmd.Flags().GetString("state")
	assigneeFlag, _ := cmd.Flags().GetString("assignee")
	searchFlag, _ := cmd.Flags().GetString("search")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return azdo.Filter{
		Type:       typeFlag,
		State:      stateFlag,
		AssignedTo: assigneeFlag,
		SearchText: searchFlag,
		MaxResults: maxResults,
	}
}

// listRunE holds the logic for the list command, accepting dependencies.
func listRunE(gateway Gateway, out io.Writer, cmd *cobra.Command, args []string) error {
	if gateway == nil {
		err := fmt.Errorf("work item gateway not initialized. Check Azure DevOps configuration")
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: Azure DevOps connection not configured.")
		fmt.Fprintln(cmd.ErrOrStderr(), "Please set 'azure_devops.organization_url' and 'azure_devops.project' ('wit config show') and store a PAT ('wit config set-pat').")
		return err
	}

	filter := buildFilter(cmd)
	items, err := gateway.List(cmd.Context(), filter)
	if err != nil {
		Log.Error().Err(err).Msg("Failed to list work items")
		fmt.Fprintf(cmd.ErrOrStderr(), "An error occurred while listing work items: %v\n", err)
		return err
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		return writeWorkItem(out, cmd, items)
	default:
		if len(items) == 0 {
			Log.Info().Msg("No work items found matching the query.")
			fmt.Fprintln(out, "No work items found.")
			return nil
		}
		Log.Info().Int("count", len(items)).Msg("Found work items")
		fmt.Fprintf(out, "Found %d work items:\n", len(items))
		for _, item := range items {
			line := fmt.Sprintf("- #%d [%s] %s", item.ID, item.Type, item.Title)
			if item.State != "" {
				line += fmt.Sprintf(" (%s)", item.State)
			}
			if item.AssignedTo != "" {
				line += fmt.Sprintf(" - %s", item.AssignedTo)
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work items matching a filter",
	Long: `Lists work items in the configured project, optionally filtered by
type, state, assignee, and free text over title and description.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return listRunE(provider.Gateway, cmd.OutOrStdout(), cmd, args)
	},
}

// registerListFlags defines the list/tree filter flag set. Shared between the
// package-level commands and instances built for tests.
func registerListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Filter by work item type (e.g., Task, Bug)")
	cmd.Flags().StringP("state", "s", "", "Filter by state (e.g., Active, Closed)")
	cmd.Flags().StringP("assignee", "a", "", "Filter by assignee")
	cmd.Flags().String("search", "", "Case-insensitive text filter over title and description")
	cmd.Flags().Int("max-results", azdo.DefaultMaxResults, "Maximum number of results to return")
}

// NewListCmdForTest builds a standalone list command wired to the given
// gateway instead of the global provider. Integration tests use it to drive
// the list workflow with a mocked tracker.
func NewListCmdForTest(gateway Gateway, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use: "list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRunE(gateway, out, cmd, args)
		},
	}
	registerListFlags(cmd)
	cmd.Flags().StringP("output", "o", "text", "Output format (text|json|yaml)")
	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
	registerListFlags(listCmd)
}
