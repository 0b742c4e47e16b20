package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karolswdev/workitron/internal/azdo"
)

// getRunE holds the logic for the get command, accepting dependencies.
func getRunE(gateway Gateway, out io.Writer, cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: work item id must be a number, got %q.\n", args[0])
		return fmt.Errorf("invalid work item id %q: %w", args[0], err)
	}

	if gateway == nil {
		err := fmt.Errorf("work item gateway not initialized. Check Azure DevOps configuration")
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: Azure DevOps connection not configured.")
		fmt.Fprintln(cmd.ErrOrStderr(), "Please set 'azure_devops.organization_url' and 'azure_devops.project' ('wit config show') and store a PAT ('wit config set-pat').")
		return err
	}

	item, err := gateway.Get(cmd.Context(), id)
	if err != nil {
		Log.Error().Err(err).Int("id", id).Msg("Failed to fetch work item")
		switch {
		case errors.Is(err, azdo.ErrWorkItemNotFound):
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: Work item #%d was not found.\n", id)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "An unexpected error occurred while fetching work item #%d: %v\n", id, err)
		}
		return err
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	if outputFormat == "text" || outputFormat == "" {
		fmt.Fprintf(out, "#%d [%s] %s\n", item.ID, item.Type, item.Title)
		if item.State != "" {
			fmt.Fprintf(out, "State:       %s\n", item.State)
		}
		if item.AssignedTo != "" {
			fmt.Fprintf(out, "Assigned To: %s\n", item.AssignedTo)
		}
		if item.ParentID != nil {
			fmt.Fprintf(out, "Parent:      #%d\n", *item.ParentID)
		}
		if item.StoryPoints != nil {
			fmt.Fprintf(out, "Points:      %g\n", *item.StoryPoints)
		}
		if item.RemainingWork != nil {
			fmt.Fprintf(out, "Remaining:   %g\n", *item.RemainingWork)
		}
		if len(item.Tags) > 0 {
			fmt.Fprintf(out, "Tags:        %s\n", strings.Join(item.Tags, ", "))
		}
		if item.Description != "" {
			fmt.Fprintf(out, "Description:\n%s\n", item.Description)
		}
		return nil
	}
	return writeWorkItem(out, cmd, item)
}

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single work item",
	Long: `Fetches a single work item by id, relations included, and displays
its fields in the selected output format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return getRunE(provider.Gateway, cmd.OutOrStdout(), cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
