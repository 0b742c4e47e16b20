package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/karolswdev/workitron/internal/azdo"
)

// updateRunE holds the logic for the update command, accepting dependencies.
func updateRunE(gateway Gateway, out io.Writer, cmd *cobra.Command, args []string) error {
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

	var changes azdo.FieldChanges
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		changes.Title = &title
	}
	if cmd.Flags().Changed("description") {
		description, _ := cmd.Flags().GetString("description")
		changes.Description = &description
	}
	if cmd.Flags().Changed("state") {
		state, _ := cmd.Flags().GetString("state")
		changes.State = &state
	}
	if cmd.Flags().Changed("assignee") {
		assignee, _ := cmd.Flags().GetString("assignee")
		changes.AssignedTo = &assignee
	}
	if cmd.Flags().Changed("points") {
		points, _ := cmd.Flags().GetFloat64("points")
		changes.StoryPoints = &points
	}
	if cmd.Flags().Changed("remaining") {
		remaining, _ := cmd.Flags().GetFloat64("remaining")
		changes.RemainingWork = &remaining
	}
	if cmd.Flags().Changed("tags") {
		tags, _ := cmd.Flags().GetStringSlice("tags")
		changes.Tags = tags
	}

	ops := azdo.BuildUpdateDocument(changes)
	if cmd.Flags().Changed("parent") {
		parent, _ := cmd.Flags().GetInt("parent")
		ops = append(ops, gateway.ParentRelationOp(parent))
	}
	if len(ops) == 0 {
		err := errors.New("no changes requested")
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: No changes requested. Pass at least one field flag (e.g., --state, --title).")
		return err
	}

	Log.Debug().Int("id", id).Int("op_count", len(ops)).Msg("Updating work item...")
	item, err := gateway.Update(cmd.Context(), id, ops)
	if err != nil {
		Log.Error().Err(err).Int("id", id).Msg("Failed to update work item")
		switch {
		case errors.Is(err, azdo.ErrWorkItemNotFound):
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: Work item #%d was not found.\n", id)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "An unexpected error occurred while updating work item #%d: %v\n", id, err)
		}
		return err
	}

	Log.Info().Int("id", item.ID).Msg("Successfully updated work item")

	outputFormat, _ := cmd.Flags().GetString("output")
	if outputFormat == "text" || outputFormat == "" {
		fmt.Fprintf(out, "Successfully updated work item #%d.\n", item.ID)
		fmt.Fprintf(out, "#%d [%s] %s - %s\n", item.ID, item.Type, item.Title, item.State)
		return nil
	}
	return writeWorkItem(out, cmd, item)
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields on an existing work item",
	Long: `Updates fields on an existing work item. Only the fields passed as
flags are touched; everything else is left as-is. The change round-trips
through the tracker and the refreshed item is displayed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return updateRunE(provider.Gateway, cmd.OutOrStdout(), cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("state", "s", "", "New state (e.g., Active, Closed)")
	updateCmd.Flags().StringP("assignee", "a", "", "New assignee")
	updateCmd.Flags().IntP("parent", "p", 0, "Link the item under this parent work item id")
	updateCmd.Flags().Float64("points", 0, "New story points estimate")
	updateCmd.Flags().Float64("remaining", 0, "New remaining work in hours")
	updateCmd.Flags().StringSlice("tags", nil, "Replacement tag list (comma-separated or repeated)")
}
