package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karolswdev/workitron/internal/azdo"
)

// renderTree writes one item line at the given depth, then recurses into its
// children. Child groups are already id-sorted by the hierarchy builder.
func renderTree(out io.Writer, h azdo.Hierarchy, item azdo.WorkItem, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s- #%d [%s] %s", indent, item.ID, item.Type, item.Title)
	if item.State != "" {
		line += fmt.Sprintf(" (%s)", item.State)
	}
	fmt.Fprintln(out, line)
	for _, child := range h.ChildrenByParentID[item.ID] {
		renderTree(out, h, child, depth+1)
	}
}

// treeRunE holds the logic for the tree command, accepting dependencies.
func treeRunE(gateway Gateway, out io.Writer, cmd *cobra.Command, args []string) error {
	if gateway == nil {
		err := fmt.Errorf("work item gateway not initialized. Check Azure DevOps configuration")
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: Azure DevOps connection not configured.")
		fmt.Fprintln(cmd.ErrOrStderr(), "Please set 'azure_devops.organization_url' and 'azure_devops.project' ('wit config show') and store a PAT ('wit config set-pat').")
		return err
	}

	filter := buildFilter(cmd)
	items, err := gateway.List(cmd.Context(), filter)
	if err != nil {
		Log.Error().Err(err).Msg("Failed to list work items for tree view")
		fmt.Fprintf(cmd.ErrOrStderr(), "An error occurred while listing work items: %v\n", err)
		return err
	}

	if len(items) == 0 {
		Log.Info().Msg("No work items found matching the query.")
		fmt.Fprintln(out, "No work items found.")
		return nil
	}

	hierarchy := azdo.BuildHierarchy(items)

	outputFormat, _ := cmd.Flags().GetString("output")
	if outputFormat == "json" || outputFormat == "yaml" {
		return writeWorkItem(out, cmd, hierarchy)
	}

	for _, root := range hierarchy.Roots {
		renderTree(out, hierarchy, root, 0)
	}

	// Items whose parent was not fetched (filtered out or beyond the result
	// cap) are shown under their absent parent so they are never silently
	// dropped.
	orphanParents := hierarchy.OrphanParentIDs()
	if len(orphanParents) > 0 {
		fmt.Fprintln(out, "\nItems whose parent is outside this result set:")
		for _, parentID := range orphanParents {
			fmt.Fprintf(out, "- parent #%d (not fetched)\n", parentID)
			for _, child := range hierarchy.ChildrenByParentID[parentID] {
				renderTree(out, hierarchy, child, 1)
			}
		}
	}
	return nil
}

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show work items as a parent/child tree",
	Long: `Fetches work items matching the filter and arranges them into a
parent/child tree using their hierarchy relations. Items whose parent is not
part of the result set are listed separately rather than dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return treeRunE(provider.Gateway, cmd.OutOrStdout(), cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	registerListFlags(treeCmd)
}
