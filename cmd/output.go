package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// writeWorkItem renders a single work item (or any marshalable value) in the
// format selected by the --output flag. Text rendering is command-specific,
// so callers handle "text" themselves and delegate json/yaml here.
func writeWorkItem(out io.Writer, cmd *cobra.Command, v any) error {
	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json":
		jsonData, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			Log.Error().Err(err).Msg("Failed to marshal output to JSON")
			fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting output as JSON: %v\n", err)
			return err
		}
		fmt.Fprintln(out, string(jsonData))
	case "yaml":
		yamlData, err := yaml.Marshal(v)
		if err != nil {
			Log.Error().Err(err).Msg("Failed to marshal output to YAML")
			fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting output as YAML: %v\n", err)
			return err
		}
		fmt.Fprint(out, string(yamlData))
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
	return nil
}
