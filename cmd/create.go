package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karolswdev/workitron/internal/azdo"
	"github.com/karolswdev/workitron/internal/config"
	"github.com/karolswdev/workitron/internal/llm"
)

// loadedConfigs holds all configuration data the create command needs.
type loadedConfigs struct {
	appConfig    *config.AppConfig
	systemPrompt string
	contextData  string
}

// loadAllConfigs loads all required configuration files.
func loadAllConfigs(cp ConfigProvider) (*loadedConfigs, error) {
	Log.Debug().Msg("Loading all configurations...")
	cfg, err := cp.LoadConfig()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load main configuration file (config.yaml)")
		switch {
		case errors.Is(err, config.ErrConfigRead), errors.Is(err, config.ErrConfigParse):
			fmt.Fprintln(os.Stderr, "Error reading or parsing config.yaml. Please check its format and permissions.")
		case errors.Is(err, config.ErrConfigDirCreate), errors.Is(err, config.ErrConfigDirStat), errors.Is(err, config.ErrConfigDirNotDir):
			fmt.Fprintln(os.Stderr, "Error accessing configuration directory. Please check permissions.")
		default:
			fmt.Fprintln(os.Stderr, "An unexpected error occurred loading config.yaml.")
		}
		fmt.Fprintln(os.Stderr, "You might need to run 'wit config init'.")
		return nil, err
	}

	systemPrompt, err := cp.LoadSystemPrompt()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load system prompt file (system_prompt.txt)")
		switch {
		case errors.Is(err, config.ErrSystemPromptRead):
			fmt.Fprintln(os.Stderr, "Error reading system_prompt.txt. Please check its permissions.")
			fmt.Fprintln(os.Stderr, "You might need to run 'wit config init' to create a default.")
		default:
			fmt.Fprintln(os.Stderr, "An unexpected error occurred loading system_prompt.txt.")
		}
		return nil, err
	}

	contextData, err := cp.LoadContext()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load context data file (context.md)")
		switch {
		case errors.Is(err, config.ErrContextRead):
			fmt.Fprintln(os.Stderr, "Error reading context.md. Please check its permissions.")
			fmt.Fprintln(os.Stderr, "You might need to run 'wit config init' to create a default.")
		default:
			fmt.Fprintln(os.Stderr, "An unexpected error occurred loading context.md.")
		}
		return nil, err
	}

	Log.Debug().Msg("All configurations loaded successfully.")
	return &loadedConfigs{
		appConfig:    cfg,
		systemPrompt: systemPrompt,
		contextData:  contextData,
	}, nil
}

// resolveWorkItemType determines the final work item type: the --type flag
// wins, then the LLM's suggestion, then the configured default, then "Task".
func resolveWorkItemType(flagType, suggestedType, configuredDefault string) string {
	if flagType != "" {
		Log.Debug().Str("work_item_type", flagType).Msg("Using work item type from --type flag")
		return flagType
	}
	if suggestedType != "" {
		Log.Debug().Str("work_item_type", suggestedType).Msg("Using work item type suggested by LLM")
		return suggestedType
	}
	if configuredDefault != "" {
		Log.Debug().Str("work_item_type", configuredDefault).Msg("Using default work item type from config.yaml")
		return configuredDefault
	}
	return "Task"
}

// confirmInteractively prompts the user for confirmation if interactive mode is enabled.
// Returns true if the user confirms or if interactive mode is off, false if the user aborts.
// Returns an error only if reading user input fails.
func confirmInteractively(cmd *cobra.Command, workItemType string, fields azdo.CreateFields, parentID *int) (proceed bool, err error) {
	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		return true, nil
	}

	fmt.Println("\n--- Work Item Details ---")
	fmt.Printf("Type:        %s\n", workItemType)
	fmt.Printf("Title:       %s\n", fields.Title)
	if fields.Description != "" {
		fmt.Printf("Description:\n%s\n", fields.Description)
	}
	if fields.AssignedTo != "" {
		fmt.Printf("Assigned To: %s\n", fields.AssignedTo)
	}
	if parentID != nil {
		fmt.Printf("Parent:      #%d\n", *parentID)
	}
	if len(fields.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(fields.Tags, ", "))
	}
	fmt.Println("-------------------------")
	fmt.Print("Create this work item? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		Log.Error().Err(err).Msg("Failed to read user input for confirmation")
		fmt.Println("\nError reading input:", err)
		return false, err
	}

	cleanedInput := strings.ToLower(strings.TrimSpace(input))
	if cleanedInput != "y" && cleanedInput != "yes" {
		Log.Info().Msg("User aborted work item creation.")
		fmt.Println("Aborted.")
		return false, nil
	}

	Log.Debug().Msg("User confirmed work item creation.")
	return true, nil
}

// createRunE holds the logic for the create command, accepting dependencies.
func createRunE(cfgProvider ConfigProvider, gateway Gateway, llmClient llm.Client, out io.Writer, cmd *cobra.Command, args []string) error {
	loadedCfgs, err := loadAllConfigs(cfgProvider)
	if err != nil {
		// Specific user messages added in loadAllConfigs
		return err
	}

	titleFlag, _ := cmd.Flags().GetString("title")
	typeFlag, _ := cmd.Flags().GetString("type")
	descriptionFlag, _ := cmd.Flags().GetString("description")
	assigneeFlag, _ := cmd.Flags().GetString("assignee")
	tagsFlag, _ := cmd.Flags().GetStringSlice("tags")

	fields := azdo.CreateFields{
		Title:       titleFlag,
		Description: descriptionFlag,
		AssignedTo:  assigneeFlag,
		Tags:        tagsFlag,
	}
	if cmd.Flags().Changed("points") {
		points, _ := cmd.Flags().GetFloat64("points")
		fields.StoryPoints = &points
	}
	if cmd.Flags().Changed("remaining") {
		remaining, _ := cmd.Flags().GetFloat64("remaining")
		fields.RemainingWork = &remaining
	}

	var parentID *int
	if cmd.Flags().Changed("parent") {
		parent, _ := cmd.Flags().GetInt("parent")
		parentID = &parent
	}

	suggestedType := ""
	if titleFlag == "" {
		// No explicit title: draft the item from the free-form description via
		// the LLM.
		if len(args) == 0 {
			err := errors.New("no title or description provided")
			fmt.Fprintln(cmd.ErrOrStderr(), "Error: Provide --title for a direct create, or a free-form description for LLM drafting.")
			return err
		}
		if llmClient == nil {
			err := fmt.Errorf("LLM client not initialized. Check configuration (provider, API key)")
			Log.Error().Err(err).Msg("LLM client is nil in createRunE")
			fmt.Fprintln(cmd.ErrOrStderr(), "Error: LLM client not initialized.")
			fmt.Fprintln(cmd.ErrOrStderr(), "Please check your LLM provider configuration and API key setup ('wit config show', 'wit config set-key').")
			return err
		}

		userInput := strings.Join(args, " ")
		Log.Debug().Msg("Calling LLM client to generate work item details...")
		suggestion, err := llmClient.GenerateWorkItemDetails(cmd.Context(), userInput, loadedCfgs.systemPrompt, loadedCfgs.contextData)
		if err != nil {
			Log.Error().Err(err).Msg("LLM client GenerateWorkItemDetails failed")
			switch {
			case errors.Is(err, config.ErrAPIKeyNotFound):
				fmt.Fprintln(cmd.ErrOrStderr(), "Error: LLM API key not found.")
				fmt.Fprintf(cmd.ErrOrStderr(), "Please store it using 'wit config set-key <your-key>' or set the %s environment variable.\n", config.EnvAPIKeyName)
			case errors.Is(err, llm.ErrLLMCompletion):
				fmt.Fprintf(cmd.ErrOrStderr(), "Error communicating with the LLM API: %v\n", err)
				fmt.Fprintln(cmd.ErrOrStderr(), "Please check your network connection and API key/endpoint configuration.")
			case errors.Is(err, llm.ErrLLMResponseJSONFind), errors.Is(err, llm.ErrLLMResponseJSONUnmarshal), errors.Is(err, llm.ErrLLMResponseMissingField):
				fmt.Fprintf(cmd.ErrOrStderr(), "Error processing the response from the LLM: %v\n", err)
				fmt.Fprintln(cmd.ErrOrStderr(), "The LLM might have returned an unexpected format. Check logs for details.")
			default:
				fmt.Fprintf(cmd.ErrOrStderr(), "An unexpected error occurred during LLM processing: %v\n", err)
			}
			return err
		}
		Log.Info().Msg("LLM processing successful.")

		fields.Title = suggestion.Title
		if fields.Description == "" {
			fields.Description = suggestion.Description
		}
		if len(fields.Tags) == 0 {
			fields.Tags = suggestion.Tags
		}
		suggestedType = suggestion.WorkItemType
	}

	finalType := resolveWorkItemType(typeFlag, suggestedType, loadedCfgs.appConfig.AzureDevOps.DefaultType)

	if gateway == nil {
		err := fmt.Errorf("work item gateway not initialized. Check Azure DevOps configuration")
		Log.Error().Err(err).Msg("Gateway is nil in createRunE")
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: Azure DevOps connection not configured.")
		fmt.Fprintln(cmd.ErrOrStderr(), "Please set 'azure_devops.organization_url' and 'azure_devops.project' ('wit config show') and store a PAT ('wit config set-pat').")
		return err
	}

	proceed, err := confirmInteractively(cmd, finalType, fields, parentID)
	if err != nil {
		return err
	}
	if !proceed {
		return nil // Graceful exit
	}

	Log.Debug().Str("work_item_type", finalType).Msg("Creating work item...")
	item, err := gateway.Create(cmd.Context(), finalType, fields, parentID)
	if err != nil {
		var partial *azdo.PartialSuccessError
		var transportErr *azdo.TransportError
		switch {
		case errors.As(err, &partial):
			// The item exists but the parent link does not; tell the user how
			// to remediate instead of presenting a plain failure.
			Log.Error().Err(err).Int("id", partial.ID).Int("parent_id", partial.ParentID).Msg("Work item created but parent link failed")
			fmt.Fprintf(cmd.ErrOrStderr(), "Work item #%d was created, but linking it under #%d failed: %v\n", partial.ID, partial.ParentID, partial.Err)
			fmt.Fprintf(cmd.ErrOrStderr(), "You can retry the link with 'wit update %d --parent %d' or fix it in the tracker UI.\n", partial.ID, partial.ParentID)
			return err
		case errors.Is(err, azdo.ErrTitleRequired):
			fmt.Fprintln(cmd.ErrOrStderr(), "Error: A title is required to create a work item.")
		case errors.As(err, &transportErr):
			fmt.Fprintf(cmd.ErrOrStderr(), "The tracker rejected the create request: %v\n", err)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "An unexpected error occurred while creating the work item: %v\n", err)
		}
		Log.Error().Err(err).Msg("Failed to create work item")
		return err
	}

	Log.Info().Int("id", item.ID).Str("type", item.Type).Msg("Successfully created work item")

	outputFormat, _ := cmd.Flags().GetString("output")
	if outputFormat == "text" || outputFormat == "" {
		fmt.Fprintf(out, "Successfully created work item:\nID:    %d\nType:  %s\nTitle: %s\n", item.ID, item.Type, item.Title)
		if item.ParentID != nil {
			fmt.Fprintf(out, "Parent: #%d\n", *item.ParentID)
		}
		return nil
	}
	return writeWorkItem(out, cmd, item)
}

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create [free-form description...]",
	Short: "Create a new work item",
	Long: `Creates a new Azure DevOps work item.

Provide --title for a direct create, or a free-form description as arguments
to have the configured LLM draft the type, title, description, and tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			Log.Error().Err(err).Msg("Failed to get service provider")
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return createRunE(provider.Config, provider.Gateway, provider.LLM, cmd.OutOrStdout(), cmd, args)
	},
}

// registerCreateFlags defines the create command's flag set. Shared between
// the package-level command and instances built for tests.
func registerCreateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Work item type (e.g., Task, Bug, User Story) - overrides LLM suggestion and the configured default")
	cmd.Flags().String("title", "", "Work item title (skips LLM drafting when set)")
	cmd.Flags().StringP("description", "d", "", "Work item description")
	cmd.Flags().StringP("assignee", "a", "", "Assign the work item to this user")
	cmd.Flags().IntP("parent", "p", 0, "Parent work item id to link the new item under")
	cmd.Flags().Float64("points", 0, "Story points estimate")
	cmd.Flags().Float64("remaining", 0, "Remaining work in hours")
	cmd.Flags().StringSlice("tags", nil, "Tags to apply (comma-separated or repeated)")
	cmd.Flags().BoolP("interactive", "i", false, "Prompt for confirmation before creating the work item.")
}

// NewCreateCmdForTest builds a standalone create command wired to the given
// dependencies instead of the global provider. Integration tests use it to
// drive the create workflow with mocked services.
func NewCreateCmdForTest(cfgProvider ConfigProvider, gateway Gateway, llmClient llm.Client, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use: "create [free-form description...]",
		RunE: func(cmd *cobra.Command, args []string) error {
			return createRunE(cfgProvider, gateway, llmClient, out, cmd, args)
		},
	}
	registerCreateFlags(cmd)
	cmd.Flags().StringP("output", "o", "text", "Output format (text|json|yaml)")
	return cmd
}

func init() {
	rootCmd.AddCommand(createCmd)
	registerCreateFlags(createCmd)
}
