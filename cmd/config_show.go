package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karolswdev/workitron/internal/config"
)

// Constants for keyring interaction (matching config/config.go).
const (
	keyringService = "workitron"
	keyringPATUser = "azure_devops_pat"
	keyringKeyUser = "openai_api_key"
)

// configShowCmd represents the show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current Workitron configuration",
	Long: `Displays the currently loaded configuration values
from config files and environment variables. Secrets are shown as a
set/not-set status, never as their value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return configShowRunE(provider.Config, provider.Keyring, cmd.OutOrStdout())
	},
}

// configShowRunE contains the core logic for the 'config show' command.
func configShowRunE(cfgProvider ConfigProvider, keyringClient KeyringClient, writer io.Writer) error {
	cfg, err := cfgProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	fmt.Fprintln(writer, "Current Workitron Configuration:")
	fmt.Fprintf(writer, "  Organization URL: %s\n", cfg.AzureDevOps.OrganizationURL)
	fmt.Fprintf(writer, "  Project:          %s\n", cfg.AzureDevOps.Project)
	fmt.Fprintf(writer, "  Default Type:     %s\n", cfg.AzureDevOps.DefaultType)
	fmt.Fprintf(writer, "  LLM Provider:     %s\n", cfg.LLM.Provider)
	switch cfg.LLM.Provider {
	case "openai":
		fmt.Fprintf(writer, "    OpenAI Model: %s\n", cfg.LLM.OpenAI.ModelName)
		if cfg.LLM.OpenAI.BaseURL != "" {
			fmt.Fprintf(writer, "    OpenAI BaseURL: %s\n", cfg.LLM.OpenAI.BaseURL)
		}
	default:
		fmt.Fprintf(writer, "    (No specific settings shown for provider '%s')\n", cfg.LLM.Provider)
	}

	// Secret status only; the values themselves are never printed.
	_, err = keyringClient.GetPAT(keyringService, keyringPATUser)
	patStatus := "Set (use 'wit config set-pat' to change)"
	if err != nil {
		if errors.Is(err, config.ErrPATNotFound) {
			patStatus = "Not Set (use 'wit config set-pat' to set)"
		} else {
			patStatus = fmt.Sprintf("Status Unknown (error checking keychain/env: %v)", err)
		}
	}
	fmt.Fprintf(writer, "  Azure DevOps PAT: %s\n", patStatus)

	_, err = keyringClient.GetAPIKey(keyringService, keyringKeyUser)
	apiKeyStatus := "Set (use 'wit config set-key' to change)"
	if err != nil {
		if errors.Is(err, config.ErrAPIKeyNotFound) {
			apiKeyStatus = "Not Set (use 'wit config set-key' to set)"
		} else {
			apiKeyStatus = fmt.Sprintf("Status Unknown (error checking keychain/env: %v)", err)
		}
	}
	fmt.Fprintf(writer, "  LLM API Key:      %s\n", apiKeyStatus)

	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
