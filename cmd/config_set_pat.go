package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// setPATCmd represents the set-pat command
var setPATCmd = &cobra.Command{
	Use:   "set-pat [personal-access-token]",
	Short: "Stores the Azure DevOps PAT securely in the OS keychain",
	Long: `Stores the Azure DevOps personal access token securely in the operating
system's keychain or keyring. This is the recommended way to configure the
token for Workitron. The token will be associated with the service 'workitron'
and user 'azure_devops_pat'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return configSetPATRun(provider.Keyring, cmd.OutOrStdout(), args[0])
	},
}

// configSetPATRun contains the core logic for the set-pat command.
// It accepts dependencies (keyring client, writer) for testability.
func configSetPATRun(kc KeyringClient, writer io.Writer, pat string) error {
	if pat == "" {
		return errors.New("PAT cannot be empty")
	}

	log.Info().Msgf("Attempting to store PAT in keychain for service '%s'...", keyringService)

	err := kc.Set(keyringService, keyringPATUser, pat)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store PAT in keychain")
		return fmt.Errorf("failed to store PAT in keychain: %w", err)
	}

	log.Info().Msg("PAT stored successfully in keychain.")
	fmt.Fprintln(writer, "Azure DevOps PAT stored successfully.")
	return nil
}

func init() {
	configCmd.AddCommand(setPATCmd)
}
