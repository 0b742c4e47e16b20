package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set during build time (e.g., via ldflags)
// Default is "dev" for local development.
var version = "dev"

var (
	logLevel string
	// Log is the globally configured zerolog logger instance used throughout the cmd package.
	// It's initialized in rootCmd's PersistentPreRunE based on the --log-level flag.
	Log zerolog.Logger
)

// configureLogger sets up the global zerolog logger based on the logLevel flag.
// This is extracted to be reusable by both the package-level rootCmd and NewRootCmd.
func configureLogger(levelStr string) error {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		log.Warn().Msgf("Invalid log level '%s', defaulting to 'info'", levelStr)
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	Log = log.Logger.With().Timestamp().Logger()

	Log.Debug().Msgf("Log level set to '%s'", level.String())
	return nil
}

// persistentPreRunLogic contains the logic for PersistentPreRunE, reusable by NewRootCmd.
func persistentPreRunLogic(cmd *cobra.Command, args []string) error {
	showVersion, _ := cmd.Flags().GetBool("version")
	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}
	return configureLogger(logLevel)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wit",
	Short: "Workitron CLI - Azure DevOps work items from the terminal",
	Long: `Workitron (wit) is a CLI tool for creating, updating, and browsing
Azure DevOps work items, including hierarchy views and LLM-assisted
drafting of new items from plain descriptions.`,
	PersistentPreRunE: persistentPreRunLogic,
}

// Execute is the main entry point for the Cobra CLI application.
// It parses command-line arguments, executes the appropriate command (rootCmd or one of its subcommands),
// handles flag parsing, and manages error reporting. This function is typically called directly from main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		// Ensure logger is initialized even if PersistentPreRunE failed early
		if Log.GetLevel() == zerolog.Disabled {
			_ = configureLogger("info")
		}
		Log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}

// NewRootCmd creates a new instance of the root command, configured for testing or embedding.
// It mirrors the setup of the package-level rootCmd.
func NewRootCmd() *cobra.Command {
	newCmd := &cobra.Command{
		Use:   "wit",
		Short: "Workitron CLI - Azure DevOps work items from the terminal",
		Long: `Workitron (wit) is a CLI tool for creating, updating, and browsing
Azure DevOps work items, including hierarchy views and LLM-assisted
drafting of new items from plain descriptions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, _ := cmd.Flags().GetString("log-level")
			showVersion, _ := cmd.Flags().GetBool("version")

			if showVersion {
				fmt.Println(version)
				os.Exit(0)
			}
			return configureLogger(lvl)
		},
	}

	// Define flags specifically for this new command instance.
	// Use local variables to avoid conflicts with package-level flag bindings.
	var instanceLogLevel string
	newCmd.PersistentFlags().StringVar(&instanceLogLevel, "log-level", "info", "Set log level (debug, info, warn, error, fatal, panic)")
	newCmd.PersistentFlags().Bool("version", false, "Show application version")
	newCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text|json|yaml)")

	newCmd.AddCommand(configCmd)
	newCmd.AddCommand(createCmd)
	newCmd.AddCommand(getCmd)
	newCmd.AddCommand(updateCmd)
	newCmd.AddCommand(listCmd)
	newCmd.AddCommand(treeCmd)
	newCmd.AddCommand(completionCmd)

	return newCmd
}

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(wit completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ wit completion bash > /etc/bash_completion.d/wit
  # macOS:
  $ wit completion bash > /usr/local/etc/bash_completion.d/wit

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ wit completion zsh > "${fpath[1]}/_wit"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ wit completion fish | source

  # To load completions for each session, execute once:
  $ wit completion fish > ~/.config/fish/completions/wit.fish

PowerShell:
  PS> wit completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> wit completion powershell > wit.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			// This case should theoretically not be reached due to Args validation,
			// but included for robustness.
			return fmt.Errorf("unsupported shell type %q", args[0])
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Bool("version", false, "Show application version")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text|json|yaml)")

	// Subcommands like createCmd, listCmd, configCmd are added via their own init() functions.
	rootCmd.AddCommand(completionCmd)
}
