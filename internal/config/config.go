package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFileName is the standard name for the main configuration file.
	DefaultConfigFileName = "config.yaml"
	// DefaultPromptFileName is the standard name for the system prompt file.
	DefaultPromptFileName = "system_prompt.txt"
	// DefaultContextFileName is the standard name for the context file.
	DefaultContextFileName = "context.md"
	// DefaultConfigDirName is the standard name for the configuration directory within the user's home directory.
	DefaultConfigDirName = ".workitron"
	// ConfigDirEnvVar is the environment variable used to override the default configuration directory path.
	ConfigDirEnvVar = "WORKITRON_CONFIG_DIR"
)

// EnsureConfigDir checks if the configuration directory exists, creating it if
// necessary. It prioritizes baseDir if provided, then WORKITRON_CONFIG_DIR,
// then ~/.workitron. It returns the validated directory path.
func EnsureConfigDir(baseDir string) (string, error) {
	var configDirPath string

	if baseDir != "" {
		configDirPath = baseDir
		log.Debug().Str("path", configDirPath).Msg("Using provided base directory path")
	} else if envDir := os.Getenv(ConfigDirEnvVar); envDir != "" {
		configDirPath = envDir
		log.Debug().Str("path", configDirPath).Str("env_var", ConfigDirEnvVar).Msg("Using config directory path from environment variable")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDirPath = filepath.Join(homeDir, DefaultConfigDirName)
		log.Debug().Str("path", configDirPath).Msg("Using default config directory path")
	}

	info, err := os.Stat(configDirPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configDirPath).Msg("Config directory does not exist, attempting to create")
			if mkdirErr := os.MkdirAll(configDirPath, 0700); mkdirErr != nil {
				log.Error().Err(mkdirErr).Str("path", configDirPath).Msg("Failed to create config directory")
				return "", fmt.Errorf("%w: %w", ErrConfigDirCreate, mkdirErr)
			}
			return configDirPath, nil
		}
		log.Error().Err(err).Str("path", configDirPath).Msg("Failed to stat config directory path")
		return "", fmt.Errorf("%w: %w", ErrConfigDirStat, err)
	}

	if !info.IsDir() {
		log.Error().Str("path", configDirPath).Msg("Config path exists but is not a directory")
		return "", ErrConfigDirNotDir
	}
	return configDirPath, nil
}

// AzureDevOpsConfig holds the tracker connection settings. The PAT is handled
// separately via the keyring (GetPAT) and never lives in config.yaml.
type AzureDevOpsConfig struct {
	OrganizationURL string `mapstructure:"organization_url"`
	Project         string `mapstructure:"project"`
	DefaultType     string `mapstructure:"default_type"`
}

// OpenAIConfig holds configuration specific to the OpenAI provider.
type OpenAIConfig struct {
	ModelName string `mapstructure:"model_name"`
	BaseURL   string `mapstructure:"base_url"` // Optional custom base URL
}

// LLMConfig holds the Language Model provider selection and provider-specific
// settings.
type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// AppConfig holds the overall application configuration.
type AppConfig struct {
	AzureDevOps AzureDevOpsConfig `mapstructure:"azure_devops"`
	LLM         LLMConfig         `mapstructure:"llm"`
}

// LoadConfig loads the application configuration from the config file
// (baseDir/config.yaml or ~/.workitron/config.yaml), environment variables
// (WORKITRON_*), and defaults.
func LoadConfig(baseDir string) (*AppConfig, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure config directory: %w", err)
	}

	v := viper.New()

	v.SetDefault("azure_devops.organization_url", "")
	v.SetDefault("azure_devops.project", "")
	v.SetDefault("azure_devops.default_type", "Task")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai.model_name", "gpt-4o")
	v.SetDefault("llm.openai.base_url", "")

	configPath := filepath.Join(configDir, DefaultConfigFileName)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	log.Debug().Str("path", configPath).Msg("Attempting to load config file")

	v.SetEnvPrefix("WORKITRON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // azure_devops.project -> WORKITRON_AZURE_DEVOPS_PROJECT

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warn().Str("path", configPath).Msg("Config file not found. Using defaults and environment variables.")
		} else {
			log.Error().Err(err).Str("path", configPath).Msg("Failed to read config file")
			return nil, fmt.Errorf("%w: %w", ErrConfigRead, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("Failed to unmarshal config file")
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	log.Debug().Str("path", configPath).Msg("Loaded config successfully")

	return &cfg, nil
}

// LoadSystemPrompt loads the system prompt text used by the natural-language
// creation path. It returns an empty string if the file doesn't exist.
func LoadSystemPrompt(baseDir string) (string, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to ensure config directory for system prompt: %w", err)
	}

	promptPath := filepath.Join(configDir, DefaultPromptFileName)
	fileBytes, err := os.ReadFile(promptPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", promptPath).Msg("System prompt file not found, returning empty string")
			return "", nil
		}
		log.Error().Err(err).Str("path", promptPath).Msg("Failed to read system prompt file")
		return "", fmt.Errorf("%w: %w", ErrSystemPromptRead, err)
	}
	return string(fileBytes), nil
}

// LoadContext loads the optional persistent context text given to the LLM.
// It returns an empty string if the file doesn't exist.
func LoadContext(baseDir string) (string, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to ensure config directory for context: %w", err)
	}

	contextPath := filepath.Join(configDir, DefaultContextFileName)
	fileBytes, err := os.ReadFile(contextPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", contextPath).Msg("Context file not found, returning empty string")
			return "", nil
		}
		log.Error().Err(err).Str("path", contextPath).Msg("Failed to read context file")
		return "", fmt.Errorf("%w: %w", ErrContextRead, err)
	}
	return string(fileBytes), nil
}

// --- Default File Creation ---

const defaultConfigYAML = `# User-specific configuration for the Workitron CLI (wit)
# Located at ~/.workitron/config.yaml

# Azure DevOps connection settings. The personal access token is NOT stored
# here; run 'wit config set-pat <token>' to store it in the OS keychain.
azure_devops:
  # Organization URL, e.g. https://dev.azure.com/my-org
  organization_url: ""
  # Project name within the organization.
  project: ""
  # Work item type used when creating without an explicit --type.
  default_type: "Task"

# Configuration for the LLM used by the natural-language creation path.
llm:
  provider: "openai"
  openai:
    model_name: "gpt-4o" # Example: gpt-4, gpt-4o, gpt-3.5-turbo
    # Optional: custom base URL for the OpenAI API (e.g., for proxies)
    # base_url: ""
`

const defaultSystemPromptTXT = `You are an expert assistant specialized in drafting Azure DevOps work items from user requests.
Your task is to process the user's input, which may include their raw request and additional context provided separately, and generate a structured work item.

Output:
Generate ONLY a JSON object containing the following fields:
- "work_item_type": The suggested work item type (e.g., "Task", "Bug", "User Story").
- "title": A concise and informative work item title based on the user request.
- "description": A detailed work item description elaborating on the user request.
- "tags": An optional array of short lowercase tag strings.

CRITICAL: Your response MUST contain ONLY the valid JSON object. Do not include any introductory text, explanations, apologies, or markdown formatting around the JSON block.
`

const defaultContextMD = `# LLM Context for Workitron Work Item Generation
# -----------------------------------------------
# This file provides optional, persistent context to the LLM.
# Populate the sections below with details relevant to your current work
# to help the LLM draft more accurate work items.
# Lines starting with '#' are comments and will be ignored.

## Current Focus / Active Work
# Example:
# - Currently focused on the "User Authentication" epic (#123).
# - Sprint goal: Complete backend integration for SSO.

## Key Technologies / Components
# Example:
# - Backend: Go, PostgreSQL
# - Services: AuthSvc, NotificationSvc

## Common Acronyms / Jargon
# Example:
# - SSO: Single Sign-On
`

// writeFileIfNotExists checks if a file exists. If not, it writes the provided content.
func writeFileIfNotExists(filePath string, content string, perm os.FileMode) error {
	_, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", filePath).Msg("File does not exist, writing default content")
			if errWrite := os.WriteFile(filePath, []byte(content), perm); errWrite != nil {
				log.Error().Err(errWrite).Str("path", filePath).Msg("Failed to write default file content")
				return fmt.Errorf("%w: %w", ErrDefaultFileWrite, errWrite)
			}
			return nil
		}
		log.Error().Err(err).Str("path", filePath).Msg("Failed to stat file path")
		return fmt.Errorf("%w: %w", ErrDefaultFileStat, err)
	}
	log.Debug().Str("path", filePath).Msg("File already exists, no action needed")
	return nil
}

// CreateDefaultConfigFiles ensures the configuration directory exists and
// creates default configuration files (config.yaml, system_prompt.txt,
// context.md) within it if they do not already exist.
func CreateDefaultConfigFiles(baseDir string) error {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	filesToCreate := []struct {
		name    string
		content string
		perm    os.FileMode
	}{
		{DefaultConfigFileName, defaultConfigYAML, 0600},
		{DefaultPromptFileName, defaultSystemPromptTXT, 0644},
		{DefaultContextFileName, defaultContextMD, 0644},
	}

	for _, file := range filesToCreate {
		if err := writeFileIfNotExists(filepath.Join(configDir, file.name), file.content, file.perm); err != nil {
			return err
		}
	}
	return nil
}

// --- Secret Handling ---

const (
	keyringServiceName = "workitron"
	keyringPATUserName = "azure_devops_pat"
	keyringLLMUserName = "openai_api_key"
	// EnvPATName defines the environment variable checked for the Azure DevOps
	// PAT when it is not found in the OS keychain.
	EnvPATName = "WORKITRON_AZDO_PAT"
	// EnvAPIKeyName defines the environment variable checked for the LLM API
	// key when it is not found in the OS keychain.
	EnvAPIKeyName = "WORKITRON_LLM_API_KEY"
)

// ErrPATNotFound is returned when the Azure DevOps PAT cannot be found in any source.
var ErrPATNotFound = errors.New("Azure DevOps PAT not found in OS keychain or environment variable " + EnvPATName)

// ErrAPIKeyNotFound is returned when the LLM API key cannot be found in any source.
var ErrAPIKeyNotFound = errors.New("LLM API key not found in OS keychain or environment variable " + EnvAPIKeyName)

func getSecret(user, envVar string, notFound error) (string, error) {
	log.Debug().Str("service", keyringServiceName).Str("user", user).Msg("Attempting to get secret from keychain")
	value, err := keyring.Get(keyringServiceName, user)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		log.Error().Err(err).Str("service", keyringServiceName).Str("user", user).Msg("Error reading secret from keychain")
		return "", fmt.Errorf("%w: %w", ErrKeyringGet, err)
	}

	log.Debug().Str("user", user).Msgf("Secret not found in keychain, checking environment variable %s", envVar)
	if value := os.Getenv(envVar); value != "" {
		return value, nil
	}
	return "", notFound
}

func setSecret(user, value string) error {
	if err := keyring.Set(keyringServiceName, user, value); err != nil {
		log.Error().Err(err).Str("service", keyringServiceName).Str("user", user).Msg("Failed to set secret in keychain")
		return fmt.Errorf("%w: %w", ErrKeyringSet, err)
	}
	log.Info().Str("service", keyringServiceName).Str("user", user).Msg("Secret stored successfully in keychain")
	return nil
}

// GetPAT retrieves the Azure DevOps personal access token, preferring the OS
// keychain and falling back to WORKITRON_AZDO_PAT.
func GetPAT() (string, error) {
	return getSecret(keyringPATUserName, EnvPATName, ErrPATNotFound)
}

// SetPAT stores the Azure DevOps personal access token in the OS keychain.
func SetPAT(pat string) error {
	return setSecret(keyringPATUserName, pat)
}

// GetAPIKey retrieves the LLM API key, preferring the OS keychain and falling
// back to WORKITRON_LLM_API_KEY.
func GetAPIKey() (string, error) {
	return getSecret(keyringLLMUserName, EnvAPIKeyName, ErrAPIKeyNotFound)
}

// SetAPIKey stores the LLM API key in the OS keychain.
func SetAPIKey(apiKey string) error {
	return setSecret(keyringLLMUserName, apiKey)
}
