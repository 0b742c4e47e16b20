package cmd

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	keyring "github.com/zalando/go-keyring"

	"github.com/karolswdev/workitron/internal/azdo"
	"github.com/karolswdev/workitron/internal/config"
	"github.com/karolswdev/workitron/internal/llm"
)

// --- Concrete Implementations of Shared Interfaces ---

// DefaultConfigProvider implements the ConfigProvider interface using the
// actual config package functions. Exported for potential use in tests directly.
type DefaultConfigProvider struct{}

func (p *DefaultConfigProvider) LoadConfig() (*config.AppConfig, error) {
	return config.LoadConfig("") // Pass empty string for default behavior
}

func (p *DefaultConfigProvider) LoadSystemPrompt() (string, error) {
	return config.LoadSystemPrompt("")
}

func (p *DefaultConfigProvider) LoadContext() (string, error) {
	return config.LoadContext("")
}

func (p *DefaultConfigProvider) GetAPIKey() (string, error) {
	return config.GetAPIKey()
}

func (p *DefaultConfigProvider) GetPAT() (string, error) {
	return config.GetPAT()
}

// CreateDefaultConfigFiles calls the underlying config function to create default files.
// It ignores the configDir parameter as the underlying function determines the path.
func (p *DefaultConfigProvider) CreateDefaultConfigFiles(configDir string) error {
	return config.CreateDefaultConfigFiles("")
}

// EnsureConfigDir calls the underlying config function to ensure the config directory exists.
func (p *DefaultConfigProvider) EnsureConfigDir() (string, error) {
	return config.EnsureConfigDir("")
}

// --- Gateway Implementation ---

// defaultGateway implements the Gateway interface over an azdo.Client.
type defaultGateway struct {
	client *azdo.Client
}

// newDefaultGateway builds the Azure DevOps gateway from the loaded config and
// the PAT. The URL shape is validated here; token validity is established by
// the first call that uses it.
func newDefaultGateway(cfg *config.AppConfig, pat string) (Gateway, error) {
	creds := azdo.Credentials{
		OrganizationURL: cfg.AzureDevOps.OrganizationURL,
		Project:         cfg.AzureDevOps.Project,
		PAT:             pat,
	}
	client, err := azdo.New(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize work item gateway: %w", err)
	}
	Log.Debug().Str("organization_url", cfg.AzureDevOps.OrganizationURL).Str("project", cfg.AzureDevOps.Project).Msg("Work item gateway created successfully.")
	return &defaultGateway{client: client}, nil
}

func (g *defaultGateway) Create(ctx context.Context, workItemType string, fields azdo.CreateFields, parentID *int) (*azdo.WorkItem, error) {
	return g.client.Create(ctx, workItemType, fields, parentID)
}

func (g *defaultGateway) Update(ctx context.Context, id int, ops []azdo.Operation) (*azdo.WorkItem, error) {
	return g.client.Update(ctx, id, ops)
}

func (g *defaultGateway) Get(ctx context.Context, id int) (*azdo.WorkItem, error) {
	return g.client.Get(ctx, id)
}

func (g *defaultGateway) List(ctx context.Context, f azdo.Filter) ([]azdo.WorkItem, error) {
	return g.client.List(ctx, f)
}

func (g *defaultGateway) ParentRelationOp(parentID int) azdo.Operation {
	return g.client.ParentRelationOp(parentID)
}

// --- Keyring Client Implementation ---

// defaultKeyringClient implements the KeyringClient interface using the actual keyring package.
type defaultKeyringClient struct{}

// Set calls the underlying keyring package's Set function.
func (k *defaultKeyringClient) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

// GetAPIKey calls the underlying config function to retrieve the API key.
// Note: The service and user parameters are currently unused by the underlying
// config.GetAPIKey function but are kept for interface compatibility.
func (k *defaultKeyringClient) GetAPIKey(service, user string) (string, error) {
	return config.GetAPIKey()
}

// GetPAT calls the underlying config function to retrieve the Azure DevOps PAT.
func (k *defaultKeyringClient) GetPAT(service, user string) (string, error) {
	return config.GetPAT()
}

// --- Central Provider ---

// Provider serves as a central dependency injection container, aggregating the
// various service interfaces (ConfigProvider, Gateway, KeyringClient, llm.Client)
// required by the application's commands. This structure simplifies passing
// dependencies down the call stack and facilitates mocking during testing.
type Provider struct {
	Config  ConfigProvider
	Gateway Gateway
	Keyring KeyringClient
	LLM     llm.Client
}

// GetProvider is the factory function responsible for initializing and
// returning a fully configured Provider instance. It handles loading the
// initial application configuration and attempts to initialize the work item
// gateway and the LLM client where configured. Errors during critical
// initialization steps (loading AppConfig) are returned; warnings are logged
// for non-critical failures (missing PAT, missing API key) so commands that do
// not need those services still function.
func GetProvider() (*Provider, error) {
	cfgProvider := &DefaultConfigProvider{}
	appCfg, err := cfgProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load application config: %w", err)
	}

	// Initialize the gateway only when the connection is configured; commands
	// needing it surface a setup hint when it is nil.
	var gateway Gateway
	if appCfg.AzureDevOps.OrganizationURL != "" && appCfg.AzureDevOps.Project != "" {
		pat, patErr := cfgProvider.GetPAT()
		if patErr != nil {
			Log.Warn().Err(patErr).Msg("Failed to get Azure DevOps PAT during provider setup. Work item operations might fail.")
		} else {
			gateway, err = newDefaultGateway(appCfg, pat)
			if err != nil {
				Log.Warn().Err(err).Msg("Failed to initialize work item gateway during provider setup. Work item operations might fail.")
			}
		}
	} else {
		Log.Debug().Msg("Azure DevOps organization URL or project not configured. Gateway not initialized.")
	}

	keyringClient := &defaultKeyringClient{}

	// Initialize LLM Client based on config
	var llmClient llm.Client
	apiKey, keyErr := cfgProvider.GetAPIKey()
	if keyErr != nil {
		Log.Warn().Err(keyErr).Msg("Failed to get LLM API key during provider setup. LLM operations might fail.")
	}

	switch appCfg.LLM.Provider {
	case "openai":
		if keyErr == nil {
			Log.Debug().Str("provider", "openai").Msg("Initializing OpenAI LLM client")
			openAIConfig := openai.DefaultConfig(apiKey)
			if appCfg.LLM.OpenAI.BaseURL != "" {
				openAIConfig.BaseURL = appCfg.LLM.OpenAI.BaseURL
				Log.Debug().Str("baseURLUsed", openAIConfig.BaseURL).Msg("Using custom OpenAI BaseURL")
			}
			openaiSdkClient := openai.NewClientWithConfig(openAIConfig)
			llmClient, err = llm.NewOpenAIClient(openaiSdkClient, appCfg.LLM.OpenAI.ModelName)
			if err != nil {
				Log.Warn().Err(err).Msg("Failed to initialize OpenAI client. LLM operations might fail.")
			}
		} else {
			Log.Warn().Msg("OpenAI provider selected but API key retrieval failed. LLM client not initialized.")
		}
	default:
		Log.Warn().Str("provider", appCfg.LLM.Provider).Msg("Unsupported LLM provider specified in config. LLM client not initialized.")
	}

	provider := &Provider{
		Config:  cfgProvider,
		Gateway: gateway, // Might be nil if the connection is not configured
		Keyring: keyringClient,
		LLM:     llmClient, // Might be nil if the API key is missing
	}

	Log.Debug().Msg("Service Provider initialized successfully.")
	return provider, nil
}
