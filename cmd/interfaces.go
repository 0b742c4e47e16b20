package cmd

import (
	"context"

	"github.com/karolswdev/workitron/internal/azdo"
	"github.com/karolswdev/workitron/internal/config"
)

// ConfigProvider defines an interface for components that load various
// configuration aspects of the Workitron application, such as the main config,
// prompts, context, and secrets. It also includes methods for managing the
// configuration directory and default files. This abstraction allows for easier
// testing by mocking configuration loading behavior.
type ConfigProvider interface {
	LoadConfig() (*config.AppConfig, error)
	LoadSystemPrompt() (string, error)
	LoadContext() (string, error)
	GetAPIKey() (string, error)
	GetPAT() (string, error)
	CreateDefaultConfigFiles(configDir string) error
	EnsureConfigDir() (string, error)
}

// Gateway defines an interface for components that talk to the Azure DevOps
// work item tracking API. It abstracts the create, update, get, and list
// operations so commands can be tested against a mock.
type Gateway interface {
	Create(ctx context.Context, workItemType string, fields azdo.CreateFields, parentID *int) (*azdo.WorkItem, error)
	Update(ctx context.Context, id int, ops []azdo.Operation) (*azdo.WorkItem, error)
	Get(ctx context.Context, id int) (*azdo.WorkItem, error)
	List(ctx context.Context, f azdo.Filter) ([]azdo.WorkItem, error)
	ParentRelationOp(parentID int) azdo.Operation
}

// KeyringClient defines an interface for components that interact with the
// operating system's secure credential store (keychain/keyring). It abstracts
// the operations of setting and retrieving secrets: the Azure DevOps PAT and
// the LLM API key.
type KeyringClient interface {
	Set(service, user, password string) error
	GetAPIKey(service, user string) (string, error)
	GetPAT(service, user string) (string, error)
}
