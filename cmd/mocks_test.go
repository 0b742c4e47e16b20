package cmd

import (
	"github.com/stretchr/testify/mock"

	"github.com/karolswdev/workitron/internal/config"
)

// --- Mock ConfigProvider ---

type MockConfigProvider struct {
	mock.Mock
}

// LoadConfig matches ConfigProvider interface
func (m *MockConfigProvider) LoadConfig() (*config.AppConfig, error) {
	args := m.Called()
	cfg, _ := args.Get(0).(*config.AppConfig)
	return cfg, args.Error(1)
}

// LoadSystemPrompt matches ConfigProvider interface
func (m *MockConfigProvider) LoadSystemPrompt() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// LoadContext matches ConfigProvider interface
func (m *MockConfigProvider) LoadContext() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// GetAPIKey matches ConfigProvider interface
func (m *MockConfigProvider) GetAPIKey() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// GetPAT matches ConfigProvider interface
func (m *MockConfigProvider) GetPAT() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// CreateDefaultConfigFiles matches ConfigProvider interface signature
func (m *MockConfigProvider) CreateDefaultConfigFiles(configDir string) error {
	args := m.Called(configDir)
	return args.Error(0)
}

// EnsureConfigDir matches ConfigProvider interface
func (m *MockConfigProvider) EnsureConfigDir() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// --- Mock KeyringClient ---

type MockKeyringClient struct {
	mock.Mock // Implements KeyringClient
}

// Set matches KeyringClient interface
func (m *MockKeyringClient) Set(service, user, password string) error {
	args := m.Called(service, user, password)
	return args.Error(0)
}

// GetAPIKey matches KeyringClient interface
func (m *MockKeyringClient) GetAPIKey(service, user string) (string, error) {
	args := m.Called(service, user)
	return args.String(0), args.Error(1)
}

// GetPAT matches KeyringClient interface
func (m *MockKeyringClient) GetPAT(service, user string) (string, error) {
	args := m.Called(service, user)
	return args.String(0), args.Error(1)
}
