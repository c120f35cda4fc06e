package cmd

import (
	"github.com/stretchr/testify/mock"

	"github.com/karolswdev/careplan/internal/config"
	"github.com/karolswdev/careplan/internal/syllabus"
)

// --- Mock ConfigProvider ---

type MockConfigProvider struct {
	mock.Mock
}

func (m *MockConfigProvider) LoadConfig() (*config.AppConfig, error) {
	args := m.Called()
	cfg, _ := args.Get(0).(*config.AppConfig)
	return cfg, args.Error(1)
}

func (m *MockConfigProvider) LoadSystemPrompt() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockConfigProvider) LoadContext() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockConfigProvider) LoadSyllabus() (*syllabus.Catalog, error) {
	args := m.Called()
	cat, _ := args.Get(0).(*syllabus.Catalog)
	return cat, args.Error(1)
}

func (m *MockConfigProvider) GetAPIKey() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockConfigProvider) CreateDefaultConfigFiles(configDir string) error {
	args := m.Called(configDir)
	return args.Error(0)
}

func (m *MockConfigProvider) EnsureConfigDir() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// --- Mock KeyringClient ---

type MockKeyringClient struct {
	mock.Mock
}

func (m *MockKeyringClient) Set(service, user, password string) error {
	args := m.Called(service, user, password)
	return args.Error(0)
}

func (m *MockKeyringClient) GetAPIKey(service, user string) (string, error) {
	args := m.Called(service, user)
	return args.String(0), args.Error(1)
}
