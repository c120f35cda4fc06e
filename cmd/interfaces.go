package cmd

import (
	"github.com/karolswdev/careplan/internal/config"
	"github.com/karolswdev/careplan/internal/syllabus"
)

// ConfigProvider defines an interface for components that load the configuration
// of the CarePlan application: the main config, the system prompt, the student's
// context notes, the syllabus catalog and the API key. It also manages the
// configuration directory and its default files. This abstraction allows commands
// to be tested with mocked configuration loading.
type ConfigProvider interface {
	LoadConfig() (*config.AppConfig, error)
	LoadSystemPrompt() (string, error)
	LoadContext() (string, error)
	LoadSyllabus() (*syllabus.Catalog, error)
	GetAPIKey() (string, error)
	CreateDefaultConfigFiles(configDir string) error
	EnsureConfigDir() (string, error)
}

// KeyringClient defines an interface for components that interact with the
// operating system's secure credential store. It abstracts setting and
// retrieving the LLM API key.
type KeyringClient interface {
	Set(service, user, password string) error
	GetAPIKey(service, user string) (string, error)
}
