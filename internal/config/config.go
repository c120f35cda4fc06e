package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"

	"github.com/spf13/viper"

	"github.com/karolswdev/careplan/internal/llm"
	"github.com/karolswdev/careplan/internal/syllabus"
)

const (
	// DefaultConfigFileName is the standard name for the main configuration file.
	DefaultConfigFileName = "config.yaml"
	// DefaultPromptFileName is the standard name for the system prompt override.
	DefaultPromptFileName = "system_prompt.txt"
	// DefaultContextFileName is the standard name for the student notes file.
	DefaultContextFileName = "context.md"
	// DefaultSyllabusFileName is the standard name for the syllabus catalog override.
	DefaultSyllabusFileName = syllabus.DefaultFileName
	// DefaultDotEnvFileName is loaded from the working directory and the config directory.
	DefaultDotEnvFileName = ".env"
	// DefaultConfigDirName is the standard name for the configuration directory within the user's home directory.
	DefaultConfigDirName = ".careplan"
	// ConfigDirEnvVar is the environment variable used to override the default configuration directory path.
	ConfigDirEnvVar = "CAREPLAN_CONFIG_DIR"
	// EnvPrefix prefixes every environment override of a config key (CAREPLAN_LLM_PROVIDER, ...).
	EnvPrefix = "CAREPLAN"
)

// EnsureConfigDir checks if the configuration directory exists, creating it if necessary.
// It prioritizes baseDir if provided. If baseDir is empty, it checks the CAREPLAN_CONFIG_DIR
// environment variable, and falls back to ~/.careplan.
// The directory is created with 0700 permissions.
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
			log.Info().Str("path", configDirPath).Msg("Successfully created config directory")
			return configDirPath, nil
		}
		log.Error().Err(err).Str("path", configDirPath).Msg("Failed to stat config directory path")
		return "", fmt.Errorf("%w: %w", ErrConfigDirStat, err)
	}

	if !info.IsDir() {
		log.Error().Str("path", configDirPath).Msg("Config path exists but is not a directory")
		return "", ErrConfigDirNotDir
	}

	log.Debug().Str("path", configDirPath).Msg("Config directory exists and is a directory")
	return configDirPath, nil
}

// GeminiConfig holds configuration specific to the Gemini provider.
type GeminiConfig struct {
	ModelName string `mapstructure:"model_name" json:"model_name" yaml:"model_name"`
}

// OpenAIConfig holds configuration specific to the OpenAI provider.
type OpenAIConfig struct {
	ModelName string `mapstructure:"model_name" json:"model_name" yaml:"model_name"`
	BaseURL   string `mapstructure:"base_url" json:"base_url,omitempty" yaml:"base_url,omitempty"` // Optional custom base URL
}

// AnthropicConfig holds configuration specific to the Anthropic provider.
type AnthropicConfig struct {
	ModelName string `mapstructure:"model_name" json:"model_name" yaml:"model_name"`
	BaseURL   string `mapstructure:"base_url" json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MaxTokens int64  `mapstructure:"max_tokens" json:"max_tokens" yaml:"max_tokens"`
}

// LLMConfig selects the generative provider. The API key is not part of it; see GetAPIKey.
type LLMConfig struct {
	Provider  string          `mapstructure:"provider" json:"provider" yaml:"provider"` // gemini, openai, anthropic or mock
	Gemini    GeminiConfig    `mapstructure:"gemini" json:"gemini" yaml:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai" json:"openai" yaml:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic" json:"anthropic" yaml:"anthropic"`
}

// ServerConfig configures `careplan serve`.
type ServerConfig struct {
	Address          string `mapstructure:"address" json:"address" yaml:"address"`
	MaxInflight      int    `mapstructure:"max_inflight" json:"max_inflight" yaml:"max_inflight"`
	ShowErrorDetails bool   `mapstructure:"show_error_details" json:"show_error_details" yaml:"show_error_details"`
}

// PlanDefaults pre-fills the form and the generate flags.
type PlanDefaults struct {
	DailyHours int    `mapstructure:"daily_hours" json:"daily_hours" yaml:"daily_hours"`
	Confidence string `mapstructure:"confidence" json:"confidence" yaml:"confidence"`
}

// AppConfig holds the overall application configuration.
type AppConfig struct {
	LLM    LLMConfig    `mapstructure:"llm" json:"llm" yaml:"llm"`
	Server ServerConfig `mapstructure:"server" json:"server" yaml:"server"`
	Plan   PlanDefaults `mapstructure:"plan" json:"plan" yaml:"plan"`
}

// LoadDotEnv loads .env from the working directory and then from configDir.
// Variables already present in the environment are never overwritten, and missing files are skipped.
func LoadDotEnv(configDir string) error {
	candidates := []string{DefaultDotEnvFileName}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, DefaultDotEnvFileName))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("%w: %w", ErrDotEnvRead, err)
		}
		if err := godotenv.Load(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to load .env file")
			return fmt.Errorf("%w: %w", ErrDotEnvRead, err)
		}
		log.Debug().Str("path", path).Msg("Loaded .env file")
	}
	return nil
}

// LoadConfig loads the application configuration from baseDir/config.yaml (or ~/.careplan),
// environment variables (CAREPLAN_*), and defaults. A .env file is applied first.
func LoadConfig(baseDir string) (*AppConfig, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure config directory: %w", err)
	}

	if err := LoadDotEnv(configDir); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("llm.provider", llm.ProviderGemini)
	v.SetDefault("llm.gemini.model_name", llm.DefaultGeminiModel)
	v.SetDefault("llm.openai.model_name", "gpt-4o")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.anthropic.model_name", llm.DefaultAnthropicModel)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.anthropic.max_tokens", llm.DefaultAnthropicMaxTokens)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_inflight", 4)
	v.SetDefault("server.show_error_details", false)
	v.SetDefault("plan.daily_hours", 4)
	v.SetDefault("plan.confidence", "medium")

	configPath := filepath.Join(configDir, DefaultConfigFileName)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	log.Debug().Str("path", configPath).Msg("Attempting to load config file")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // llm.gemini.model_name -> CAREPLAN_LLM_GEMINI_MODEL_NAME

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warn().Str("path", configPath).Msg("Config file not found. Using defaults and environment variables.")
		} else {
			log.Error().Err(err).Str("path", configPath).Msg("Failed to read config file")
			return nil, fmt.Errorf("%w: %w", ErrConfigRead, err)
		}
	} else {
		log.Debug().Str("path", configPath).Msg("Read config file successfully")
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("Failed to unmarshal config file")
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	log.Debug().Str("path", configPath).Interface("config", cfg).Msg("Unmarshalled config successfully")

	return &cfg, nil
}

// readSideFile returns the content of name inside the config directory, or "" when it does not exist.
func readSideFile(baseDir, name string, readErr error) (string, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to ensure config directory for %s: %w", name, err)
	}

	path := filepath.Join(configDir, name)
	log.Debug().Str("path", path).Msg("Attempting to load file")

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("File not found, returning empty string")
			return "", nil
		}
		log.Error().Err(err).Str("path", path).Msg("Failed to read file")
		return "", fmt.Errorf("%w: %w", readErr, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(fileBytes)).Msg("Read file successfully")
	return string(fileBytes), nil
}

// LoadSystemPrompt loads the system prompt override from baseDir/system_prompt.txt.
// It returns an empty string if the file doesn't exist, in which case the built-in prompt applies.
func LoadSystemPrompt(baseDir string) (string, error) {
	return readSideFile(baseDir, DefaultPromptFileName, ErrSystemPromptRead)
}

// LoadContext loads the student notes from baseDir/context.md with comment lines
// (starting with '#') removed. It returns an empty string if the file doesn't exist.
func LoadContext(baseDir string) (string, error) {
	raw, err := readSideFile(baseDir, DefaultContextFileName, ErrContextRead)
	if err != nil {
		return "", err
	}
	return StripComments(raw), nil
}

// StripComments drops lines starting with '#' and trims the result.
func StripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// LoadSyllabus returns the catalog from baseDir/syllabus.yaml, or the built-in catalog
// when no override exists.
func LoadSyllabus(baseDir string) (*syllabus.Catalog, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure config directory for syllabus: %w", err)
	}
	c, err := syllabus.LoadFile(filepath.Join(configDir, DefaultSyllabusFileName))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return syllabus.Default(), nil
	}
	return c, nil
}

// --- Default File Creation ---

const defaultConfigYAML = `# User-specific configuration for the CarePlan CLI (careplan)
# Located at ~/.careplan/config.yaml

# Generative-text provider used to write study plans.
llm:
  # One of "gemini", "openai", "anthropic" or "mock" (offline sample plan).
  provider: "gemini"

  gemini:
    model_name: "gemini-2.5-flash"

  openai:
    model_name: "gpt-4o"
    # Optional: custom base URL (proxies, compatible servers)
    # base_url: ""

  anthropic:
    model_name: "claude-sonnet-4-20250514"
    max_tokens: 8192
    # base_url: ""

  # The API key is NOT stored here. Use 'careplan config set-key' or set
  # CAREPLAN_LLM_API_KEY (or API_KEY) in the environment or a .env file.

# Web form served by 'careplan serve'.
server:
  address: ":8080"
  # Maximum concurrent plan generations before requests get 429.
  max_inflight: 4
  # Show the raw provider error text on the "Connection Failed" page.
  show_error_details: false

# Defaults for the form and 'careplan generate'.
plan:
  daily_hours: 4
  confidence: "medium" # low, medium or high
`

const defaultContextMD = `# Study notes for CarePlan
# -------------------------
# Anything written here (outside comment lines) is added to every plan request
# under STUDENT NOTES. Lines starting with '#' are ignored.
#
# Examples:
# - I study best in the morning.
# - Friday afternoons are reserved for coaching classes.
# - I am weak at numerical problems in Physics.
`

// writeFileIfNotExists checks if a file exists. If not, it writes the provided content.
func writeFileIfNotExists(filePath string, content []byte, perm os.FileMode) error {
	_, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", filePath).Msg("File does not exist, attempting to write default content")
			if errWrite := os.WriteFile(filePath, content, perm); errWrite != nil {
				log.Error().Err(errWrite).Str("path", filePath).Msg("Failed to write default file content")
				return fmt.Errorf("%w: %w", ErrDefaultFileWrite, errWrite)
			}
			log.Info().Str("path", filePath).Msg("Successfully wrote default file content")
			return nil
		}
		log.Error().Err(err).Str("path", filePath).Msg("Failed to stat file path")
		return fmt.Errorf("%w: %w", ErrDefaultFileStat, err)
	}
	log.Debug().Str("path", filePath).Msg("File already exists, no action needed")
	return nil
}

// DefaultFiles lists the files CreateDefaultConfigFiles writes, in order.
func DefaultFiles() []string {
	return []string{DefaultConfigFileName, DefaultPromptFileName, DefaultContextFileName, DefaultSyllabusFileName}
}

// CreateDefaultConfigFiles ensures the configuration directory exists and writes
// config.yaml, system_prompt.txt, context.md and syllabus.yaml into it when absent.
// Existing files are left untouched.
func CreateDefaultConfigFiles(baseDir string, defaultSystemPrompt string) error {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	filesToCreate := []struct {
		name    string
		content []byte
		perm    os.FileMode
	}{
		{DefaultConfigFileName, []byte(defaultConfigYAML), 0600},
		{DefaultPromptFileName, []byte(defaultSystemPrompt + "\n"), 0644},
		{DefaultContextFileName, []byte(defaultContextMD), 0644},
		{DefaultSyllabusFileName, syllabus.DefaultYAML(), 0644},
	}

	for _, file := range filesToCreate {
		filePath := filepath.Join(configDir, file.name)
		log.Debug().Str("file", file.name).Msg("Ensuring default file")
		if err := writeFileIfNotExists(filePath, file.content, file.perm); err != nil {
			return err
		}
	}

	return nil
}

// --- API Key Handling ---

const (
	KeyringService = "careplan"
	KeyringUser    = "llm_api_key"
	// EnvAPIKeyName is the primary environment variable for the LLM API key.
	EnvAPIKeyName = "CAREPLAN_LLM_API_KEY"
	// EnvFallbackAPIKeyName is the generic variable checked last.
	EnvFallbackAPIKeyName = "API_KEY"
)

// ErrAPIKeyNotFound is returned when the API key cannot be found in any source.
// It wraps llm.ErrAPIKeyMissing so callers can treat both the same way.
var ErrAPIKeyNotFound = fmt.Errorf("%w: not found in OS keychain or environment variables %s, %s",
	llm.ErrAPIKeyMissing, EnvAPIKeyName, EnvFallbackAPIKeyName)

// GetAPIKey retrieves the LLM API key. The OS keychain (service "careplan", user
// "llm_api_key") is tried first, then CAREPLAN_LLM_API_KEY, then API_KEY.
// Values that are blank or "undefined" are skipped. A keychain that cannot be read
// (no session bus on a headless host) is logged and the environment is still checked;
// ErrKeyringGet is returned only when no environment key exists either.
func GetAPIKey() (string, error) {
	log.Debug().Str("service", KeyringService).Str("user", KeyringUser).Msg("Attempting to get API key from keychain")
	key, keyringErr := keyring.Get(KeyringService, KeyringUser)
	switch {
	case keyringErr == nil && !llm.KeyMissing(key):
		log.Debug().Msg("API key retrieved successfully (from keychain)")
		return strings.TrimSpace(key), nil
	case errors.Is(keyringErr, keyring.ErrNotFound):
		keyringErr = nil
	case keyringErr != nil:
		log.Warn().Err(keyringErr).Str("service", KeyringService).Str("user", KeyringUser).Msg("Error reading key from keychain, checking environment")
	}

	for _, name := range []string{EnvAPIKeyName, EnvFallbackAPIKeyName} {
		log.Debug().Str("env_var", name).Msg("Checking environment variable for API key")
		if key := os.Getenv(name); !llm.KeyMissing(key) {
			log.Debug().Str("env_var", name).Msg("API key retrieved successfully (from env var)")
			return strings.TrimSpace(key), nil
		}
	}

	if keyringErr != nil {
		log.Error().Err(keyringErr).Msg("API key not found in environment and keychain is unavailable")
		return "", fmt.Errorf("%w: %w", ErrKeyringGet, keyringErr)
	}
	log.Warn().Str("env_var", EnvAPIKeyName).Msg("API key not found in keychain or environment")
	return "", ErrAPIKeyNotFound
}

// SetAPIKey stores the LLM API key in the OS keychain.
func SetAPIKey(apiKey string) error {
	log.Debug().Str("service", KeyringService).Str("user", KeyringUser).Msg("Attempting to set API key in keychain")
	if err := keyring.Set(KeyringService, KeyringUser, apiKey); err != nil {
		log.Error().Err(err).Str("service", KeyringService).Str("user", KeyringUser).Msg("Failed to set API key in keychain")
		return fmt.Errorf("%w: %w", ErrKeyringSet, err)
	}
	log.Info().Str("service", KeyringService).Str("user", KeyringUser).Msg("API key stored successfully in keychain")
	return nil
}
