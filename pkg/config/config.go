package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAdapter = "google"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 2 * time.Minute
)

// Config holds the application configuration.
type Config struct {
	GoogleAPIKey       string
	AnthropicAPIKey    string
	OpenAIAPIKey       string
	DeepSeekAPIKey     string
	GoogleSearchAPIKey string
	GoogleCSEID        string
	TavilyAPIKey       string

	Defaults Defaults
	Stages   map[string]map[string]RouteTarget
	Aliases  *ModelAliases

	ConfigDir string
}

// Defaults are applied when a command does not say otherwise.
type Defaults struct {
	Adapter     string
	Model       string
	Timeout     time.Duration
	HistoryDB   string
	EvidenceDir string
}

// RouteTarget specifies an adapter and model combination.
type RouteTarget struct {
	Adapter string `yaml:"adapter"`
	Model   string `yaml:"model"`
}

// FileConfig represents the structure of ~/.quill/config.yaml
type FileConfig struct {
	APIKeys  APIKeysConfig                     `yaml:"api_keys"`
	Defaults DefaultsConfig                    `yaml:"defaults"`
	Stages   map[string]map[string]RouteTarget `yaml:"stages"`
	Aliases  map[string]string                 `yaml:"aliases"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Google       string `yaml:"google"`
	Anthropic    string `yaml:"anthropic"`
	OpenAI       string `yaml:"openai"`
	DeepSeek     string `yaml:"deepseek"`
	GoogleSearch string `yaml:"google_search"`
	GoogleCSEID  string `yaml:"google_cse_id"`
	Tavily       string `yaml:"tavily"`
}

// DefaultsConfig holds the defaults section of the config file.
type DefaultsConfig struct {
	Adapter     string `yaml:"adapter"`
	Model       string `yaml:"model"`
	Timeout     string `yaml:"timeout"`
	HistoryDB   string `yaml:"history_db"`
	EvidenceDir string `yaml:"evidence_dir"`
}

// Load reads configuration from the config file and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return LoadFrom(configDir)
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(configDir string) (*Config, error) {
	fileConfig, err := loadFileConfig(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GoogleAPIKey:       getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		AnthropicAPIKey:    getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:       getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		DeepSeekAPIKey:     getEnvOrDefault("DEEPSEEK_API_KEY", fileConfig.APIKeys.DeepSeek),
		GoogleSearchAPIKey: getEnvOrDefault("GOOGLE_SEARCH_API_KEY", fileConfig.APIKeys.GoogleSearch),
		GoogleCSEID:        getEnvOrDefault("GOOGLE_CSE_ID", fileConfig.APIKeys.GoogleCSEID),
		TavilyAPIKey:       getEnvOrDefault("TAVILY_API_KEY", fileConfig.APIKeys.Tavily),
		Stages:             fileConfig.Stages,
		Aliases:            DefaultAliases().Merge(fileConfig.Aliases),
		ConfigDir:          configDir,
	}

	d := fileConfig.Defaults
	cfg.Defaults = Defaults{
		Adapter:     getEnvOrDefault("QUILL_ADAPTER", d.Adapter),
		Model:       getEnvOrDefault("QUILL_MODEL", orDefault(d.Model, defaultModel)),
		Timeout:     defaultTimeout,
		HistoryDB:   resolvePath(configDir, orDefault(d.HistoryDB, "history.db")),
		EvidenceDir: d.EvidenceDir,
	}
	if cfg.Defaults.Adapter == "" {
		cfg.Defaults.Adapter = orDefault(cfg.Aliases.ProviderForModel(cfg.Aliases.Resolve(cfg.Defaults.Model)), defaultAdapter)
	}
	if cfg.Defaults.EvidenceDir != "" {
		cfg.Defaults.EvidenceDir = resolvePath(configDir, cfg.Defaults.EvidenceDir)
	}
	if raw := getEnvOrDefault("QUILL_TIMEOUT", d.Timeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
		cfg.Defaults.Timeout = timeout
	}

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

// StageOverride returns the configured adapter/model for one stage of a
// pipeline, if any.
func (c *Config) StageOverride(pipelineName, stageName string) (RouteTarget, bool) {
	stages, ok := c.Stages[pipelineName]
	if !ok {
		return RouteTarget{}, false
	}
	target, ok := stages[stageName]
	return target, ok
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func getConfigDir() (string, error) {
	configDir := os.Getenv("QUILL_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".quill")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return configDir, nil
}
