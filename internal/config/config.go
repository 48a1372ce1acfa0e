// Package config handles configuration loading and management for Urban.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Urban.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Vapi      VapiConfig      `mapstructure:"vapi"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Server    ServerConfig    `mapstructure:"server"`
	Watch     WatchConfig     `mapstructure:"watch"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// Model is the default model identifier; empty selects the built-in default.
	Model string `mapstructure:"model"`
	// UseBedrock routes generation through AWS Bedrock instead of the direct API.
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// VapiConfig holds outbound-calling settings.
type VapiConfig struct {
	APIKey        string `mapstructure:"api_key"`
	PhoneNumberID string `mapstructure:"phone_number_id"`
	// BaseURL overrides the Vapi endpoint, mainly for testing.
	BaseURL string `mapstructure:"base_url"`
}

// GeoConfig holds map-rendering settings.
type GeoConfig struct {
	// Command launches the map rendering tool server over stdio.
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// DefaultsConfig holds default task settings.
type DefaultsConfig struct {
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// ServerConfig holds the websocket server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// WatchConfig holds the policy document inbox settings.
type WatchConfig struct {
	InboxDir string `mapstructure:"inbox_dir"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, VAPI_API_KEY, VAPI_PHONE_NUMBER_ID)
// 2. Project config (.urban.yaml in current directory or parent)
// 3. User config (~/.config/urban/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("vapi.api_key", "VAPI_API_KEY")
	v.BindEnv("vapi.phone_number_id", "VAPI_PHONE_NUMBER_ID")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Vapi.APIKey = expandEnv(cfg.Vapi.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Vapi.APIKey = expandEnv(cfg.Vapi.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("vapi.api_key", cfg.Vapi.APIKey)
	v.Set("vapi.phone_number_id", cfg.Vapi.PhoneNumberID)
	v.Set("geo.command", cfg.Geo.Command)
	v.Set("geo.args", cfg.Geo.Args)
	v.Set("defaults.temperature", cfg.Defaults.Temperature)
	v.Set("defaults.max_tokens", cfg.Defaults.MaxTokens)
	v.Set("defaults.timeout_seconds", cfg.Defaults.TimeoutSeconds)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("watch.inbox_dir", cfg.Watch.InboxDir)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Watch: WatchConfig{
			InboxDir: "inbox",
		},
		Vapi: VapiConfig{
			BaseURL: "https://api.vapi.ai",
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("vapi.base_url", "https://api.vapi.ai")

	v.SetDefault("defaults.temperature", 0.7)
	v.SetDefault("defaults.max_tokens", 4096)
	v.SetDefault("defaults.timeout_seconds", 0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("watch.inbox_dir", "inbox")
	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for Urban.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "urban")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "urban")
	}
	return filepath.Join(home, ".config", "urban")
}

// findProjectConfig searches for .urban.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".urban.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
