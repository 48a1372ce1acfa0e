package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ShryukGrandhi/urban/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Urban configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/urban/config.yaml
Project-specific overrides can be placed in .urban.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Println("Configuration:")
	fmt.Printf("  anthropic.api_key:        %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("  anthropic.model:          %s\n", orDefault(cfg.Anthropic.Model, "(built-in default)"))
	fmt.Printf("  anthropic.use_bedrock:    %v\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("  vapi.api_key:             %s\n", config.MaskAPIKey(cfg.Vapi.APIKey))
	fmt.Printf("  vapi.phone_number_id:     %s\n", orDefault(cfg.Vapi.PhoneNumberID, "(not set)"))
	fmt.Printf("  geo.command:              %s\n", orDefault(cfg.Geo.Command, "(not set)"))
	fmt.Printf("  defaults.temperature:     %g\n", cfg.Defaults.Temperature)
	fmt.Printf("  defaults.max_tokens:      %d\n", cfg.Defaults.MaxTokens)
	fmt.Printf("  defaults.timeout_seconds: %d\n", cfg.Defaults.TimeoutSeconds)
	fmt.Printf("  server.addr:              %s\n", cfg.Server.Addr)
	fmt.Printf("  watch.inbox_dir:          %s\n", cfg.Watch.InboxDir)
	fmt.Printf("\nUser config:    %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("Project config: %s\n", project)
	}
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	switch key {
	case "anthropic.api_key":
		fmt.Println(config.MaskAPIKey(cfg.Anthropic.APIKey))
	case "anthropic.model":
		fmt.Println(cfg.Anthropic.Model)
	case "anthropic.use_bedrock":
		fmt.Println(cfg.Anthropic.UseBedrock)
	case "vapi.api_key":
		fmt.Println(config.MaskAPIKey(cfg.Vapi.APIKey))
	case "vapi.phone_number_id":
		fmt.Println(cfg.Vapi.PhoneNumberID)
	case "geo.command":
		fmt.Println(cfg.Geo.Command)
	case "defaults.temperature":
		fmt.Println(cfg.Defaults.Temperature)
	case "defaults.max_tokens":
		fmt.Println(cfg.Defaults.MaxTokens)
	case "defaults.timeout_seconds":
		fmt.Println(cfg.Defaults.TimeoutSeconds)
	case "server.addr":
		fmt.Println(cfg.Server.Addr)
	case "watch.inbox_dir":
		fmt.Println(cfg.Watch.InboxDir)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}
}

// setConfigKey updates a configuration value and saves it.
func setConfigKey(cfg *config.Config, key, value string) {
	switch key {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		cfg.Anthropic.UseBedrock = value == "true"
	case "vapi.api_key":
		cfg.Vapi.APIKey = value
	case "vapi.phone_number_id":
		cfg.Vapi.PhoneNumberID = value
	case "geo.command":
		cfg.Geo.Command = value
	case "defaults.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid temperature: %s\n", value)
			os.Exit(1)
		}
		cfg.Defaults.Temperature = f
	case "defaults.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid max_tokens: %s\n", value)
			os.Exit(1)
		}
		cfg.Defaults.MaxTokens = n
	case "defaults.timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid timeout_seconds: %s\n", value)
			os.Exit(1)
		}
		cfg.Defaults.TimeoutSeconds = n
	case "server.addr":
		cfg.Server.Addr = value
	case "watch.inbox_dir":
		cfg.Watch.InboxDir = value
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s\n", key)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
