package main

import (
	"context"
	"log"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShryukGrandhi/urban/internal/capability"
	"github.com/ShryukGrandhi/urban/internal/config"
	"github.com/ShryukGrandhi/urban/internal/orchestrator"
	"github.com/ShryukGrandhi/urban/internal/provider"
)

// buildProvider creates the generation client from configuration.
func buildProvider(cfg *config.Config) (*provider.Client, error) {
	apiKey := ""
	if !cfg.Anthropic.UseBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	return provider.NewClient(provider.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
}

// buildCapabilities assembles the optional external capabilities. Missing
// credentials leave a capability absent; only the categories that need it
// degrade.
func buildCapabilities(ctx context.Context, cfg *config.Config) orchestrator.Capabilities {
	var caps orchestrator.Capabilities

	if apiKey, phoneNumberID := config.GetVapiCredentials(cfg); apiKey != "" && phoneNumberID != "" {
		tel, err := capability.NewVapiClient(capability.VapiConfig{
			APIKey:        apiKey,
			PhoneNumberID: phoneNumberID,
			BaseURL:       cfg.Vapi.BaseURL,
		})
		if err != nil {
			log.Printf("[urban] telephony disabled: %v", err)
		} else {
			caps.Telephony = tel
		}
	}

	if cfg.Geo.Command != "" {
		geo, err := capability.NewMCPGeoClient(ctx, cfg.Geo.Command, os.Environ(), cfg.Geo.Args...)
		if err != nil {
			log.Printf("[urban] map rendering disabled: %v", err)
		} else {
			caps.Geo = geo
		}
	}

	return caps
}

// buildOrchestrator wires the provider, capabilities, and registry into an
// orchestrator with the given extra options.
func buildOrchestrator(ctx context.Context, cfg *config.Config, opts ...orchestrator.Option) (*orchestrator.Orchestrator, *provider.Client, error) {
	client, err := buildProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	registry := orchestrator.NewRegistry(client, buildCapabilities(ctx, cfg))
	return orchestrator.New(registry, opts...), client, nil
}
