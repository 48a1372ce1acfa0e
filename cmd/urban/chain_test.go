package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ShryukGrandhi/urban/internal/config"
	"github.com/ShryukGrandhi/urban/pkg/models"
)

func writeWorkflow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWorkflow(t *testing.T) {
	path := writeWorkflow(t, `
name: closure-study
simulation_data:
  scenario: close 5th Avenue
stages:
  - category: simulation
    description: Model the closure
    temperature: 0.4
  - category: report
    description: Brief the council
    max_tokens: 2048
`)

	workflow, err := loadWorkflow(path)
	if err != nil {
		t.Fatalf("loadWorkflow: %v", err)
	}

	if workflow.Name != "closure-study" {
		t.Errorf("name = %q", workflow.Name)
	}
	if workflow.SimulationData["scenario"] != "close 5th Avenue" {
		t.Errorf("simulation data = %v", workflow.SimulationData)
	}
	if len(workflow.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(workflow.Stages))
	}
	if workflow.Stages[0].Category != models.CategorySimulation || workflow.Stages[0].Temperature != 0.4 {
		t.Errorf("stage 1 = %+v", workflow.Stages[0])
	}
	if workflow.Stages[1].MaxTokens != 2048 {
		t.Errorf("stage 2 max_tokens = %d", workflow.Stages[1].MaxTokens)
	}
}

func TestLoadWorkflowValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no stages", "name: empty\n"},
		{"unknown category", "stages:\n  - category: astrology\n    description: x\n"},
		{"missing description", "stages:\n  - category: report\n"},
		{"bad yaml", "stages: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkflow(t, tt.content)
			if _, err := loadWorkflow(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStageRequestLayersOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Defaults.Temperature = 0.5
	cfg.Defaults.MaxTokens = 1000
	cfg.Defaults.TimeoutSeconds = 60

	stage := WorkflowStage{
		Category:    models.CategoryDebate,
		Description: "argue both sides",
		Temperature: 0.9,
		Model:       "claude-opus-4",
	}

	req := stage.request(cfg)
	if req.Config.Temperature != 0.9 {
		t.Errorf("temperature = %v, want stage override", req.Config.Temperature)
	}
	if req.Config.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d, want config default", req.Config.MaxTokens)
	}
	if req.Config.TimeoutSeconds != 60 {
		t.Errorf("timeout = %d, want config default", req.Config.TimeoutSeconds)
	}
	if req.Config.Model != "claude-opus-4" {
		t.Errorf("model = %q, want stage override", req.Config.Model)
	}
}
