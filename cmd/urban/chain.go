package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShryukGrandhi/urban/internal/config"
	"github.com/ShryukGrandhi/urban/internal/orchestrator"
	"github.com/ShryukGrandhi/urban/pkg/models"
)

// Workflow is a chain definition loaded from a YAML file.
type Workflow struct {
	// Name labels the workflow in output.
	Name string `yaml:"name"`
	// SimulationData is shared input applied to stages that carry none.
	SimulationData map[string]any `yaml:"simulation_data"`
	// PolicyData is shared input applied to stages that carry none.
	PolicyData map[string]any `yaml:"policy_data"`
	// Stages run in order, stopping at the first failure.
	Stages []WorkflowStage `yaml:"stages"`
}

// WorkflowStage is one task in a workflow.
type WorkflowStage struct {
	Category       models.Category `yaml:"category"`
	Description    string          `yaml:"description"`
	SimulationData map[string]any  `yaml:"simulation_data"`
	PolicyData     map[string]any  `yaml:"policy_data"`
	CustomInput    map[string]any  `yaml:"custom_input"`
	Temperature    float64         `yaml:"temperature"`
	MaxTokens      int             `yaml:"max_tokens"`
	Model          string          `yaml:"model"`
	TimeoutSeconds int             `yaml:"timeout_seconds"`
}

var chainCmd = &cobra.Command{
	Use:   "chain <workflow.yaml>",
	Short: "Run a workflow of chained agent tasks",
	Long: `Run the stages of a workflow file in order. Each completed stage's
result becomes context for the stages that follow; the chain stops at the
first failed stage.

A workflow file names its stages and optional shared inputs:

  name: downtown-closure-study
  simulation_data:
    scenario: close 5th Avenue to cars
  stages:
    - category: simulation
      description: Model traffic impact of the closure
    - category: debate
      description: Argue resident and business perspectives
    - category: report
      description: Draft a council briefing from the findings`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workflow, err := loadWorkflow(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		orch, client, err := buildOrchestrator(ctx, cfg)
		if err != nil {
			return err
		}

		specs := make([]orchestrator.TaskRequest, 0, len(workflow.Stages))
		for _, stage := range workflow.Stages {
			specs = append(specs, stage.request(cfg))
		}

		if workflow.Name != "" {
			fmt.Printf("%s %s (%d stages)\n", color.CyanString("▶"), workflow.Name, len(specs))
		}

		outcomes := orch.RunChain(ctx, specs, orchestrator.ChainInputs{
			SimulationData: workflow.SimulationData,
			PolicyData:     workflow.PolicyData,
		})

		failed := printOutcomes(outcomes)

		input, output := client.Tracker().Total()
		fmt.Fprintf(os.Stderr, "\n%s %d input / %d output tokens ($%.4f)\n",
			color.New(color.Faint).Sprint("usage:"), input, output, client.Tracker().Cost())

		if failed {
			os.Exit(1)
		}
		return nil
	},
}

// loadWorkflow parses and validates a workflow file.
func loadWorkflow(path string) (*Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow: %w", err)
	}

	var workflow Workflow
	if err := yaml.Unmarshal(raw, &workflow); err != nil {
		return nil, fmt.Errorf("parsing workflow %s: %w", path, err)
	}
	if len(workflow.Stages) == 0 {
		return nil, fmt.Errorf("workflow %s has no stages", path)
	}
	for i, stage := range workflow.Stages {
		if !stage.Category.Valid() {
			return nil, fmt.Errorf("workflow %s stage %d: unknown category %q", path, i+1, stage.Category)
		}
		if stage.Description == "" {
			return nil, fmt.Errorf("workflow %s stage %d: missing description", path, i+1)
		}
	}
	return &workflow, nil
}

// request converts a stage into a task request, layering stage overrides
// over configured defaults.
func (s WorkflowStage) request(cfg *config.Config) orchestrator.TaskRequest {
	tc := models.DefaultTaskConfig()
	if cfg.Defaults.Temperature > 0 {
		tc.Temperature = cfg.Defaults.Temperature
	}
	if cfg.Defaults.MaxTokens > 0 {
		tc.MaxTokens = cfg.Defaults.MaxTokens
	}
	tc.TimeoutSeconds = cfg.Defaults.TimeoutSeconds

	if s.Temperature > 0 {
		tc.Temperature = s.Temperature
	}
	if s.MaxTokens > 0 {
		tc.MaxTokens = s.MaxTokens
	}
	if s.Model != "" {
		tc.Model = s.Model
	}
	if s.TimeoutSeconds > 0 {
		tc.TimeoutSeconds = s.TimeoutSeconds
	}

	return orchestrator.TaskRequest{
		Category:       s.Category,
		Description:    s.Description,
		SimulationData: s.SimulationData,
		PolicyData:     s.PolicyData,
		CustomInput:    s.CustomInput,
		Config:         &tc,
	}
}

// printOutcomes summarizes chain results and reports whether any stage failed.
func printOutcomes(outcomes []orchestrator.Outcome) bool {
	failed := false
	for i, outcome := range outcomes {
		if outcome.Success {
			fmt.Printf("%s stage %d (%s) completed\n", color.GreenString("✓"), i+1, outcome.Category)
		} else {
			failed = true
			fmt.Printf("%s stage %d (%s) failed: %s\n", color.RedString("✗"), i+1, outcome.Category, outcome.Error)
		}
	}
	return failed
}
