package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShryukGrandhi/urban/internal/config"
	"github.com/ShryukGrandhi/urban/internal/orchestrator"
	"github.com/ShryukGrandhi/urban/internal/tui"
	"github.com/ShryukGrandhi/urban/pkg/models"
)

var (
	runTUI         bool
	runJSON        bool
	runModel       string
	runTemperature float64
	runMaxTokens   int
	runTimeout     int
	runSimFile     string
	runPolicyFile  string
	runInputFile   string
)

var runCmd = &cobra.Command{
	Use:   "run <category> <description>",
	Short: "Run a single agent task",
	Long: `Run one agent task to completion, streaming output as it is generated.

The category selects the agent (see 'urban categories'); the description
states what it should produce. Input payloads can be supplied as JSON files:

  urban run simulation "Model a 5th Avenue closure" --simulation scenario.json
  urban run report "Summarize findings for the council" --tui

A failed task exits non-zero with the failure reason on stderr.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		req := orchestrator.TaskRequest{
			Category:    models.Category(args[0]),
			Description: args[1],
		}
		if req.SimulationData, err = readPayload(runSimFile); err != nil {
			return err
		}
		if req.PolicyData, err = readPayload(runPolicyFile); err != nil {
			return err
		}
		if req.CustomInput, err = readPayload(runInputFile); err != nil {
			return err
		}
		req.Config = taskConfigFromFlags(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		orch, client, err := buildOrchestrator(ctx, cfg)
		if err != nil {
			return err
		}

		events, err := orch.RunStream(ctx, req)
		if err != nil {
			return err
		}

		var success bool
		if runTUI {
			success, err = tui.Run(events)
			if err != nil {
				return err
			}
		} else {
			success = printStream(events)
		}

		input, output := client.Tracker().Total()
		fmt.Fprintf(os.Stderr, "\n%s %d input / %d output tokens ($%.4f)\n",
			color.New(color.Faint).Sprint("usage:"), input, output, client.Tracker().Cost())

		if !success {
			os.Exit(1)
		}
		return nil
	},
}

// printStream renders events to the terminal and reports task success.
func printStream(events <-chan orchestrator.Event) bool {
	success := false
	for ev := range events {
		switch ev.Type {
		case orchestrator.EventStart:
			fmt.Fprintf(os.Stderr, "%s %s (%s)\n",
				color.CyanString("▶"), ev.Category, ev.TaskID)

		case orchestrator.EventFragment:
			fmt.Print(ev.Text)

		case orchestrator.EventComplete:
			success = true
			fmt.Printf("\n%s task completed\n", color.GreenString("✓"))
			if runJSON {
				raw, err := json.MarshalIndent(ev.Result, "", "  ")
				if err == nil {
					fmt.Println(string(raw))
				}
			}

		case orchestrator.EventError:
			fmt.Fprintf(os.Stderr, "\n%s task failed: %s\n", color.RedString("✗"), ev.Error)
		}
	}
	return success
}

// readPayload loads a JSON object file, empty path meaning no payload.
func readPayload(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return payload, nil
}

// taskConfigFromFlags merges config defaults with any explicit flag values.
func taskConfigFromFlags(cfg *config.Config) *models.TaskConfig {
	tc := models.DefaultTaskConfig()
	if cfg.Defaults.Temperature > 0 {
		tc.Temperature = cfg.Defaults.Temperature
	}
	if cfg.Defaults.MaxTokens > 0 {
		tc.MaxTokens = cfg.Defaults.MaxTokens
	}
	tc.TimeoutSeconds = cfg.Defaults.TimeoutSeconds

	if runModel != "" {
		tc.Model = runModel
	}
	if runTemperature >= 0 {
		tc.Temperature = runTemperature
	}
	if runMaxTokens > 0 {
		tc.MaxTokens = runMaxTokens
	}
	if runTimeout > 0 {
		tc.TimeoutSeconds = runTimeout
	}
	return &tc
}

func init() {
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Watch the run in a full-screen viewer")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the structured result as JSON on completion")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model override for this task")
	runCmd.Flags().Float64Var(&runTemperature, "temperature", -1, "Sampling temperature override")
	runCmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "Max output tokens override")
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "Per-task timeout in seconds (0 = none)")
	runCmd.Flags().StringVar(&runSimFile, "simulation", "", "JSON file with simulation data")
	runCmd.Flags().StringVar(&runPolicyFile, "policy", "", "JSON file with policy data")
	runCmd.Flags().StringVar(&runInputFile, "input", "", "JSON file with custom input")
}
