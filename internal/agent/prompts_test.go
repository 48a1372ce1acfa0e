package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShryukGrandhi/urban/internal/capability"
	"github.com/ShryukGrandhi/urban/internal/extract"
	"github.com/ShryukGrandhi/urban/pkg/models"
)

func newPromptAgent(t *testing.T, task *models.Task) *Agent {
	t.Helper()
	a, err := New(task, &fakeGenerator{stream: &fakeStream{}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestBuildPromptSections(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	task.Config.TargetAudience = "policymakers"
	task.Config.Tone = "professional"
	task.SimulationData = map[string]any{"traffic": -20}
	task.PolicyData = map[string]any{"act": "curfew"}
	a := newPromptAgent(t, task)

	prompt := BuildPrompt(a)

	for _, want := range []string{
		"Report Agent",
		"# YOUR TASK",
		"analyze the curfew policy",
		"# TARGET AUDIENCE",
		"policymakers",
		"# TONE",
		"## SIMULATION DATA",
		"## POLICY DATA",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptOmitsEmptyPayloads(t *testing.T) {
	a := newPromptAgent(t, newTestTask(models.CategoryReport))
	prompt := BuildPrompt(a)
	if strings.Contains(prompt, "## SIMULATION DATA") || strings.Contains(prompt, "# CONTEXT AND DATA") {
		t.Error("empty payloads should not produce context sections")
	}
}

func TestStructuredPromptCarriesMarkers(t *testing.T) {
	a := newPromptAgent(t, newTestTask(models.CategoryDataAnalyst))
	prompt := StructuredPrompt(a)
	if !strings.Contains(prompt, extract.BeginMarker) || !strings.Contains(prompt, extract.EndMarker) {
		t.Error("structured prompt missing marker pair instruction")
	}
}

func TestSimulationPromptOrdersBlocks(t *testing.T) {
	a := newPromptAgent(t, newTestTask(models.CategorySimulation))
	prompt := SimulationPrompt(a)
	params := strings.Index(prompt, "simulation parameters")
	overlay := strings.Index(prompt, "map overlay")
	if params == -1 || overlay == -1 || params > overlay {
		t.Error("simulation prompt must ask for parameters block before overlay block")
	}
}

func TestDefaultPostProcessMetadata(t *testing.T) {
	a := newPromptAgent(t, newTestTask(models.CategoryReport))
	result, err := DefaultPostProcess(context.Background(), a, "body text")
	if err != nil {
		t.Fatal(err)
	}
	if result["raw_output"] != "body text" {
		t.Errorf("raw_output = %v", result["raw_output"])
	}
	if result["agent_type"] != "report" || result["agent_id"] != "agent-1" {
		t.Errorf("metadata = %v", result)
	}
	if result["processed_at"] == "" {
		t.Error("processed_at not stamped")
	}
}

func TestSimulationPostProcessBlocks(t *testing.T) {
	a := newPromptAgent(t, newTestTask(models.CategorySimulation))
	raw := "analysis\n```json\n{\"parameters\": {\"traffic\": -20}}\n```\n```json\n{\"impact_zones\": []}\n```"

	result, err := SimulationPostProcess(context.Background(), a, raw)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result["parameters"]; !ok {
		t.Error("parameters block not extracted")
	}
	if _, ok := result["map_data"]; !ok {
		t.Error("map overlay block not extracted")
	}
	if result["analysis"] != raw {
		t.Error("raw analysis not retained")
	}
}

func TestSimulationPostProcessNoBlocks(t *testing.T) {
	a := newPromptAgent(t, newTestTask(models.CategorySimulation))
	result, err := SimulationPostProcess(context.Background(), a, "prose only")
	if err != nil {
		t.Fatalf("absent blocks must not fail: %v", err)
	}
	if _, ok := result["parameters"]; ok {
		t.Error("unexpected parameters for prose input")
	}
}

type fakeTelephony struct {
	number, summary string
	err             error
}

func (f *fakeTelephony) Call(_ context.Context, number, summary string) (capability.CallResult, error) {
	f.number = number
	f.summary = summary
	if f.err != nil {
		return capability.CallResult{}, f.err
	}
	return capability.CallResult{CallID: "c1", Status: "queued"}, nil
}

func TestMediaCallingPostProcess(t *testing.T) {
	t.Run("places call", func(t *testing.T) {
		task := newTestTask(models.CategoryMediaCalling)
		task.CustomInput = map[string]any{"phone_number": "+14155550100"}
		a := newPromptAgent(t, task)
		tel := &fakeTelephony{}

		result, err := MediaCallingPostProcess(tel)(context.Background(), a, "Call script.\n\nDetails follow.")
		if err != nil {
			t.Fatal(err)
		}
		call := result["call"].(map[string]any)
		if call["placed"] != true || call["call_id"] != "c1" {
			t.Errorf("call = %v", call)
		}
		if tel.number != "+14155550100" {
			t.Errorf("dialed %q", tel.number)
		}
		if tel.summary != "Call script." {
			t.Errorf("summary = %q, want first paragraph", tel.summary)
		}
	})

	t.Run("telephony absent", func(t *testing.T) {
		a := newPromptAgent(t, newTestTask(models.CategoryMediaCalling))
		result, err := MediaCallingPostProcess(nil)(context.Background(), a, "text")
		if err != nil {
			t.Fatal(err)
		}
		call := result["call"].(map[string]any)
		if call["placed"] != false {
			t.Errorf("call = %v, want placed=false", call)
		}
	})

	t.Run("call failure does not fail task", func(t *testing.T) {
		task := newTestTask(models.CategoryMediaCalling)
		task.CustomInput = map[string]any{"phone_number": "+1"}
		a := newPromptAgent(t, task)

		result, err := MediaCallingPostProcess(&fakeTelephony{err: errors.New("line busy")})(context.Background(), a, "text")
		if err != nil {
			t.Fatalf("call failure must be contained: %v", err)
		}
		call := result["call"].(map[string]any)
		if call["placed"] != false || call["error"] == "" {
			t.Errorf("call = %v", call)
		}
	})
}

type fakeGeo struct {
	config map[string]any
	err    error
}

func (f *fakeGeo) RenderOverlay(_ context.Context, config map[string]any) (map[string]any, error) {
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"layer_id": "l1"}, nil
}

func (f *fakeGeo) Close() error { return nil }

func TestMapVizPostProcess(t *testing.T) {
	raw := "```json\n{\"visualizations\": [{\"type\": \"heatmap\"}]}\n```"

	t.Run("renders through geo client", func(t *testing.T) {
		a := newPromptAgent(t, newTestTask(models.CategoryMapVisualization))
		geo := &fakeGeo{}
		result, err := MapVizPostProcess(geo)(context.Background(), a, raw)
		if err != nil {
			t.Fatal(err)
		}
		if rendered, ok := result["rendered"].(map[string]any); !ok || rendered["layer_id"] != "l1" {
			t.Errorf("rendered = %v", result["rendered"])
		}
	})

	t.Run("render failure recorded not raised", func(t *testing.T) {
		a := newPromptAgent(t, newTestTask(models.CategoryMapVisualization))
		result, err := MapVizPostProcess(&fakeGeo{err: errors.New("tile server down")})(context.Background(), a, raw)
		if err != nil {
			t.Fatal(err)
		}
		if result["render_error"] == "" {
			t.Error("render error not recorded")
		}
	})

	t.Run("absent config downgrades to empty", func(t *testing.T) {
		a := newPromptAgent(t, newTestTask(models.CategoryMapVisualization))
		result, err := MapVizPostProcess(nil)(context.Background(), a, "no structure here")
		if err != nil {
			t.Fatal(err)
		}
		config := result["map_config"].(map[string]any)
		if len(config) != 0 {
			t.Errorf("map_config = %v, want empty", config)
		}
	})
}

func TestCallSummary(t *testing.T) {
	if got := CallSummary("  first para\n\nsecond"); got != "first para" {
		t.Errorf("CallSummary() = %q", got)
	}
	long := strings.Repeat("a", 600)
	if got := CallSummary(long); len([]rune(got)) != callSummaryLimit {
		t.Errorf("CallSummary() length = %d, want %d", len([]rune(got)), callSummaryLimit)
	}
}
