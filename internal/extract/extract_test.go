package extract

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestObjectStrategies(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		markerField  string
		wantStrategy Strategy
		wantOK       bool
		wantKey      string
	}{
		{
			name:         "marker pair wins",
			text:         "Summary first.\n<<<JSON>>>\n{\"score\": 3}\n<<<END>>>\nand some trailing prose.",
			wantStrategy: StrategyMarkers,
			wantOK:       true,
			wantKey:      "score",
		},
		{
			name:         "fenced block",
			text:         "Here is the config:\n```json\n{\"layers\": [\"roads\"]}\n```\nDone.",
			wantStrategy: StrategyFence,
			wantOK:       true,
			wantKey:      "layers",
		},
		{
			name:         "brace scan with marker field",
			text:         `The plan { "visualizations": [{"type": "heatmap"}] } should work.`,
			markerField:  "visualizations",
			wantStrategy: StrategyBraceScan,
			wantOK:       true,
			wantKey:      "visualizations",
		},
		{
			name:         "whole text",
			text:         "  {\"only\": \"json\"}  ",
			wantStrategy: StrategyWholeText,
			wantOK:       true,
			wantKey:      "only",
		},
		{
			name:         "no recognizable block",
			text:         "Nothing structured to see here.",
			wantStrategy: StrategyNone,
			wantOK:       false,
		},
		{
			name:         "malformed fence falls through to none",
			text:         "```json\n{\"broken\": \n```",
			wantStrategy: StrategyNone,
			wantOK:       false,
		},
		{
			name:         "brace without marker field is skipped",
			text:         `prose {"other": 1} prose`,
			markerField:  "visualizations",
			wantStrategy: StrategyNone,
			wantOK:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, strategy, ok := Object(tt.text, tt.markerField)
			if ok != tt.wantOK {
				t.Fatalf("Object() ok = %v, want %v", ok, tt.wantOK)
			}
			if strategy != tt.wantStrategy {
				t.Errorf("Object() strategy = %s, want %s", strategy, tt.wantStrategy)
			}
			if tt.wantOK {
				if _, present := obj[tt.wantKey]; !present {
					t.Errorf("extracted object missing key %q: %v", tt.wantKey, obj)
				}
			}
		})
	}
}

func TestObjectRoundTrip(t *testing.T) {
	original := map[string]any{
		"blocked_roads": []any{"Mission St", "Valencia St"},
		"reduction":     float64(40),
	}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	text := "Analysis follows.\n" + BeginMarker + "\n" + string(raw) + "\n" + EndMarker + "\nUnrelated prose."

	got, _, ok := Object(text, "")
	if !ok {
		t.Fatal("Object() failed on marker-delimited input")
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch: got %v, want %v", got, original)
	}
}

func TestBlocksDocumentOrder(t *testing.T) {
	text := strings.Join([]string{
		"intro",
		"```json",
		`{"first": 1}`,
		"```",
		"middle",
		"```json",
		`{"second": 2}`,
		"```",
	}, "\n")

	blocks := Blocks(text)
	if len(blocks) != 2 {
		t.Fatalf("Blocks() returned %d blocks, want 2", len(blocks))
	}
	if !strings.Contains(blocks[0], "first") || !strings.Contains(blocks[1], "second") {
		t.Errorf("blocks out of order: %v", blocks)
	}
}

func TestPrimarySecondary(t *testing.T) {
	secondaryFields := []string{"blocked_roads", "impact_zones", "traffic_heatmap"}

	t.Run("two blocks select by position", func(t *testing.T) {
		text := "```json\n{\"parameters\": {\"traffic\": -20}}\n```\n```json\n{\"impact_zones\": []}\n```"
		primary, secondary := PrimarySecondary(text, secondaryFields)
		if primary == nil || secondary == nil {
			t.Fatal("expected both primary and secondary")
		}
		if _, ok := primary["parameters"]; !ok {
			t.Errorf("primary = %v, want parameters block", primary)
		}
		if _, ok := secondary["impact_zones"]; !ok {
			t.Errorf("secondary = %v, want impact zones block", secondary)
		}
	})

	t.Run("lone secondary block is reclassified", func(t *testing.T) {
		text := "```json\n{\"blocked_roads\": [\"US-101\"]}\n```"
		primary, secondary := PrimarySecondary(text, secondaryFields)
		if primary != nil {
			t.Errorf("primary = %v, want nil", primary)
		}
		if secondary == nil {
			t.Fatal("expected reclassified secondary")
		}
	})

	t.Run("lone primary block stays primary", func(t *testing.T) {
		text := "```json\n{\"parameters\": {}}\n```"
		primary, secondary := PrimarySecondary(text, secondaryFields)
		if primary == nil || secondary != nil {
			t.Errorf("got primary=%v secondary=%v, want primary only", primary, secondary)
		}
	})

	t.Run("no blocks", func(t *testing.T) {
		primary, secondary := PrimarySecondary("plain prose", secondaryFields)
		if primary != nil || secondary != nil {
			t.Error("expected absent results for prose input")
		}
	})
}

func TestBraceScanNestedAndStrings(t *testing.T) {
	text := `note {"visualizations": [{"label": "a } inside a string"}], "n": {"deep": true}} tail`
	obj, strategy, ok := Object(text, "visualizations")
	if !ok || strategy != StrategyBraceScan {
		t.Fatalf("Object() = %v strategy=%s ok=%v", obj, strategy, ok)
	}
	if _, present := obj["n"]; !present {
		t.Error("nested object lost during brace scan")
	}
}
