package agent

import (
	"context"
	"strings"
	"time"

	"github.com/ShryukGrandhi/urban/internal/capability"
	"github.com/ShryukGrandhi/urban/internal/extract"
)

// GeoFields identify a map overlay block when classifying fenced output.
var GeoFields = []string{"blocked_roads", "impact_zones", "traffic_heatmap", "alternate_routes"}

// callSummaryLimit caps the text carried into an outbound call.
const callSummaryLimit = 500

// DefaultPostProcess wraps the raw text with agent metadata and a timestamp.
func DefaultPostProcess(_ context.Context, a *Agent, raw string) (map[string]any, error) {
	return baseResult(a, raw), nil
}

// StructuredPostProcess recovers a single structured record via the ordered
// extraction strategies. An absent record is not a failure: the caller keeps
// the raw text and an empty data field.
func StructuredPostProcess(_ context.Context, a *Agent, raw string) (map[string]any, error) {
	result := baseResult(a, raw)
	obj, strategy, ok := extract.Object(raw, "")
	if ok {
		result["data"] = obj
	}
	result["extraction_strategy"] = string(strategy)
	return result, nil
}

// SimulationPostProcess extracts the two fenced blocks a simulation emits:
// numeric parameters first, map overlay data second. A lone block carrying
// overlay fields is reclassified as the overlay result.
func SimulationPostProcess(_ context.Context, a *Agent, raw string) (map[string]any, error) {
	parameters, mapData := extract.PrimarySecondary(raw, GeoFields)

	result := baseResult(a, raw)
	result["analysis"] = raw
	if parameters != nil {
		result["parameters"] = parameters
	}
	if mapData != nil {
		result["map_data"] = mapData
	}
	return result, nil
}

// MapVizPostProcess returns a post-processor that extracts the overlay
// config and, when a geo client is present, renders it. Render failure is
// recorded in the result, never escalated to a task failure.
func MapVizPostProcess(geo capability.GeoClient) PostProcessor {
	return func(ctx context.Context, a *Agent, raw string) (map[string]any, error) {
		result := baseResult(a, raw)

		config, strategy, ok := extract.Object(raw, "visualizations")
		result["extraction_strategy"] = string(strategy)
		if !ok {
			result["map_config"] = map[string]any{}
			return result, nil
		}
		result["map_config"] = config

		if geo != nil {
			rendered, err := geo.RenderOverlay(ctx, config)
			if err != nil {
				result["render_error"] = err.Error()
			} else {
				result["rendered"] = rendered
			}
		}
		return result, nil
	}
}

// MediaCallingPostProcess returns a post-processor that places an outbound
// call carrying the output summary when a telephony capability is present.
// Call failure is recorded in the result; the task still completes.
func MediaCallingPostProcess(tel capability.Telephony) PostProcessor {
	return func(ctx context.Context, a *Agent, raw string) (map[string]any, error) {
		result := baseResult(a, raw)

		if tel == nil {
			result["call"] = map[string]any{"placed": false, "reason": "telephony unavailable"}
			return result, nil
		}

		number, _ := a.customInput["phone_number"].(string)
		if number == "" {
			result["call"] = map[string]any{"placed": false, "reason": "no phone_number in custom input"}
			return result, nil
		}

		res, err := tel.Call(ctx, number, CallSummary(raw))
		if err != nil {
			result["call"] = map[string]any{"placed": false, "error": err.Error()}
			return result, nil
		}
		result["call"] = map[string]any{
			"placed":  true,
			"call_id": res.CallID,
			"status":  res.Status,
		}
		return result, nil
	}
}

// CallSummary reduces the raw output to the text spoken at the start of an
// outbound call: the first paragraph, capped at callSummaryLimit runes.
func CallSummary(raw string) string {
	summary := strings.TrimSpace(raw)
	if i := strings.Index(summary, "\n\n"); i > 0 {
		summary = summary[:i]
	}
	runes := []rune(summary)
	if len(runes) > callSummaryLimit {
		summary = string(runes[:callSummaryLimit])
	}
	return summary
}

func baseResult(a *Agent, raw string) map[string]any {
	return map[string]any{
		"raw_output":   raw,
		"processed_at": time.Now().UTC().Format(time.RFC3339),
		"agent_type":   string(a.task.Category),
		"agent_id":     a.id,
	}
}
