package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShryukGrandhi/urban/internal/extract"
)

// BuildPrompt is the default prompt builder: role line from the capability
// descriptor, the task description, tone and audience hints, and the context
// section assembled from the agent's input payloads.
func BuildPrompt(a *Agent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the %s. %s\n", a.capability.Name, a.capability.Description)
	if abilities := a.capability.Abilities(); len(abilities) > 0 {
		fmt.Fprintf(&b, "This agent specializes in: %s.\n", strings.Join(abilities, ", "))
	}

	b.WriteString("\n# YOUR TASK\n")
	b.WriteString(a.task.Description)
	b.WriteString("\n")

	if aud := a.task.Config.TargetAudience; aud != "" {
		fmt.Fprintf(&b, "\n# TARGET AUDIENCE\n%s\n", aud)
	}
	if tone := a.task.Config.Tone; tone != "" {
		fmt.Fprintf(&b, "\n# TONE\n%s\n", tone)
	}
	if format := a.task.Config.OutputFormat; format != "" {
		fmt.Fprintf(&b, "\n# OUTPUT FORMAT\n%s\n", format)
	}

	if ctx := a.ContextSection(); ctx != "" {
		b.WriteString("\n# CONTEXT AND DATA\n")
		b.WriteString(ctx)
	}

	return b.String()
}

// StructuredPrompt wraps BuildPrompt with an instruction to emit the result
// between the extraction marker pair. Used by categories whose result must
// parse into a structured record.
func StructuredPrompt(a *Agent) string {
	var b strings.Builder
	b.WriteString(BuildPrompt(a))
	fmt.Fprintf(&b, "\n# STRUCTURED OUTPUT\nWrap the final JSON object between %s and %s markers.\n",
		extract.BeginMarker, extract.EndMarker)
	return b.String()
}

// SimulationPrompt asks for the analysis plus two fenced JSON blocks: the
// numeric parameters first, the geospatial overlay data second.
func SimulationPrompt(a *Agent) string {
	var b strings.Builder
	b.WriteString(BuildPrompt(a))
	b.WriteString("\n# STRUCTURED OUTPUT\n")
	b.WriteString("After the analysis, emit two ```json blocks in this order:\n")
	b.WriteString("1. the simulation parameters object\n")
	b.WriteString("2. the map overlay object (blocked_roads, impact_zones, traffic_heatmap, alternate_routes)\n")
	return b.String()
}

// ContextSection assembles the shared context block from the four input
// payloads, in a fixed order so prompts are stable across runs.
func (a *Agent) ContextSection() string {
	var parts []string

	if len(a.simulationData) > 0 {
		parts = append(parts, "## SIMULATION DATA", jsonBlock(a.simulationData))
	}
	if len(a.aggregatedContext) > 0 {
		parts = append(parts, "## AGGREGATED CONTEXT", jsonBlock(a.aggregatedContext))
	}
	if len(a.policyData) > 0 {
		parts = append(parts, "## POLICY DATA", jsonBlock(a.policyData))
	}
	if len(a.customInput) > 0 {
		parts = append(parts, "## ADDITIONAL INPUT", jsonBlock(a.customInput))
	}

	return strings.Join(parts, "\n")
}

func jsonBlock(payload map[string]any) string {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(raw)
}
