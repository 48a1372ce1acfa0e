// Package extract recovers structured records embedded in free-form
// generated text. Generated output drifts in formatting, so extraction is an
// ordered set of fallback strategies; failure is never an error, only an
// absent result, and the caller keeps the raw text.
package extract

import (
	"encoding/json"
	"strings"
)

// Strategy identifies which fallback recovered a structured record.
// Tests use it to assert that a given input takes the expected path.
type Strategy string

const (
	// StrategyMarkers matched content between the explicit marker pair.
	StrategyMarkers Strategy = "markers"
	// StrategyFence matched a ```json fenced block.
	StrategyFence Strategy = "fence"
	// StrategyBraceScan matched a brace-delimited object containing an
	// expected field name.
	StrategyBraceScan Strategy = "brace_scan"
	// StrategyWholeText parsed the entire trimmed text as one object.
	StrategyWholeText Strategy = "whole_text"
	// StrategyNone means no strategy produced a result.
	StrategyNone Strategy = "none"
)

// Marker pair agents are prompted to wrap structured output in.
const (
	BeginMarker = "<<<JSON>>>"
	EndMarker   = "<<<END>>>"
)

// Object attempts to recover a single JSON object from text using the
// ordered fallback strategies: marker pair, fenced block, brace scan for
// markerField, whole trimmed text. markerField may be empty to skip the
// brace-scan match requirement.
func Object(text, markerField string) (map[string]any, Strategy, bool) {
	if obj, ok := betweenMarkers(text); ok {
		return obj, StrategyMarkers, true
	}
	if blocks := Blocks(text); len(blocks) > 0 {
		if obj := parseObject(blocks[0]); obj != nil {
			return obj, StrategyFence, true
		}
	}
	if obj, ok := braceScan(text, markerField); ok {
		return obj, StrategyBraceScan, true
	}
	if obj := parseObject(strings.TrimSpace(text)); obj != nil {
		return obj, StrategyWholeText, true
	}
	return nil, StrategyNone, false
}

// Blocks returns the contents of every ```json fenced block in document
// order. Blocks that are not valid JSON are still returned; callers decide
// whether to parse.
func Blocks(text string) []string {
	var out []string
	rest := text
	for {
		start := strings.Index(rest, "```json")
		if start == -1 {
			break
		}
		rest = rest[start+len("```json"):]
		end := strings.Index(rest, "```")
		if end == -1 {
			break
		}
		out = append(out, strings.TrimSpace(rest[:end]))
		rest = rest[end+len("```"):]
	}
	return out
}

// PrimarySecondary scans for fenced blocks in document order and classifies
// them by position: first is the primary record, second the secondary.
// A lone block carrying any of the secondaryFields is reclassified as the
// secondary result, since agents sometimes emit only the latter block.
func PrimarySecondary(text string, secondaryFields []string) (primary, secondary map[string]any) {
	blocks := Blocks(text)
	var parsed []map[string]any
	for _, b := range blocks {
		if obj := parseObject(b); obj != nil {
			parsed = append(parsed, obj)
		}
	}

	switch len(parsed) {
	case 0:
		return nil, nil
	case 1:
		for _, f := range secondaryFields {
			if _, ok := parsed[0][f]; ok {
				return nil, parsed[0]
			}
		}
		return parsed[0], nil
	default:
		return parsed[0], parsed[1]
	}
}

// betweenMarkers extracts the object between the explicit marker pair.
func betweenMarkers(text string) (map[string]any, bool) {
	start := strings.Index(text, BeginMarker)
	if start == -1 {
		return nil, false
	}
	rest := text[start+len(BeginMarker):]
	end := strings.Index(rest, EndMarker)
	if end == -1 {
		return nil, false
	}
	obj := parseObject(strings.TrimSpace(rest[:end]))
	return obj, obj != nil
}

// braceScan finds the first balanced brace-delimited object that contains
// markerField as a key. Brace depth is tracked outside of string literals so
// nested objects and braces inside values do not break the scan.
func braceScan(text, markerField string) (map[string]any, bool) {
	if markerField == "" {
		return nil, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		candidate, ok := balancedFrom(text, i)
		if !ok {
			return nil, false
		}
		if strings.Contains(candidate, `"`+markerField+`"`) {
			if obj := parseObject(candidate); obj != nil {
				return obj, true
			}
		}
		i += len(candidate) - 1
	}
	return nil, false
}

// balancedFrom returns the balanced {...} substring starting at i.
func balancedFrom(text string, i int) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for j := i; j < len(text); j++ {
		c := text[j]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[i : j+1], true
				}
			}
		}
	}
	return "", false
}

// parseObject unmarshals s into a map, returning nil on any failure.
func parseObject(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}
