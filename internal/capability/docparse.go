package capability

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// TextParser implements DocumentParser for plain-text and markdown policy
// documents. Sections are split on markdown headings; metrics are numeric
// figures with a little surrounding context, enough for prompt enrichment.
type TextParser struct{}

// NewTextParser creates a TextParser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

var (
	headingRe = regexp.MustCompile(`(?m)^#{1,4}\s+(.+)$`)
	metricRe  = regexp.MustCompile(`(?:\$[\d,]+(?:\.\d+)?[MBK]?|\d+(?:\.\d+)?%|\d{4,})`)
)

// metricContextRadius is how many characters around a figure are kept.
const metricContextRadius = 40

// Parse extracts text, sections, and key metrics from data.
func (p *TextParser) Parse(name string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("docparse: %s is empty", name)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("docparse: %s is not valid UTF-8 text", name)
	}

	text := strings.TrimSpace(string(data))
	doc := &Document{
		Name:     name,
		FullText: text,
		Sections: splitSections(text),
		Metrics:  findMetrics(text),
	}
	return doc, nil
}

// splitSections maps each markdown heading to the content that follows it,
// up to the next heading.
func splitSections(text string) map[string]string {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make(map[string]string, len(matches))
	for i, m := range matches {
		title := strings.TrimSpace(text[m[2]:m[3]])
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections[title] = strings.TrimSpace(text[start:end])
	}
	return sections
}

// findMetrics returns each numeric figure with surrounding context.
func findMetrics(text string) []string {
	var out []string
	for _, m := range metricRe.FindAllStringIndex(text, -1) {
		start := m[0] - metricContextRadius
		if start < 0 {
			start = 0
		}
		end := m[1] + metricContextRadius
		if end > len(text) {
			end = len(text)
		}
		snippet := strings.Join(strings.Fields(text[start:end]), " ")
		out = append(out, snippet)
	}
	return out
}
