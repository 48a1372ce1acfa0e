// Package capability defines the optional external capabilities the core may
// invoke from post-processing: outbound telephony, document parsing, and
// geospatial visualization tooling. Each is modeled as presence/absence plus
// a success/failure result; provider-specific request shaping stays inside
// the implementations.
package capability

import "context"

// CallResult reports the outcome of an outbound call request.
type CallResult struct {
	// CallID is the provider's identifier for the placed call.
	CallID string `json:"call_id"`
	// Status is the provider-reported call status.
	Status string `json:"status"`
}

// Telephony places outbound calls carrying a summary message.
type Telephony interface {
	Call(ctx context.Context, number, summary string) (CallResult, error)
}

// Document is the structured view of a parsed source document.
type Document struct {
	// Name is the source file name.
	Name string `json:"name"`
	// FullText is the extracted plain text.
	FullText string `json:"full_text"`
	// Sections maps detected section headings to their content.
	Sections map[string]string `json:"sections,omitempty"`
	// Metrics lists numeric figures found in the text (percentages,
	// amounts) with surrounding context.
	Metrics []string `json:"metrics,omitempty"`
}

// DocumentParser extracts text and key metrics from a document.
type DocumentParser interface {
	Parse(name string, data []byte) (*Document, error)
}

// GeoClient renders geospatial visualization requests through an external
// mapping tool.
type GeoClient interface {
	RenderOverlay(ctx context.Context, config map[string]any) (map[string]any, error)
	Close() error
}
