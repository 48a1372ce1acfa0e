package agent

import "context"

// GenParams carries the generation parameters for one provider call.
type GenParams struct {
	// Model is the provider model identifier. Empty selects the provider
	// default.
	Model string
	// Temperature is the sampling temperature.
	Temperature float64
	// MaxTokens caps the generated output length.
	MaxTokens int
}

// FragmentStream is an incremental sequence of generated text fragments.
// Next blocks until the next fragment arrives; it returns io.EOF when the
// provider signals a normal end of sequence.
type FragmentStream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Generator is the generation provider consumed by agents. The core is
// agnostic to which concrete provider implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenParams) (FragmentStream, error)
}
