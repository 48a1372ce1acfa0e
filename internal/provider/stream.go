package provider

import (
	"context"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/ShryukGrandhi/urban/internal/agent"
)

// Generate starts a streaming generation and returns the fragment stream.
// It implements agent.Generator.
func (c *Client) Generate(ctx context.Context, prompt string, params agent.GenParams) (agent.FragmentStream, error) {
	model := c.model
	if params.Model != "" {
		model = anthropic.Model(params.Model)
	}

	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(params.Temperature)
	}

	c.tracker.AddCall()
	stream := c.inner.Messages.NewStreaming(ctx, req)
	return &fragmentStream{stream: stream, tracker: c.tracker}, nil
}

// fragmentStream adapts the SDK's server-sent event stream to the
// fragment-at-a-time contract agents consume. Non-text events (message
// bookkeeping, pings) are skipped; usage deltas feed the token tracker.
type fragmentStream struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	tracker *TokenTracker
}

// Next blocks until the next text fragment arrives. It returns io.EOF when
// the provider signals a normal end of sequence.
func (s *fragmentStream) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !s.stream.Next() {
			if err := s.stream.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		event := s.stream.Current()
		switch variant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := variant.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				return delta.Text, nil
			}
		case anthropic.MessageStartEvent:
			s.tracker.Add(variant.Message.Usage.InputTokens, 0)
		case anthropic.MessageDeltaEvent:
			s.tracker.Add(0, variant.Usage.OutputTokens)
		}
	}
}

// Close releases the underlying SSE stream.
func (s *fragmentStream) Close() error {
	return s.stream.Close()
}
