// Package orchestrator sequences agent tasks: it builds tasks, instantiates
// agents through the closed category registry, drives their streaming
// execution, and folds results into the shared context store.
package orchestrator

import (
	"time"

	"github.com/ShryukGrandhi/urban/pkg/models"
)

// EventType represents the type of a task lifecycle event.
type EventType string

const (
	// EventStart indicates a task began execution.
	EventStart EventType = "start"
	// EventFragment carries one incremental unit of generated text.
	EventFragment EventType = "fragment"
	// EventComplete indicates the task finished and carries the result.
	EventComplete EventType = "complete"
	// EventError indicates the task failed and carries the error message.
	EventError EventType = "error"
)

// Event is one entry in a task's strictly-ordered event sequence:
// start, fragments in generation order, then exactly one terminal
// complete or error. No ordering holds between different tasks' events.
type Event struct {
	// Type is the kind of event.
	Type EventType `json:"type"`
	// TaskID is the task this event belongs to.
	TaskID string `json:"task_id"`
	// AgentID is the agent executing the task.
	AgentID string `json:"agent_id"`
	// Category is the task category.
	Category models.Category `json:"category"`
	// Text is the fragment text, for fragment events.
	Text string `json:"text,omitempty"`
	// Result is the structured result, for complete events.
	Result map[string]any `json:"result,omitempty"`
	// Error is the failure description, for error events.
	Error string `json:"error,omitempty"`
	// Timestamp is when the event was emitted.
	Timestamp time.Time `json:"timestamp"`
}

// Publisher fans events out to subscribers. The distribution hub implements
// it; a nil publisher means events are consumed internally only.
type Publisher interface {
	Broadcast(Event)
}
