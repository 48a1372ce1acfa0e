// Package models defines the core task and agent data model shared across
// the orchestrator, the distribution hub, and the CLI.
package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is being executed by an agent.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task completed successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
// A task never re-enters running after reaching a terminal state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransition reports whether moving from s to next is a legal,
// monotonic status transition.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return next == TaskStatusRunning || next == TaskStatusFailed
	case TaskStatusRunning:
		return next.Terminal()
	default:
		return false
	}
}

// TaskConfig holds generation and execution settings for a single task.
type TaskConfig struct {
	// Temperature is the sampling temperature passed to the provider.
	Temperature float64 `json:"temperature"`
	// MaxTokens caps the generated output length.
	MaxTokens int `json:"max_tokens"`
	// Model is the provider model identifier. Empty selects the default.
	Model string `json:"model,omitempty"`
	// ContextWindow is the token context window hint for prompt building.
	ContextWindow int `json:"context_window,omitempty"`
	// OutputFormat hints the desired output format (markdown, json, html).
	OutputFormat string `json:"output_format,omitempty"`
	// TargetAudience hints who the output is written for.
	TargetAudience string `json:"target_audience,omitempty"`
	// Tone hints the desired register (professional, urgent, persuasive).
	Tone string `json:"tone,omitempty"`
	// Streaming indicates whether fragments should be relayed as they arrive.
	Streaming bool `json:"streaming"`
	// TimeoutSeconds is the per-task deadline. Zero disables the deadline.
	// The deadline cancels the generation suspension and fails the task.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
	// Extra carries category-specific settings not modeled above.
	Extra map[string]any `json:"extra,omitempty"`
}

// DefaultTaskConfig returns the config applied when a request carries none.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Temperature: 0.7,
		MaxTokens:   4096,
		Streaming:   true,
	}
}

// Task is an immutable unit of work executed by exactly one agent.
// The descriptor fields never change after creation; the lifecycle fields
// (Status, Result, Error, timestamps) are mutated only by the owning agent.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// AgentID is the identifier of the agent bound to this task.
	AgentID string `json:"agent_id"`
	// Category selects the agent behavior and prompt shape.
	Category Category `json:"category"`
	// Description states what the agent should produce.
	Description string `json:"description"`

	// SimulationData carries prior-stage simulation results, if any.
	SimulationData map[string]any `json:"simulation_data,omitempty"`
	// AggregatedContext is the context store snapshot captured at creation.
	AggregatedContext map[string]any `json:"aggregated_context,omitempty"`
	// PolicyData carries parsed policy documents, if any.
	PolicyData map[string]any `json:"policy_data,omitempty"`
	// CustomInput carries arbitrary task-specific input.
	CustomInput map[string]any `json:"custom_input,omitempty"`

	// Config holds the generation settings for this task.
	Config TaskConfig `json:"config"`

	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// Result is the post-processed output once the task completes.
	Result map[string]any `json:"result,omitempty"`
	// Error is the human-readable failure description, if the task failed.
	Error string `json:"error,omitempty"`
	// StartedAt is when execution began.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when the task reached a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
