package models

import "time"

// AgentStatus represents the current state of an agent instance.
type AgentStatus string

const (
	// AgentStatusInitialized indicates the agent was created but not started.
	AgentStatusInitialized AgentStatus = "initialized"
	// AgentStatusRunning indicates the agent is driving a generation.
	AgentStatusRunning AgentStatus = "running"
	// AgentStatusCompleted indicates the agent finished successfully.
	AgentStatusCompleted AgentStatus = "completed"
	// AgentStatusFailed indicates the agent encountered an error.
	AgentStatusFailed AgentStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusInitialized, AgentStatusRunning, AgentStatusCompleted, AgentStatusFailed:
		return true
	default:
		return false
	}
}

// AgentSnapshot is a serializable view of a live agent, used by the
// active-task registry, events, and the CLI. The executing agent itself
// lives in internal/agent and is never shared across tasks.
type AgentSnapshot struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`
	// TaskID is the ID of the task this agent owns.
	TaskID string `json:"task_id"`
	// Category is the task category the agent was built for.
	Category Category `json:"category"`
	// Status is the current state of the agent.
	Status AgentStatus `json:"status"`
	// StartedAt is when the agent began working.
	StartedAt time.Time `json:"started_at"`
}
