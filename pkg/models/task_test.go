package models

import "testing"

func TestTaskStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status TaskStatus
		want   bool
	}{
		{"pending", TaskStatusPending, true},
		{"running", TaskStatusRunning, true},
		{"completed", TaskStatusCompleted, true},
		{"failed", TaskStatusFailed, true},
		{"empty", TaskStatus(""), false},
		{"unknown", TaskStatus("paused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	if TaskStatusPending.Terminal() || TaskStatusRunning.Terminal() {
		t.Error("pending/running must not be terminal")
	}
	if !TaskStatusCompleted.Terminal() || !TaskStatusFailed.Terminal() {
		t.Error("completed/failed must be terminal")
	}
}

func TestTaskStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{"pending to running", TaskStatusPending, TaskStatusRunning, true},
		{"pending to failed", TaskStatusPending, TaskStatusFailed, true},
		{"pending to completed", TaskStatusPending, TaskStatusCompleted, false},
		{"running to completed", TaskStatusRunning, TaskStatusCompleted, true},
		{"running to failed", TaskStatusRunning, TaskStatusFailed, true},
		{"running to pending", TaskStatusRunning, TaskStatusPending, false},
		{"completed to running", TaskStatusCompleted, TaskStatusRunning, false},
		{"failed to running", TaskStatusFailed, TaskStatusRunning, false},
		{"failed to pending", TaskStatusFailed, TaskStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDefaultTaskConfig(t *testing.T) {
	cfg := DefaultTaskConfig()
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", cfg.MaxTokens)
	}
	if !cfg.Streaming {
		t.Error("Streaming should default to true")
	}
	if cfg.TimeoutSeconds != 0 {
		t.Errorf("TimeoutSeconds = %d, want 0 (disabled)", cfg.TimeoutSeconds)
	}
}

func TestAgentStatusValid(t *testing.T) {
	valid := []AgentStatus{
		AgentStatusInitialized,
		AgentStatusRunning,
		AgentStatusCompleted,
		AgentStatusFailed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if AgentStatus("done").Valid() {
		t.Error("unknown status should be invalid")
	}
}
