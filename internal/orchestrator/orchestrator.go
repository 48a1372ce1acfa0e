package orchestrator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShryukGrandhi/urban/internal/agent"
	"github.com/ShryukGrandhi/urban/internal/memory"
	"github.com/ShryukGrandhi/urban/pkg/models"
)

// TaskRequest describes one task to run.
type TaskRequest struct {
	// Category selects the agent constructor. Must be registered.
	Category models.Category `json:"category"`
	// Description states what the agent should produce.
	Description string `json:"description"`
	// SimulationData is the prior-stage simulation payload, if any.
	SimulationData map[string]any `json:"simulation_data,omitempty"`
	// PolicyData is the policy document payload, if any. When empty and a
	// policy source is attached, the source's current data is used.
	PolicyData map[string]any `json:"policy_data,omitempty"`
	// CustomInput is arbitrary task-specific input.
	CustomInput map[string]any `json:"custom_input,omitempty"`
	// Config overrides the default task config when non-nil.
	Config *models.TaskConfig `json:"config,omitempty"`
}

// Outcome is the success/failure result of one task run. A failed agent
// yields a failed Outcome, not an error.
type Outcome struct {
	// Success is true when the task completed.
	Success bool `json:"success"`
	// TaskID identifies the task.
	TaskID string `json:"task_id"`
	// AgentID identifies the executing agent.
	AgentID string `json:"agent_id"`
	// Category is the task category.
	Category models.Category `json:"category"`
	// Status is the terminal task status.
	Status models.TaskStatus `json:"status"`
	// Result is the structured result, for completed tasks.
	Result map[string]any `json:"result,omitempty"`
	// Error is the failure description, for failed tasks.
	Error string `json:"error,omitempty"`
}

// CompletedTask is the full record kept for a finished task.
type CompletedTask struct {
	// AgentID identifies the agent that ran the task.
	AgentID string `json:"agent_id"`
	// Category is the task category.
	Category models.Category `json:"category"`
	// Task is the serialized task, including its captured context snapshot.
	Task models.Task `json:"task"`
	// Result is the structured result, nil for failed tasks.
	Result map[string]any `json:"result,omitempty"`
	// CompletedAt is when the task reached its terminal state.
	CompletedAt time.Time `json:"completed_at"`
}

// ChainInputs are shared inputs threaded to every stage of a chain.
type ChainInputs struct {
	// SimulationData is applied to stages that carry none of their own.
	SimulationData map[string]any
	// PolicyData is applied to stages that carry none of their own.
	PolicyData map[string]any
}

// Stats summarizes orchestrator state.
type Stats struct {
	// ActiveTasks is the number of currently running tasks.
	ActiveTasks int `json:"active_tasks"`
	// CompletedTasks is the number of finished tasks on record.
	CompletedTasks int `json:"completed_tasks"`
	// SuccessCount is the number of completed-successfully tasks.
	SuccessCount int `json:"success_count"`
	// FailureCount is the number of failed tasks.
	FailureCount int `json:"failure_count"`
	// CategoryCounts maps category to finished-task count.
	CategoryCounts map[string]int `json:"category_counts"`
	// ContextBytes is the serialized size of the context store.
	ContextBytes int `json:"context_bytes"`
}

// PolicySource supplies the current parsed policy documents, typically fed
// by the document inbox watcher.
type PolicySource interface {
	PolicyData() map[string]any
}

// Orchestrator sequences and tracks agent tasks. Construct one explicitly
// with New and pass it to whatever entry point needs it; there is no
// ambient global instance.
type Orchestrator struct {
	registry *Registry
	store    *memory.Store
	pub      Publisher
	policy   PolicySource
	logger   *log.Logger

	// mu protects active and completed. It is never held across a
	// streaming await, so one task's suspension cannot serialize others.
	mu        sync.RWMutex
	active    map[string]*agent.Agent
	completed map[string]CompletedTask
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPublisher attaches the distribution hub; every task's events are
// broadcast through it in addition to any direct consumer.
func WithPublisher(pub Publisher) Option {
	return func(o *Orchestrator) { o.pub = pub }
}

// WithPolicySource attaches a provider of parsed policy documents.
func WithPolicySource(src PolicySource) Option {
	return func(o *Orchestrator) { o.policy = src }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator over the given registry.
func New(registry *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:  registry,
		store:     memory.NewStore(),
		logger:    log.Default(),
		active:    make(map[string]*agent.Agent),
		completed: make(map[string]CompletedTask),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunTask builds and executes a single task to completion, consuming the
// stream internally. It returns an error only when the category cannot be
// resolved, before any agent exists; a downstream agent failure is a failed
// Outcome.
func (o *Orchestrator) RunTask(ctx context.Context, req TaskRequest) (Outcome, error) {
	a, task, err := o.prepare(req)
	if err != nil {
		return Outcome{}, err
	}

	o.emit(Event{Type: EventStart, TaskID: task.ID, AgentID: task.AgentID, Category: task.Category}, nil)

	for frag := range a.Stream(ctx) {
		o.emit(Event{
			Type:     EventFragment,
			TaskID:   task.ID,
			AgentID:  task.AgentID,
			Category: task.Category,
			Text:     frag,
		}, nil)
	}
	a.Wait()

	outcome := o.finish(a, task)
	o.emitTerminal(task, outcome, nil)
	return outcome, nil
}

// RunStream builds and executes a single task, yielding its event sequence:
// one start event, one fragment event per generated unit, then exactly one
// terminal complete or error event, after which the channel closes.
func (o *Orchestrator) RunStream(ctx context.Context, req TaskRequest) (<-chan Event, error) {
	a, task, err := o.prepare(req)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)

		o.emit(Event{Type: EventStart, TaskID: task.ID, AgentID: task.AgentID, Category: task.Category}, out)

		for frag := range a.Stream(ctx) {
			o.emit(Event{
				Type:     EventFragment,
				TaskID:   task.ID,
				AgentID:  task.AgentID,
				Category: task.Category,
				Text:     frag,
			}, out)
		}
		a.Wait()

		outcome := o.finish(a, task)
		o.emitTerminal(task, outcome, out)
	}()
	return out, nil
}

// RunChain executes specs in order, threading the shared inputs to every
// stage. It stops at the first failed outcome and returns the outcomes
// gathered so far: later stages assume earlier stages' context exists.
// A category-resolution error also stops the chain, recorded as a failed
// outcome for that stage.
func (o *Orchestrator) RunChain(ctx context.Context, specs []TaskRequest, shared ChainInputs) []Outcome {
	outcomes := make([]Outcome, 0, len(specs))

	for _, spec := range specs {
		if spec.SimulationData == nil {
			spec.SimulationData = shared.SimulationData
		}
		if spec.PolicyData == nil {
			spec.PolicyData = shared.PolicyData
		}

		outcome, err := o.RunTask(ctx, spec)
		if err != nil {
			outcomes = append(outcomes, Outcome{
				Success:  false,
				Category: spec.Category,
				Status:   models.TaskStatusFailed,
				Error:    err.Error(),
			})
			return outcomes
		}

		outcomes = append(outcomes, outcome)
		if !outcome.Success {
			o.logger.Printf("[orchestrator] chain stage %s failed, stopping chain", spec.Category)
			return outcomes
		}
	}
	return outcomes
}

// prepare builds the task, snapshots the context store into it, resolves
// the agent, and registers it as active.
func (o *Orchestrator) prepare(req TaskRequest) (*agent.Agent, *models.Task, error) {
	cfg := models.DefaultTaskConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	policyData := req.PolicyData
	if policyData == nil && o.policy != nil {
		policyData = o.policy.PolicyData()
	}

	agentID := uuid.NewString()
	task := &models.Task{
		ID:                "task-" + uuid.NewString(),
		AgentID:           agentID,
		Category:          req.Category,
		Description:       req.Description,
		SimulationData:    req.SimulationData,
		AggregatedContext: o.store.SnapshotInput(),
		PolicyData:        policyData,
		CustomInput:       req.CustomInput,
		Config:            cfg,
		Status:            models.TaskStatusPending,
	}

	a, err := o.registry.New(task)
	if err != nil {
		return nil, nil, err
	}

	o.mu.Lock()
	o.active[task.ID] = a
	o.mu.Unlock()

	o.logger.Printf("[orchestrator] starting %s task %s", task.Category, task.ID)
	return a, task, nil
}

// finish records the terminal state: the completed record is inserted and
// the agent removed from the active set under one lock, so no reader
// observes a task in neither registry. Successful results are folded into
// the context store under the task's category.
func (o *Orchestrator) finish(a *agent.Agent, task *models.Task) Outcome {
	outcome := Outcome{
		Success:  task.Status == models.TaskStatusCompleted,
		TaskID:   task.ID,
		AgentID:  task.AgentID,
		Category: task.Category,
		Status:   task.Status,
		Result:   a.Result(),
		Error:    task.Error,
	}

	if outcome.Success {
		o.store.Append(task.Category.ContextKey(), outcome.Result)
	}

	completedAt := time.Now().UTC()
	if task.CompletedAt != nil {
		completedAt = *task.CompletedAt
	}

	o.mu.Lock()
	o.completed[task.ID] = CompletedTask{
		AgentID:     task.AgentID,
		Category:    task.Category,
		Task:        *task,
		Result:      outcome.Result,
		CompletedAt: completedAt,
	}
	delete(o.active, task.ID)
	o.mu.Unlock()

	if outcome.Success {
		o.logger.Printf("[orchestrator] completed %s task %s", task.Category, task.ID)
	} else {
		o.logger.Printf("[orchestrator] failed %s task %s: %s", task.Category, task.ID, outcome.Error)
	}
	return outcome
}

// emit stamps and delivers an event to the optional direct consumer and the
// attached publisher.
func (o *Orchestrator) emit(ev Event, out chan<- Event) {
	ev.Timestamp = time.Now().UTC()
	if out != nil {
		out <- ev
	}
	if o.pub != nil {
		o.pub.Broadcast(ev)
	}
}

func (o *Orchestrator) emitTerminal(task *models.Task, outcome Outcome, out chan<- Event) {
	ev := Event{
		TaskID:   task.ID,
		AgentID:  task.AgentID,
		Category: task.Category,
	}
	if outcome.Success {
		ev.Type = EventComplete
		ev.Result = outcome.Result
	} else {
		ev.Type = EventError
		ev.Error = outcome.Error
	}
	o.emit(ev, out)
}

// ActiveTaskIDs lists the ids of currently running tasks.
func (o *Orchestrator) ActiveTaskIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, 0, len(o.active))
	for id := range o.active {
		out = append(out, id)
	}
	return out
}

// ActiveAgents returns snapshots of the currently running agents.
func (o *Orchestrator) ActiveAgents() []models.AgentSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]models.AgentSnapshot, 0, len(o.active))
	for _, a := range o.active {
		out = append(out, a.Snapshot())
	}
	return out
}

// CompletedTasks returns a copy of the completed-task registry.
func (o *Orchestrator) CompletedTasks() map[string]CompletedTask {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]CompletedTask, len(o.completed))
	for id, rec := range o.completed {
		out[id] = rec
	}
	return out
}

// ClearCompleted empties the completed-task registry.
func (o *Orchestrator) ClearCompleted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = make(map[string]CompletedTask)
}

// ContextSnapshot returns a point-in-time copy of the shared context store.
func (o *Orchestrator) ContextSnapshot() map[string][]memory.Entry {
	return o.store.Snapshot()
}

// ClearContext resets the shared context store. Tasks already in flight
// keep the snapshots they captured at creation.
func (o *Orchestrator) ClearContext() {
	o.store.Clear()
	o.logger.Printf("[orchestrator] cleared aggregated context")
}

// Categories lists the registered task categories.
func (o *Orchestrator) Categories() []models.Category {
	return o.registry.Categories()
}

// Stats computes summary statistics over the registries and context store.
func (o *Orchestrator) Stats() Stats {
	o.mu.RLock()
	stats := Stats{
		ActiveTasks:    len(o.active),
		CompletedTasks: len(o.completed),
		CategoryCounts: make(map[string]int),
	}
	for _, rec := range o.completed {
		stats.CategoryCounts[string(rec.Category)]++
		if rec.Task.Status == models.TaskStatusCompleted {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
	}
	o.mu.RUnlock()

	stats.ContextBytes = o.store.Size()
	return stats
}
