// Package agent implements the streaming execution contract: one Agent per
// task, driven from initialized to exactly one terminal state while emitting
// incremental output.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ShryukGrandhi/urban/pkg/models"
)

// fragmentBuffer sizes the outbound fragment channel. The orchestrator
// drains it continuously; the buffer only smooths bursts from the provider.
const fragmentBuffer = 64

// PromptBuilder assembles the category-specific prompt for an agent.
type PromptBuilder func(a *Agent) string

// PostProcessor turns the accumulated raw output into the structured result.
type PostProcessor func(ctx context.Context, a *Agent, raw string) (map[string]any, error)

// Agent executes exactly one task. It owns the task by reference, holds
// denormalized copies of the task's input payloads, and mirrors the task's
// lifecycle in its own status. Agents are never reused across tasks.
type Agent struct {
	id         string
	task       *models.Task
	capability models.Capability
	gen        Generator
	prompt     PromptBuilder
	post       PostProcessor

	simulationData    map[string]any
	aggregatedContext map[string]any
	policyData        map[string]any
	customInput       map[string]any

	mu        sync.Mutex
	status    models.AgentStatus
	result    map[string]any
	err       error
	started   bool
	startedAt time.Time
	done      chan struct{}
}

// New creates an Agent bound to task. The generator must be non-nil and the
// task must carry a valid category; both are enforced here so Stream can
// assume them.
func New(task *models.Task, gen Generator, prompt PromptBuilder, post PostProcessor) (*Agent, error) {
	if task == nil {
		return nil, errors.New("agent: nil task")
	}
	if !task.Category.Valid() {
		return nil, fmt.Errorf("agent: unknown category %q", task.Category)
	}
	if gen == nil {
		return nil, errors.New("agent: nil generator")
	}
	if prompt == nil {
		prompt = BuildPrompt
	}
	if post == nil {
		post = DefaultPostProcess
	}

	capability, _ := models.CapabilityFor(task.Category)

	return &Agent{
		id:                task.AgentID,
		task:              task,
		capability:        capability,
		gen:               gen,
		prompt:            prompt,
		post:              post,
		simulationData:    task.SimulationData,
		aggregatedContext: task.AggregatedContext,
		policyData:        task.PolicyData,
		customInput:       task.CustomInput,
		status:            models.AgentStatusInitialized,
		done:              make(chan struct{}),
	}, nil
}

// Stream starts execution and returns the fragment channel. Each fragment
// received from the provider is forwarded immediately and accumulated into
// the full-output buffer. The channel closing is the only end-of-stream
// signal; failures are recorded on the agent and task, never raised through
// the channel. A second invocation returns an already-closed channel.
func (a *Agent) Stream(ctx context.Context) <-chan string {
	out := make(chan string, fragmentBuffer)

	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		close(out)
		return out
	}
	a.started = true
	a.mu.Unlock()

	go a.run(ctx, out)
	return out
}

func (a *Agent) run(ctx context.Context, out chan<- string) {
	defer close(out)
	defer close(a.done)

	a.transitionRunning()

	// Per-task deadline cancels the generation suspension.
	if secs := a.task.Config.TimeoutSeconds; secs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	prompt := a.prompt(a)
	stream, err := a.gen.Generate(ctx, prompt, GenParams{
		Model:       a.task.Config.Model,
		Temperature: a.task.Config.Temperature,
		MaxTokens:   a.task.Config.MaxTokens,
	})
	if err != nil {
		a.finalize(nil, fmt.Errorf("start generation: %w", err))
		return
	}
	defer stream.Close()

	var buf strings.Builder
	for {
		frag, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Normal end of sequence, including an empty stream.
				break
			}
			if ctx.Err() != nil {
				a.finalize(nil, fmt.Errorf("generation cancelled: %w", ctx.Err()))
				return
			}
			a.finalize(nil, fmt.Errorf("generation: %w", err))
			return
		}
		buf.WriteString(frag)
		select {
		case out <- frag:
		case <-ctx.Done():
			a.finalize(nil, fmt.Errorf("generation cancelled: %w", ctx.Err()))
			return
		}
	}

	result, err := a.post(ctx, a, buf.String())
	if err != nil {
		a.finalize(nil, fmt.Errorf("post-process: %w", err))
		return
	}
	a.finalize(result, nil)
}

// transitionRunning moves the agent and task to running and records the
// start timestamp.
func (a *Agent) transitionRunning() {
	now := time.Now().UTC()

	a.mu.Lock()
	a.status = models.AgentStatusRunning
	a.startedAt = now
	a.mu.Unlock()

	a.task.Status = models.TaskStatusRunning
	a.task.StartedAt = &now
}

// finalize records exactly one terminal state for this execution.
// Failures are contained here: logged, recorded, never re-raised, so a
// single agent's failure cannot abort fragments already delivered.
func (a *Agent) finalize(result map[string]any, err error) {
	now := time.Now().UTC()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.status = models.AgentStatusFailed
		a.err = err
		a.task.Status = models.TaskStatusFailed
		a.task.Error = err.Error()
		a.task.CompletedAt = &now
		log.Printf("[agent] %s (%s) failed: %v", a.id, a.task.Category, err)
		return
	}

	a.status = models.AgentStatusCompleted
	a.result = result
	a.task.Status = models.TaskStatusCompleted
	a.task.Result = result
	a.task.CompletedAt = &now
}

// Wait blocks until the agent reaches a terminal state and returns its
// error, if any. Valid only after Stream has been called.
func (a *Agent) Wait() error {
	<-a.done
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// ID returns the agent identifier.
func (a *Agent) ID() string {
	return a.id
}

// Task returns the task this agent owns.
func (a *Agent) Task() *models.Task {
	return a.task
}

// Status returns the agent's current status.
func (a *Agent) Status() models.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Result returns the post-processed result, nil until completion.
func (a *Agent) Result() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Err returns the recorded failure, nil unless the agent failed.
func (a *Agent) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Snapshot returns a serializable view of the agent for registries and
// events.
func (a *Agent) Snapshot() models.AgentSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.AgentSnapshot{
		ID:        a.id,
		TaskID:    a.task.ID,
		Category:  a.task.Category,
		Status:    a.status,
		StartedAt: a.startedAt,
	}
}
