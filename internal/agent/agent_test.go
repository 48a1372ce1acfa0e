package agent

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ShryukGrandhi/urban/pkg/models"
)

// fakeStream yields scripted fragments, then finishes with finalErr
// (io.EOF for a normal end). A nil fragments slice with io.EOF models a
// benign empty stream.
type fakeStream struct {
	fragments []string
	finalErr  error
	i         int
	block     chan struct{}
	closed    bool
}

func (s *fakeStream) Next(ctx context.Context) (string, error) {
	if s.i < len(s.fragments) {
		frag := s.fragments[s.i]
		s.i++
		return frag, nil
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.finalErr != nil {
		return "", s.finalErr
	}
	return "", io.EOF
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeGenerator struct {
	stream   *fakeStream
	startErr error
	prompt   string
	params   GenParams
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, params GenParams) (FragmentStream, error) {
	g.prompt = prompt
	g.params = params
	if g.startErr != nil {
		return nil, g.startErr
	}
	return g.stream, nil
}

func newTestTask(category models.Category) *models.Task {
	return &models.Task{
		ID:          "task-1",
		AgentID:     "agent-1",
		Category:    category,
		Description: "analyze the curfew policy",
		Config:      models.DefaultTaskConfig(),
		Status:      models.TaskStatusPending,
	}
}

func collect(ch <-chan string) []string {
	var out []string
	for frag := range ch {
		out = append(out, frag)
	}
	return out
}

func TestStreamCompletes(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	gen := &fakeGenerator{stream: &fakeStream{fragments: []string{"Hel", "lo"}, finalErr: io.EOF}}

	a, err := New(task, gen, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := collect(a.Stream(context.Background()))
	if err := a.Wait(); err != nil {
		t.Fatalf("Wait() = %v, want nil", err)
	}

	if len(got) != 2 || got[0] != "Hel" || got[1] != "lo" {
		t.Errorf("fragments = %v, want [Hel lo] in order", got)
	}
	if a.Status() != models.AgentStatusCompleted {
		t.Errorf("agent status = %s, want completed", a.Status())
	}
	if task.Status != models.TaskStatusCompleted {
		t.Errorf("task status = %s, want completed", task.Status)
	}
	if task.StartedAt == nil || task.CompletedAt == nil {
		t.Error("lifecycle timestamps not recorded")
	}
	if a.Result()["raw_output"] != "Hello" {
		t.Errorf("raw_output = %v, want Hello", a.Result()["raw_output"])
	}
	if !gen.stream.closed {
		t.Error("fragment stream not closed")
	}
}

func TestStreamEmptyEndIsCompletion(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	gen := &fakeGenerator{stream: &fakeStream{finalErr: io.EOF}}

	a, _ := New(task, gen, nil, nil)
	got := collect(a.Stream(context.Background()))

	if len(got) != 0 {
		t.Errorf("fragments = %v, want none", got)
	}
	if err := a.Wait(); err != nil {
		t.Errorf("Wait() = %v, empty normal end must not be a failure", err)
	}
	if task.Status != models.TaskStatusCompleted {
		t.Errorf("task status = %s, want completed", task.Status)
	}
}

func TestStreamMidStreamFailure(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	gen := &fakeGenerator{stream: &fakeStream{
		fragments: []string{"partial"},
		finalErr:  errors.New("provider exploded"),
	}}

	a, _ := New(task, gen, nil, nil)
	got := collect(a.Stream(context.Background()))

	// The fragment already yielded stays delivered.
	if len(got) != 1 || got[0] != "partial" {
		t.Errorf("fragments = %v, want the one delivered fragment", got)
	}
	if err := a.Wait(); err == nil {
		t.Fatal("Wait() = nil, want failure")
	}
	if task.Status != models.TaskStatusFailed {
		t.Errorf("task status = %s, want failed", task.Status)
	}
	if task.Error == "" {
		t.Error("task error string is empty")
	}
	if a.Result() != nil {
		t.Error("failed agent should carry no result")
	}
}

func TestStreamStartFailure(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	gen := &fakeGenerator{startErr: errors.New("no credentials")}

	a, _ := New(task, gen, nil, nil)
	collect(a.Stream(context.Background()))

	if err := a.Wait(); err == nil {
		t.Fatal("expected failure")
	}
	if task.Status != models.TaskStatusFailed {
		t.Errorf("task status = %s, want failed", task.Status)
	}
}

func TestStreamPostProcessFailure(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	gen := &fakeGenerator{stream: &fakeStream{fragments: []string{"ok"}, finalErr: io.EOF}}
	post := func(context.Context, *Agent, string) (map[string]any, error) {
		return nil, errors.New("bad shape")
	}

	a, _ := New(task, gen, nil, post)
	got := collect(a.Stream(context.Background()))

	if len(got) != 1 {
		t.Errorf("fragments = %v, delivery must precede post-processing", got)
	}
	if err := a.Wait(); err == nil || task.Status != models.TaskStatusFailed {
		t.Errorf("post-process failure must fail the task: err=%v status=%s", err, task.Status)
	}
}

func TestStreamCancellation(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	blocked := &fakeStream{fragments: []string{"one"}, block: make(chan struct{})}
	gen := &fakeGenerator{stream: blocked}

	ctx, cancel := context.WithCancel(context.Background())
	a, _ := New(task, gen, nil, nil)
	ch := a.Stream(ctx)

	first := <-ch
	if first != "one" {
		t.Fatalf("first fragment = %q", first)
	}
	cancel()
	collect(ch)

	err := a.Wait()
	if err == nil {
		t.Fatal("cancelled agent must fail")
	}
	if task.Status != models.TaskStatusFailed {
		t.Errorf("task status = %s, want failed", task.Status)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want wrapped context.Canceled", err)
	}
}

func TestStreamTimeoutEnforced(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	task.Config.TimeoutSeconds = 1
	gen := &fakeGenerator{stream: &fakeStream{block: make(chan struct{})}}

	a, _ := New(task, gen, nil, nil)
	start := time.Now()
	collect(a.Stream(context.Background()))

	err := a.Wait()
	if err == nil {
		t.Fatal("deadline must fail the task")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want wrapped deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("deadline fired after %v", elapsed)
	}
}

func TestStreamSecondInvocation(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	gen := &fakeGenerator{stream: &fakeStream{fragments: []string{"x"}, finalErr: io.EOF}}

	a, _ := New(task, gen, nil, nil)
	collect(a.Stream(context.Background()))
	a.Wait()

	second := collect(a.Stream(context.Background()))
	if len(second) != 0 {
		t.Errorf("second Stream() yielded %v, want nothing", second)
	}
	if task.Status != models.TaskStatusCompleted {
		t.Errorf("terminal status changed to %s", task.Status)
	}
}

func TestNewValidation(t *testing.T) {
	gen := &fakeGenerator{stream: &fakeStream{finalErr: io.EOF}}

	if _, err := New(nil, gen, nil, nil); err == nil {
		t.Error("nil task must be rejected")
	}
	if _, err := New(newTestTask("bogus"), gen, nil, nil); err == nil {
		t.Error("unknown category must be rejected")
	}
	if _, err := New(newTestTask(models.CategoryReport), nil, nil, nil); err == nil {
		t.Error("nil generator must be rejected")
	}
}

func TestGenParamsForwarded(t *testing.T) {
	task := newTestTask(models.CategoryReport)
	task.Config.Temperature = 0.2
	task.Config.MaxTokens = 1234
	task.Config.Model = "custom-model"
	gen := &fakeGenerator{stream: &fakeStream{finalErr: io.EOF}}

	a, _ := New(task, gen, nil, nil)
	collect(a.Stream(context.Background()))
	a.Wait()

	if gen.params.Temperature != 0.2 || gen.params.MaxTokens != 1234 || gen.params.Model != "custom-model" {
		t.Errorf("params = %+v, want config forwarded", gen.params)
	}
	if gen.prompt == "" {
		t.Error("prompt not built")
	}
}
