// Package tui provides the terminal user interface for Urban: a live view
// of one streaming task run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShryukGrandhi/urban/internal/orchestrator"
)

// EventMsg wraps one task event for the bubbletea loop.
type EventMsg struct {
	Event orchestrator.Event
}

// StreamClosedMsg signals that the event stream ended.
type StreamClosedMsg struct{}

// StreamApp is the bubbletea model for watching a single task run. It
// consumes orchestrator events and renders the accumulating output, a
// spinner while the task runs, and the terminal outcome.
type StreamApp struct {
	events <-chan orchestrator.Event

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	category string
	taskID   string
	output   strings.Builder

	done    bool
	success bool
	errMsg  string

	quitting bool
}

// NewStreamApp creates the model over a task event stream.
func NewStreamApp(events <-chan orchestrator.Event) *StreamApp {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &StreamApp{
		events:  events,
		spinner: sp,
	}
}

// Init starts the spinner and the event pump.
func (a *StreamApp) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForEvent())
}

// waitForEvent returns a command that delivers the next task event.
func (a *StreamApp) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return StreamClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// Update handles messages.
func (a *StreamApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			a.quitting = true
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !a.ready {
			a.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		a.viewport.SetContent(fragmentStyle.Render(a.output.String()))
		return a, nil

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case EventMsg:
		a.apply(msg.Event)
		if a.done {
			return a, tea.Quit
		}
		return a, a.waitForEvent()

	case StreamClosedMsg:
		a.done = true
		return a, tea.Quit
	}

	return a, nil
}

// apply folds one task event into the model state.
func (a *StreamApp) apply(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventStart:
		a.category = string(ev.Category)
		a.taskID = ev.TaskID

	case orchestrator.EventFragment:
		a.output.WriteString(ev.Text)
		if a.ready {
			a.viewport.SetContent(fragmentStyle.Render(a.output.String()))
			a.viewport.GotoBottom()
		}

	case orchestrator.EventComplete:
		a.done = true
		a.success = true

	case orchestrator.EventError:
		a.done = true
		a.errMsg = ev.Error
	}
}

// View renders the app.
func (a *StreamApp) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder

	title := "urban"
	if a.category != "" {
		title = fmt.Sprintf("urban %s %s", categoryStyle.Render(a.category), a.taskID)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	if a.ready {
		b.WriteString(a.viewport.View())
	} else {
		b.WriteString(fragmentStyle.Render(a.output.String()))
	}
	b.WriteString("\n")

	switch {
	case a.done && a.success:
		b.WriteString(completeStyle.Render("✓ completed"))
	case a.done:
		b.WriteString(errorStyle.Render("✗ failed: " + a.errMsg))
	default:
		b.WriteString(a.spinner.View() + footerStyle.Render(" generating... (q to quit)"))
	}
	b.WriteString("\n")

	return b.String()
}

// Success reports whether the watched task completed. Only meaningful after
// the program exits.
func (a *StreamApp) Success() bool {
	return a.done && a.success
}

// Run drives the app to completion in the current terminal.
func Run(events <-chan orchestrator.Event) (bool, error) {
	app := NewStreamApp(events)
	p := tea.NewProgram(app)
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	if m, ok := final.(*StreamApp); ok {
		return m.Success(), nil
	}
	return false, nil
}
