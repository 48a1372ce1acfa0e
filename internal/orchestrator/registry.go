package orchestrator

import (
	"fmt"

	"github.com/ShryukGrandhi/urban/internal/agent"
	"github.com/ShryukGrandhi/urban/internal/capability"
	"github.com/ShryukGrandhi/urban/pkg/models"
)

// ErrUnknownCategory is returned when a request names a category outside the
// closed registration table. It is a configuration error, surfaced to the
// caller before any agent exists, never retried.
var ErrUnknownCategory = fmt.Errorf("unknown task category")

// Factory builds the agent for one task.
type Factory func(task *models.Task) (*agent.Agent, error)

// Capabilities holds the optional external capabilities wired into
// category-specific post-processing. Absent capabilities degrade behavior,
// never fail tasks.
type Capabilities struct {
	// Telephony places outbound calls for media_calling tasks.
	Telephony capability.Telephony
	// Geo renders map overlays for map_visualization tasks.
	Geo capability.GeoClient
}

// Registry is the closed mapping from task category to agent constructor,
// assembled once at start-up.
type Registry struct {
	gen       agent.Generator
	factories map[models.Category]Factory
}

// NewRegistry builds the registration table over the given generator and
// capabilities. Every category in the capability table gets a constructor;
// most use the default prompt and post-processor, and the categories with
// structured or side-effecting output get their specific pair.
func NewRegistry(gen agent.Generator, caps Capabilities) *Registry {
	r := &Registry{
		gen:       gen,
		factories: make(map[models.Category]Factory, len(models.AllCategories())),
	}

	for _, cat := range models.AllCategories() {
		r.factories[cat] = r.factory(agent.BuildPrompt, agent.DefaultPostProcess)
	}

	r.factories[models.CategorySimulation] = r.factory(agent.SimulationPrompt, agent.SimulationPostProcess)
	r.factories[models.CategoryDataAnalyst] = r.factory(agent.StructuredPrompt, agent.StructuredPostProcess)
	r.factories[models.CategorySupervisor] = r.factory(agent.StructuredPrompt, agent.StructuredPostProcess)
	r.factories[models.CategoryMapVisualization] = r.factory(agent.StructuredPrompt, agent.MapVizPostProcess(caps.Geo))
	r.factories[models.CategoryMediaCalling] = r.factory(agent.BuildPrompt, agent.MediaCallingPostProcess(caps.Telephony))

	return r
}

func (r *Registry) factory(prompt agent.PromptBuilder, post agent.PostProcessor) Factory {
	return func(task *models.Task) (*agent.Agent, error) {
		return agent.New(task, r.gen, prompt, post)
	}
}

// New instantiates the agent for task's category.
func (r *Registry) New(task *models.Task) (*agent.Agent, error) {
	factory, ok := r.factories[task.Category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, task.Category)
	}
	return factory(task)
}

// Categories lists the registered categories in display order.
func (r *Registry) Categories() []models.Category {
	out := make([]models.Category, 0, len(r.factories))
	for _, cat := range models.AllCategories() {
		if _, ok := r.factories[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}
