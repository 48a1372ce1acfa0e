package models

// Category is the closed enumeration of task kinds. Each category maps to
// one agent constructor in the orchestrator registry; unknown categories
// fail fast before any agent exists.
type Category string

const (
	// CategorySupervisor plans goals and success metrics for initiatives.
	CategorySupervisor Category = "supervisor"
	// CategorySimulation runs policy impact simulations over urban data.
	CategorySimulation Category = "simulation"
	// CategoryDebate generates pro/con arguments for a policy decision.
	CategoryDebate Category = "debate"
	// CategoryAggregator compiles reports from prior agent outputs.
	CategoryAggregator Category = "aggregator"
	// CategoryReport generates detailed analytical reports.
	CategoryReport Category = "report"
	// CategoryMediaCalling drafts outreach and places outbound calls.
	CategoryMediaCalling Category = "media_calling"
	// CategoryPlanning creates strategic plans with timelines.
	CategoryPlanning Category = "planning"
	// CategoryConsulting advises on potential changes and trade-offs.
	CategoryConsulting Category = "consulting"
	// CategoryPitchDeck produces slide content and speaker notes.
	CategoryPitchDeck Category = "pitch_deck"
	// CategoryNews writes news articles and press releases.
	CategoryNews Category = "news"
	// CategoryDataAnalyst performs deep analysis of simulation data.
	CategoryDataAnalyst Category = "data_analyst"
	// CategorySocialMedia plans social campaigns and content.
	CategorySocialMedia Category = "social_media"
	// CategoryStakeholder simulates stakeholder group perspectives.
	CategoryStakeholder Category = "stakeholder"
	// CategoryPolicyWriter drafts formal policy documents.
	CategoryPolicyWriter Category = "policy_writer"
	// CategoryMapVisualization generates geospatial map overlay configs.
	CategoryMapVisualization Category = "map_visualization"
)

// AllCategories lists every category in display order.
func AllCategories() []Category {
	return []Category{
		CategorySupervisor,
		CategorySimulation,
		CategoryDebate,
		CategoryAggregator,
		CategoryReport,
		CategoryMediaCalling,
		CategoryPlanning,
		CategoryConsulting,
		CategoryPitchDeck,
		CategoryNews,
		CategoryDataAnalyst,
		CategorySocialMedia,
		CategoryStakeholder,
		CategoryPolicyWriter,
		CategoryMapVisualization,
	}
}

// Valid returns true if the category is a known value.
func (c Category) Valid() bool {
	_, ok := capabilities[c]
	return ok
}

// ContextKey returns the context store key results for this category are
// appended under.
func (c Category) ContextKey() string {
	return string(c) + "_results"
}
