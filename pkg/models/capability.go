package models

// Capability is the static, read-only descriptor for a task category.
// It carries no runtime state; it is used only to enrich prompts and to
// answer discovery requests from callers.
type Capability struct {
	// Category is the category this descriptor belongs to.
	Category Category `json:"category"`
	// Name is the human-readable display name.
	Name string `json:"name"`
	// Description summarizes what agents of this category do.
	Description string `json:"description"`

	// CanAnalyzeData indicates the category works over structured data.
	CanAnalyzeData bool `json:"can_analyze_data"`
	// CanGenerateContent indicates the category produces prose or documents.
	CanGenerateContent bool `json:"can_generate_content"`
	// CanCommunicateExternally indicates the category reaches outside the
	// process (calls, campaigns).
	CanCommunicateExternally bool `json:"can_communicate_externally"`
	// CanCreateVisualizations indicates the category emits chart/map specs.
	CanCreateVisualizations bool `json:"can_create_visualizations"`
	// CanMakeRecommendations indicates the category advises on decisions.
	CanMakeRecommendations bool `json:"can_make_recommendations"`

	// RequiredInputs lists input payload keys the category expects.
	RequiredInputs []string `json:"required_inputs,omitempty"`
	// OptionalInputs lists input payload keys the category can use.
	OptionalInputs []string `json:"optional_inputs,omitempty"`
	// OutputTypes lists the kinds of output the category produces.
	OutputTypes []string `json:"output_types,omitempty"`
}

// Abilities returns the enabled ability names in a stable order, for prompt
// enrichment and CLI display.
func (c Capability) Abilities() []string {
	var out []string
	if c.CanAnalyzeData {
		out = append(out, "data analysis")
	}
	if c.CanGenerateContent {
		out = append(out, "content generation")
	}
	if c.CanCommunicateExternally {
		out = append(out, "external communication")
	}
	if c.CanCreateVisualizations {
		out = append(out, "visualization creation")
	}
	if c.CanMakeRecommendations {
		out = append(out, "strategic recommendations")
	}
	return out
}

// capabilities is the closed capability table, assembled once at process
// start. Absence of a category here is a configuration choice, not a
// runtime accident.
var capabilities = map[Category]Capability{
	CategorySupervisor: {
		Category:               CategorySupervisor,
		Name:                   "Supervisor Agent",
		Description:            "Strategic planning and goal definition for policy initiatives",
		CanAnalyzeData:         true,
		CanMakeRecommendations: true,
		RequiredInputs:         []string{"goal", "constraints"},
		OptionalInputs:         []string{"simulation_data", "stakeholder_input"},
		OutputTypes:            []string{"strategy", "objectives", "success_metrics"},
	},
	CategorySimulation: {
		Category:                CategorySimulation,
		Name:                    "Simulation Agent",
		Description:             "Run policy impact simulations with urban data",
		CanAnalyzeData:          true,
		CanGenerateContent:      true,
		CanCreateVisualizations: true,
		RequiredInputs:          []string{"city", "policy_actions"},
		OptionalInputs:          []string{"time_horizon", "focus_areas"},
		OutputTypes:             []string{"analysis", "metrics", "projections", "map_overlays"},
	},
	CategoryDebate: {
		Category:           CategoryDebate,
		Name:               "Debate Agent",
		Description:        "Generate pro/con arguments for policy decisions",
		CanAnalyzeData:     true,
		CanGenerateContent: true,
		RequiredInputs:     []string{"simulation_results", "policy_text"},
		OptionalInputs:     []string{"rounds", "stakeholder_views"},
		OutputTypes:        []string{"arguments", "sentiment_analysis", "risk_scores"},
	},
	CategoryAggregator: {
		Category:                CategoryAggregator,
		Name:                    "Aggregator Agent",
		Description:             "Compile comprehensive reports from all agent outputs",
		CanAnalyzeData:          true,
		CanGenerateContent:      true,
		CanCreateVisualizations: true,
		RequiredInputs:          []string{"simulation_data", "debate_data"},
		OptionalInputs:          []string{"report_sections", "format"},
		OutputTypes:             []string{"report", "executive_summary", "recommendations"},
	},
	CategoryReport: {
		Category:                CategoryReport,
		Name:                    "Report Agent",
		Description:             "Generate detailed analytical reports on any aspect",
		CanAnalyzeData:          true,
		CanGenerateContent:      true,
		CanCreateVisualizations: true,
		RequiredInputs:          []string{"topic", "data_sources"},
		OptionalInputs:          []string{"report_type", "target_audience"},
		OutputTypes:             []string{"markdown", "pdf", "html", "data_tables"},
	},
	CategoryMediaCalling: {
		Category:                 CategoryMediaCalling,
		Name:                     "Media Calling Agent",
		Description:              "Contact and coordinate with media outlets and journalists",
		CanGenerateContent:       true,
		CanCommunicateExternally: true,
		CanMakeRecommendations:   true,
		RequiredInputs:           []string{"message", "media_list"},
		OptionalInputs:           []string{"urgency", "follow_up_schedule"},
		OutputTypes:              []string{"call_scripts", "email_templates", "media_kit", "contact_log"},
	},
	CategoryPlanning: {
		Category:               CategoryPlanning,
		Name:                   "Planning Agent",
		Description:            "Create strategic plans for publishing and government initiatives",
		CanAnalyzeData:         true,
		CanGenerateContent:     true,
		CanMakeRecommendations: true,
		RequiredInputs:         []string{"objective", "timeline"},
		OptionalInputs:         []string{"budget", "resources", "constraints"},
		OutputTypes:            []string{"action_plan", "timeline", "milestones", "resources"},
	},
	CategoryConsulting: {
		Category:               CategoryConsulting,
		Name:                   "Consulting Agent",
		Description:            "Provide expert advice and discuss potential changes",
		CanAnalyzeData:         true,
		CanGenerateContent:     true,
		CanMakeRecommendations: true,
		RequiredInputs:         []string{"issue", "context"},
		OptionalInputs:         []string{"constraints", "preferences"},
		OutputTypes:            []string{"recommendations", "trade_offs", "risk_analysis", "alternatives"},
	},
	CategoryPitchDeck: {
		Category:                CategoryPitchDeck,
		Name:                    "Pitch Deck Creator",
		Description:             "Create compelling slide decks and pitch presentations",
		CanAnalyzeData:          true,
		CanGenerateContent:      true,
		CanCreateVisualizations: true,
		RequiredInputs:          []string{"topic", "key_points"},
		OptionalInputs:          []string{"audience", "duration", "style"},
		OutputTypes:             []string{"slide_content", "speaker_notes"},
	},
	CategoryNews: {
		Category:           CategoryNews,
		Name:               "News Agent",
		Description:        "Generate news articles and press releases",
		CanAnalyzeData:     true,
		CanGenerateContent: true,
		RequiredInputs:     []string{"event", "facts"},
		OptionalInputs:     []string{"angle", "target_publication"},
		OutputTypes:        []string{"news_article", "press_release", "social_snippets"},
	},
	CategoryDataAnalyst: {
		Category:                CategoryDataAnalyst,
		Name:                    "Data Analyst Agent",
		Description:             "Deep dive analysis of simulation and urban data",
		CanAnalyzeData:          true,
		CanGenerateContent:      true,
		CanCreateVisualizations: true,
		RequiredInputs:          []string{"dataset", "analysis_questions"},
		OptionalInputs:          []string{"visualization_type", "comparison_baseline"},
		OutputTypes:             []string{"analysis_report", "charts", "statistics", "insights"},
	},
	CategorySocialMedia: {
		Category:                 CategorySocialMedia,
		Name:                     "Social Media Agent",
		Description:              "Manage social media campaigns and content",
		CanGenerateContent:       true,
		CanCommunicateExternally: true,
		RequiredInputs:           []string{"campaign_goal", "message"},
		OptionalInputs:           []string{"platforms", "schedule", "hashtags"},
		OutputTypes:              []string{"posts", "campaign_plan", "content_calendar"},
	},
	CategoryStakeholder: {
		Category:           CategoryStakeholder,
		Name:               "Stakeholder Agent",
		Description:        "Simulate perspectives from different stakeholder groups",
		CanAnalyzeData:     true,
		CanGenerateContent: true,
		RequiredInputs:     []string{"stakeholder_type", "policy_proposal"},
		OptionalInputs:     []string{"concerns", "interests"},
		OutputTypes:        []string{"feedback", "concerns", "suggestions", "support_level"},
	},
	CategoryPolicyWriter: {
		Category:           CategoryPolicyWriter,
		Name:               "Policy Writer Agent",
		Description:        "Draft formal policy documents and legislation",
		CanAnalyzeData:     true,
		CanGenerateContent: true,
		RequiredInputs:     []string{"policy_intent", "legal_framework"},
		OptionalInputs:     []string{"precedents", "constraints"},
		OutputTypes:        []string{"policy_draft", "legal_text", "implementation_guide"},
	},
	CategoryMapVisualization: {
		Category:                CategoryMapVisualization,
		Name:                    "Map Visualization Agent",
		Description:             "Generate geospatial overlay configurations for policy impact maps",
		CanAnalyzeData:          true,
		CanCreateVisualizations: true,
		RequiredInputs:          []string{"city", "impact_data"},
		OptionalInputs:          []string{"perspective", "layers"},
		OutputTypes:             []string{"map_config", "overlays", "heatmaps"},
	},
}

// CapabilityFor returns the capability descriptor for a category.
// The second return is false for unknown categories.
func CapabilityFor(c Category) (Capability, bool) {
	cap, ok := capabilities[c]
	return cap, ok
}
