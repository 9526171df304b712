package scenario

import "fmt"

// Traits tune how the synthetic user behaves during a conversation.
type Traits struct {
	Patience  string `yaml:"patience"`  // low, medium, high
	Verbosity string `yaml:"verbosity"` // concise, medium, verbose
	Expertise string `yaml:"expertise"` // novice, intermediate, expert
}

// ClarificationBehavior tells the synthetic user what it knows when the
// agent asks follow-up questions.
type ClarificationBehavior struct {
	KnownFacts   []string `yaml:"known_facts"`
	UnknownFacts []string `yaml:"unknown_facts"`
	Traits       Traits   `yaml:"traits"`
}

// SyntheticUser configures the simulated user for a scenario.
type SyntheticUser struct {
	Persona               string                `yaml:"persona"`
	InitialQuery          string                `yaml:"initial_query"`
	ClarificationBehavior ClarificationBehavior `yaml:"clarification_behavior"`
	MaxTurns              int                   `yaml:"max_turns"`
}

// ToolUsage lists expectations about which tools the agent should and
// should not call.
type ToolUsage struct {
	RequiredTools   []string `yaml:"required_tools"`
	OptionalTools   []string `yaml:"optional_tools"`
	ProhibitedTools []string `yaml:"prohibited_tools"`
}

// Efficiency holds optional resource budgets the judge scores against.
// Zero means unbounded.
type Efficiency struct {
	MaxToolCalls         int `yaml:"max_tool_calls"`
	MaxLLMTokens         int `yaml:"max_llm_tokens"`
	MaxConversationTurns int `yaml:"max_conversation_turns"`
}

// Evaluation defines how the judge scores a conversation.
type Evaluation struct {
	CorrectnessCriteria []string   `yaml:"correctness_criteria"`
	FailureCriteria     []string   `yaml:"failure_criteria"`
	ToolUsage           ToolUsage  `yaml:"tool_usage"`
	Efficiency          Efficiency `yaml:"efficiency"`
}

// Target describes the agent under test. Either a base URL for an
// already-running agent, or an image (plus port) to launch in a
// container sandbox for the duration of the run.
type Target struct {
	BaseURL string            `yaml:"base_url"`
	Image   string            `yaml:"image"`
	Port    int               `yaml:"port"`
	Env     map[string]string `yaml:"env"`
}

// Scenario is one test scenario definition.
type Scenario struct {
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description"`
	Skip          string        `yaml:"skip"`
	Tags          []string      `yaml:"tags"`
	SyntheticUser SyntheticUser `yaml:"synthetic_user"`
	Evaluation    Evaluation    `yaml:"evaluation"`
	Target        *Target       `yaml:"target"`

	// Source is the file the scenario was parsed from, for error
	// messages and persisted results. Not part of the YAML schema.
	Source string `yaml:"-"`
}

// HasTag reports whether the scenario carries the given tag.
func (s *Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("scenario %q: description is required", s.Name)
	}
	if s.SyntheticUser.Persona == "" {
		return fmt.Errorf("scenario %q: synthetic_user.persona is required", s.Name)
	}
	if s.SyntheticUser.InitialQuery == "" {
		return fmt.Errorf("scenario %q: synthetic_user.initial_query is required", s.Name)
	}
	if s.SyntheticUser.MaxTurns == 0 {
		s.SyntheticUser.MaxTurns = 10
	}
	if s.SyntheticUser.MaxTurns < 1 || s.SyntheticUser.MaxTurns > 100 {
		return fmt.Errorf("scenario %q: max_turns must be between 1 and 100", s.Name)
	}
	if len(s.Evaluation.CorrectnessCriteria) == 0 {
		return fmt.Errorf("scenario %q: at least one correctness criterion is required", s.Name)
	}
	if t := s.Target; t != nil {
		if t.BaseURL != "" && t.Image != "" {
			return fmt.Errorf("scenario %q: target base_url and image are mutually exclusive", s.Name)
		}
		if t.Image != "" && t.Port == 0 {
			return fmt.Errorf("scenario %q: target port is required with an image", s.Name)
		}
	}
	applyTraitDefaults(&s.SyntheticUser.ClarificationBehavior.Traits)
	return nil
}

func applyTraitDefaults(t *Traits) {
	if t.Patience == "" {
		t.Patience = "medium"
	}
	if t.Verbosity == "" {
		t.Verbosity = "concise"
	}
	if t.Expertise == "" {
		t.Expertise = "novice"
	}
}
