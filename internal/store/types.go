package store

import "time"

// RunResult is the persisted record of one scenario execution: the
// judge's verdict plus the resource counters the analysis engine
// consumes. Conversation transcripts are written separately as run
// artifacts.
type RunResult struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	ScenarioName string    `json:"scenario_name"`
	ScenarioFile string    `json:"scenario_file,omitempty"`
	Tags         []string  `json:"tags,omitempty"`

	Passed    bool    `json:"passed"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`

	DurationSeconds   float64 `json:"duration_seconds"`
	ToolCallCount     int     `json:"tool_call_count"`
	TokenCount        int     `json:"token_count"`
	TurnCount         int     `json:"turn_count"`
	TerminationReason string  `json:"termination_reason,omitempty"`

	JudgeModel         string `json:"judge_model,omitempty"`
	SyntheticUserModel string `json:"synthetic_user_model,omitempty"`
	AgentModel         string `json:"agent_model,omitempty"`
}

// IndexEntry is the lightweight per-run entry kept in index.json.
type IndexEntry struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	ScenarioName string    `json:"scenario_name"`
	ScenarioFile string    `json:"scenario_file,omitempty"`
	Passed       bool      `json:"passed"`
	Score        float64   `json:"score"`
}

// Index lists every stored run for fast lookup.
type Index struct {
	Entries     []IndexEntry `json:"entries"`
	LastUpdated time.Time    `json:"last_updated"`
}
