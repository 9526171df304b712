// Package conversation holds the shared transcript types produced by
// the orchestrator and consumed by the judge and reporting layers.
package conversation

import "time"

// ToolCall records one tool invocation the agent reported.
type ToolCall struct {
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Result     any            `json:"result,omitempty"`
	LatencyMS  float64        `json:"latency_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Turn is a single message in the conversation.
type Turn struct {
	Role      string     `json:"role"` // "user" or "assistant"
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// TerminationReason explains why a conversation ended.
type TerminationReason string

const (
	TerminationCriteriaMet  TerminationReason = "criteria_met"
	TerminationMaxTurns     TerminationReason = "max_turns"
	TerminationLoopDetected TerminationReason = "loop_detected"
	TerminationError        TerminationReason = "error"
)

// Result is the complete transcript of one scenario conversation.
type Result struct {
	Turns             []Turn            `json:"turns"`
	FinalAnswer       string            `json:"final_answer"`
	ToolCalls         []ToolCall        `json:"tool_calls,omitempty"`
	TotalTokens       int               `json:"total_tokens"`
	DurationSeconds   float64           `json:"duration_seconds"`
	TerminationReason TerminationReason `json:"termination_reason"`
}
