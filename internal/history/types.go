package history

import (
	"fmt"
	"strings"
	"time"
)

// RunRecord is one recorded execution of a scenario. Passed and Score are
// reported independently by the judge: a run can fail with a nonzero score
// or pass with a score below 1.0.
type RunRecord struct {
	RunID           string    `json:"run_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Passed          bool      `json:"passed"`
	Score           float64   `json:"score"`
	DurationSeconds float64   `json:"duration_seconds"`
	ToolCallCount   int       `json:"tool_call_count"`
	TokenCount      int       `json:"token_count"`
	TurnCount       int       `json:"turn_count"`
}

// ScenarioHistory is the ordered run history (oldest first) for one
// scenario. The caller-supplied order is authoritative; nothing in this
// module reorders records.
type ScenarioHistory struct {
	ScenarioName string      `json:"scenario_name"`
	Records      []RunRecord `json:"records"`
}

// Validate rejects malformed histories: empty scenario name, scores
// outside [0,1], negative counters, or timestamps out of ascending order.
func (h *ScenarioHistory) Validate() error {
	if strings.TrimSpace(h.ScenarioName) == "" {
		return fmt.Errorf("scenario name is empty")
	}
	for i, r := range h.Records {
		if r.Score < 0 || r.Score > 1 {
			return fmt.Errorf("scenario %q record %d: score %g outside [0,1]", h.ScenarioName, i, r.Score)
		}
		if r.DurationSeconds < 0 {
			return fmt.Errorf("scenario %q record %d: negative duration %g", h.ScenarioName, i, r.DurationSeconds)
		}
		if r.ToolCallCount < 0 || r.TokenCount < 0 || r.TurnCount < 0 {
			return fmt.Errorf("scenario %q record %d: negative counter", h.ScenarioName, i)
		}
		if i > 0 && r.Timestamp.Before(h.Records[i-1].Timestamp) {
			return fmt.Errorf("scenario %q record %d: timestamp %s before previous record", h.ScenarioName, i, r.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// Len returns the number of recorded runs.
func (h *ScenarioHistory) Len() int {
	return len(h.Records)
}
