// Package analysis turns a scenario's accumulated run history into trend
// signals, regression alerts, and flakiness/stability classifications.
// Everything here is a pure function of the histories it is handed: no
// I/O, no shared state between calls.
package analysis

// TrendDirection classifies the slope of a metric across the analysis
// window.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDegrading TrendDirection = "degrading"
)

// Severity grades a regression or flakiness finding for CI gating.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ScenarioTrends summarizes the most recent window of a scenario's runs.
type ScenarioTrends struct {
	ScenarioName  string         `json:"scenario_name"`
	RunCount      int            `json:"run_count"`
	PassRate      float64        `json:"pass_rate"`
	PassTrend     TrendDirection `json:"pass_trend"`
	CurrentScore  float64        `json:"current_score"`
	AvgScore      float64        `json:"avg_score"`
	MinScore      float64        `json:"min_score"`
	MaxScore      float64        `json:"max_score"`
	ScoreTrend    TrendDirection `json:"score_trend"`
	ScoreVariance float64        `json:"score_variance"`
	AvgDuration   float64        `json:"avg_duration"`
	AvgToolCalls  float64        `json:"avg_tool_calls"`
	AvgTokens     float64        `json:"avg_tokens"`
}

// Regression reports a notable decline between the earlier and recent
// halves of a scenario's history. ChangePercent is signed; a negative
// value means decline.
type Regression struct {
	ScenarioName  string   `json:"scenario_name"`
	Metric        string   `json:"metric"` // "pass_rate" or "score"
	PreviousValue float64  `json:"previous_value"`
	CurrentValue  float64  `json:"current_value"`
	ChangePercent float64  `json:"change_percent"`
	Severity      Severity `json:"severity"`
}

// FlakyScenario is one scenario flagged by the flaky scan. The variance
// fields are only set when the CV criterion fired.
type FlakyScenario struct {
	ScenarioName           string   `json:"scenario_name"`
	PassRate               float64  `json:"pass_rate"`
	ScoreVariance          *float64 `json:"score_variance,omitempty"`
	CoefficientOfVariation *float64 `json:"coefficient_of_variation,omitempty"`
	Reason                 string   `json:"reason"`
	Severity               Severity `json:"severity"`
	RunCount               int      `json:"run_count"`
}

// SkippedScenario names a scenario the flaky scan could not analyze.
// Skipped scenarios are reported, never silently dropped, so a scenario
// with too few runs is distinguishable from one found not flaky.
type SkippedScenario struct {
	ScenarioName string `json:"scenario_name"`
	RunCount     int    `json:"run_count"`
	MinRuns      int    `json:"min_runs"`
}

// FlakyReport is the outcome of a flaky scan across scenarios.
type FlakyReport struct {
	Flagged []FlakyScenario   `json:"flagged"`
	Skipped []SkippedScenario `json:"skipped,omitempty"`
}

// Verdict is the tri-state outcome of a stability check. Insufficient
// data is its own state so callers never confuse "could not analyze"
// with "analyzed and stable".
type Verdict string

const (
	VerdictStable           Verdict = "stable"
	VerdictUnstable         Verdict = "unstable"
	VerdictInsufficientData Verdict = "insufficient_data"
)

// StabilityReport is the focused single-scenario stability result. The
// numeric fields are nil when the verdict is insufficient data.
type StabilityReport struct {
	ScenarioName string   `json:"scenario_name"`
	RunCount     int      `json:"run_count"`
	PassRate     *float64 `json:"pass_rate,omitempty"`
	MeanScore    *float64 `json:"mean_score,omitempty"`
	ScoreStd     *float64 `json:"score_std,omitempty"`
	Verdict      Verdict  `json:"verdict"`
	Reasons      []string `json:"reasons"`
}
