package analysis

import (
	"math"

	"github.com/Liquescent-Development/mcprobe/internal/history"
)

// Minimum record counts below which the corresponding analysis reports
// insufficient data instead of a result.
const (
	MinDataPointsForAnalysis   = 2
	MinDataPointsForTrend      = 3
	MinDataPointsForRegression = 4
)

const (
	DefaultWindowSize        = 10
	DefaultSlopeThreshold    = 0.05
	DefaultPassRateThreshold = 0.1
	DefaultScoreThreshold    = 0.1

	defaultSeverityHigh   = 0.3
	defaultSeverityMedium = 0.15
)

// TrendAnalyzer computes windowed trend metrics and split-history
// regressions. It holds no state beyond its configured slope threshold;
// concurrent use is safe.
type TrendAnalyzer struct {
	slopeThreshold float64
}

// NewTrendAnalyzer builds an analyzer with the given slope threshold for
// trend classification. A non-positive threshold selects the default.
func NewTrendAnalyzer(slopeThreshold float64) *TrendAnalyzer {
	if slopeThreshold <= 0 {
		slopeThreshold = DefaultSlopeThreshold
	}
	return &TrendAnalyzer{slopeThreshold: slopeThreshold}
}

// AnalyzeScenario computes trend metrics over the most recent windowSize
// records of h. A non-positive windowSize selects the default. Returns
// (nil, nil) when the history holds fewer than two records.
func (a *TrendAnalyzer) AnalyzeScenario(h history.ScenarioHistory, windowSize int) (*ScenarioTrends, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if len(h.Records) < MinDataPointsForAnalysis {
		return nil, nil
	}

	window := h.Records
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}

	scores := make([]float64, len(window))
	passValues := make([]float64, len(window))
	durations := make([]float64, len(window))
	toolCalls := make([]float64, len(window))
	tokens := make([]float64, len(window))
	passed := 0
	for i, r := range window {
		scores[i] = r.Score
		durations[i] = r.DurationSeconds
		toolCalls[i] = float64(r.ToolCallCount)
		tokens[i] = float64(r.TokenCount)
		if r.Passed {
			passValues[i] = 1.0
			passed++
		}
	}

	minScore, maxScore := minMax(scores)

	return &ScenarioTrends{
		ScenarioName:  h.ScenarioName,
		RunCount:      len(window),
		PassRate:      float64(passed) / float64(len(window)),
		PassTrend:     a.detectTrend(passValues),
		CurrentScore:  scores[len(scores)-1],
		AvgScore:      mean(scores),
		MinScore:      minScore,
		MaxScore:      maxScore,
		ScoreTrend:    a.detectTrend(scores),
		ScoreVariance: popVariance(scores),
		AvgDuration:   mean(durations),
		AvgToolCalls:  mean(toolCalls),
		AvgTokens:     mean(tokens),
	}, nil
}

// AnalyzeAll analyzes every history, omitting those with insufficient
// data.
func (a *TrendAnalyzer) AnalyzeAll(histories []history.ScenarioHistory, windowSize int) ([]ScenarioTrends, error) {
	var out []ScenarioTrends
	for _, h := range histories {
		t, err := a.AnalyzeScenario(h, windowSize)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

// RegressionOptions configures regression detection. Zero values select
// the documented defaults. The severity bands are independent of the
// flaky detector's CV thresholds.
type RegressionOptions struct {
	PassRateThreshold float64 // minimum pass-rate drop to flag (default 0.1)
	ScoreThreshold    float64 // minimum avg-score drop to flag (default 0.1)
	SeverityHigh      float64 // |change| fraction for "high" (default 0.3)
	SeverityMedium    float64 // |change| fraction for "medium" (default 0.15)
}

func (o RegressionOptions) withDefaults() RegressionOptions {
	if o.PassRateThreshold == 0 {
		o.PassRateThreshold = DefaultPassRateThreshold
	}
	if o.ScoreThreshold == 0 {
		o.ScoreThreshold = DefaultScoreThreshold
	}
	if o.SeverityHigh == 0 {
		o.SeverityHigh = defaultSeverityHigh
	}
	if o.SeverityMedium == 0 {
		o.SeverityMedium = defaultSeverityMedium
	}
	return o
}

// DetectRegressions splits the full history in half by count (the extra
// record of an odd-length history belongs to the recent half) and emits
// a regression per metric whose earlier-half value exceeds its
// recent-half value by more than the configured threshold. Histories
// with fewer than four records yield no regressions.
func (a *TrendAnalyzer) DetectRegressions(h history.ScenarioHistory, opts RegressionOptions) ([]Regression, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	n := len(h.Records)
	if n < MinDataPointsForRegression {
		return nil, nil
	}

	mid := n / 2
	earlier := h.Records[:mid]
	recent := h.Records[mid:]

	var regressions []Regression

	earlierPassRate := passRate(earlier)
	recentPassRate := passRate(recent)
	if earlierPassRate-recentPassRate > opts.PassRateThreshold {
		regressions = append(regressions, a.buildRegression(
			h.ScenarioName, "pass_rate", earlierPassRate, recentPassRate, opts))
	}

	earlierAvg := mean(recordScores(earlier))
	recentAvg := mean(recordScores(recent))
	if earlierAvg-recentAvg > opts.ScoreThreshold {
		regressions = append(regressions, a.buildRegression(
			h.ScenarioName, "score", earlierAvg, recentAvg, opts))
	}

	return regressions, nil
}

// DetectAllRegressions runs regression detection over every history and
// concatenates the findings.
func (a *TrendAnalyzer) DetectAllRegressions(histories []history.ScenarioHistory, opts RegressionOptions) ([]Regression, error) {
	var out []Regression
	for _, h := range histories {
		regs, err := a.DetectRegressions(h, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, regs...)
	}
	return out, nil
}

func (a *TrendAnalyzer) buildRegression(scenario, metric string, earlier, recent float64, opts RegressionOptions) Regression {
	// Guard the divisor so custom zero thresholds cannot divide by zero;
	// under positive thresholds the earlier value is always above zero
	// when a regression fires.
	change := (recent - earlier) / math.Max(earlier, 0.01)
	return Regression{
		ScenarioName:  scenario,
		Metric:        metric,
		PreviousValue: earlier,
		CurrentValue:  recent,
		ChangePercent: change * 100,
		Severity:      severityFor(math.Abs(change), opts),
	}
}

func severityFor(changeMagnitude float64, opts RegressionOptions) Severity {
	switch {
	case changeMagnitude > opts.SeverityHigh:
		return SeverityHigh
	case changeMagnitude > opts.SeverityMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// detectTrend classifies a chronological series via the normalized OLS
// slope. Fewer than three points, or a flat series, is stable.
func (a *TrendAnalyzer) detectTrend(values []float64) TrendDirection {
	if len(values) < MinDataPointsForTrend {
		return TrendStable
	}

	slope := olsSlope(values)
	lo, hi := minMax(values)
	valueRange := hi - lo
	if valueRange == 0 {
		return TrendStable
	}
	normalized := slope / valueRange

	switch {
	case normalized > a.slopeThreshold:
		return TrendImproving
	case normalized < -a.slopeThreshold:
		return TrendDegrading
	default:
		return TrendStable
	}
}

func passRate(records []history.RunRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	passed := 0
	for _, r := range records {
		if r.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(records))
}

func recordScores(records []history.RunRecord) []float64 {
	scores := make([]float64, len(records))
	for i, r := range records {
		scores[i] = r.Score
	}
	return scores
}
