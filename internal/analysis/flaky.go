package analysis

import (
	"fmt"

	"github.com/Liquescent-Development/mcprobe/internal/history"
)

const (
	DefaultMinRuns       = 5
	DefaultFlakyBandLow  = 0.2
	DefaultFlakyBandHigh = 0.8
	DefaultCVThreshold   = 0.25

	DefaultStabilityPassRateHigh = 0.95
	DefaultStabilityPassRateLow  = 0.05
	DefaultStabilityCVThreshold  = 0.15
)

// DetectorConfig holds the thresholds for flaky detection and stability
// checks. Zero values select the documented defaults, so tests can build
// independently configured detectors without shared globals.
type DetectorConfig struct {
	MinRuns       int     // minimum runs before a scenario is analyzed
	FlakyBandLow  float64 // pass rates strictly inside (low, high) are flaky
	FlakyBandHigh float64
	CVThreshold   float64 // CV over passing-run scores above this is flaky

	StabilityPassRateHigh float64 // stable when pass rate >= high or <= low
	StabilityPassRateLow  float64
	StabilityCVThreshold  float64
}

func (c DetectorConfig) withDefaults() DetectorConfig {
	if c.MinRuns == 0 {
		c.MinRuns = DefaultMinRuns
	}
	if c.FlakyBandLow == 0 {
		c.FlakyBandLow = DefaultFlakyBandLow
	}
	if c.FlakyBandHigh == 0 {
		c.FlakyBandHigh = DefaultFlakyBandHigh
	}
	if c.CVThreshold == 0 {
		c.CVThreshold = DefaultCVThreshold
	}
	if c.StabilityPassRateHigh == 0 {
		c.StabilityPassRateHigh = DefaultStabilityPassRateHigh
	}
	if c.StabilityPassRateLow == 0 {
		c.StabilityPassRateLow = DefaultStabilityPassRateLow
	}
	if c.StabilityCVThreshold == 0 {
		c.StabilityCVThreshold = DefaultStabilityCVThreshold
	}
	return c
}

// FlakyDetector flags scenarios whose outcomes are inconsistent enough
// to undermine trust in any single run.
type FlakyDetector struct {
	cfg DetectorConfig
}

func NewFlakyDetector(cfg DetectorConfig) *FlakyDetector {
	return &FlakyDetector{cfg: cfg.withDefaults()}
}

// DetectFlaky scans every history. Scenarios with fewer than MinRuns
// records land in Skipped. Pass-rate inconsistency dominates: a scenario
// inside the flaky band is flagged high severity and its score variance
// is not examined. Otherwise the coefficient of variation over the
// passing runs' scores (when at least MinRuns of them exist and their
// mean is nonzero) flags medium severity.
func (d *FlakyDetector) DetectFlaky(histories []history.ScenarioHistory) (*FlakyReport, error) {
	report := &FlakyReport{}

	for _, h := range histories {
		if err := h.Validate(); err != nil {
			return nil, err
		}

		if len(h.Records) < d.cfg.MinRuns {
			report.Skipped = append(report.Skipped, SkippedScenario{
				ScenarioName: h.ScenarioName,
				RunCount:     len(h.Records),
				MinRuns:      d.cfg.MinRuns,
			})
			continue
		}

		rate := passRate(h.Records)

		if d.cfg.FlakyBandLow < rate && rate < d.cfg.FlakyBandHigh {
			report.Flagged = append(report.Flagged, FlakyScenario{
				ScenarioName: h.ScenarioName,
				PassRate:     rate,
				Reason:       "Inconsistent pass/fail results",
				Severity:     SeverityHigh,
				RunCount:     len(h.Records),
			})
			continue
		}

		var passingScores []float64
		for _, r := range h.Records {
			if r.Passed {
				passingScores = append(passingScores, r.Score)
			}
		}
		if len(passingScores) < d.cfg.MinRuns {
			continue
		}

		meanScore := mean(passingScores)
		if meanScore == 0 {
			// CV is undefined on a zero mean; not a flakiness signal.
			continue
		}
		cv := sampleStdDev(passingScores) / meanScore
		if cv > d.cfg.CVThreshold {
			variance := sampleVariance(passingScores)
			report.Flagged = append(report.Flagged, FlakyScenario{
				ScenarioName:           h.ScenarioName,
				PassRate:               rate,
				ScoreVariance:          &variance,
				CoefficientOfVariation: &cv,
				Reason:                 fmt.Sprintf("High score variance (CV=%.2f%%)", cv*100),
				Severity:               SeverityMedium,
				RunCount:               len(h.Records),
			})
		}
	}

	return report, nil
}

// StabilityCheck evaluates one scenario's entire history against the
// pass-rate and score-variance stability criteria. Violations accumulate
// rather than short-circuiting, pass-rate reason first.
func (d *FlakyDetector) StabilityCheck(h history.ScenarioHistory) (*StabilityReport, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if len(h.Records) < d.cfg.MinRuns {
		return &StabilityReport{
			ScenarioName: h.ScenarioName,
			RunCount:     len(h.Records),
			Verdict:      VerdictInsufficientData,
			Reasons: []string{fmt.Sprintf(
				"Insufficient data: %d runs recorded, %d required",
				len(h.Records), d.cfg.MinRuns)},
		}, nil
	}

	rate := passRate(h.Records)
	scores := recordScores(h.Records)
	meanScore := mean(scores)
	scoreStd := sampleStdDev(scores)

	var reasons []string

	if rate < d.cfg.StabilityPassRateHigh && rate > d.cfg.StabilityPassRateLow {
		reasons = append(reasons, fmt.Sprintf("Unstable pass rate: %.0f%%", rate*100))
	}

	// A zero mean leaves nothing to vary; the criterion passes.
	if meanScore > 0 {
		cv := scoreStd / meanScore
		if cv > d.cfg.StabilityCVThreshold {
			reasons = append(reasons, fmt.Sprintf("High score variance: CV=%.2f%%", cv*100))
		}
	}

	verdict := VerdictStable
	if len(reasons) > 0 {
		verdict = VerdictUnstable
	} else {
		reasons = []string{"Scenario is stable"}
	}

	return &StabilityReport{
		ScenarioName: h.ScenarioName,
		RunCount:     len(h.Records),
		PassRate:     &rate,
		MeanScore:    &meanScore,
		ScoreStd:     &scoreStd,
		Verdict:      verdict,
		Reasons:      reasons,
	}, nil
}
