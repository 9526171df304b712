// Package report renders run summaries and analysis output as a plain
// table, markdown, or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Liquescent-Development/mcprobe/internal/analysis"
	"github.com/Liquescent-Development/mcprobe/internal/store"
)

// ScenarioSummary aggregates all persisted runs of one scenario.
type ScenarioSummary struct {
	ScenarioName string  `json:"scenario_name"`
	Runs         int     `json:"runs"`
	PassRate     float64 `json:"pass_rate"`
	MeanScore    float64 `json:"mean_score"`
	MeanDuration float64 `json:"mean_duration_seconds"`
	MeanTokens   float64 `json:"mean_tokens"`
}

// Summarize aggregates run results per scenario, sorted by name.
func Summarize(results []*store.RunResult) []ScenarioSummary {
	type accum struct {
		count    int
		passed   int
		score    float64
		duration float64
		tokens   float64
	}
	byScenario := map[string]*accum{}

	for _, r := range results {
		a, ok := byScenario[r.ScenarioName]
		if !ok {
			a = &accum{}
			byScenario[r.ScenarioName] = a
		}
		a.count++
		a.score += r.Score
		a.duration += r.DurationSeconds
		a.tokens += float64(r.TokenCount)
		if r.Passed {
			a.passed++
		}
	}

	var summaries []ScenarioSummary
	for name, a := range byScenario {
		summaries = append(summaries, ScenarioSummary{
			ScenarioName: name,
			Runs:         a.count,
			PassRate:     float64(a.passed) / float64(a.count),
			MeanScore:    a.score / float64(a.count),
			MeanDuration: a.duration / float64(a.count),
			MeanTokens:   a.tokens / float64(a.count),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ScenarioName < summaries[j].ScenarioName
	})
	return summaries
}

// WriteSummaries renders per-scenario run summaries in the given format.
func WriteSummaries(summaries []ScenarioSummary, format string, w io.Writer) error {
	switch format {
	case "markdown":
		fmt.Fprintln(w, "| Scenario | Runs | Pass Rate | Mean Score | Mean Duration | Mean Tokens |")
		fmt.Fprintln(w, "|---|---|---|---|---|---|")
		for _, s := range summaries {
			fmt.Fprintf(w, "| %s | %d | %.0f%% | %.3f | %.1fs | %.0f |\n",
				s.ScenarioName, s.Runs, s.PassRate*100, s.MeanScore, s.MeanDuration, s.MeanTokens)
		}
		return nil
	case "json":
		return writeJSON(summaries, w)
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tRUNS\tPASS RATE\tMEAN SCORE\tMEAN DURATION\tMEAN TOKENS")
		fmt.Fprintln(tw, strings.Repeat("-", 80))
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%d\t%.0f%%\t%.3f\t%.1fs\t%.0f\n",
				s.ScenarioName, s.Runs, s.PassRate*100, s.MeanScore, s.MeanDuration, s.MeanTokens)
		}
		return tw.Flush()
	}
}

// WriteTrends renders windowed trend metrics per scenario.
func WriteTrends(trends []analysis.ScenarioTrends, format string, w io.Writer) error {
	switch format {
	case "markdown":
		fmt.Fprintln(w, "| Scenario | Runs | Pass Rate | Avg Score | Variance | Pass Trend | Score Trend |")
		fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
		for _, t := range trends {
			fmt.Fprintf(w, "| %s | %d | %.0f%% | %.3f | %.4f | %s | %s |\n",
				t.ScenarioName, t.RunCount, t.PassRate*100, t.AvgScore, t.ScoreVariance,
				t.PassTrend, t.ScoreTrend)
		}
		return nil
	case "json":
		return writeJSON(trends, w)
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tRUNS\tPASS RATE\tAVG SCORE\tVARIANCE\tPASS TREND\tSCORE TREND")
		fmt.Fprintln(tw, strings.Repeat("-", 90))
		for _, t := range trends {
			fmt.Fprintf(tw, "%s\t%d\t%.0f%%\t%.3f\t%.4f\t%s\t%s\n",
				t.ScenarioName, t.RunCount, t.PassRate*100, t.AvgScore, t.ScoreVariance,
				t.PassTrend, t.ScoreTrend)
		}
		return tw.Flush()
	}
}

// WriteRegressions renders detected regressions.
func WriteRegressions(regressions []analysis.Regression, format string, w io.Writer) error {
	switch format {
	case "markdown":
		if len(regressions) == 0 {
			fmt.Fprintln(w, "No regressions detected.")
			return nil
		}
		fmt.Fprintln(w, "| Scenario | Metric | Previous | Current | Change | Severity |")
		fmt.Fprintln(w, "|---|---|---|---|---|---|")
		for _, r := range regressions {
			fmt.Fprintf(w, "| %s | %s | %.3f | %.3f | %+.1f%% | %s |\n",
				r.ScenarioName, r.Metric, r.PreviousValue, r.CurrentValue, r.ChangePercent, r.Severity)
		}
		return nil
	case "json":
		return writeJSON(regressions, w)
	default:
		if len(regressions) == 0 {
			fmt.Fprintln(w, "No regressions detected.")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tMETRIC\tPREVIOUS\tCURRENT\tCHANGE\tSEVERITY")
		fmt.Fprintln(tw, strings.Repeat("-", 80))
		for _, r := range regressions {
			fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%+.1f%%\t%s\n",
				r.ScenarioName, r.Metric, r.PreviousValue, r.CurrentValue, r.ChangePercent, r.Severity)
		}
		return tw.Flush()
	}
}

// WriteFlaky renders the flakiness report, including scenarios skipped
// for having too little history.
func WriteFlaky(rep *analysis.FlakyReport, format string, w io.Writer) error {
	if format == "json" {
		return writeJSON(rep, w)
	}

	if len(rep.Flagged) == 0 {
		fmt.Fprintln(w, "No flaky scenarios detected.")
	} else if format == "markdown" {
		fmt.Fprintln(w, "| Scenario | Runs | Pass Rate | Severity | Reason |")
		fmt.Fprintln(w, "|---|---|---|---|---|")
		for _, f := range rep.Flagged {
			fmt.Fprintf(w, "| %s | %d | %.0f%% | %s | %s |\n",
				f.ScenarioName, f.RunCount, f.PassRate*100, f.Severity, f.Reason)
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tRUNS\tPASS RATE\tSEVERITY\tREASON")
		fmt.Fprintln(tw, strings.Repeat("-", 80))
		for _, f := range rep.Flagged {
			fmt.Fprintf(tw, "%s\t%d\t%.0f%%\t%s\t%s\n",
				f.ScenarioName, f.RunCount, f.PassRate*100, f.Severity, f.Reason)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, s := range rep.Skipped {
		fmt.Fprintf(w, "skipped %s: %d runs recorded, %d required\n",
			s.ScenarioName, s.RunCount, s.MinRuns)
	}
	return nil
}

// WriteStability renders a single scenario's stability verdict.
func WriteStability(rep *analysis.StabilityReport, format string, w io.Writer) error {
	if format == "json" {
		return writeJSON(rep, w)
	}
	fmt.Fprintf(w, "Scenario: %s\n", rep.ScenarioName)
	fmt.Fprintf(w, "Verdict:  %s\n", rep.Verdict)
	if rep.PassRate != nil {
		fmt.Fprintf(w, "Pass rate: %.0f%%\n", *rep.PassRate*100)
	}
	if rep.MeanScore != nil {
		fmt.Fprintf(w, "Mean score: %.3f\n", *rep.MeanScore)
	}
	if rep.ScoreStd != nil {
		fmt.Fprintf(w, "Score stdev: %.4f\n", *rep.ScoreStd)
	}
	for _, reason := range rep.Reasons {
		fmt.Fprintf(w, "- %s\n", reason)
	}
	return nil
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
