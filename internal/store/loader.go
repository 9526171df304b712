package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Liquescent-Development/mcprobe/internal/history"
)

// Loader reads stored results back. It owns all file access so the
// analysis engine can stay a pure function of the histories it is
// handed.
type Loader struct {
	runsDir   string
	trendsDir string
	indexPath string
}

func NewLoader(resultsDir string) *Loader {
	return &Loader{
		runsDir:   filepath.Join(resultsDir, "runs"),
		trendsDir: filepath.Join(resultsDir, "trends"),
		indexPath: filepath.Join(resultsDir, "index.json"),
	}
}

// Index returns the run index; an empty index when none exists yet.
func (l *Loader) Index() (*Index, error) {
	return loadIndex(l.indexPath)
}

// Load returns the full result for a run ID, or an error when no run
// file matches.
func (l *Loader) Load(runID string) (*RunResult, error) {
	pattern := filepath.Join(l.runsDir, "*_"+shortID(runID)+".json")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	return readRunFile(matches[0])
}

// ListScenarios returns the sorted unique scenario names with stored
// results.
func (l *Loader) ListScenarios() ([]string, error) {
	index, err := l.Index()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, e := range index.Entries {
		if !seen[e.ScenarioName] {
			seen[e.ScenarioName] = true
			names = append(names, e.ScenarioName)
		}
	}
	sort.Strings(names)
	return names, nil
}

// History returns the scenario's run history sorted ascending by
// timestamp, validated for the analysis engine. A scenario with no
// stored runs yields an empty history.
func (l *Loader) History(scenarioName string) (history.ScenarioHistory, error) {
	h := history.ScenarioHistory{ScenarioName: scenarioName}

	trendPath := filepath.Join(l.trendsDir, SafeName(scenarioName)+".json")
	data, err := os.ReadFile(trendPath)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return h, fmt.Errorf("reading trend file: %w", err)
	}
	if err := json.Unmarshal(data, &h.Records); err != nil {
		return h, fmt.Errorf("parsing trend file %s: %w", trendPath, err)
	}

	sort.SliceStable(h.Records, func(i, j int) bool {
		return h.Records[i].Timestamp.Before(h.Records[j].Timestamp)
	})
	if err := h.Validate(); err != nil {
		return h, fmt.Errorf("stored history for %q is invalid: %w", scenarioName, err)
	}
	return h, nil
}

// Histories returns one history per scenario with stored results, in
// scenario-name order.
func (l *Loader) Histories() ([]history.ScenarioHistory, error) {
	names, err := l.ListScenarios()
	if err != nil {
		return nil, err
	}
	histories := make([]history.ScenarioHistory, 0, len(names))
	for _, name := range names {
		h, err := l.History(name)
		if err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	return histories, nil
}

func sortEntries(entries []IndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
