package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Liquescent-Development/mcprobe/internal/history"
)

// Storage writes run results under a results directory:
//
//	runs/<timestamp>_<id8>.json   full result
//	trends/<scenario>.json        per-scenario trend entries
//	index.json                    lookup index
type Storage struct {
	resultsDir string
	runsDir    string
	trendsDir  string
	indexPath  string
}

func NewStorage(resultsDir string) *Storage {
	return &Storage{
		resultsDir: resultsDir,
		runsDir:    filepath.Join(resultsDir, "runs"),
		trendsDir:  filepath.Join(resultsDir, "trends"),
		indexPath:  filepath.Join(resultsDir, "index.json"),
	}
}

// Save persists one run result, updating the index and the scenario's
// trend file. Returns the path of the written run file.
func (s *Storage) Save(res *RunResult) (string, error) {
	if res.RunID == "" {
		return "", fmt.Errorf("run result has no run_id")
	}
	if res.Timestamp.IsZero() {
		return "", fmt.Errorf("run result has no timestamp")
	}
	if err := os.MkdirAll(s.runsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating runs dir: %w", err)
	}
	if err := os.MkdirAll(s.trendsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating trends dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json",
		res.Timestamp.UTC().Format("2006-01-02T15-04-05"), shortID(res.RunID))
	runPath := filepath.Join(s.runsDir, name)
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling run result: %w", err)
	}
	if err := os.WriteFile(runPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run result: %w", err)
	}

	if err := s.updateIndex(res); err != nil {
		return "", err
	}
	if err := s.appendTrend(res); err != nil {
		return "", err
	}
	return runPath, nil
}

func (s *Storage) updateIndex(res *RunResult) error {
	index, err := loadIndex(s.indexPath)
	if err != nil {
		return err
	}
	index.Entries = append(index.Entries, IndexEntry{
		RunID:        res.RunID,
		Timestamp:    res.Timestamp,
		ScenarioName: res.ScenarioName,
		ScenarioFile: res.ScenarioFile,
		Passed:       res.Passed,
		Score:        res.Score,
	})
	index.LastUpdated = time.Now().UTC()
	return writeIndex(s.indexPath, index)
}

func (s *Storage) appendTrend(res *RunResult) error {
	trendPath := filepath.Join(s.trendsDir, SafeName(res.ScenarioName)+".json")

	var entries []history.RunRecord
	if data, err := os.ReadFile(trendPath); err == nil {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parsing trend file %s: %w", trendPath, err)
		}
	}
	entries = append(entries, history.RunRecord{
		RunID:           res.RunID,
		Timestamp:       res.Timestamp,
		Passed:          res.Passed,
		Score:           res.Score,
		DurationSeconds: res.DurationSeconds,
		ToolCallCount:   res.ToolCallCount,
		TokenCount:      res.TokenCount,
		TurnCount:       res.TurnCount,
	})
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling trend entries: %w", err)
	}
	if err := os.WriteFile(trendPath, data, 0o644); err != nil {
		return fmt.Errorf("writing trend file: %w", err)
	}
	return nil
}

// SaveArtifact writes a supplementary per-run file (e.g. a conversation
// transcript) next to the run results.
func (s *Storage) SaveArtifact(runID, name string, data []byte) (string, error) {
	dir := filepath.Join(s.resultsDir, "artifacts", shortID(runID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

// CleanupOldRuns removes run files older than maxAgeDays, trims every
// trend file to its most recent maxRunsPerScenario entries, and rebuilds
// the index from the surviving run files. Returns the number of run
// files removed.
func (s *Storage) CleanupOldRuns(maxAgeDays, maxRunsPerScenario int) (int, error) {
	removed := 0
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	runFiles, _ := filepath.Glob(filepath.Join(s.runsDir, "*.json"))
	for _, path := range runFiles {
		res, err := readRunFile(path)
		if err != nil {
			continue
		}
		if res.Timestamp.Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}

	trendFiles, _ := filepath.Glob(filepath.Join(s.trendsDir, "*.json"))
	for _, path := range trendFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entries []history.RunRecord
		if err := json.Unmarshal(data, &entries); err != nil {
			continue
		}
		if len(entries) > maxRunsPerScenario {
			entries = entries[len(entries)-maxRunsPerScenario:]
			if out, err := json.MarshalIndent(entries, "", "  "); err == nil {
				os.WriteFile(path, out, 0o644)
			}
		}
	}

	if err := s.rebuildIndex(); err != nil {
		return removed, err
	}
	return removed, nil
}

func (s *Storage) rebuildIndex() error {
	index := &Index{LastUpdated: time.Now().UTC()}

	runFiles, _ := filepath.Glob(filepath.Join(s.runsDir, "*.json"))
	for _, path := range runFiles {
		res, err := readRunFile(path)
		if err != nil {
			continue
		}
		index.Entries = append(index.Entries, IndexEntry{
			RunID:        res.RunID,
			Timestamp:    res.Timestamp,
			ScenarioName: res.ScenarioName,
			ScenarioFile: res.ScenarioFile,
			Passed:       res.Passed,
			Score:        res.Score,
		})
	}
	sortEntries(index.Entries)
	return writeIndex(s.indexPath, index)
}

// SafeName sanitizes a scenario name for use as a filename: lowercase,
// with anything outside [a-z0-9-_] replaced by underscores.
func SafeName(scenarioName string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(scenarioName) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func readRunFile(path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var res RunResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing run file %s: %w", path, err)
	}
	return &res, nil
}

func loadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	return &index, nil
}

func writeIndex(path string, index *Index) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}
