package store_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Liquescent-Development/mcprobe/internal/store"
)

func makeResult(scenario string, ts time.Time, passed bool, score float64) *store.RunResult {
	return &store.RunResult{
		RunID:             uuid.NewString(),
		Timestamp:         ts,
		ScenarioName:      scenario,
		ScenarioFile:      "scenarios/" + scenario + ".yaml",
		Passed:            passed,
		Score:             score,
		DurationSeconds:   2.5,
		ToolCallCount:     3,
		TokenCount:        450,
		TurnCount:         4,
		TerminationReason: "criteria_met",
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := store.NewStorage(dir)

	res := makeResult("weather-lookup", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true, 0.9)
	path, err := s.Save(res)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path == "" {
		t.Fatal("Save returned empty path")
	}

	l := store.NewLoader(dir)
	got, err := l.Load(res.RunID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ScenarioName != res.ScenarioName {
		t.Errorf("scenario name: got %q, want %q", got.ScenarioName, res.ScenarioName)
	}
	if got.Score != res.Score || got.Passed != res.Passed {
		t.Errorf("verdict: got %v/%f", got.Passed, got.Score)
	}
	if got.TerminationReason != "criteria_met" {
		t.Errorf("termination reason: got %q", got.TerminationReason)
	}
}

func TestSaveRequiresRunID(t *testing.T) {
	s := store.NewStorage(t.TempDir())
	res := makeResult("x", time.Now(), true, 1)
	res.RunID = ""
	if _, err := s.Save(res); err == nil {
		t.Error("expected error for missing run_id")
	}
}

func TestSaveRequiresTimestamp(t *testing.T) {
	s := store.NewStorage(t.TempDir())
	res := makeResult("x", time.Time{}, true, 1)
	if _, err := s.Save(res); err == nil {
		t.Error("expected error for zero timestamp")
	}
}

func TestHistoryOrderingAndContent(t *testing.T) {
	dir := t.TempDir()
	s := store.NewStorage(dir)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Saved out of chronological order; History must sort ascending.
	for _, offset := range []int{2, 0, 1} {
		res := makeResult("ordering", base.Add(time.Duration(offset)*time.Hour), true, float64(offset)/10)
		if _, err := s.Save(res); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	l := store.NewLoader(dir)
	h, err := l.History("ordering")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(h.Records))
	}
	for i := 1; i < len(h.Records); i++ {
		if h.Records[i].Timestamp.Before(h.Records[i-1].Timestamp) {
			t.Fatal("records not sorted ascending")
		}
	}
	if h.Records[0].Score != 0.0 || h.Records[2].Score != 0.2 {
		t.Errorf("record scores out of order: %+v", h.Records)
	}
	if h.Records[0].TokenCount != 450 || h.Records[0].TurnCount != 4 {
		t.Errorf("resource counters not persisted: %+v", h.Records[0])
	}
}

func TestHistoryMissingScenario(t *testing.T) {
	l := store.NewLoader(t.TempDir())
	h, err := l.History("never-ran")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Records) != 0 {
		t.Errorf("expected empty history, got %d records", len(h.Records))
	}
}

func TestListScenariosAndHistories(t *testing.T) {
	dir := t.TempDir()
	s := store.NewStorage(dir)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"beta", "alpha", "beta"} {
		if _, err := s.Save(makeResult(name, base.Add(time.Duration(i)*time.Minute), true, 0.8)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	l := store.NewLoader(dir)
	names, err := l.ListScenarios()
	if err != nil {
		t.Fatalf("ListScenarios: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("scenario names: got %v", names)
	}

	histories, err := l.Histories()
	if err != nil {
		t.Fatalf("Histories: %v", err)
	}
	if len(histories) != 2 {
		t.Fatalf("expected 2 histories, got %d", len(histories))
	}
	if histories[1].ScenarioName != "beta" || len(histories[1].Records) != 2 {
		t.Errorf("beta history: %+v", histories[1])
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Weather Lookup", "weather_lookup"},
		{"api/v2 check!", "api_v2_check_"},
		{"already-safe_name", "already-safe_name"},
	}
	for _, tt := range tests {
		if got := store.SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanupOldRuns(t *testing.T) {
	dir := t.TempDir()
	s := store.NewStorage(dir)

	old := makeResult("aging", time.Now().AddDate(0, 0, -60), true, 0.9)
	fresh := makeResult("aging", time.Now(), true, 0.9)
	if _, err := s.Save(old); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Save(fresh); err != nil {
		t.Fatalf("Save: %v", err)
	}

	removed, err := s.CleanupOldRuns(30, 100)
	if err != nil {
		t.Fatalf("CleanupOldRuns: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed: got %d, want 1", removed)
	}

	l := store.NewLoader(dir)
	index, err := l.Index()
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if len(index.Entries) != 1 {
		t.Errorf("index entries after cleanup: got %d, want 1", len(index.Entries))
	}
	if _, err := l.Load(old.RunID); err == nil {
		t.Error("expected old run to be gone")
	}
}

func TestCleanupTrimsTrendFiles(t *testing.T) {
	dir := t.TempDir()
	s := store.NewStorage(dir)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 6; i++ {
		res := makeResult("busy", base.Add(time.Duration(i)*time.Minute), true, 0.5)
		if _, err := s.Save(res); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if _, err := s.CleanupOldRuns(30, 4); err != nil {
		t.Fatalf("CleanupOldRuns: %v", err)
	}

	h, err := store.NewLoader(dir).History("busy")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Records) != 4 {
		t.Errorf("trend entries after trim: got %d, want 4", len(h.Records))
	}
	// The most recent entries survive.
	if !h.Records[3].Timestamp.After(h.Records[0].Timestamp) {
		t.Error("trimmed history lost ordering")
	}
}

func TestSaveArtifact(t *testing.T) {
	dir := t.TempDir()
	s := store.NewStorage(dir)
	path, err := s.SaveArtifact(uuid.NewString(), "conversation.json", []byte(`{"turns":[]}`))
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if path == "" {
		t.Error("empty artifact path")
	}
}
