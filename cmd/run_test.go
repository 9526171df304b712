package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/provider"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
	"github.com/Liquescent-Development/mcprobe/internal/store"
)

func TestFilterScenarios(t *testing.T) {
	scenarios := []*scenario.Scenario{
		{Name: "alpha", Tags: []string{"smoke", "weather"}},
		{Name: "beta", Tags: []string{"smoke"}},
		{Name: "gamma", Tags: []string{"slow"}},
	}

	tests := []struct {
		name   string
		byName string
		byTag  string
		want   int
	}{
		{"empty filters return all", "", "", 3},
		{"exact name match", "beta", "", 1},
		{"no name match", "delta", "", 0},
		{"tag match", "", "smoke", 2},
		{"no tag match", "", "nightly", 0},
		{"name and tag both match", "alpha", "weather", 1},
		{"name matches but tag does not", "alpha", "slow", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterScenarios(scenarios, tt.byName, tt.byTag)
			if len(got) != tt.want {
				t.Errorf("filterScenarios(name=%q, tag=%q) returned %d, want %d",
					tt.byName, tt.byTag, len(got), tt.want)
			}
		})
	}
}

// scriptedProvider satisfies every role in a run: plain text for the
// agent, a combined verdict object for the judge's JSON-mode calls.
type scriptedProvider struct{}

func (scriptedProvider) Name() string { return "scripted" }

func (scriptedProvider) Chat(_ context.Context, req *provider.Request) (*provider.Response, error) {
	if req.JSONMode {
		return &provider.Response{
			Content:    `{"all_criteria_met": true, "passed": true, "score": 0.9, "reasoning": "answered correctly"}`,
			TokensUsed: 5,
		}, nil
	}
	return &provider.Response{Content: "The answer is 4.", TokensUsed: 5}, nil
}

func TestRunOnePersistsTimestampedResult(t *testing.T) {
	dir := t.TempDir()
	storage := store.NewStorage(dir)

	cfg := &config.Config{}
	cfg.Judge.Model = "judge-model"
	cfg.SyntheticUser.Model = "user-model"
	cfg.Agent.Model = "agent-model"

	scn := &scenario.Scenario{
		Name:   "arithmetic",
		Source: "scenarios/arithmetic.yaml",
		SyntheticUser: scenario.SyntheticUser{
			Persona:      "curious student",
			InitialQuery: "What is 2+2?",
			MaxTurns:     4,
		},
	}

	before := time.Now().UTC()
	res, err := runOne(context.Background(), cfg, scriptedProvider{}, storage, scn)
	if err != nil {
		t.Fatalf("runOne: %v", err)
	}
	if res.Timestamp.IsZero() {
		t.Fatal("result has zero timestamp")
	}
	if res.Timestamp.Before(before) || res.Timestamp.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("timestamp %s not within the run window", res.Timestamp)
	}

	// A run written moments ago must survive cleanup at the default
	// retention settings.
	removed, err := storage.CleanupOldRuns(30, 100)
	if err != nil {
		t.Fatalf("CleanupOldRuns: %v", err)
	}
	if removed != 0 {
		t.Errorf("cleanup removed %d fresh run(s)", removed)
	}
	if _, err := store.NewLoader(dir).Load(res.RunID); err != nil {
		t.Errorf("run not loadable after cleanup: %v", err)
	}
}

func TestDetectorConfigOverride(t *testing.T) {
	cfg := &config.Config{}
	cfg.Analysis.MinRuns = 7

	dc := detectorConfig(cfg, 0)
	if dc.MinRuns != 7 {
		t.Errorf("MinRuns = %d, want config value 7", dc.MinRuns)
	}

	dc = detectorConfig(cfg, 12)
	if dc.MinRuns != 12 {
		t.Errorf("MinRuns = %d, want flag override 12", dc.MinRuns)
	}
}
