package history_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Liquescent-Development/mcprobe/internal/history"
)

func rec(ts time.Time, passed bool, score float64) history.RunRecord {
	return history.RunRecord{Timestamp: ts, Passed: passed, Score: score}
}

func TestValidateAcceptsOrderedHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := history.ScenarioHistory{
		ScenarioName: "weather-lookup",
		Records: []history.RunRecord{
			rec(base, true, 0.9),
			rec(base.Add(time.Hour), false, 0.4),
			rec(base.Add(time.Hour), true, 1.0), // equal timestamps are fine
		},
	}
	if err := h.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		history history.ScenarioHistory
		wantSub string
	}{
		{
			"empty name",
			history.ScenarioHistory{ScenarioName: "  "},
			"name is empty",
		},
		{
			"score above one",
			history.ScenarioHistory{
				ScenarioName: "s",
				Records:      []history.RunRecord{rec(base, true, 1.2)},
			},
			"outside [0,1]",
		},
		{
			"negative score",
			history.ScenarioHistory{
				ScenarioName: "s",
				Records:      []history.RunRecord{rec(base, false, -0.1)},
			},
			"outside [0,1]",
		},
		{
			"negative duration",
			history.ScenarioHistory{
				ScenarioName: "s",
				Records: []history.RunRecord{
					{Timestamp: base, Score: 0.5, DurationSeconds: -1},
				},
			},
			"negative duration",
		},
		{
			"negative counter",
			history.ScenarioHistory{
				ScenarioName: "s",
				Records: []history.RunRecord{
					{Timestamp: base, Score: 0.5, TokenCount: -3},
				},
			},
			"negative counter",
		},
		{
			"descending timestamps",
			history.ScenarioHistory{
				ScenarioName: "s",
				Records: []history.RunRecord{
					rec(base.Add(time.Hour), true, 0.5),
					rec(base, true, 0.5),
				},
			},
			"before previous record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.history.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}
