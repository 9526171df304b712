// Package judge evaluates finished conversations against a scenario's
// criteria and decides mid-conversation whether the criteria are already
// satisfied. Both verdicts come from an LLM asked for strict JSON.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/conversation"
	"github.com/Liquescent-Development/mcprobe/internal/provider"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
)

// Judgment is the judge's final verdict on a conversation.
type Judgment struct {
	Passed             bool            `json:"passed"`
	Score              float64         `json:"score"`
	CorrectnessResults map[string]bool `json:"correctness_results,omitempty"`
	FailureResults     map[string]bool `json:"failure_results,omitempty"`
	Reasoning          string          `json:"reasoning"`
	Suggestions        []string        `json:"suggestions,omitempty"`
}

// CriteriaCheck is the judge's mid-conversation assessment.
type CriteriaCheck struct {
	AllCriteriaMet bool   `json:"all_criteria_met"`
	Reasoning      string `json:"reasoning"`
}

// Judge evaluates conversations with an LLM.
type Judge struct {
	provider provider.Provider
	model    config.Model
}

// New returns a judge backed by p using the given model settings.
func New(p provider.Provider, model config.Model) *Judge {
	return &Judge{provider: p, model: model}
}

// Evaluate scores a completed conversation against the scenario's criteria.
func (j *Judge) Evaluate(ctx context.Context, scn *scenario.Scenario, result *conversation.Result) (*Judgment, error) {
	content, err := j.ask(ctx, buildEvaluationPrompt(scn, result))
	if err != nil {
		return nil, fmt.Errorf("judge evaluation: %w", err)
	}
	var judgment Judgment
	if err := json.Unmarshal([]byte(stripFences(content)), &judgment); err != nil {
		return nil, fmt.Errorf("parsing judge response: %w", err)
	}
	if judgment.Score < 0 {
		judgment.Score = 0
	}
	if judgment.Score > 1 {
		judgment.Score = 1
	}
	return &judgment, nil
}

// CheckCriteria asks whether the conversation so far already satisfies
// every correctness criterion. Used for early termination.
func (j *Judge) CheckCriteria(ctx context.Context, scn *scenario.Scenario, turns []conversation.Turn) (*CriteriaCheck, error) {
	content, err := j.ask(ctx, buildCriteriaPrompt(scn, turns))
	if err != nil {
		return nil, fmt.Errorf("judge criteria check: %w", err)
	}
	var check CriteriaCheck
	if err := json.Unmarshal([]byte(stripFences(content)), &check); err != nil {
		return nil, fmt.Errorf("parsing criteria check response: %w", err)
	}
	return &check, nil
}

func (j *Judge) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := j.provider.Chat(ctx, &provider.Request{
		Model:       j.model.Model,
		Messages:    []provider.Message{{Role: "user", Content: prompt}},
		Temperature: j.model.Temperature,
		MaxTokens:   j.model.MaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// stripFences removes a markdown code fence wrapper that some models add
// even when asked for bare JSON.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
