package judge

import (
	"fmt"
	"strings"

	"github.com/Liquescent-Development/mcprobe/internal/conversation"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
)

const (
	transcriptResultTruncateLen = 200
	toolCallResultTruncateLen   = 100
)

const evaluationPromptTemplate = `You are evaluating an AI agent's performance on a user assistance task.

## Test Scenario
%s

## User's Goal
%s

## User's Initial Query
%s

## Conversation Transcript
%s

## Tool Calls Made
%s

## Evaluation Criteria

### Correctness (all must be satisfied for pass)
%s

### Failure Conditions (any triggered = fail)
%s

### Tool Usage Requirements
Required tools: %s
Prohibited tools: %s

### Efficiency Targets
Max tool calls: %s
Max conversation turns: %s

## Your Task
Evaluate the conversation and provide your assessment in JSON format:
{
    "passed": true/false,
    "score": 0.0-1.0,
    "correctness_results": {"criterion": true/false, ...},
    "failure_results": {"criterion": true/false, ...},
    "reasoning": "Brief explanation of your judgment",
    "suggestions": ["Improvement suggestions for the agent if applicable"]
}
`

const criteriaPromptTemplate = `You are monitoring an in-progress conversation between a user and an AI agent.

## Correctness Criteria
%s

## Conversation So Far
%s

## Your Task
Decide whether the agent's responses so far already satisfy ALL of the
correctness criteria. Be strict: partial answers do not count.

Respond with a JSON object:
{"all_criteria_met": true/false, "reasoning": "brief explanation"}
`

func buildEvaluationPrompt(scn *scenario.Scenario, result *conversation.Result) string {
	eval := scn.Evaluation
	return fmt.Sprintf(evaluationPromptTemplate,
		scn.Description,
		scn.SyntheticUser.Persona,
		scn.SyntheticUser.InitialQuery,
		formatTranscript(result.Turns),
		formatToolCalls(result.ToolCalls),
		formatCriteriaList(eval.CorrectnessCriteria),
		formatCriteriaList(eval.FailureCriteria),
		joinOr(eval.ToolUsage.RequiredTools, "None"),
		joinOr(eval.ToolUsage.ProhibitedTools, "None"),
		limitOr(eval.Efficiency.MaxToolCalls, "No limit"),
		limitOr(eval.Efficiency.MaxConversationTurns, "No limit"),
	)
}

func buildCriteriaPrompt(scn *scenario.Scenario, turns []conversation.Turn) string {
	return fmt.Sprintf(criteriaPromptTemplate,
		formatCriteriaList(scn.Evaluation.CorrectnessCriteria),
		formatTranscript(turns),
	)
}

func formatTranscript(turns []conversation.Turn) string {
	var lines []string
	for _, turn := range turns {
		lines = append(lines, fmt.Sprintf("[%s]: %s", strings.ToUpper(turn.Role), turn.Content))
		for _, tc := range turn.ToolCalls {
			lines = append(lines, fmt.Sprintf("  -> Tool call: %s(%v)", tc.ToolName, tc.Parameters))
			if tc.Error != "" {
				lines = append(lines, fmt.Sprintf("     Error: %s", tc.Error))
			} else {
				lines = append(lines, fmt.Sprintf("     Result: %s", truncate(fmt.Sprint(tc.Result), transcriptResultTruncateLen)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func formatToolCalls(calls []conversation.ToolCall) string {
	if len(calls) == 0 {
		return "No tool calls were made."
	}
	var lines []string
	for i, tc := range calls {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, tc.ToolName))
		lines = append(lines, fmt.Sprintf("   Parameters: %v", tc.Parameters))
		if tc.Error != "" {
			lines = append(lines, fmt.Sprintf("   Error: %s", tc.Error))
		} else {
			lines = append(lines, fmt.Sprintf("   Result: %s", truncate(fmt.Sprint(tc.Result), toolCallResultTruncateLen)))
		}
		lines = append(lines, fmt.Sprintf("   Latency: %.1fms", tc.LatencyMS))
	}
	return strings.Join(lines, "\n")
}

func formatCriteriaList(criteria []string) string {
	if len(criteria) == 0 {
		return "None specified"
	}
	var lines []string
	for _, c := range criteria {
		lines = append(lines, "- "+c)
	}
	return strings.Join(lines, "\n")
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func limitOr(limit int, fallback string) string {
	if limit <= 0 {
		return fallback
	}
	return fmt.Sprintf("%d", limit)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
