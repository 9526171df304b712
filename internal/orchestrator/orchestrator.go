// Package orchestrator runs the conversation loop between the synthetic
// user and the agent under test, with the judge deciding when the
// scenario's criteria have been met.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/Liquescent-Development/mcprobe/internal/agent"
	"github.com/Liquescent-Development/mcprobe/internal/conversation"
	"github.com/Liquescent-Development/mcprobe/internal/judge"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
	"github.com/Liquescent-Development/mcprobe/internal/synthuser"
)

const (
	minTurnsForLoop     = 4
	loopDetectionWindow = 3
)

// Agent is the system under test, from the orchestrator's point of view.
type Agent interface {
	Reset(ctx context.Context) error
	Send(ctx context.Context, message string) (*agent.Reply, error)
}

// User supplies the human side of the conversation.
type User interface {
	InitialQuery() string
	Respond(ctx context.Context, assistantMessage string) (*synthuser.Reply, error)
	Reset()
}

// Judge decides mid-conversation termination and scores the result.
type Judge interface {
	CheckCriteria(ctx context.Context, scn *scenario.Scenario, turns []conversation.Turn) (*judge.CriteriaCheck, error)
	Evaluate(ctx context.Context, scn *scenario.Scenario, result *conversation.Result) (*judge.Judgment, error)
}

// Orchestrator coordinates one conversation at a time. Callers running
// scenarios in parallel use one Orchestrator per worker.
type Orchestrator struct {
	agent Agent
	user  User
	judge Judge
}

// New wires an orchestrator from its three participants.
func New(a Agent, u User, j Judge) *Orchestrator {
	return &Orchestrator{agent: a, user: u, judge: j}
}

// RunScenario executes the full scenario: reset both sides, run the
// conversation loop, then have the judge score the transcript.
func (o *Orchestrator) RunScenario(ctx context.Context, scn *scenario.Scenario) (*conversation.Result, *judge.Judgment, error) {
	if err := o.agent.Reset(ctx); err != nil {
		return nil, nil, fmt.Errorf("resetting agent: %w", err)
	}
	o.user.Reset()

	result, err := o.runConversation(ctx, scn)
	if err != nil {
		return nil, nil, err
	}

	judgment, err := o.judge.Evaluate(ctx, scn, result)
	if err != nil {
		return result, nil, err
	}
	return result, judgment, nil
}

// runConversation drives the loop until the judge reports the criteria
// met, max turns is reached, or the user starts repeating itself.
func (o *Orchestrator) runConversation(ctx context.Context, scn *scenario.Scenario) (*conversation.Result, error) {
	start := time.Now()
	maxTurns := scn.SyntheticUser.MaxTurns

	var (
		turns        []conversation.Turn
		allToolCalls []conversation.ToolCall
		totalTokens  int
		finalAnswer  string
	)
	termination := conversation.TerminationMaxTurns

	currentMessage := o.user.InitialQuery()
	turns = append(turns, conversation.Turn{Role: "user", Content: currentMessage, Timestamp: time.Now()})

	for turn := 0; turn < maxTurns; turn++ {
		reply, err := o.agent.Send(ctx, currentMessage)
		if err != nil {
			return nil, fmt.Errorf("agent failed to respond: %w", err)
		}
		turns = append(turns, conversation.Turn{
			Role:      "assistant",
			Content:   reply.Message,
			ToolCalls: reply.ToolCalls,
			Timestamp: time.Now(),
		})
		allToolCalls = append(allToolCalls, reply.ToolCalls...)
		totalTokens += reply.TokensUsed

		check, err := o.judge.CheckCriteria(ctx, scn, turns)
		if err != nil {
			return nil, fmt.Errorf("judge criteria check failed: %w", err)
		}
		if check.AllCriteriaMet {
			finalAnswer = reply.Message
			termination = conversation.TerminationCriteriaMet
			break
		}

		userReply, err := o.user.Respond(ctx, reply.Message)
		if err != nil {
			return nil, fmt.Errorf("synthetic user failed to respond: %w", err)
		}
		totalTokens += userReply.TokensUsed
		turns = append(turns, conversation.Turn{Role: "user", Content: userReply.Message, Timestamp: time.Now()})
		currentMessage = userReply.Message

		if detectLoop(turns) {
			finalAnswer = reply.Message
			termination = conversation.TerminationLoopDetected
			break
		}
	}

	if termination == conversation.TerminationMaxTurns {
		for i := len(turns) - 1; i >= 0; i-- {
			if turns[i].Role == "assistant" {
				finalAnswer = turns[i].Content
				break
			}
		}
	}

	return &conversation.Result{
		Turns:             turns,
		FinalAnswer:       finalAnswer,
		ToolCalls:         allToolCalls,
		TotalTokens:       totalTokens,
		DurationSeconds:   time.Since(start).Seconds(),
		TerminationReason: termination,
	}, nil
}

// detectLoop reports whether the user's last few messages are identical,
// a sign the conversation is stuck.
func detectLoop(turns []conversation.Turn) bool {
	if len(turns) < minTurnsForLoop {
		return false
	}
	var userMessages []string
	for _, t := range turns {
		if t.Role == "user" {
			userMessages = append(userMessages, t.Content)
		}
	}
	if len(userMessages) < loopDetectionWindow {
		return false
	}
	recent := userMessages[len(userMessages)-loopDetectionWindow:]
	for _, msg := range recent[1:] {
		if msg != recent[0] {
			return false
		}
	}
	return true
}
