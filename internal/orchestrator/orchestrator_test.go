package orchestrator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Liquescent-Development/mcprobe/internal/agent"
	"github.com/Liquescent-Development/mcprobe/internal/conversation"
	"github.com/Liquescent-Development/mcprobe/internal/judge"
	"github.com/Liquescent-Development/mcprobe/internal/orchestrator"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
	"github.com/Liquescent-Development/mcprobe/internal/synthuser"
)

type stubAgent struct {
	replies []string
	calls   int
	resets  int
	err     error
}

func (a *stubAgent) Reset(ctx context.Context) error {
	a.resets++
	return nil
}

func (a *stubAgent) Send(ctx context.Context, message string) (*agent.Reply, error) {
	if a.err != nil {
		return nil, a.err
	}
	reply := "I need more information."
	if a.calls < len(a.replies) {
		reply = a.replies[a.calls]
	}
	a.calls++
	return &agent.Reply{Message: reply, TokensUsed: 10}, nil
}

type stubUser struct {
	initial string
	replies []string
	calls   int
	resets  int
}

func (u *stubUser) InitialQuery() string { return u.initial }
func (u *stubUser) Reset()               { u.resets++ }

func (u *stubUser) Respond(ctx context.Context, assistantMessage string) (*synthuser.Reply, error) {
	reply := "Can you elaborate?"
	if u.calls < len(u.replies) {
		reply = u.replies[u.calls]
	}
	u.calls++
	return &synthuser.Reply{Message: reply, TokensUsed: 5}, nil
}

type stubJudge struct {
	metAfter int // criteria met once this many checks have happened; 0 = never
	checks   int
	judgment judge.Judgment
}

func (j *stubJudge) CheckCriteria(ctx context.Context, scn *scenario.Scenario, turns []conversation.Turn) (*judge.CriteriaCheck, error) {
	j.checks++
	met := j.metAfter > 0 && j.checks >= j.metAfter
	return &judge.CriteriaCheck{AllCriteriaMet: met}, nil
}

func (j *stubJudge) Evaluate(ctx context.Context, scn *scenario.Scenario, result *conversation.Result) (*judge.Judgment, error) {
	out := j.judgment
	return &out, nil
}

func testScenario(maxTurns int) *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "lookup",
		Description: "lookup test",
		SyntheticUser: scenario.SyntheticUser{
			Persona:      "curious user",
			InitialQuery: "What is the answer?",
			MaxTurns:     maxTurns,
		},
		Evaluation: scenario.Evaluation{CorrectnessCriteria: []string{"answers"}},
	}
}

func TestRunScenarioCriteriaMet(t *testing.T) {
	a := &stubAgent{replies: []string{"The answer is 42."}}
	u := &stubUser{initial: "What is the answer?"}
	j := &stubJudge{metAfter: 1, judgment: judge.Judgment{Passed: true, Score: 1}}

	result, judgment, err := orchestrator.New(a, u, j).RunScenario(context.Background(), testScenario(5))
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if result.TerminationReason != conversation.TerminationCriteriaMet {
		t.Errorf("termination = %q, want criteria_met", result.TerminationReason)
	}
	if result.FinalAnswer != "The answer is 42." {
		t.Errorf("final answer = %q", result.FinalAnswer)
	}
	if len(result.Turns) != 2 {
		t.Errorf("got %d turns, want 2", len(result.Turns))
	}
	if !judgment.Passed {
		t.Error("expected passing judgment")
	}
	if a.resets != 1 || u.resets != 1 {
		t.Errorf("resets agent=%d user=%d, want 1 each", a.resets, u.resets)
	}
}

func TestRunScenarioMaxTurns(t *testing.T) {
	a := &stubAgent{replies: []string{"First try.", "Second try.", "Third try."}}
	u := &stubUser{initial: "q", replies: []string{"more a", "more b", "more c"}}
	j := &stubJudge{} // never satisfied

	result, _, err := orchestrator.New(a, u, j).RunScenario(context.Background(), testScenario(3))
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if result.TerminationReason != conversation.TerminationMaxTurns {
		t.Errorf("termination = %q, want max_turns", result.TerminationReason)
	}
	if a.calls != 3 {
		t.Errorf("agent called %d times, want 3", a.calls)
	}
	if result.FinalAnswer != "Third try." {
		t.Errorf("final answer = %q, want last assistant message", result.FinalAnswer)
	}
}

func TestRunScenarioLoopDetected(t *testing.T) {
	a := &stubAgent{}
	u := &stubUser{initial: "q", replies: []string{"same thing", "same thing", "same thing"}}
	j := &stubJudge{}

	result, _, err := orchestrator.New(a, u, j).RunScenario(context.Background(), testScenario(10))
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if result.TerminationReason != conversation.TerminationLoopDetected {
		t.Errorf("termination = %q, want loop_detected", result.TerminationReason)
	}
	// Three identical user follow-ups end the loop well before max turns.
	if a.calls >= 10 {
		t.Errorf("agent called %d times, loop not cut short", a.calls)
	}
}

func TestRunScenarioTokenAccounting(t *testing.T) {
	a := &stubAgent{replies: []string{"one", "two"}}
	u := &stubUser{initial: "q", replies: []string{"again"}}
	j := &stubJudge{metAfter: 2}

	result, _, err := orchestrator.New(a, u, j).RunScenario(context.Background(), testScenario(5))
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	// Two agent replies at 10 tokens plus one user reply at 5.
	if result.TotalTokens != 25 {
		t.Errorf("tokens = %d, want 25", result.TotalTokens)
	}
}

func TestRunScenarioAgentError(t *testing.T) {
	a := &stubAgent{err: errors.New("connection refused")}
	u := &stubUser{initial: "q"}
	j := &stubJudge{}

	_, _, err := orchestrator.New(a, u, j).RunScenario(context.Background(), testScenario(3))
	if err == nil {
		t.Fatal("expected error when agent fails")
	}
}

func TestRunPoolRespectsWorkerLimit(t *testing.T) {
	var active, peak atomic.Int32
	var jobs []orchestrator.Job
	for i := 0; i < 8; i++ {
		jobs = append(jobs, func(ctx context.Context) error {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			active.Add(-1)
			return nil
		})
	}
	if errs := orchestrator.RunPool(context.Background(), 2, jobs); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds limit 2", peak.Load())
	}
}

func TestRunPoolCollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	jobs := []orchestrator.Job{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error { return boom },
	}
	errs := orchestrator.RunPool(context.Background(), 4, jobs)
	if len(errs) != 2 {
		t.Errorf("got %d errors, want 2", len(errs))
	}
}

func TestRunPoolStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Int32
	jobs := []orchestrator.Job{
		func(ctx context.Context) error { ran.Add(1); return nil },
		func(ctx context.Context) error { ran.Add(1); return nil },
	}
	errs := orchestrator.RunPool(ctx, 1, jobs)
	if ran.Load() != 0 {
		t.Errorf("%d jobs ran after cancellation", ran.Load())
	}
	if len(errs) == 0 {
		t.Error("expected cancellation error to be reported")
	}
}
