package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Liquescent-Development/mcprobe/internal/agent"
	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/judge"
	"github.com/Liquescent-Development/mcprobe/internal/orchestrator"
	"github.com/Liquescent-Development/mcprobe/internal/provider"
	"github.com/Liquescent-Development/mcprobe/internal/report"
	"github.com/Liquescent-Development/mcprobe/internal/sandbox"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
	"github.com/Liquescent-Development/mcprobe/internal/store"
	"github.com/Liquescent-Development/mcprobe/internal/synthuser"
)

var (
	flagScenario string
	flagTag      string
	flagParallel int
	flagDryRun   bool
	flagNoSave   bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario-file...]",
		Short: "Execute test scenarios against the agent under test",
		RunE:  runScenarios,
	}
	cmd.Flags().StringVar(&flagScenario, "scenario", "", "run only the named scenario")
	cmd.Flags().StringVar(&flagTag, "tag", "", "run only scenarios carrying this tag")
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "max concurrent scenarios")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "parse and list scenarios without running them")
	cmd.Flags().BoolVar(&flagNoSave, "no-save", false, "run without persisting results")
	return cmd
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Secrets.EnvFile != "" {
		if err := config.LoadSecrets(cfg.Secrets.EnvFile); err != nil {
			log.Printf("warning: could not load secrets: %v", err)
		}
	}

	scenarios, err := loadScenarios(cfg, args)
	if err != nil {
		return err
	}
	scenarios = filterScenarios(scenarios, flagScenario, flagTag)
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios matched")
	}

	if flagDryRun {
		for _, scn := range scenarios {
			fmt.Printf("%s (%s)\n", scn.Name, scn.Source)
		}
		return nil
	}

	prov, err := provider.New(cfg.Provider)
	if err != nil {
		return err
	}
	storage := store.NewStorage(cfg.Results.Dir)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var jobs []orchestrator.Job
	results := make([]*store.RunResult, len(scenarios))
	for i, scn := range scenarios {
		i, scn := i, scn
		jobs = append(jobs, func(ctx context.Context) error {
			if scn.Skip != "" {
				fmt.Printf("SKIP %s: %s\n", scn.Name, scn.Skip)
				return nil
			}
			fmt.Printf("Running %s...\n", scn.Name)
			res, err := runOne(ctx, cfg, prov, storage, scn)
			if err != nil {
				return fmt.Errorf("%s: %w", scn.Name, err)
			}
			results[i] = res
			status := "FAIL"
			if res.Passed {
				status = "PASS"
			}
			fmt.Printf("  %s %s (score %.2f, %d turns, %.1fs)\n",
				status, scn.Name, res.Score, res.TurnCount, res.DurationSeconds)
			return nil
		})
	}

	errs := orchestrator.RunPool(ctx, flagParallel, jobs)
	for _, err := range errs {
		fmt.Printf("  ERROR: %v\n", err)
	}

	var stored []*store.RunResult
	for _, r := range results {
		if r != nil {
			stored = append(stored, r)
		}
	}
	if len(stored) > 0 {
		fmt.Println("\n--- Results ---")
		if err := report.WriteSummaries(report.Summarize(stored), "table", os.Stdout); err != nil {
			return err
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d scenario(s) failed to run", len(errs))
	}
	return nil
}

// runOne executes a single scenario end to end and persists the result.
func runOne(ctx context.Context, cfg *config.Config, prov provider.Provider, storage *store.Storage, scn *scenario.Scenario) (*store.RunResult, error) {
	agentProv := prov
	if t := scn.Target; t != nil {
		switch {
		case t.Image != "":
			target, err := sandbox.Start(ctx, t)
			if err != nil {
				return nil, err
			}
			defer target.Stop()
			agentProv = targetProvider(cfg, target.BaseURL())
		case t.BaseURL != "":
			agentProv = targetProvider(cfg, t.BaseURL)
		}
	}

	orch := orchestrator.New(
		agent.NewLLMAgent(agentProv, cfg.Agent),
		synthuser.New(prov, cfg.SyntheticUser, &scn.SyntheticUser),
		judge.New(prov, cfg.Judge),
	)

	convResult, judgment, err := orch.RunScenario(ctx, scn)
	if err != nil {
		return nil, err
	}

	res := &store.RunResult{
		RunID:              uuid.NewString(),
		Timestamp:          time.Now().UTC(),
		ScenarioName:       scn.Name,
		ScenarioFile:       scn.Source,
		Tags:               scn.Tags,
		Passed:             judgment.Passed,
		Score:              judgment.Score,
		Reasoning:          judgment.Reasoning,
		DurationSeconds:    convResult.DurationSeconds,
		ToolCallCount:      len(convResult.ToolCalls),
		TokenCount:         convResult.TotalTokens,
		TurnCount:          len(convResult.Turns),
		TerminationReason:  string(convResult.TerminationReason),
		JudgeModel:         cfg.Judge.Model,
		SyntheticUserModel: cfg.SyntheticUser.Model,
		AgentModel:         cfg.Agent.Model,
	}
	if flagNoSave {
		return res, nil
	}
	if _, err := storage.Save(res); err != nil {
		return nil, fmt.Errorf("saving result: %w", err)
	}
	if transcript, err := json.MarshalIndent(convResult, "", "  "); err == nil {
		if _, err := storage.SaveArtifact(res.RunID, "transcript.json", transcript); err != nil {
			log.Printf("warning: could not save transcript for %s: %v", scn.Name, err)
		}
	}
	return res, nil
}

// targetProvider builds an OpenAI-compatible client pointed at the
// scenario's own agent endpoint. Local targets rarely check the key, so
// a placeholder is used when none is configured.
func targetProvider(cfg *config.Config, baseURL string) provider.Provider {
	key := os.Getenv(cfg.Provider.APIKeyEnv)
	if key == "" {
		key = "unused"
	}
	return provider.NewOpenAI(key, baseURL)
}

func loadScenarios(cfg *config.Config, args []string) ([]*scenario.Scenario, error) {
	if len(args) == 0 {
		return scenario.ParseDir(cfg.Scenarios.Dir)
	}
	var scenarios []*scenario.Scenario
	for _, path := range args {
		scn, err := scenario.ParseFile(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scn)
	}
	return scenarios, nil
}

func filterScenarios(scenarios []*scenario.Scenario, name, tag string) []*scenario.Scenario {
	if name == "" && tag == "" {
		return scenarios
	}
	var filtered []*scenario.Scenario
	for _, s := range scenarios {
		if name != "" && s.Name != name {
			continue
		}
		if tag != "" && !s.HasTag(tag) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}
