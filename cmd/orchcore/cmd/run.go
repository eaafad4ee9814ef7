package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kandev/orchcore"
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>...",
	Short: "Run one or more prompts under a chosen execution strategy",
	Long: `run builds a session, creates one ProcessRunner per prompt argument, and
drives them through --strategy:

  parallel    all prompts run concurrently, bounded by --max-workers
  sequential  prompts run one at a time, in argument order
  fallback    prompts run one at a time; the first success wins
  batched     prompts run in contiguous chunks of --batch-size, each
              chunk run in parallel

Exit status is 0 if every runner (fallback: the chosen runner) succeeded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("strategy", "parallel", "parallel | sequential | fallback | batched")
	f.String("pattern-name", "orchcore-run", "pattern name used to derive the session directory")
	f.Int("max-workers", 0, "RunParallel concurrency cap (0 = config defaultMaxWorkers)")
	f.Int("batch-size", 2, "RunBatched chunk size")
	f.Bool("pass-output", false, "feed each runner's stdout into the next prompt (sequential, batched)")
	f.Bool("stop-on-failure", false, "halt a sequential run at the first nonzero exit")
	f.Float64("timeout", 0, "per-runner wall-clock timeout in seconds (0 = config defaultTimeoutSeconds, where 0 is unbounded)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	strategy, _ := cmd.Flags().GetString("strategy")
	patternName, _ := cmd.Flags().GetString("pattern-name")
	maxWorkers, _ := cmd.Flags().GetInt("max-workers")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	passOutput, _ := cmd.Flags().GetBool("pass-output")
	stopOnFailure, _ := cmd.Flags().GetBool("stop-on-failure")
	timeout, _ := cmd.Flags().GetFloat64("timeout")
	stream, _ := cmd.Flags().GetBool("stream")

	if maxWorkers <= 0 {
		maxWorkers = cfg.DefaultMaxWorkers
	}
	if timeout <= 0 {
		timeout = float64(cfg.DefaultTimeoutSeconds)
	}

	var timeoutSeconds *float64
	if timeout > 0 {
		timeoutSeconds = &timeout
	}

	session, err := orchcore.NewSession(patternName, cfg.WorkingDir, cfg.LogRoot, cfg.DefaultModel, cfg.AgentBinary, cfg.StdinFeedInterval, stream)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer session.Close()

	runners := make([]*orchcore.ProcessRunner, 0, len(args))
	for i, prompt := range args {
		runner, err := session.CreateRunner(prompt, fmt.Sprintf("proc_%d", i+1), timeoutSeconds)
		if err != nil {
			return fmt.Errorf("create runner for prompt %d: %w", i+1, err)
		}
		runners = append(runners, runner)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var results []orchcore.ProcessResult
	var fallbackResult *orchcore.ProcessResult

	switch strategy {
	case "parallel":
		results = orchcore.RunParallel(ctx, runners, maxWorkers)
	case "sequential":
		results = orchcore.RunSequential(ctx, runners, passOutput, stopOnFailure)
	case "fallback":
		r := orchcore.RunWithFallback(ctx, runners, timeoutSeconds)
		fallbackResult = &r
		results = []orchcore.ProcessResult{r}
	case "batched":
		results, err = orchcore.RunBatched(ctx, runners, batchSize, passOutput)
		if err != nil {
			return fmt.Errorf("run batched: %w", err)
		}
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}

	session.Summarize(results)

	allSucceeded := true
	for _, r := range results {
		if !r.Success() {
			allSucceeded = false
			break
		}
	}
	if fallbackResult != nil {
		allSucceeded = fallbackResult.Success()
	}
	if !allSucceeded {
		os.Exit(1)
	}
	return nil
}
