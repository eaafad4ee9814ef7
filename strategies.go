package orchcore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxWorkers is used by RunParallel when maxWorkers <= 0, bounded
// by the number of runners actually submitted.
const DefaultMaxWorkers = 4

// runSafely invokes runner.Run and recovers from any panic escaping it,
// converting it into a synthesized failure per spec.md §4.4.1's "if a
// runner raises internally ... synthesize a failed ProcessResult" clause.
// ProcessRunner.Run is documented to never panic on expected subprocess
// errors; this is a defensive backstop for the documented contract, not
// an expected path.
func runSafely(ctx context.Context, runner *ProcessRunner) (result ProcessResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			result = synthesizedFailure(runner.ProcessID(), fmt.Sprintf("panic: %v", p), time.Since(start).Seconds())
		}
	}()
	return runner.Run(ctx)
}

// RunParallel runs all runners concurrently, bounded by maxWorkers (at
// most min(len(runners), DefaultMaxWorkers) live children when maxWorkers
// <= 0). Results are returned in completion order, each carrying its
// ProcessID so callers can reconstitute the submission mapping.
func RunParallel(ctx context.Context, runners []*ProcessRunner, maxWorkers int) []ProcessResult {
	if len(runners) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
		if len(runners) < maxWorkers {
			maxWorkers = len(runners)
		}
	}

	sem := semaphore.NewWeighted(int64(maxWorkers))
	var mu sync.Mutex
	results := make([]ProcessResult, 0, len(runners))

	g, gctx := errgroup.WithContext(ctx)
	for _, runner := range runners {
		runner := runner
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				// Context cancelled before a slot freed up; record as a
				// synthesized failure rather than dropping the runner.
				mu.Lock()
				results = append(results, synthesizedFailure(runner.ProcessID(), err.Error(), 0))
				mu.Unlock()
				return nil
			}
			defer sem.Release(1)

			result := runSafely(ctx, runner)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // worker bodies never return a non-nil error; no short-circuit to observe

	return results
}

// RunSequential runs runners one at a time in submission order. When
// passOutput is true, runner i>0's prompt is augmented in place with
// runner i-1's stdout, separated by "\n\n", before it is spawned. When
// stopOnFailure is true, a nonzero exit code halts the chain: the
// returned slice holds results up to and including the failing runner,
// and the remaining runners are never invoked.
func RunSequential(ctx context.Context, runners []*ProcessRunner, passOutput, stopOnFailure bool) []ProcessResult {
	results := make([]ProcessResult, 0, len(runners))

	for i, runner := range runners {
		if passOutput && i > 0 {
			runner.prompt = results[i-1].Stdout + "\n\n" + runner.prompt
		}

		result := runSafely(ctx, runner)
		results = append(results, result)

		if stopOnFailure && result.ExitCode != 0 {
			break
		}
	}

	return results
}

// RunWithFallback runs runners in submission order, returning the first
// ProcessResult with ExitCode == 0. If none succeed, the last result is
// returned (never a synthesized one, so the caller always gets real
// diagnostic stderr). An empty runner list fails fast with a synthesized
// ProcessResult.
func RunWithFallback(ctx context.Context, runners []*ProcessRunner, perRunnerTimeout *float64) ProcessResult {
	if len(runners) == 0 {
		return synthesizedFailure("", "run_with_fallback: no runners supplied", 0)
	}

	var last ProcessResult
	for _, runner := range runners {
		if perRunnerTimeout != nil && runner.opts.TimeoutSeconds == nil {
			runner.opts.TimeoutSeconds = perRunnerTimeout
		}

		last = runSafely(ctx, runner)
		if last.ExitCode == 0 {
			return last
		}
	}
	return last
}

// RunBatched partitions runners into contiguous chunks of batchSize (the
// last chunk may be shorter) and runs each chunk via RunParallel with
// maxWorkers = batchSize. When passOutput is true, the aggregate stdout
// of batch k's successful runners (completion order, "\n\n"-separated)
// is prepended to every prompt in batch k+1. Returned results concatenate
// batch results in batch order.
func RunBatched(ctx context.Context, runners []*ProcessRunner, batchSize int, passOutput bool) ([]ProcessResult, error) {
	if batchSize < 1 {
		return nil, ErrInvalidBatchSize
	}
	if len(runners) == 0 {
		return nil, nil
	}

	all := make([]ProcessResult, 0, len(runners))
	var carry string

	for start := 0; start < len(runners); start += batchSize {
		end := start + batchSize
		if end > len(runners) {
			end = len(runners)
		}
		batch := runners[start:end]

		if passOutput && carry != "" {
			for _, runner := range batch {
				runner.prompt = carry + "\n\n" + runner.prompt
			}
		}

		results := RunParallel(ctx, batch, batchSize)
		all = append(all, results...)

		if passOutput {
			var b []string
			for _, r := range results {
				if r.Success() {
					b = append(b, r.Stdout)
				}
			}
			carry = joinDoubleNewline(b)
		}
	}

	return all, nil
}

func joinDoubleNewline(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n\n"
		}
		out += p
	}
	return out
}
