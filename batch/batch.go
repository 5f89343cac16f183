// Package batch drives independent rule runs across a worker pool.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/askel-dev/voxlife/classify"
	"github.com/askel-dev/voxlife/lattice"
	"github.com/askel-dev/voxlife/metrics"
	"github.com/askel-dev/voxlife/rule"
	"github.com/askel-dev/voxlife/sim"
)

// Options configures a batch of rule runs.
type Options struct {
	Size        int
	Generations int
	Variant     lattice.Variant
	Thresholds  classify.Thresholds

	// Workers bounds concurrent runs. Each in-flight run holds its own
	// lattice buffers, so memory scales linearly with this. 0 = GOMAXPROCS.
	Workers int

	// Rules selects the rule identifiers to run; nil means all 256.
	Rules []int
}

// RuleResult is the outcome of one rule's run. Err is set when that single
// run failed; sibling runs are unaffected.
type RuleResult struct {
	RuleID     int
	Trajectory metrics.Trajectory
	Class      classify.Result
	Err        error
}

// AllRules returns the full identifier range 0-255.
func AllRules() []int {
	rules := make([]int, 256)
	for i := range rules {
		rules[i] = i
	}
	return rules
}

// Run simulates, summarizes and classifies every requested rule, spreading
// runs across a pool of workers. Results come back in rule order regardless
// of completion order. Cancelling ctx stops feeding new rules and marks
// in-flight runs with the context error.
func Run(ctx context.Context, opts Options) ([]RuleResult, error) {
	rules := opts.Rules
	if rules == nil {
		rules = AllRules()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(rules) {
		workers = len(rules)
	}

	slog.Info("batch starting",
		"rules", len(rules),
		"workers", workers,
		"size", opts.Size,
		"generations", opts.Generations,
		"variant", opts.Variant.String(),
	)

	var cache rule.Cache
	results := make([]RuleResult, len(rules))
	jobs := make(chan int)

	var wg sync.WaitGroup
	var completed atomic.Int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				// Workers write disjoint slots, so no lock is needed.
				results[idx] = runRule(ctx, opts, &cache, rules[idx])
				if n := completed.Add(1); n%10 == 0 {
					slog.Info("batch progress", "completed", n, "total", len(rules))
				}
			}
		}()
	}

	// Feed rule indices until done or cancelled.
	go func() {
		defer close(jobs)
		for i := range rules {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// runRule produces one rule's padded trajectory and classification. The
// engine buffers are owned by this call alone; concurrent runs never alias
// lattice memory.
func runRule(ctx context.Context, opts Options, cache *rule.Cache, ruleID int) RuleResult {
	table, err := cache.Get(ruleID)
	if err != nil {
		return RuleResult{RuleID: ruleID, Err: fmt.Errorf("decoding rule %d: %w", ruleID, err)}
	}

	traj := make(metrics.Trajectory, 0, opts.Generations+1)
	err = sim.Run(ctx, sim.Config{
		Size:        opts.Size,
		Generations: opts.Generations,
		Table:       table,
		Variant:     opts.Variant,
	}, func(g sim.Generation) error {
		traj = append(traj, metrics.Summarize(g.Lattice, g.Agg, g.Index))
		return nil
	})
	if err != nil {
		return RuleResult{RuleID: ruleID, Err: fmt.Errorf("running rule %d: %w", ruleID, err)}
	}

	// Early-stopped runs are padded with extinct records so every
	// trajectory spans generations 0..N and the classifier windows line up.
	for len(traj) < opts.Generations+1 {
		traj = append(traj, metrics.Extinct(len(traj)))
	}

	return RuleResult{
		RuleID:     ruleID,
		Trajectory: traj,
		Class:      classify.Classify(ruleID, traj, opts.Size, opts.Thresholds),
	}
}

// Summary tallies results per class code, for the end-of-batch report.
func Summary(results []RuleResult) map[classify.Code]int {
	counts := make(map[classify.Code]int)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		counts[r.Class.Code]++
	}
	return counts
}
