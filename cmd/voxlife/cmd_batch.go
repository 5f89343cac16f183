package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/askel-dev/voxlife/batch"
	"github.com/askel-dev/voxlife/classify"
	"github.com/askel-dev/voxlife/config"
	"github.com/askel-dev/voxlife/store"
	"github.com/askel-dev/voxlife/telemetry"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Sweep a set of rules and classify every trajectory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Cfg()
			if err := applyRunOverrides(cmd, cfg); err != nil {
				return err
			}

			ruleSpec, _ := cmd.Flags().GetString("rules")
			rules, err := parseRuleSet(ruleSpec)
			if err != nil {
				return err
			}
			if workers, _ := cmd.Flags().GetInt("workers"); cmd.Flags().Changed("workers") {
				cfg.Batch.Workers = workers
			}
			trajectories, _ := cmd.Flags().GetBool("trajectories")

			results, err := batch.Run(ctx, batch.Options{
				Size:        cfg.Run.Size,
				Generations: cfg.Run.Generations,
				Variant:     cfg.Derived.Variant,
				Thresholds:  cfg.Classifier,
				Workers:     cfg.Batch.Workers,
				Rules:       rules,
			})
			if err != nil {
				return err
			}

			if err := persistBatch(cmd, cfg, results, trajectories); err != nil {
				return err
			}

			failures := reportBatch(cmd, results)
			if failures > 0 {
				return fmt.Errorf("%d of %d rules failed", failures, len(results))
			}
			return nil
		},
	}

	cmd.Flags().String("rules", "", "Rule ids and ranges, e.g. \"0-63,128\" (all 256 when empty)")
	cmd.Flags().Int("workers", 0, "Concurrent runs (0 = GOMAXPROCS); overrides config")
	cmd.Flags().Bool("trajectories", false, "Also write per-rule trajectory CSVs")
	addRunOverrideFlags(cmd)
	addOutputOverrideFlags(cmd)
	return cmd
}

func persistBatch(cmd *cobra.Command, cfg *config.Config, results []batch.RuleResult, trajectories bool) error {
	om, err := telemetry.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	var db *store.Store
	if cfg.Output.DB != "" {
		db = store.New(cfg.Output.DB)
		if err := db.Init(cmd.Context()); err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := om.WriteClassification(r.Class); err != nil {
			return err
		}
		if trajectories {
			if err := om.WriteTrajectory(r.RuleID, r.Trajectory); err != nil {
				return err
			}
		}
		if db != nil {
			err := db.SaveRun(cmd.Context(), store.RunRecord{
				RuleID:      r.RuleID,
				Size:        cfg.Run.Size,
				Generations: cfg.Run.Generations,
				Variant:     cfg.Derived.Variant.String(),
				Code:        string(r.Class.Code),
				Name:        r.Class.Name,
				Records:     r.Trajectory,
			})
			if err != nil {
				return fmt.Errorf("saving rule %d: %w", r.RuleID, err)
			}
		}
	}
	return nil
}

// reportBatch prints a class histogram and logs failures. Returns the number
// of failed rules.
func reportBatch(cmd *cobra.Command, results []batch.RuleResult) int {
	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			slog.Error("rule failed", "rule_id", r.RuleID, "error", r.Err)
		}
	}

	counts := batch.Summary(results)
	codes := make([]classify.Code, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "classified %d rules:\n", len(results)-failures)
	for _, code := range codes {
		fmt.Fprintf(out, "  %-3s %-28s %d\n", code, code.Name(), counts[code])
	}
	return failures
}
