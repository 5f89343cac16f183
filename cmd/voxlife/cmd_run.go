package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/askel-dev/voxlife/classify"
	"github.com/askel-dev/voxlife/config"
	"github.com/askel-dev/voxlife/lattice"
	"github.com/askel-dev/voxlife/metrics"
	"github.com/askel-dev/voxlife/rule"
	"github.com/askel-dev/voxlife/sim"
	"github.com/askel-dev/voxlife/store"
	"github.com/askel-dev/voxlife/telemetry"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate and classify a single rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Cfg()

			ruleID, _ := cmd.Flags().GetInt("rule")
			if ruleID < 0 || ruleID > 255 {
				return fmt.Errorf("rule id %d outside 0-255", ruleID)
			}
			if err := applyRunOverrides(cmd, cfg); err != nil {
				return err
			}

			table, err := rule.Decode(ruleID)
			if err != nil {
				return err
			}
			slog.Info("run starting", "rule", table, "size", cfg.Run.Size,
				"generations", cfg.Run.Generations, "variant", cfg.Derived.Variant.String())

			traj := make(metrics.Trajectory, 0, cfg.Run.Generations+1)
			err = sim.Run(ctx, sim.Config{
				Size:        cfg.Run.Size,
				Generations: cfg.Run.Generations,
				Table:       table,
				Variant:     cfg.Derived.Variant,
			}, func(g sim.Generation) error {
				rec := metrics.Summarize(g.Lattice, g.Agg, g.Index)
				traj = append(traj, rec)
				slog.Debug("generation", "metrics", rec)
				return nil
			})
			if err != nil {
				return fmt.Errorf("running rule %d: %w", ruleID, err)
			}
			for len(traj) < cfg.Run.Generations+1 {
				traj = append(traj, metrics.Extinct(len(traj)))
			}

			res := classify.Classify(ruleID, traj, cfg.Run.Size, cfg.Classifier)
			slog.Info("run finished", "classification", res)
			final := traj.Final()
			fmt.Printf("%s: class %s (%s), final population %d, extent %.2f\n",
				table, res.Code, res.Name, final.Population, final.Extent)

			if err := persistRun(ctx, cfg, res, traj); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().Int("rule", 54, "Rule identifier (0-255)")
	addRunOverrideFlags(cmd)
	addOutputOverrideFlags(cmd)
	return cmd
}

// addRunOverrideFlags registers flags that override the run section of the
// loaded config when set.
func addRunOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().Int("size", 0, "Grid side length (odd, >= 3); overrides config")
	cmd.Flags().Int("generations", -1, "Generations beyond the seed; overrides config")
	cmd.Flags().String("variant", "", "Aggregate variant (inclusive27 or exclusive26); overrides config")
}

func addOutputOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "", "CSV output directory; overrides config")
	cmd.Flags().String("db", "", "SQLite database path; overrides config")
}

func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if size, _ := cmd.Flags().GetInt("size"); size > 0 {
		cfg.Run.Size = size
		cfg.Derived.Volume = size * size * size
	}
	if gens, _ := cmd.Flags().GetInt("generations"); gens >= 0 && cmd.Flags().Changed("generations") {
		cfg.Run.Generations = gens
	}
	if v, _ := cmd.Flags().GetString("variant"); v != "" {
		variant, err := lattice.ParseVariant(v)
		if err != nil {
			return err
		}
		cfg.Run.Variant = v
		cfg.Derived.Variant = variant
	}
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		cfg.Output.Dir = dir
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Output.DB = db
	}
	return nil
}

// persistRun writes one run's outputs to whichever sinks the config enables.
func persistRun(ctx context.Context, cfg *config.Config, res classify.Result, traj metrics.Trajectory) error {
	om, err := telemetry.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}
	if err := om.WriteClassification(res); err != nil {
		return err
	}
	if err := om.WriteTrajectory(res.RuleID, traj); err != nil {
		return err
	}

	if cfg.Output.DB == "" {
		return nil
	}
	db := store.New(cfg.Output.DB)
	if err := db.Init(ctx); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	return db.SaveRun(ctx, store.RunRecord{
		RuleID:      res.RuleID,
		Size:        cfg.Run.Size,
		Generations: cfg.Run.Generations,
		Variant:     cfg.Derived.Variant.String(),
		Code:        string(res.Code),
		Name:        res.Name,
		Records:     traj,
	})
}
