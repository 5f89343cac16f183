package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askel-dev/voxlife/classify"
	"github.com/askel-dev/voxlife/config"
	"github.com/askel-dev/voxlife/store"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Re-classify stored trajectories with the current thresholds",
		Long: `classify reloads saved runs from the database and re-runs the trajectory
classifier against them. Useful after tuning classifier thresholds: the
simulations themselves do not need to be repeated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Cfg()
			if db, _ := cmd.Flags().GetString("db"); db != "" {
				cfg.Output.DB = db
			}
			if cfg.Output.DB == "" {
				return fmt.Errorf("no database configured (set output.db)")
			}

			ruleSpec, _ := cmd.Flags().GetString("rules")
			update, _ := cmd.Flags().GetBool("update")

			db := store.New(cfg.Output.DB)
			if err := db.Init(ctx); err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			ids, err := parseRuleSet(ruleSpec)
			if err != nil {
				return err
			}
			if ids == nil {
				ids, err = db.RuleIDs(ctx)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			changed := 0
			for _, id := range ids {
				rec, ok, err := db.GetRun(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				res := classify.Classify(id, rec.Records, rec.Size, cfg.Classifier)
				if string(res.Code) == rec.Code {
					continue
				}
				changed++
				fmt.Fprintf(out, "rule %3d: %s -> %s (%s)\n", id, rec.Code, res.Code, res.Name)
				if update {
					if err := db.UpdateLabel(ctx, id, string(res.Code), res.Name); err != nil {
						return err
					}
				}
			}

			if changed == 0 {
				fmt.Fprintln(out, "no classifications changed")
			} else if !update {
				fmt.Fprintf(out, "%d classifications would change; rerun with --update to apply\n", changed)
			} else {
				fmt.Fprintf(out, "updated %d classifications\n", changed)
			}
			return nil
		},
	}

	cmd.Flags().String("rules", "", "Rule ids and ranges to re-classify (all stored runs when empty)")
	cmd.Flags().Bool("update", false, "Write changed labels back to the database")
	cmd.Flags().String("db", "", "SQLite database path; overrides config")
	return cmd
}
