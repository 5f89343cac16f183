package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askel-dev/voxlife/config"
	"github.com/askel-dev/voxlife/store"
	"github.com/askel-dev/voxlife/telemetry"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored runs to CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Cfg()
			if db, _ := cmd.Flags().GetString("db"); db != "" {
				cfg.Output.DB = db
			}
			if cfg.Output.DB == "" {
				return fmt.Errorf("no database configured (set output.db)")
			}

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.Output.Dir
			}
			if dir == "" {
				return fmt.Errorf("no output directory (set output.dir or --dir)")
			}
			ruleSpec, _ := cmd.Flags().GetString("rules")

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

			om, err := telemetry.NewOutputManager(dir)
			if err != nil {
				return err
			}
			defer om.Close()

			exported := 0
			for _, id := range ids {
				rec, ok, err := db.GetRun(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if err := om.WriteTrajectory(id, rec.Records); err != nil {
					return fmt.Errorf("exporting rule %d: %w", id, err)
				}
				exported++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d trajectories to %s\n", exported, dir)
			return nil
		},
	}

	cmd.Flags().String("dir", "", "Destination directory (defaults to output.dir)")
	cmd.Flags().String("rules", "", "Rule ids and ranges to export (all stored runs when empty)")
	cmd.Flags().String("db", "", "SQLite database path; overrides config")
	return cmd
}
