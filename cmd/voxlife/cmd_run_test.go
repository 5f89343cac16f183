package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/askel-dev/voxlife/classify"
	"github.com/askel-dev/voxlife/config"
	"github.com/askel-dev/voxlife/lattice"
	"github.com/askel-dev/voxlife/metrics"
)

func newOverrideCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addRunOverrideFlags(cmd)
	addOutputOverrideFlags(cmd)
	return cmd
}

func TestApplyRunOverrides(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	cmd := newOverrideCmd()
	if err := cmd.Flags().Set("size", "25"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("variant", "exclusive26"); err != nil {
		t.Fatal(err)
	}

	if err := applyRunOverrides(cmd, cfg); err != nil {
		t.Fatalf("applyRunOverrides: %v", err)
	}
	if cfg.Run.Size != 25 || cfg.Derived.Volume != 25*25*25 {
		t.Errorf("size override not applied: size=%d volume=%d", cfg.Run.Size, cfg.Derived.Volume)
	}
	if cfg.Derived.Variant != lattice.Exclusive26 {
		t.Errorf("variant override not applied: %v", cfg.Derived.Variant)
	}
}

func TestApplyRunOverridesRejectsBadVariant(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	wantVariant := cfg.Derived.Variant

	cmd := newOverrideCmd()
	if err := cmd.Flags().Set("variant", "exclusive-26"); err != nil {
		t.Fatal(err)
	}

	err = applyRunOverrides(cmd, cfg)
	if !errors.Is(err, lattice.ErrBadVariant) {
		t.Fatalf("err = %v, want ErrBadVariant", err)
	}
	if cfg.Derived.Variant != wantVariant {
		t.Errorf("variant changed to %v despite invalid override", cfg.Derived.Variant)
	}
}

func TestPersistRunWritesConfigSnapshot(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Output.Dir = t.TempDir()
	cfg.Output.DB = ""

	res := classify.Result{RuleID: 54, Code: classify.ChaoticTurbulent, Name: classify.ChaoticTurbulent.Name()}
	traj := metrics.Trajectory{metrics.Extinct(0), metrics.Extinct(1)}

	if err := persistRun(context.Background(), cfg, res, traj); err != nil {
		t.Fatalf("persistRun: %v", err)
	}

	for _, name := range []string{"config.yaml", "classification.csv", "rule_054.csv"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
