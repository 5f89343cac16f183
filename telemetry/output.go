// Package telemetry handles structured experiment output.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/askel-dev/voxlife/classify"
	"github.com/askel-dev/voxlife/config"
	"github.com/askel-dev/voxlife/metrics"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	classFile *os.File

	// Track if headers have been written
	classHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled); a nil manager is
// safe to call.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	classPath := filepath.Join(dir, "classification.csv")
	f, err := os.Create(classPath)
	if err != nil {
		return nil, fmt.Errorf("creating classification.csv: %w", err)
	}
	om.classFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteClassification appends one rule's classification record to
// classification.csv.
func (om *OutputManager) WriteClassification(res classify.Result) error {
	if om == nil {
		return nil
	}

	records := []classify.Result{res}

	if !om.classHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.classFile); err != nil {
			return fmt.Errorf("writing classification: %w", err)
		}
		om.classHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.classFile); err != nil {
			return fmt.Errorf("writing classification: %w", err)
		}
	}

	return nil
}

// WriteTrajectory saves one rule's full per-generation metrics as
// rule_NNN.csv.
func (om *OutputManager) WriteTrajectory(ruleID int, traj metrics.Trajectory) error {
	if om == nil {
		return nil
	}

	path := filepath.Join(om.dir, fmt.Sprintf("rule_%03d.csv", ruleID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trajectory file: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal([]metrics.Record(traj), f); err != nil {
		return fmt.Errorf("writing trajectory for rule %d: %w", ruleID, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	if om.classFile != nil {
		return om.classFile.Close()
	}
	return nil
}
