// Package classify assigns an empirical behavior class to a completed
// trajectory. Classes are evaluated as an ordered decision list: the first
// matching predicate wins, so reordering the list changes the scheme.
package classify

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/askel-dev/voxlife/metrics"
)

// Code is a behavior class label.
type Code string

const (
	ImmediateExtinction Code = "1A"
	DelayedExtinction   Code = "1B"
	ExtinctionBlink     Code = "2A"
	SparseBlink         Code = "2B"
	LocalPeriodic       Code = "2C"
	ExpandingOscillator Code = "2D"
	ChaoticTurbulent    Code = "3"
	StructuredExpander  Code = "4A"
	StructuredBounded   Code = "4B"
	ComplexStable       Code = "5"
	SimpleGrowth        Code = "6"
	Unclassified        Code = "0"
)

var codeNames = map[Code]string{
	ImmediateExtinction: "Immediate Extinction",
	DelayedExtinction:   "Delayed Extinction",
	ExtinctionBlink:     "Extinction Blink (0-Full)",
	SparseBlink:         "Sparse Blink",
	LocalPeriodic:       "Static/Local Periodic",
	ExpandingOscillator: "Expanding Oscillator",
	ChaoticTurbulent:    "Chaotic Turbulent",
	StructuredExpander:  "Structured Expander (Boundary)",
	StructuredBounded:   "Structured Bounded",
	ComplexStable:       "Complex Stable",
	SimpleGrowth:        "Simple Growth",
	Unclassified:        "Unclassified",
}

// Name returns the descriptive class name.
func (c Code) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "Unknown"
}

// Thresholds holds the empirically tuned constants behind each predicate.
// Defaults are calibrated against grid size 51; a different grid size needs
// recalibration, since several predicates reference absolute populations.
type Thresholds struct {
	// Window is the trailing-window length for variance and periodicity
	// features; Transient is the number of leading generations skipped when
	// looking for settled behavior.
	Window    int `yaml:"window"`
	Transient int `yaml:"transient"`

	// Extinction before EarlyExtinction generations is "immediate".
	EarlyExtinction int `yaml:"early_extinction"`

	// Blink detection: a high phase at or above FillFraction of the grid
	// volume counts as grid-filling; a phase below SparseMax cells counts
	// as sparse.
	FillFraction float64 `yaml:"fill_fraction"`
	SparseMax    int     `yaml:"sparse_max"`

	// Periodicity: fewer than UniqueMax distinct populations in the
	// trailing window suggests an oscillator or a fixed pattern.
	UniqueMax   int     `yaml:"unique_max"`
	LowVariance float64 `yaml:"low_variance"`
	SmallPop    int     `yaml:"small_pop"`

	// Growth detection for expanding oscillators.
	GrowthWindow int     `yaml:"growth_window"`
	GrowthFactor float64 `yaml:"growth_factor"`
	GrowthMinLen int     `yaml:"growth_min_len"`

	// Chaos and structure bands over the trailing variance.
	ChaosVariance  float64 `yaml:"chaos_variance"`
	ChaosPop       int     `yaml:"chaos_pop"`
	TrendMin       float64 `yaml:"trend_min"`
	StructVarLow   float64 `yaml:"struct_var_low"`
	StructVarHigh  float64 `yaml:"struct_var_high"`
	StructPop      int     `yaml:"struct_pop"`
	BoundaryExtent float64 `yaml:"boundary_extent"`
	StableVariance float64 `yaml:"stable_variance"`
	GrowthPop      int     `yaml:"growth_pop"`
}

// DefaultThresholds returns the reference calibration for grid size 51.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Window:          20,
		Transient:       20,
		EarlyExtinction: 5,
		FillFraction:    0.7,
		SparseMax:       1000,
		UniqueMax:       10,
		LowVariance:     0.5,
		SmallPop:        5000,
		GrowthWindow:    10,
		GrowthFactor:    2.0,
		GrowthMinLen:    40,
		ChaosVariance:   2.0,
		ChaosPop:        20000,
		TrendMin:        0.1,
		StructVarLow:    1.3,
		StructVarHigh:   2.0,
		StructPop:       10000,
		BoundaryExtent:  40,
		StableVariance:  1.8,
		GrowthPop:       1000,
	}
}

// Evidence holds the trajectory features the decision list inspected.
type Evidence struct {
	FinalPopulation int     `csv:"final_population"`
	MaxPopulation   int     `csv:"max_population"`
	MinPopulation   int     `csv:"min_population"`
	FinalExtent     float64 `csv:"final_extent"`
	MeanVariance    float64 `csv:"mean_variance"`
	VarianceTrend   float64 `csv:"variance_trend"`
	MeanDensity     float64 `csv:"mean_density"`
	UniqueTailPops  int     `csv:"unique_tail_pops"`
	ExtinctionGen   int     `csv:"extinction_gen"` // -1 when the run never dies out
}

// Result is the classification of one rule's completed trajectory.
type Result struct {
	RuleID int    `csv:"rule"`
	Code   Code   `csv:"class_code"`
	Name   string `csv:"class_name"`
	Evidence
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rule", r.RuleID),
		slog.String("class_code", string(r.Code)),
		slog.String("class_name", r.Name),
		slog.Int("final_population", r.FinalPopulation),
		slog.Float64("mean_variance", r.MeanVariance),
	)
}

// predicate is one named entry of the decision list.
type predicate struct {
	name  string
	match func(*features, Thresholds) (Code, bool)
}

// decisionList is evaluated in order; ties are impossible because the first
// match wins.
var decisionList = []predicate{
	{"extinction", matchExtinction},
	{"blink", matchBlink},
	{"oscillator", matchOscillator},
	{"chaotic", matchChaotic},
	{"structured", matchStructured},
	{"complex-stable", matchComplexStable},
	{"simple-growth", matchSimpleGrowth},
}

// Classify assigns a class to a completed trajectory. gridSize must be the
// side length the trajectory was produced with, since the grid-filling
// predicates reference the absolute volume. Pure and deterministic.
func Classify(ruleID int, traj metrics.Trajectory, gridSize int, th Thresholds) Result {
	f := extract(traj, gridSize, th)
	for _, p := range decisionList {
		if code, ok := p.match(f, th); ok {
			return Result{RuleID: ruleID, Code: code, Name: code.Name(), Evidence: f.evidence()}
		}
	}
	return Result{RuleID: ruleID, Code: Unclassified, Name: Unclassified.Name(), Evidence: f.evidence()}
}

// matchExtinction fires when the population reaches 0 and never revives.
// A trailing zero alone is not enough: blinking rules pass through 0 and
// come back, which is the oscillation family's business.
func matchExtinction(f *features, th Thresholds) (Code, bool) {
	if f.extinctionGen < 0 {
		return "", false
	}
	if f.extinctionGen < th.EarlyExtinction {
		return ImmediateExtinction, true
	}
	return DelayedExtinction, true
}

// matchBlink fires on a strict period-2 population alternation after the
// transient. Full-volume alternation against zero is 2A; everything else
// sparse enough is 2B.
func matchBlink(f *features, th Thresholds) (Code, bool) {
	if !f.blinkOK {
		return "", false
	}
	fills := f.blinkHigh >= int(th.FillFraction*float64(f.volume))
	if fills {
		if f.blinkLow == 0 {
			return ExtinctionBlink, true
		}
		if f.blinkLow < th.SparseMax {
			return SparseBlink, true
		}
		return "", false
	}
	if f.blinkHigh < th.SparseMax {
		return SparseBlink, true
	}
	return "", false
}

// matchOscillator covers settled periodic or static patterns: few distinct
// populations in the trailing window and low aggregate variance. Net growth
// in population separates the expanding oscillator from the local one.
func matchOscillator(f *features, th Thresholds) (Code, bool) {
	if f.uniqueTail >= th.UniqueMax || f.meanVariance >= th.LowVariance {
		return "", false
	}
	if f.maxPop < th.SmallPop {
		return LocalPeriodic, true
	}
	if len(f.pops) > th.GrowthMinLen {
		early := meanInts(f.pops[th.GrowthWindow : 2*th.GrowthWindow])
		late := meanInts(tailInts(f.pops, th.Window))
		if late > th.GrowthFactor*early {
			return ExpandingOscillator, true
		}
	}
	return LocalPeriodic, true
}

// matchChaotic fires on sustained high aggregate variance with no sign of
// convergence across a grid-filling population.
func matchChaotic(f *features, th Thresholds) (Code, bool) {
	if f.meanVariance > th.ChaosVariance && f.maxPop > th.ChaosPop && f.varianceTrend > th.TrendMin {
		return ChaoticTurbulent, true
	}
	return "", false
}

// matchStructured fires on the intermediate variance band with a large
// population: growth that reached the boundary is the expanding form.
func matchStructured(f *features, th Thresholds) (Code, bool) {
	if f.meanVariance > th.StructVarLow && f.meanVariance <= th.StructVarHigh && f.finalPop > th.StructPop {
		if f.finalExtent > th.BoundaryExtent {
			return StructuredExpander, true
		}
		return StructuredBounded, true
	}
	return "", false
}

// matchComplexStable fires on high but converged variance.
func matchComplexStable(f *features, th Thresholds) (Code, bool) {
	if f.meanVariance >= th.StableVariance && f.varianceTrend < th.TrendMin {
		return ComplexStable, true
	}
	return "", false
}

// matchSimpleGrowth is the low-complexity monotone growth residual.
func matchSimpleGrowth(f *features, th Thresholds) (Code, bool) {
	if f.finalPop > th.GrowthPop && f.meanVariance < th.StructVarLow {
		return SimpleGrowth, true
	}
	return "", false
}

func meanInts(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	fs := make([]float64, len(vals))
	for i, v := range vals {
		fs[i] = float64(v)
	}
	return stat.Mean(fs, nil)
}

func tailInts(vals []int, n int) []int {
	if len(vals) <= n {
		return vals
	}
	return vals[len(vals)-n:]
}
