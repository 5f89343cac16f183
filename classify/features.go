package classify

import (
	"gonum.org/v1/gonum/stat"

	"github.com/askel-dev/voxlife/metrics"
)

// features caches the trajectory reductions shared across predicates so each
// is computed exactly once per classification.
type features struct {
	pops   []int
	volume int

	finalPop    int
	maxPop      int
	minPop      int
	finalExtent float64

	meanVariance  float64
	varianceTrend float64
	meanDensity   float64
	uniqueTail    int

	// extinctionGen is the generation at which the population reached 0 and
	// stayed there; -1 if the run never died out for good.
	extinctionGen int

	// blink* describe a strict period-2 alternation after the transient.
	blinkOK   bool
	blinkLow  int
	blinkHigh int
}

func extract(traj metrics.Trajectory, gridSize int, th Thresholds) *features {
	f := &features{
		volume:        gridSize * gridSize * gridSize,
		extinctionGen: -1,
	}
	if len(traj) == 0 {
		return f
	}

	f.pops = traj.Populations()
	f.finalPop = f.pops[len(f.pops)-1]
	f.maxPop = f.pops[0]
	f.minPop = f.pops[0]
	for _, p := range f.pops {
		if p > f.maxPop {
			f.maxPop = p
		}
		if p < f.minPop {
			f.minPop = p
		}
	}
	f.finalExtent = traj.Final().Extent

	// First zero with no revival afterwards.
	for i, p := range f.pops {
		if p == 0 {
			f.extinctionGen = i
			for _, q := range f.pops[i:] {
				if q != 0 {
					f.extinctionGen = -1
					break
				}
			}
			break
		}
	}

	// Trailing-window variance features mirror the extinct-run convention:
	// all zero when the run ends dead.
	if f.finalPop > 0 {
		stds := make([]float64, 0, th.Window)
		densities := make([]float64, 0, th.Window)
		for _, r := range tailRecords(traj, th.Window) {
			stds = append(stds, r.AggStd)
			densities = append(densities, r.Density)
		}
		f.meanVariance = stat.Mean(stds, nil)
		f.varianceTrend = stat.PopStdDev(stds, nil)
		f.meanDensity = stat.Mean(densities, nil)
	}

	tail := tailInts(f.pops, th.Window)
	unique := make(map[int]struct{}, len(tail))
	for _, p := range tail {
		unique[p] = struct{}{}
	}
	f.uniqueTail = len(unique)

	f.blinkLow, f.blinkHigh, f.blinkOK = detectBlink(f.pops, th.Transient)
	return f
}

// detectBlink looks for a strict period-2 alternation between two distinct
// population levels. The leading transient is skipped when the trajectory is
// long enough; short trajectories fall back to skipping only the seed.
func detectBlink(pops []int, transient int) (lo, hi int, ok bool) {
	start := transient
	if start > len(pops)-4 {
		start = 1
	}
	if start < 0 || len(pops)-start < 4 {
		return 0, 0, false
	}

	seg := pops[start:]
	if seg[0] == seg[1] {
		return 0, 0, false
	}
	for i := 2; i < len(seg); i++ {
		if seg[i] != seg[i-2] {
			return 0, 0, false
		}
	}

	lo, hi = seg[0], seg[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

func tailRecords(traj metrics.Trajectory, n int) metrics.Trajectory {
	if len(traj) <= n {
		return traj
	}
	return traj[len(traj)-n:]
}

func (f *features) evidence() Evidence {
	return Evidence{
		FinalPopulation: f.finalPop,
		MaxPopulation:   f.maxPop,
		MinPopulation:   f.minPop,
		FinalExtent:     f.finalExtent,
		MeanVariance:    f.meanVariance,
		VarianceTrend:   f.varianceTrend,
		MeanDensity:     f.meanDensity,
		UniqueTailPops:  f.uniqueTail,
		ExtinctionGen:   f.extinctionGen,
	}
}
