// Package metrics reduces lattice generations to scalar summaries.
package metrics

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/askel-dev/voxlife/lattice"
)

// Record is the scalar summary of one post-update lattice generation.
// Field names and units are stable: population is an integer cell count,
// extent a Euclidean distance in lattice units, density dimensionless per
// unit volume. Records are appended to a trajectory and never mutated.
type Record struct {
	Index      int     `csv:"generation"`
	Population int     `csv:"population"`

	// Extent is the maximum Euclidean distance from the grid center among
	// live cells; 0 when the lattice is empty.
	Extent float64 `csv:"extent"`

	// Density is population over the volume of a sphere of radius Extent,
	// defined as 0 (not Inf) when Extent is 0.
	Density float64 `csv:"density"`

	// Aggregate-value statistics over live cells only.
	AggMean float64 `csv:"agg_mean"`
	AggMin  int     `csv:"agg_min"`
	AggMax  int     `csv:"agg_max"`
	AggStd  float64 `csv:"agg_std"`

	// Structural counts of live cells by aggregate sub-range. Qualitative
	// descriptors; the classifier never thresholds on them.
	SurvivalZone int `csv:"survival_zone"` // aggregate exactly 1
	LowBand      int `csv:"low_band"`      // aggregate 2-3
	HighBand     int `csv:"high_band"`     // aggregate 4-7
}

// Summarize computes the scalar summary of one generation. agg must be the
// aggregate field that produced lat; for the seed generation, the aggregate
// of the seed lattice itself. Pure: neither input is modified.
func Summarize(lat *lattice.Lattice, agg *lattice.Field, index int) Record {
	rec := Record{Index: index}

	size := lat.Size()
	center := lat.Center()
	cells := lat.Cells()
	vals := agg.Values()

	var aggVals []float64
	maxDistSq := 0.0

	i := 0
	for z := 0; z < size; z++ {
		dz := z - center
		for y := 0; y < size; y++ {
			dy := y - center
			for x := 0; x < size; x++ {
				if cells[i] != 0 {
					a := int(vals[i])
					aggVals = append(aggVals, float64(a))
					switch {
					case a == 1:
						rec.SurvivalZone++
					case a >= 2 && a <= 3:
						rec.LowBand++
					case a >= 4 && a <= 7:
						rec.HighBand++
					}
					if rec.Population == 0 || a < rec.AggMin {
						rec.AggMin = a
					}
					if a > rec.AggMax {
						rec.AggMax = a
					}
					rec.Population++

					dx := x - center
					distSq := float64(dx*dx + dy*dy + dz*dz)
					if distSq > maxDistSq {
						maxDistSq = distSq
					}
				}
				i++
			}
		}
	}

	if rec.Population == 0 {
		return rec
	}

	rec.Extent = math.Sqrt(maxDistSq)
	if rec.Extent > 0 {
		rec.Density = float64(rec.Population) / ((4.0 / 3.0) * math.Pi * math.Pow(rec.Extent, 3))
	}
	rec.AggMean = stat.Mean(aggVals, nil)
	rec.AggStd = stat.PopStdDev(aggVals, nil)
	return rec
}

// Extinct returns the all-zero record used for generations after the lattice
// has died out.
func Extinct(index int) Record {
	return Record{Index: index}
}

// LogValue implements slog.LogValuer for structured logging.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", r.Index),
		slog.Int("population", r.Population),
		slog.Float64("extent", r.Extent),
		slog.Float64("density", r.Density),
		slog.Float64("agg_mean", r.AggMean),
		slog.Int("agg_min", r.AggMin),
		slog.Int("agg_max", r.AggMax),
		slog.Float64("agg_std", r.AggStd),
		slog.Int("survival_zone", r.SurvivalZone),
		slog.Int("low_band", r.LowBand),
		slog.Int("high_band", r.HighBand),
	)
}

// Trajectory is the ordered per-generation history of one rule's run,
// entry i covering generation i. It grows by append and is never reordered.
type Trajectory []Record

// Final returns the last record. Panics on an empty trajectory.
func (t Trajectory) Final() Record { return t[len(t)-1] }

// Populations returns the per-generation population counts.
func (t Trajectory) Populations() []int {
	pops := make([]int, len(t))
	for i, r := range t {
		pops[i] = r.Population
	}
	return pops
}
