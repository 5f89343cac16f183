package metrics

import (
	"math"
	"testing"

	"github.com/askel-dev/voxlife/lattice"
)

func TestSummarizeSeed(t *testing.T) {
	l, err := lattice.Seed(5)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		variant lattice.Variant
		mean    float64
	}{
		{"inclusive", lattice.Inclusive27, 1},
		{"exclusive", lattice.Exclusive26, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Summarize(l, lattice.Aggregate(l, tt.variant), 0)
			if rec.Population != 1 {
				t.Errorf("population = %d, want 1", rec.Population)
			}
			if rec.Extent != 0 {
				t.Errorf("extent = %v, want 0", rec.Extent)
			}
			if rec.Density != 0 {
				t.Errorf("density = %v, want 0", rec.Density)
			}
			if rec.AggMean != tt.mean {
				t.Errorf("agg mean = %v, want %v", rec.AggMean, tt.mean)
			}
			if rec.AggStd != 0 {
				t.Errorf("agg std = %v, want 0 for a single cell", rec.AggStd)
			}
		})
	}
}

func TestSummarizeEmpty(t *testing.T) {
	l, err := lattice.New(5)
	if err != nil {
		t.Fatal(err)
	}
	rec := Summarize(l, lattice.Aggregate(l, lattice.Inclusive27), 3)

	if rec.Index != 3 {
		t.Errorf("index = %d, want 3", rec.Index)
	}
	zero := Record{Index: 3}
	if rec != zero {
		t.Errorf("empty lattice record = %+v, want all-zero stats", rec)
	}
}

func TestSummarizeExtentAndDensity(t *testing.T) {
	// Two live cells: the center and a face neighbor two steps out.
	l, err := lattice.New(7)
	if err != nil {
		t.Fatal(err)
	}
	c := l.Center()
	l.Set(c, c, c, 1)
	l.Set(c+2, c, c, 1)

	rec := Summarize(l, lattice.Aggregate(l, lattice.Exclusive26), 1)

	if rec.Population != 2 {
		t.Errorf("population = %d, want 2", rec.Population)
	}
	if rec.Extent != 2 {
		t.Errorf("extent = %v, want 2", rec.Extent)
	}
	wantDensity := 2.0 / ((4.0 / 3.0) * math.Pi * 8.0)
	if math.Abs(rec.Density-wantDensity) > 1e-12 {
		t.Errorf("density = %v, want %v", rec.Density, wantDensity)
	}
}

func TestSummarizeAggStats(t *testing.T) {
	// A 3-cell line through the center: exclusive aggregates are 1 at the
	// ends and 2 in the middle.
	l, err := lattice.New(7)
	if err != nil {
		t.Fatal(err)
	}
	c := l.Center()
	l.Set(c-1, c, c, 1)
	l.Set(c, c, c, 1)
	l.Set(c+1, c, c, 1)

	rec := Summarize(l, lattice.Aggregate(l, lattice.Exclusive26), 1)

	if rec.AggMin != 1 || rec.AggMax != 2 {
		t.Errorf("agg min/max = %d/%d, want 1/2", rec.AggMin, rec.AggMax)
	}
	wantMean := 4.0 / 3.0
	if math.Abs(rec.AggMean-wantMean) > 1e-12 {
		t.Errorf("agg mean = %v, want %v", rec.AggMean, wantMean)
	}
	// Population standard deviation of {1, 2, 1}.
	wantStd := math.Sqrt(2.0 / 9.0)
	if math.Abs(rec.AggStd-wantStd) > 1e-12 {
		t.Errorf("agg std = %v, want %v", rec.AggStd, wantStd)
	}
	if rec.SurvivalZone != 2 {
		t.Errorf("survival zone = %d, want 2", rec.SurvivalZone)
	}
	if rec.LowBand != 1 {
		t.Errorf("low band = %d, want 1", rec.LowBand)
	}
	if rec.HighBand != 0 {
		t.Errorf("high band = %d, want 0", rec.HighBand)
	}
}

func TestSummarizeDoesNotMutate(t *testing.T) {
	l, err := lattice.Seed(5)
	if err != nil {
		t.Fatal(err)
	}
	agg := lattice.Aggregate(l, lattice.Inclusive27)
	before := l.Clone()

	Summarize(l, agg, 0)

	for i, v := range l.Cells() {
		if v != before.Cells()[i] {
			t.Fatal("Summarize mutated the lattice")
		}
	}
}

func TestTrajectoryHelpers(t *testing.T) {
	traj := Trajectory{
		{Index: 0, Population: 1},
		{Index: 1, Population: 26},
		{Index: 2, Population: 0},
	}

	if got := traj.Final(); got.Index != 2 || got.Population != 0 {
		t.Errorf("Final() = %+v", got)
	}
	pops := traj.Populations()
	want := []int{1, 26, 0}
	for i := range want {
		if pops[i] != want[i] {
			t.Errorf("Populations() = %v, want %v", pops, want)
			break
		}
	}
}

func TestExtinctRecord(t *testing.T) {
	rec := Extinct(7)
	if rec.Index != 7 || rec.Population != 0 || rec.Extent != 0 {
		t.Errorf("Extinct(7) = %+v", rec)
	}
}
