package lattice

import (
	"errors"
	"testing"
)

func TestNewSizeValidation(t *testing.T) {
	tests := []struct {
		name string
		size int
		ok   bool
	}{
		{"minimum", 3, true},
		{"typical", 51, true},
		{"even", 4, false},
		{"too small", 1, false},
		{"zero", 0, false},
		{"negative", -5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size)
			if tt.ok && err != nil {
				t.Errorf("New(%d) returned error: %v", tt.size, err)
			}
			if !tt.ok && !errors.Is(err, ErrBadSize) {
				t.Errorf("New(%d) error = %v, want ErrBadSize", tt.size, err)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	l, err := Seed(5)
	if err != nil {
		t.Fatal(err)
	}
	if pop := l.Population(); pop != 1 {
		t.Errorf("seed population = %d, want 1", pop)
	}
	if l.At(2, 2, 2) != 1 {
		t.Error("seed cell is not at the center")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	l, err := New(5)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[int]bool)
	for z := 0; z < 5; z++ {
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				idx := l.Index(x, y, z)
				if seen[idx] {
					t.Fatalf("Index(%d,%d,%d) = %d collides", x, y, z, idx)
				}
				seen[idx] = true
			}
		}
	}
	if len(seen) != l.Volume() {
		t.Errorf("indexed %d cells, want %d", len(seen), l.Volume())
	}
}

func TestCloneIndependence(t *testing.T) {
	l, err := Seed(3)
	if err != nil {
		t.Fatal(err)
	}
	c := l.Clone()
	c.Set(0, 0, 0, 1)
	if l.At(0, 0, 0) != 0 {
		t.Error("mutating the clone changed the original")
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"inclusive27", Inclusive27, false},
		{"exclusive26", Exclusive26, false},
		{"moore", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrBadVariant) {
				t.Errorf("ParseVariant(%q) error = %v, want ErrBadVariant", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseVariant(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestAggregateAllZero(t *testing.T) {
	l, err := New(7)
	if err != nil {
		t.Fatal(err)
	}
	for _, variant := range []Variant{Inclusive27, Exclusive26} {
		f := Aggregate(l, variant)
		for i, v := range f.Values() {
			if v != 0 {
				t.Fatalf("%v aggregate of empty lattice is %d at offset %d, want 0", variant, v, i)
			}
		}
	}
}

func TestAggregateExclusiveSingleSeed(t *testing.T) {
	l, err := Seed(7)
	if err != nil {
		t.Fatal(err)
	}
	f := Aggregate(l, Exclusive26)

	c := l.Center()
	adjacent := 0
	for z := 0; z < 7; z++ {
		for y := 0; y < 7; y++ {
			for x := 0; x < 7; x++ {
				got := f.At(x, y, z)
				dx, dy, dz := abs(x-c), abs(y-c), abs(z-c)
				switch {
				case dx == 0 && dy == 0 && dz == 0:
					// The seed itself: self is excluded.
					if got != 0 {
						t.Errorf("seed cell aggregate = %d, want 0", got)
					}
				case dx <= 1 && dy <= 1 && dz <= 1:
					if got != 1 {
						t.Errorf("adjacent cell (%d,%d,%d) aggregate = %d, want 1", x, y, z, got)
					}
					adjacent++
				default:
					if got != 0 {
						t.Errorf("distant cell (%d,%d,%d) aggregate = %d, want 0", x, y, z, got)
					}
				}
			}
		}
	}
	if adjacent != 26 {
		t.Errorf("counted %d adjacent cells, want 26", adjacent)
	}
}

func TestAggregateInclusiveSingleSeed(t *testing.T) {
	l, err := Seed(5)
	if err != nil {
		t.Fatal(err)
	}
	f := Aggregate(l, Inclusive27)

	c := l.Center()
	if got := f.At(c, c, c); got != 1 {
		t.Errorf("seed cell inclusive aggregate = %d, want 1", got)
	}
	if got := f.At(c+1, c, c); got != 1 {
		t.Errorf("face neighbor inclusive aggregate = %d, want 1", got)
	}
}

func TestAggregateCornerBoundary(t *testing.T) {
	// A live corner cell has only 7 in-bounds neighbors; everything outside
	// the grid reads as dead.
	l, err := New(3)
	if err != nil {
		t.Fatal(err)
	}
	l.Set(0, 0, 0, 1)

	inc := Aggregate(l, Inclusive27)
	exc := Aggregate(l, Exclusive26)

	if got := inc.At(0, 0, 0); got != 1 {
		t.Errorf("corner inclusive aggregate = %d, want 1", got)
	}
	if got := exc.At(0, 0, 0); got != 0 {
		t.Errorf("corner exclusive aggregate = %d, want 0", got)
	}
	if got := exc.At(1, 1, 1); got != 1 {
		t.Errorf("center exclusive aggregate = %d, want 1", got)
	}
}

func TestAggregateFullLattice(t *testing.T) {
	// With every cell live, an interior cell reads 27 (or 26 exclusive) and a
	// corner reads 8 (or 7).
	l, err := New(5)
	if err != nil {
		t.Fatal(err)
	}
	cells := l.Cells()
	for i := range cells {
		cells[i] = 1
	}

	inc := Aggregate(l, Inclusive27)
	exc := Aggregate(l, Exclusive26)

	if got := inc.At(2, 2, 2); got != 27 {
		t.Errorf("interior inclusive aggregate = %d, want 27", got)
	}
	if got := exc.At(2, 2, 2); got != 26 {
		t.Errorf("interior exclusive aggregate = %d, want 26", got)
	}
	if got := inc.At(0, 0, 0); got != 8 {
		t.Errorf("corner inclusive aggregate = %d, want 8", got)
	}
	if got := exc.At(0, 0, 0); got != 7 {
		t.Errorf("corner exclusive aggregate = %d, want 7", got)
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	l, err := Seed(5)
	if err != nil {
		t.Fatal(err)
	}
	before := l.Clone()
	Aggregate(l, Inclusive27)
	for i, v := range l.Cells() {
		if v != before.Cells()[i] {
			t.Fatal("Aggregate mutated the input lattice")
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func BenchmarkAggregate51(b *testing.B) {
	l, err := Seed(51)
	if err != nil {
		b.Fatal(err)
	}
	f := NewField(51)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AggregateInto(l, Inclusive27, f)
	}
}
