package lattice

import (
	"errors"
	"fmt"
)

// Variant selects how the 3x3x3 neighborhood aggregate treats the center cell.
type Variant uint8

const (
	// Inclusive27 sums all 27 cells of the block, the center included.
	Inclusive27 Variant = iota
	// Exclusive26 counts only the 26 surrounding cells.
	Exclusive26
)

// ErrBadVariant reports an unrecognized neighborhood variant name.
var ErrBadVariant = errors.New("unrecognized neighborhood variant")

// ParseVariant maps a configuration string to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "inclusive27":
		return Inclusive27, nil
	case "exclusive26":
		return Exclusive26, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadVariant, s)
}

func (v Variant) String() string {
	switch v {
	case Inclusive27:
		return "inclusive27"
	case Exclusive26:
		return "exclusive26"
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

// Field holds the per-cell neighborhood aggregate for one lattice generation.
// Values range 0-27.
type Field struct {
	size int
	vals []uint8
}

// NewField returns a zeroed field matching the given side length.
func NewField(size int) *Field {
	return &Field{size: size, vals: make([]uint8, size*size*size)}
}

// Size returns the side length.
func (f *Field) Size() int { return f.size }

// At returns the aggregate value at (x, y, z).
func (f *Field) At(x, y, z int) int { return int(f.vals[x+f.size*(y+f.size*z)]) }

// Values exposes the flat aggregate buffer.
func (f *Field) Values() []uint8 { return f.vals }

// Clear resets every aggregate to 0.
func (f *Field) Clear() {
	for i := range f.vals {
		f.vals[i] = 0
	}
}

// Aggregate computes the 3x3x3 neighborhood aggregate of every cell under a
// constant-zero boundary: coordinates outside [0, size) contribute nothing.
// The input lattice is not modified.
func Aggregate(l *Lattice, v Variant) *Field {
	f := NewField(l.size)
	AggregateInto(l, v, f)
	return f
}

// AggregateInto is Aggregate writing into a previously allocated field, so the
// per-generation loop can run without allocations. The boundary is handled by
// clamping the stencil range on each axis rather than padding the buffer,
// which keeps the constant-zero semantics explicit.
func AggregateInto(l *Lattice, v Variant, f *Field) {
	if f.size != l.size {
		panic(fmt.Sprintf("lattice: field size %d does not match lattice size %d", f.size, l.size))
	}

	s := l.size
	cells := l.cells
	out := f.vals

	i := 0
	for z := 0; z < s; z++ {
		z0, z1 := z-1, z+1
		if z0 < 0 {
			z0 = 0
		}
		if z1 >= s {
			z1 = s - 1
		}
		for y := 0; y < s; y++ {
			y0, y1 := y-1, y+1
			if y0 < 0 {
				y0 = 0
			}
			if y1 >= s {
				y1 = s - 1
			}
			for x := 0; x < s; x++ {
				x0, x1 := x-1, x+1
				if x0 < 0 {
					x0 = 0
				}
				if x1 >= s {
					x1 = s - 1
				}

				sum := 0
				for zz := z0; zz <= z1; zz++ {
					for yy := y0; yy <= y1; yy++ {
						row := s * (yy + s*zz)
						for xx := x0; xx <= x1; xx++ {
							sum += int(cells[xx+row])
						}
					}
				}
				if v == Exclusive26 {
					sum -= int(cells[i])
				}
				out[i] = uint8(sum)
				i++
			}
		}
	}
}
