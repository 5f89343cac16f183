// Package lattice provides the cubic occupancy grid and its 3x3x3
// neighborhood aggregation.
package lattice

import (
	"errors"
	"fmt"
)

// ErrBadSize reports a grid side length that is even or below 3.
var ErrBadSize = errors.New("lattice size must be an odd integer >= 3")

// Lattice is a cubic grid of binary occupancy values (0 or 1) with fixed odd
// side length, stored as a flat buffer indexed by x + size*(y + size*z).
type Lattice struct {
	size  int
	cells []uint8
}

// New returns an all-dead lattice of the given side length.
func New(size int) (*Lattice, error) {
	if size < 3 || size%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadSize, size)
	}
	return &Lattice{size: size, cells: make([]uint8, size*size*size)}, nil
}

// Seed returns a lattice with a single live cell at the center.
func Seed(size int) (*Lattice, error) {
	l, err := New(size)
	if err != nil {
		return nil, err
	}
	c := l.Center()
	l.Set(c, c, c, 1)
	return l, nil
}

// Size returns the side length.
func (l *Lattice) Size() int { return l.size }

// Center returns the center coordinate (size-1)/2, shared by all three axes.
func (l *Lattice) Center() int { return (l.size - 1) / 2 }

// Volume returns the total cell count size^3.
func (l *Lattice) Volume() int { return len(l.cells) }

// Index converts (x, y, z) to the flat buffer offset.
func (l *Lattice) Index(x, y, z int) int { return x + l.size*(y+l.size*z) }

// At returns the occupancy value at (x, y, z).
func (l *Lattice) At(x, y, z int) uint8 { return l.cells[l.Index(x, y, z)] }

// Set writes the occupancy value at (x, y, z). v must be 0 or 1.
func (l *Lattice) Set(x, y, z int, v uint8) { l.cells[l.Index(x, y, z)] = v }

// Cells exposes the flat occupancy buffer. Callers writing through it must
// preserve the 0/1 invariant.
func (l *Lattice) Cells() []uint8 { return l.cells }

// Population counts the live cells.
func (l *Lattice) Population() int {
	n := 0
	for _, c := range l.cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// Clear resets every cell to dead.
func (l *Lattice) Clear() {
	for i := range l.cells {
		l.cells[i] = 0
	}
}

// Clone returns an independent copy.
func (l *Lattice) Clone() *Lattice {
	cells := make([]uint8, len(l.cells))
	copy(cells, l.cells)
	return &Lattice{size: l.size, cells: cells}
}
