// Package rule encodes the 256-member family of 3D totalistic automaton rules.
//
// A rule identifier is an 8-bit mask over neighborhood aggregate values 0-7.
// Aggregates of 8 or more are not addressable by the mask and always map to
// dead.
package rule

import (
	"errors"
	"fmt"
	"strings"
)

// TableSize is the number of addressable neighborhood aggregate values.
const TableSize = 8

// ErrOutOfRange reports a rule identifier outside [0, 255].
var ErrOutOfRange = errors.New("rule id out of range")

// Table maps a neighborhood aggregate value (0-7) to the next cell state.
// Immutable by convention once decoded.
type Table [TableSize]bool

// Decode expands an 8-bit rule identifier into its lookup table.
// Bit p of the identifier (bit 0 = LSB) is the outcome for aggregate value p,
// so rule 54 (binary 00110110) maps values 1, 2, 4 and 5 to live.
func Decode(id int) (Table, error) {
	if id < 0 || id > 255 {
		return Table{}, fmt.Errorf("%w: %d", ErrOutOfRange, id)
	}
	var t Table
	for p := 0; p < TableSize; p++ {
		t[p] = id&(1<<p) != 0
	}
	return t, nil
}

// Encode packs the table back into its rule identifier.
func (t Table) Encode() int {
	id := 0
	for p := 0; p < TableSize; p++ {
		if t[p] {
			id |= 1 << p
		}
	}
	return id
}

// Live reports the next state for the given aggregate value.
// Values outside the table (>= 8) are dead unconditionally.
func (t Table) Live(aggregate int) bool {
	return aggregate >= 0 && aggregate < TableSize && t[aggregate]
}

// LiveValues returns the aggregate values the table maps to live, ascending.
func (t Table) LiveValues() []int {
	vals := make([]int, 0, TableSize)
	for p := 0; p < TableSize; p++ {
		if t[p] {
			vals = append(vals, p)
		}
	}
	return vals
}

// String renders the rule as its identifier plus live set, e.g. "rule 54 {1,2,4,5}".
func (t Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule %d {", t.Encode())
	for i, v := range t.LiveValues() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte('}')
	return b.String()
}
