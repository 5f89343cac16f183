// Package sim evolves a lattice under a single automaton rule.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/askel-dev/voxlife/lattice"
	"github.com/askel-dev/voxlife/rule"
)

// ErrBadGenerations reports a negative generation count.
var ErrBadGenerations = errors.New("generations must be >= 0")

// Config is the full configuration surface of one simulation run; there are
// no hidden parameters.
type Config struct {
	Size        int
	Generations int
	Table       rule.Table
	Variant     lattice.Variant
}

// Generation is one snapshot of the evolving lattice. Lattice is the
// post-update state and Agg the aggregate field that produced it; for
// generation 0 Agg is the aggregate of the seed state itself. Both buffers
// are reused across steps, so consumers must finish with a snapshot before
// advancing the engine again.
type Generation struct {
	Index   int
	Lattice *lattice.Lattice
	Agg     *lattice.Field
}

// Engine owns the lattice state for one rule and advances it one generation
// at a time. Each engine owns its buffers exclusively; engines never share
// lattice memory.
type Engine struct {
	cfg Config

	cur  *lattice.Lattice
	next *lattice.Lattice

	// aggCur is the aggregate of cur; aggPrev is the field that produced cur.
	aggCur  *lattice.Field
	aggPrev *lattice.Field

	gen int
	pop int
}

// New validates the configuration and seeds the lattice with a single live
// center cell. Validation failures surface before any simulation work.
func New(cfg Config) (*Engine, error) {
	if cfg.Generations < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadGenerations, cfg.Generations)
	}
	cur, err := lattice.Seed(cfg.Size)
	if err != nil {
		return nil, err
	}
	next, err := lattice.New(cfg.Size)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		cur:     cur,
		next:    next,
		aggCur:  lattice.NewField(cfg.Size),
		aggPrev: lattice.NewField(cfg.Size),
		pop:     1,
	}
	lattice.AggregateInto(cur, cfg.Variant, e.aggCur)
	return e, nil
}

// Generation returns the current snapshot without advancing.
func (e *Engine) Generation() Generation {
	if e.gen == 0 {
		return Generation{Index: 0, Lattice: e.cur, Agg: e.aggCur}
	}
	return Generation{Index: e.gen, Lattice: e.cur, Agg: e.aggPrev}
}

// Population returns the current live cell count.
func (e *Engine) Population() int { return e.pop }

// Done reports whether the configured generation count has been reached.
func (e *Engine) Done() bool { return e.gen >= e.cfg.Generations }

// Extinct reports whether the lattice has reached the absorbing all-dead
// state. All-dead is absorbing only when the table maps aggregate 0 to dead;
// otherwise a dead lattice revives on the next step.
func (e *Engine) Extinct() bool { return e.pop == 0 && !e.cfg.Table.Live(0) }

// Step advances one generation and returns the new snapshot. The transition
// is a pure function of the current lattice: every cell's next state is the
// table entry for its aggregate, with aggregates >= 8 dying unconditionally.
func (e *Engine) Step() Generation {
	agg := e.aggCur.Values()
	nextCells := e.next.Cells()

	pop := 0
	for i, a := range agg {
		if e.cfg.Table.Live(int(a)) {
			nextCells[i] = 1
			pop++
		} else {
			nextCells[i] = 0
		}
	}

	e.cur, e.next = e.next, e.cur
	e.aggCur, e.aggPrev = e.aggPrev, e.aggCur
	e.pop = pop
	e.gen++

	// Prepare the aggregate of the new state for the following step. An
	// all-dead lattice aggregates to zero everywhere, so skip the stencil.
	if pop == 0 {
		e.aggCur.Clear()
	} else {
		lattice.AggregateInto(e.cur, e.cfg.Variant, e.aggCur)
	}

	return Generation{Index: e.gen, Lattice: e.cur, Agg: e.aggPrev}
}

// Run drives a fresh engine to completion, invoking visit for every
// generation from 0 through cfg.Generations inclusive. It stops early once
// the lattice reaches the absorbing all-dead state, and checks ctx between
// generations so long runs cancel at generation granularity.
func Run(ctx context.Context, cfg Config, visit func(Generation) error) error {
	e, err := New(cfg)
	if err != nil {
		return err
	}
	if err := visit(e.Generation()); err != nil {
		return err
	}
	for !e.Done() && !e.Extinct() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := visit(e.Step()); err != nil {
			return err
		}
	}
	return nil
}
