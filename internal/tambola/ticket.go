package tambola

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

const (
	Rows          = 3
	Columns       = 9
	NumbersPerRow = 5
	TicketSize    = Rows * NumbersPerRow
)

// ErrGeneration means a generated ticket broke the layout rules. With a
// valid layout catalog it cannot happen.
var ErrGeneration = errors.New("ticket generation failed")

// Ticket is a 3×9 grid; 0 marks a blank cell.
type Ticket [Rows][Columns]int

// ColumnRange returns the inclusive range of values allowed in column c.
func ColumnRange(c int) (lo, hi int) {
	lo = 10*c + 1
	hi = min(10*c+10, MaxNumber)
	return lo, hi
}

// Row returns the non-blank values of row r, left to right.
func (t Ticket) Row(r int) []int {
	out := make([]int, 0, NumbersPerRow)
	for _, v := range t[r] {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// Numbers returns every non-blank value on the ticket in row order.
func (t Ticket) Numbers() []int {
	out := make([]int, 0, TicketSize)
	for r := range Rows {
		out = append(out, t.Row(r)...)
	}
	return out
}

func (t Ticket) Has(n int) bool {
	if !ValidNumber(n) {
		return false
	}
	for r := range Rows {
		for _, v := range t[r] {
			if v == n {
				return true
			}
		}
	}
	return false
}

// Validate checks the structural rules: five values per row, every value in
// its column range, and columns strictly increasing top to bottom.
func (t Ticket) Validate() error {
	total := 0
	for r := range Rows {
		n := len(t.Row(r))
		if n != NumbersPerRow {
			return fmt.Errorf("row %d has %d numbers, want %d", r, n, NumbersPerRow)
		}
		total += n
	}
	if total != TicketSize {
		return fmt.Errorf("ticket has %d numbers, want %d", total, TicketSize)
	}

	for c := range Columns {
		lo, hi := ColumnRange(c)
		prev := 0
		for r := range Rows {
			v := t[r][c]
			if v == 0 {
				continue
			}
			if v < lo || v > hi {
				return fmt.Errorf("column %d holds %d outside [%d, %d]", c, v, lo, hi)
			}
			if v <= prev {
				return fmt.Errorf("column %d is not increasing at row %d", c, r)
			}
			prev = v
		}
	}
	return nil
}

// Generator produces tickets. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator seeded from the runtime's random source.
// Each room owns one.
func NewGenerator() *Generator {
	return NewSeededGenerator(rand.Uint64(), rand.Uint64())
}

// NewSeededGenerator returns a generator with a fixed PCG seed, which makes
// the sequence of tickets reproducible.
func NewSeededGenerator(seed1, seed2 uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (g *Generator) Generate() (Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var columns [Columns][Rows]int
	for c := range Columns {
		columns[c] = g.drawColumn(c)
	}
	l := layouts[g.rng.IntN(len(layouts))]

	var t Ticket
	for r := range Rows {
		for c := range Columns {
			if l.kept(r, c) {
				t[r][c] = columns[c][r]
			}
		}
	}

	if err := t.Validate(); err != nil {
		return Ticket{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return t, nil
}

// drawColumn picks Rows distinct values from the column range without
// replacement and returns them sorted.
func (g *Generator) drawColumn(c int) [Rows]int {
	lo, hi := ColumnRange(c)
	candidates := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		candidates = append(candidates, v)
	}
	for i := range Rows {
		j := i + g.rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	picked := candidates[:Rows]
	slices.Sort(picked)

	var out [Rows]int
	copy(out[:], picked)
	return out
}
