// Package tambola defines the ticket, number and prize rules of the game.
// It has no dependencies outside the standard library and holds no state
// beyond what a caller passes in.
package tambola

import "math/bits"

// MaxNumber is the highest number that can be called.
const MaxNumber = 90

// NumberSet is a set of numbers in 1..MaxNumber. The zero value is empty
// and the type is a plain value, so copying it yields an independent snapshot.
type NumberSet struct {
	bits [2]uint64
}

func NewNumberSet(nums ...int) NumberSet {
	var s NumberSet
	for _, n := range nums {
		s.Add(n)
	}
	return s
}

// Add inserts n and reports whether n is a valid number.
func (s *NumberSet) Add(n int) bool {
	if !ValidNumber(n) {
		return false
	}
	s.bits[n/64] |= 1 << uint(n%64)
	return true
}

func (s NumberSet) Has(n int) bool {
	if !ValidNumber(n) {
		return false
	}
	return s.bits[n/64]&(1<<uint(n%64)) != 0
}

func (s NumberSet) Len() int {
	return bits.OnesCount64(s.bits[0]) + bits.OnesCount64(s.bits[1])
}

// Numbers returns the members in ascending order.
func (s NumberSet) Numbers() []int {
	out := make([]int, 0, s.Len())
	for n := 1; n <= MaxNumber; n++ {
		if s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func ValidNumber(n int) bool {
	return n >= 1 && n <= MaxNumber
}
