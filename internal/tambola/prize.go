package tambola

import "strings"

type Prize string

const (
	EarlyFive  Prize = "Early Five"
	TopRow     Prize = "Top Row"
	MiddleRow  Prize = "Middle Row"
	BottomRow  Prize = "Bottom Row"
	AllCorners Prize = "All Corners"
	FullHouse  Prize = "Full House"
)

// Definition is a claimable pattern with its fixed score.
type Definition struct {
	Name  Prize `json:"name"`
	Score int   `json:"score"`

	// missing reports how many more struck numbers the pattern needs.
	missing func(t Ticket, struck NumberSet) int
}

var catalog = []Definition{
	{Name: EarlyFive, Score: 100, missing: missingEarlyFive},
	{Name: TopRow, Score: 200, missing: missingRow(0)},
	{Name: MiddleRow, Score: 200, missing: missingRow(1)},
	{Name: BottomRow, Score: 200, missing: missingRow(2)},
	{Name: AllCorners, Score: 300, missing: missingCorners},
	{Name: FullHouse, Score: 500, missing: missingFullHouse},
}

// Catalog returns every prize definition in display order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// AllPrizes returns the names of every prize in display order.
func AllPrizes() []Prize {
	out := make([]Prize, len(catalog))
	for i, d := range catalog {
		out[i] = d.Name
	}
	return out
}

func Lookup(p Prize) (Definition, bool) {
	for _, d := range catalog {
		if d.Name == p {
			return d, true
		}
	}
	return Definition{}, false
}

// ParsePrize resolves loosely written names such as "top_row", "TopRow" or
// "full-house" to a catalog prize.
func ParsePrize(s string) (Prize, bool) {
	key := normalizePrize(s)
	for _, d := range catalog {
		if normalizePrize(string(d.Name)) == key {
			return d.Name, true
		}
	}
	return "", false
}

func normalizePrize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Matches reports whether the struck numbers complete the pattern on t.
func (d Definition) Matches(t Ticket, struck NumberSet) bool {
	return d.missing(t, struck) == 0
}

func countStruck(nums []int, struck NumberSet) int {
	n := 0
	for _, v := range nums {
		if struck.Has(v) {
			n++
		}
	}
	return n
}

func missingEarlyFive(t Ticket, struck NumberSet) int {
	return max(0, 5-countStruck(t.Numbers(), struck))
}

func missingRow(r int) func(Ticket, NumberSet) int {
	return func(t Ticket, struck NumberSet) int {
		row := t.Row(r)
		return len(row) - countStruck(row, struck)
	}
}

func missingCorners(t Ticket, struck NumberSet) int {
	top, bottom := t.Row(0), t.Row(Rows-1)
	corners := []int{top[0], top[len(top)-1], bottom[0], bottom[len(bottom)-1]}
	return len(corners) - countStruck(corners, struck)
}

func missingFullHouse(t Ticket, struck NumberSet) int {
	nums := t.Numbers()
	return len(nums) - countStruck(nums, struck)
}
