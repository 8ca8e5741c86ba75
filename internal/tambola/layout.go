package tambola

import "fmt"

// layout marks the cells kept on a ticket: 'x' keeps the column value for
// that row, '.' blanks it. Every entry keeps 5 cells per row and 1 or 2
// cells per column; layout_test.go checks the whole catalog.
type layout [Rows]string

var layouts = [...]layout{
	{"x.x.x.x.x", ".x.x.x.xx", "xxxxx...."},
	{"xx.x.x.x.", "x.x.x.x.x", "..x.xx.xx"},
	{".xx.x.xx.", "x..xx.x.x", "x.x..x.xx"},
	{"x..x.xx.x", ".x.xx.x.x", ".xx.xx.x."},
	{"xxx..x.x.", "...xx.xxx", "x.x.x.x.x"},
	{".x.xx.x.x", "x.x.xx.x.", ".xx..xx.x"},
}

func (l layout) kept(row, col int) bool {
	return l[row][col] == 'x'
}

func (l layout) check() error {
	var perCol [Columns]int
	for r, line := range l {
		if len(line) != Columns {
			return fmt.Errorf("row %d has %d cells, want %d", r, len(line), Columns)
		}
		kept := 0
		for c := 0; c < Columns; c++ {
			switch line[c] {
			case 'x':
				kept++
				perCol[c]++
			case '.':
			default:
				return fmt.Errorf("row %d: unexpected cell %q", r, line[c])
			}
		}
		if kept != NumbersPerRow {
			return fmt.Errorf("row %d keeps %d cells, want %d", r, kept, NumbersPerRow)
		}
	}
	for c, n := range perCol {
		if n < 1 || n > 2 {
			return fmt.Errorf("column %d keeps %d cells, want 1 or 2", c, n)
		}
	}
	return nil
}
