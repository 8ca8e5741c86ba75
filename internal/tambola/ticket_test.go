package tambola

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvariants(t *testing.T) {
	g := NewSeededGenerator(1, 2)
	for i := 0; i < 2000; i++ {
		tk, err := g.Generate()
		require.NoError(t, err)

		nums := tk.Numbers()
		require.Len(t, nums, TicketSize)
		for r := range Rows {
			require.Len(t, tk.Row(r), NumbersPerRow)
		}

		seen := NewNumberSet()
		for _, n := range nums {
			require.False(t, seen.Has(n), "duplicate %d", n)
			seen.Add(n)
		}

		for c := range Columns {
			lo, hi := ColumnRange(c)
			kept, prev := 0, 0
			for r := range Rows {
				v := tk[r][c]
				if v == 0 {
					continue
				}
				kept++
				assert.GreaterOrEqual(t, v, lo)
				assert.LessOrEqual(t, v, hi)
				assert.Greater(t, v, prev)
				prev = v
			}
			assert.True(t, kept >= 1 && kept <= 2, "column %d keeps %d", c, kept)
		}
	}
}

func TestGenerateConcurrent(t *testing.T) {
	g := NewGenerator()
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk, err := g.Generate()
			if err == nil {
				err = tk.Validate()
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestColumnRange(t *testing.T) {
	lo, hi := ColumnRange(0)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 10, hi)

	lo, hi = ColumnRange(8)
	assert.Equal(t, 81, lo)
	assert.Equal(t, 90, hi)
}

func TestValidateRejectsBrokenTickets(t *testing.T) {
	good := sampleTicket()
	require.NoError(t, good.Validate())

	outOfRange := good
	outOfRange[0][0] = 15
	assert.Error(t, outOfRange.Validate())

	descending := good
	descending[0][1], descending[1][1] = 0, 12
	descending[2][1] = 11
	assert.Error(t, descending.Validate())

	sixInRow := good
	sixInRow[0][1] = 11
	assert.Error(t, sixInRow.Validate())
}

// sampleTicket uses layout 0: columns 0..4 keep rows 0 and 2 or 1 and 2.
func sampleTicket() Ticket {
	return Ticket{
		{1, 0, 21, 0, 41, 0, 61, 0, 81},
		{0, 12, 0, 32, 0, 52, 0, 72, 85},
		{3, 14, 23, 34, 43, 0, 0, 0, 0},
	}
}
