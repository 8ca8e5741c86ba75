package tambola

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberSet(t *testing.T) {
	s := NewNumberSet(90, 1, 64, 63, 1)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []int{1, 63, 64, 90}, s.Numbers())
	assert.True(t, s.Has(64))
	assert.False(t, s.Has(2))

	assert.False(t, s.Add(0))
	assert.False(t, s.Add(91))
	assert.False(t, s.Has(0))

	snapshot := s
	s.Add(2)
	assert.False(t, snapshot.Has(2), "copies must not share storage")
}
