package engine

import (
	"testing"

	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	assert.Equal(t, int64(0), NewClock().Current())
	assert.Equal(t, int64(100), NewClockAt(100).Current())
}

func TestClock_NextIncrements(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(3), c.Next())
	assert.Equal(t, int64(3), c.Current())
	assert.Equal(t, int64(3), c.Current(), "Current must not increment")
}

func TestClock_ConcurrentUnique(t *testing.T) {
	c := NewClock()
	const goroutines, calls = 50, 100

	p := pool.NewWithResults[[]int64]()
	for i := 0; i < goroutines; i++ {
		p.Go(func() []int64 {
			seqs := make([]int64, calls)
			for j := range seqs {
				seqs[j] = c.Next()
			}
			return seqs
		})
	}

	seen := make(map[int64]bool)
	for _, seqs := range p.Wait() {
		for _, seq := range seqs {
			assert.False(t, seen[seq], "seq %d generated twice", seq)
			seen[seq] = true
		}
	}
	assert.Len(t, seen, goroutines*calls)
	assert.Equal(t, int64(goroutines*calls), c.Current())
}
