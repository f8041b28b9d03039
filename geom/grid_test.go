package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGridRejectsEmptyExtents(t *testing.T) {
	_, err := NewGrid(4, 0, 1)
	assert.Error(t, err)
	_, err = NewGrid(-1, 2, 1)
	assert.Error(t, err)

	g, err := NewGrid(4, 3, 2)
	assert.NoError(t, err)
	assert.Equal(t, 4, g.Length)
	assert.Equal(t, 12, g.Area)
	assert.Equal(t, 24, g.Volume)
}

func TestNewGridRejectsOverflow(t *testing.T) {
	// 2^64 nodes wraps to a Volume of zero.
	g, err := NewGrid(1<<22, 1<<22, 1<<20)
	assert.Error(t, err)
	assert.Nil(t, g)

	_, err = NewGrid(math.MaxInt, 2, 1)
	assert.Error(t, err)
	_, err = NewGrid(1, 1, math.MaxInt)
	assert.NoError(t, err)
}

func TestIdxCoordsBijection(t *testing.T) {
	g, _ := NewGrid(5, 3, 4)

	seen := make([]bool, g.Volume)
	for z := 0; z < 4; z++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 5; x++ {
				idx := g.Idx(x, y, z)
				assert.True(t, g.Contains(idx))
				assert.False(t, seen[idx], "index %d produced twice", idx)
				seen[idx] = true

				cx, cy, cz := g.Coords(idx)
				assert.Equal(t, [3]int{x, y, z}, [3]int{cx, cy, cz})
			}
		}
	}

	// The linear layout has x varying fastest.
	assert.Equal(t, 0, g.Idx(0, 0, 0))
	assert.Equal(t, 1, g.Idx(1, 0, 0))
	assert.Equal(t, 5, g.Idx(0, 1, 0))
	assert.Equal(t, 15, g.Idx(0, 0, 1))
}

func TestIdxCheck(t *testing.T) {
	g, _ := NewGrid(2, 2, 2)

	idx, ok := g.IdxCheck(1, 1, 1)
	assert.True(t, ok)
	assert.Equal(t, 7, idx)

	for _, c := range [][3]int{{2, 0, 0}, {0, -1, 0}, {0, 0, 2}} {
		idx, ok = g.IdxCheck(c[0], c[1], c[2])
		assert.False(t, ok, "%v", c)
		assert.Equal(t, -1, idx)
	}
}

func TestNeighborWrap(t *testing.T) {
	g, _ := NewGrid(4, 3, 2)

	tests := []struct {
		x, y, z int
		c       [3]int
		want    [3]int
	}{
		{0, 0, 0, [3]int{1, 0, 0}, [3]int{1, 0, 0}},
		{3, 0, 0, [3]int{1, 0, 0}, [3]int{0, 0, 0}},
		{0, 0, 0, [3]int{-1, 0, 0}, [3]int{3, 0, 0}},
		{0, 0, 0, [3]int{-1, -1, -1}, [3]int{3, 2, 1}},
		{2, 2, 1, [3]int{1, 1, 1}, [3]int{3, 0, 0}},
		{1, 1, 1, [3]int{0, 0, 0}, [3]int{1, 1, 1}},
	}

	for _, test := range tests {
		got := g.Neighbor(test.x, test.y, test.z, test.c)
		want := g.Idx(test.want[0], test.want[1], test.want[2])
		assert.Equal(t, want, got, "(%d %d %d) + %v", test.x, test.y, test.z, test.c)

		idx := g.Idx(test.x, test.y, test.z)
		assert.Equal(t, want, g.NeighborIdx(idx, test.c))
	}
}

func TestNeighborSingleLayer(t *testing.T) {
	// A flat grid maps every z offset back onto the same layer.
	g, _ := NewGrid(3, 3, 1)
	idx := g.Idx(1, 1, 0)
	assert.Equal(t, idx, g.NeighborIdx(idx, [3]int{0, 0, 1}))
	assert.Equal(t, idx, g.NeighborIdx(idx, [3]int{0, 0, -1}))
}

func TestPMod(t *testing.T) {
	assert.Equal(t, 2, pMod(-1, 3))
	assert.Equal(t, 0, pMod(3, 3))
	assert.Equal(t, 1, pMod(-5, 3))
	assert.Equal(t, 1, pMod(7, 3))
}
