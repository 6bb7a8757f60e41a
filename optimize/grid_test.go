package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantworks/backtester/backtest"
)

func TestGridSize(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	assert.Equal(t, 0, g.Size())

	g.Add("a", 1, 2, 3).Add("b", 10, 20)
	assert.Equal(t, 6, g.Size())
	assert.Equal(t, []string{"a", "b"}, g.Names())
}

func TestGridAddReplaces(t *testing.T) {
	t.Parallel()

	g := NewGrid().Add("a", 1, 2).Add("b", 10).Add("a", 5)
	assert.Equal(t, []string{"a", "b"}, g.Names(), "re-adding keeps position")
	assert.Equal(t, 1, g.Size())
	assert.Equal(t, []backtest.Params{{"a": 5, "b": 10}}, g.Combinations())
}

func TestGridCombinationsOrder(t *testing.T) {
	t.Parallel()

	g := NewGrid().Add("a", 1, 2).Add("b", 10, 20)
	got := g.Combinations()
	require.Len(t, got, 4)

	// Last-added parameter varies fastest.
	want := []backtest.Params{
		{"a": 1, "b": 10},
		{"a": 1, "b": 20},
		{"a": 2, "b": 10},
		{"a": 2, "b": 20},
	}
	assert.Equal(t, want, got)
}

func TestGridCombinationsIndependent(t *testing.T) {
	t.Parallel()

	g := NewGrid().Add("a", 1, 2)
	combos := g.Combinations()
	combos[0]["a"] = 99
	assert.Equal(t, 1.0, g.Combinations()[0]["a"], "combinations do not share state")
}
