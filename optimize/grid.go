// Package optimize enumerates strategy parameter combinations and runs one
// independent backtest per combination, collecting a summary report.
package optimize

import (
	"github.com/quantworks/backtester/backtest"
)

// Grid is an ordered set of named parameter value lists. Combinations are
// enumerated as the cartesian product with the last-added parameter varying
// fastest, so a given grid always yields the same combination order.
type Grid struct {
	names  []string
	values map[string][]float64
}

func NewGrid() *Grid {
	return &Grid{values: make(map[string][]float64)}
}

// Add appends a parameter and its candidate values. Re-adding a name
// replaces its values without changing its position.
func (g *Grid) Add(name string, values ...float64) *Grid {
	if _, ok := g.values[name]; !ok {
		g.names = append(g.names, name)
	}
	g.values[name] = append([]float64(nil), values...)
	return g
}

// Names returns the parameter names in insertion order.
func (g *Grid) Names() []string { return g.names }

// Size returns the number of combinations.
func (g *Grid) Size() int {
	if len(g.names) == 0 {
		return 0
	}
	n := 1
	for _, name := range g.names {
		n *= len(g.values[name])
	}
	return n
}

// Combinations materialises every parameter combination in enumeration
// order.
func (g *Grid) Combinations() []backtest.Params {
	size := g.Size()
	if size == 0 {
		return nil
	}

	out := make([]backtest.Params, 0, size)
	idx := make([]int, len(g.names))
	for {
		p := make(backtest.Params, len(g.names))
		for i, name := range g.names {
			p[name] = g.values[name][idx[i]]
		}
		out = append(out, p)

		// advance the odometer, last parameter fastest
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(g.values[g.names[i]]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}
