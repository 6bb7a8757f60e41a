package optimize

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/quantworks/backtester/backtest"
	"github.com/quantworks/backtester/market"
	"github.com/quantworks/backtester/stats"
)

// ReportRow summarises one combination's run.
type ReportRow struct {
	Combination  int
	Params       backtest.Params
	TotalProfit  float64
	RealisedRate float64
	Trades       int
	Wins         int
	Yearly       []stats.YearlyReturn
	YearlyStdDev float64
	WealthTrack  []float64
}

// Sweep runs one backtest per grid combination. Runs are fully independent:
// each gets a fresh strategy instance and its own ledger, and rows are
// written by combination index, so they may execute concurrently.
type Sweep struct {
	Data *market.Dataset
	// NewStrategy builds a fresh strategy per combination; strategies may
	// carry per-run state, so instances are never shared between runs.
	NewStrategy func() backtest.Strategy
	Config      backtest.Config
	Grid        *Grid
	// Parallelism caps concurrent runs; values below 2 mean sequential.
	Parallelism int
	// BaseParams are fixed parameters merged under every combination; a
	// grid value for the same name wins.
	BaseParams backtest.Params
}

// Run executes every combination and returns the report rows in combination
// order.
func (s *Sweep) Run(ctx context.Context) ([]ReportRow, error) {
	if s.Grid == nil || s.Grid.Size() == 0 {
		return nil, fmt.Errorf("optimize: empty parameter grid")
	}
	if s.NewStrategy == nil {
		return nil, fmt.Errorf("optimize: NewStrategy is required")
	}

	combos := s.Grid.Combinations()
	rows := make([]ReportRow, len(combos))

	cfg := s.Config
	cfg.Optimising = true // sweeps keep summary statistics only

	g, ctx := errgroup.WithContext(ctx)
	limit := s.Parallelism
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, combo := range combos {
		i, combo := i, combo
		for name, v := range s.BaseParams {
			if _, ok := combo[name]; !ok {
				combo[name] = v
			}
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runner := &backtest.Runner{
				Data:     s.Data,
				Strategy: s.NewStrategy(),
				Config:   cfg,
				Params:   combo,
			}
			res, err := runner.Run()
			if err != nil {
				return fmt.Errorf("optimize: combination %d: %w", i, err)
			}
			yearly := stats.YearlyReturns(res.DateTrack, res.WealthTrack, res.StartingCash)
			rows[i] = ReportRow{
				Combination:  i,
				Params:       combo,
				TotalProfit:  res.TotalProfit,
				RealisedRate: res.RealisedRate,
				Trades:       res.Trades,
				Wins:         res.Wins,
				Yearly:       yearly,
				YearlyStdDev: stats.StdDev(yearly),
				WealthTrack:  res.WealthTrack,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// ParamAverage is the mean total profit across every row that used a given
// parameter value.
type ParamAverage struct {
	Param   string
	Value   float64
	Average float64
}

// AveragePerParameter aggregates the report by parameter value, showing
// which settings carried profit across the rest of the grid.
func AveragePerParameter(rows []ReportRow, grid *Grid) []ParamAverage {
	var out []ParamAverage
	for _, name := range grid.Names() {
		seen := make(map[float64]bool)
		for _, v := range grid.values[name] {
			if seen[v] {
				continue
			}
			seen[v] = true

			sum, count := 0.0, 0
			for _, row := range rows {
				if row.Params[name] == v {
					sum += row.TotalProfit
					count++
				}
			}
			if count == 0 {
				continue
			}
			out = append(out, ParamAverage{Param: name, Value: v, Average: sum / float64(count)})
		}
	}
	return out
}
