package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantworks/backtester/backtest"
	"github.com/quantworks/backtester/internal/id"
	"github.com/quantworks/backtester/journal"
	"github.com/quantworks/backtester/optimize"
)

func newOptimiseCmd(ro *rootOptions) *cobra.Command {
	var parallelism int

	cmd := &cobra.Command{
		Use:     "optimise",
		Aliases: []string{"optimize", "sweep"},
		Short:   "Run one backtest per parameter combination and report each",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSetup(ro)
			if err != nil {
				return err
			}
			defer s.log.Sync()

			if len(s.cfg.Sweep.Params) == 0 {
				return fmt.Errorf("config has no sweep.params, nothing to optimise")
			}

			grid := optimize.NewGrid()
			names := make([]string, 0, len(s.cfg.Sweep.Params))
			for name := range s.cfg.Sweep.Params {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				grid.Add(name, s.cfg.Sweep.Params[name]...)
			}

			if parallelism == 0 {
				parallelism = s.cfg.Sweep.Parallelism
			}

			base := s.params()
			sweep := &optimize.Sweep{
				Data: s.data,
				NewStrategy: func() backtest.Strategy {
					return s.factory(s.data.Symbols())
				},
				Config:      s.runConfig(true),
				Grid:        grid,
				Parallelism: parallelism,
				BaseParams:  base,
			}

			rows, err := sweep.Run(cmd.Context())
			if err != nil {
				return err
			}

			j, err := s.journal()
			if err != nil {
				return err
			}
			defer j.Close()

			sweepID := id.New()
			fmt.Printf("Sweep %s: %d combinations over %s\n", sweepID, len(rows), strings.Join(grid.Names(), ", "))
			for _, row := range rows {
				fmt.Printf("  #%-3d %-40s profit=%.2f rate=%.2f%%/yr stddev=%.2f trades=%d wins=%d\n",
					row.Combination, formatParams(grid.Names(), row.Params),
					row.TotalProfit, row.RealisedRate, row.YearlyStdDev, row.Trades, row.Wins)
				if err := j.RecordReport(journal.ReportRecord{
					RunID:        sweepID,
					Combination:  row.Combination,
					Params:       row.Params,
					TotalProfit:  row.TotalProfit,
					RealisedRate: row.RealisedRate,
					YearlyStdDev: row.YearlyStdDev,
					Trades:       row.Trades,
					Wins:         row.Wins,
				}); err != nil {
					return err
				}
			}

			fmt.Println("Per-parameter average profit:")
			for _, avg := range optimize.AveragePerParameter(rows, grid) {
				fmt.Printf("  %s=%g  %.2f\n", avg.Param, avg.Value, avg.Average)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Concurrent runs (0 uses the config value)")
	return cmd
}

func formatParams(names []string, p backtest.Params) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", n, p[n]))
	}
	return strings.Join(parts, " ")
}
