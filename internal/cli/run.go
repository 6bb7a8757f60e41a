package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantworks/backtester/backtest"
	"github.com/quantworks/backtester/internal/id"
	"github.com/quantworks/backtester/journal"
	"github.com/quantworks/backtester/stats"
)

func newRunCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single backtest",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSetup(ro)
			if err != nil {
				return err
			}
			defer s.log.Sync()

			runner := &backtest.Runner{
				Data:     s.data,
				Strategy: s.factory(s.data.Symbols()),
				Config:   s.runConfig(false),
				Params:   s.params(),
			}
			res, err := runner.Run()
			if err != nil {
				return err
			}

			j, err := s.journal()
			if err != nil {
				return err
			}
			defer j.Close()

			runID := id.New()
			if err := recordRun(j, runID, s, res); err != nil {
				return err
			}

			fmt.Printf("Run %s done. profit=%.2f wealth=%.2f rate=%.2f%%/yr trades=%d wins=%d\n",
				runID, res.TotalProfit, res.FinalWealth, res.RealisedRate, res.Trades, res.Wins)
			for _, yr := range stats.YearlyReturns(res.DateTrack, res.WealthTrack, res.StartingCash) {
				fmt.Printf("  %d  %+.2f%%\n", yr.Year, yr.Percent)
			}
			return nil
		},
	}
}

func recordRun(j journal.Journal, runID string, s *setup, res backtest.Result) error {
	dates := s.data.Dates()
	if err := j.RecordRun(journal.RunRecord{
		RunID:        runID,
		Created:      time.Now().UTC(),
		Strategy:     s.cfg.Strategy.Name,
		Rebalance:    s.cfg.Data.Rebalance,
		StartingCash: res.StartingCash,
		FinalWealth:  res.FinalWealth,
		TotalProfit:  res.TotalProfit,
		RealisedRate: res.RealisedRate,
		Trades:       res.Trades,
		Wins:         res.Wins,
		Start:        dates[0],
		End:          dates[len(dates)-1],
	}); err != nil {
		return err
	}
	for _, lot := range res.Snapshot.Lots {
		if err := j.RecordLot(journal.LotRecordFrom(runID, lot)); err != nil {
			return err
		}
	}
	for i, d := range res.DateTrack {
		if err := j.RecordWealth(journal.WealthPoint{RunID: runID, Date: d, Wealth: res.WealthTrack[i]}); err != nil {
			return err
		}
	}
	return nil
}
