// Package journal persists run results: the trade-lot list, the daily wealth
// series, and optimisation report rows, keyed by run ID.
package journal

import (
	"time"

	"github.com/quantworks/backtester/ledger"
)

// RunRecord summarises one completed backtest run.
type RunRecord struct {
	RunID        string
	Created      time.Time
	Strategy     string
	Rebalance    string
	StartingCash float64
	FinalWealth  float64
	TotalProfit  float64
	RealisedRate float64
	Trades       int
	Wins         int
	Start        time.Time
	End          time.Time
}

// LotRecord is one trade lot. The close fields are nil while the lot was
// still open when the run ended.
type LotRecord struct {
	RunID      string
	LotID      int
	Direction  string
	Symbol     string
	OpenDate   time.Time
	OpenPrice  float64
	Amount     int
	OpenValue  float64
	OpenReason string

	CloseDate   *time.Time
	ClosePrice  *float64
	CloseValue  *float64
	CloseReason *string
	Profit      *float64
}

// WealthPoint is one day of the mark-to-market wealth series.
type WealthPoint struct {
	RunID  string
	Date   time.Time
	Wealth float64
}

// ReportRecord is one optimisation report row.
type ReportRecord struct {
	RunID        string
	Combination  int
	Params       map[string]float64
	TotalProfit  float64
	RealisedRate float64
	YearlyStdDev float64
	Trades       int
	Wins         int
}

// Journal records run output. Implementations are CSV files and SQLite.
type Journal interface {
	RecordRun(RunRecord) error
	RecordLot(LotRecord) error
	RecordWealth(WealthPoint) error
	RecordReport(ReportRecord) error
	Close() error
}

// LotRecordFrom converts a ledger lot into its journal row.
func LotRecordFrom(runID string, lot ledger.Lot) LotRecord {
	rec := LotRecord{
		RunID:      runID,
		LotID:      int(lot.ID),
		Direction:  lot.Direction.String(),
		Symbol:     lot.Symbol,
		OpenDate:   lot.OpenDate,
		OpenPrice:  lot.OpenPrice,
		Amount:     lot.Amount,
		OpenValue:  lot.OpenValue,
		OpenReason: lot.OpenReason,
	}
	if c := lot.Close; c != nil {
		rec.CloseDate = &c.Date
		rec.ClosePrice = &c.Price
		rec.CloseValue = &c.Value
		rec.CloseReason = &c.Reason
		rec.Profit = &c.Profit
	}
	return rec
}
