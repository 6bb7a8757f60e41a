package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantworks/backtester/ledger"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVRecordLot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lotsPath := filepath.Join(dir, "trades.csv")

	j, err := NewCSV(lotsPath, "", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	closeDate := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	closePrice, closeValue, profit := 55.0, 11000.0, 1000.0
	reason := "stop-loss"
	require.NoError(t, j.RecordLot(LotRecord{
		RunID: "R1", LotID: 0, Direction: "long", Symbol: "ABC",
		OpenDate: time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
		OpenPrice: 50, Amount: 200, OpenValue: 10000, OpenReason: "entry",
		CloseDate: &closeDate, ClosePrice: &closePrice, CloseValue: &closeValue,
		CloseReason: &reason, Profit: &profit,
	}))
	require.NoError(t, j.RecordLot(LotRecord{
		RunID: "R1", LotID: 1, Direction: "short", Symbol: "XYZ",
		OpenDate: time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC),
		OpenPrice: 20, Amount: -100, OpenValue: -2000, OpenReason: "entry",
	}))

	rows := readCSV(t, lotsPath)
	require.Len(t, rows, 3)
	assert.Equal(t, "long_or_short", rows[0][2])
	assert.Equal(t, []string{
		"R1", "0", "long", "ABC", "2020-01-06", "50", "200", "10000", "entry",
		"2020-01-10", "55", "11000", "stop-loss", "1000",
	}, rows[1])
	assert.Equal(t, "", rows[2][9], "open lots leave close columns blank")
	assert.Equal(t, "-2000", rows[2][7])
}

func TestCSVRecordWealthAndReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wealthPath := filepath.Join(dir, "wealth.csv")
	reportPath := filepath.Join(dir, "report.csv")

	j, err := NewCSV("", wealthPath, reportPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordWealth(WealthPoint{
		RunID: "R1", Date: time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC), Wealth: 100250.5,
	}))
	require.NoError(t, j.RecordReport(ReportRecord{
		RunID: "S1", Combination: 2, Params: map[string]float64{"a": 1},
		TotalProfit: 500, Trades: 3, Wins: 2,
	}))

	// Paths not configured for this backend are silently dropped.
	require.NoError(t, j.RecordLot(LotRecord{RunID: "R1"}))

	wealth := readCSV(t, wealthPath)
	require.Len(t, wealth, 2)
	assert.Equal(t, []string{"R1", "2020-01-06", "100250.5"}, wealth[1])

	report := readCSV(t, reportPath)
	require.Len(t, report, 2)
	assert.Equal(t, "2", report[1][1])
	assert.JSONEq(t, `{"a":1}`, report[1][2])
}

func TestLotRecordFrom(t *testing.T) {
	t.Parallel()

	open := ledger.Lot{
		ID: 3, Direction: ledger.Short, Symbol: "XYZ",
		OpenDate:  time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
		OpenPrice: 20, Amount: -100, OpenValue: -2000, OpenReason: "entry",
	}
	rec := LotRecordFrom("R1", open)
	assert.Equal(t, "short", rec.Direction)
	assert.Equal(t, 3, rec.LotID)
	assert.Nil(t, rec.Profit)

	closed := open
	closed.Close = &ledger.CloseInfo{
		Date:   time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
		Price:  18, Value: -1800, Reason: "exit", Profit: 200,
	}
	rec = LotRecordFrom("R1", closed)
	require.NotNil(t, rec.Profit)
	assert.Equal(t, 200.0, *rec.Profit)
	assert.Equal(t, "exit", *rec.CloseReason)
}
