package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','lots','wealth','report')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	for _, table := range []string{"runs", "lots", "wealth", "report"} {
		assert.True(t, found[table], table)
	}
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := RunRecord{
		RunID:        "R1",
		Created:      time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC),
		Strategy:     "rsi-reversion",
		Rebalance:    "weekly",
		StartingCash: 100000,
		FinalWealth:  101000,
		TotalProfit:  1000,
		RealisedRate: 2.5,
		Trades:       4,
		Wins:         3,
		Start:        time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2020, 5, 29, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, j.RecordRun(rec))

	got, err := j.GetRun("R1")
	require.NoError(t, err)
	assert.Equal(t, rec.Strategy, got.Strategy)
	assert.Equal(t, rec.TotalProfit, got.TotalProfit)
	assert.Equal(t, rec.Trades, got.Trades)
	assert.True(t, rec.Start.Equal(got.Start))

	_, err = j.GetRun("NOPE")
	assert.Error(t, err)
}

func TestSQLiteLotRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	closeDate := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	closePrice, closeValue, profit := 55.0, 11000.0, 1000.0
	closeReason := "RSI exit"

	closed := LotRecord{
		RunID: "R1", LotID: 0, Direction: "long", Symbol: "ABC",
		OpenDate: time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
		OpenPrice: 50, Amount: 200, OpenValue: 10000, OpenReason: "RSI entry",
		CloseDate: &closeDate, ClosePrice: &closePrice, CloseValue: &closeValue,
		CloseReason: &closeReason, Profit: &profit,
	}
	open := LotRecord{
		RunID: "R1", LotID: 1, Direction: "short", Symbol: "XYZ",
		OpenDate: time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC),
		OpenPrice: 20, Amount: -100, OpenValue: -2000, OpenReason: "RSI entry",
	}
	require.NoError(t, j.RecordLot(closed))
	require.NoError(t, j.RecordLot(open))

	got, err := j.ListLotsByRun("R1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Profit)
	assert.Equal(t, 1000.0, *got[0].Profit)
	assert.Equal(t, "RSI exit", *got[0].CloseReason)

	assert.Nil(t, got[1].CloseDate, "open lots keep null close fields")
	assert.Nil(t, got[1].Profit)
	assert.Equal(t, -100, got[1].Amount)

	other, err := j.ListLotsByRun("R2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteDuplicateLotRejected(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	rec := LotRecord{RunID: "R1", LotID: 0, Direction: "long", Symbol: "ABC",
		OpenDate: time.Now().UTC(), OpenPrice: 50, Amount: 100, OpenValue: 5000}

	require.NoError(t, j.RecordLot(rec))
	assert.Error(t, j.RecordLot(rec), "run_id+lot_id is the primary key")
}

func TestSQLiteRecordReport(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	require.NoError(t, j.RecordReport(ReportRecord{
		RunID: "S1", Combination: 3,
		Params:      map[string]float64{"rsi_len": 14},
		TotalProfit: 1200, RealisedRate: 3.1, YearlyStdDev: 0.5,
		Trades: 10, Wins: 6,
	}))

	var params string
	row := j.db.QueryRow(`SELECT params FROM report WHERE run_id='S1' AND combination=3`)
	require.NoError(t, row.Scan(&params))
	assert.JSONEq(t, `{"rsi_len":14}`, params)
}
